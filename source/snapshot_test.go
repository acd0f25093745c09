package source

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"vesting-audit/vesting"
)

func setupTestSnapshot(t *testing.T) *Snapshot {
	t.Helper()

	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		t.Fatalf("failed to open in-memory leveldb: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &Snapshot{db: db}
}

func putRaw(t *testing.T, snap *Snapshot, key []byte, value string) {
	t.Helper()

	if err := snap.db.Put(key, []byte(value), nil); err != nil {
		t.Fatalf("failed to seed snapshot: %v", err)
	}
}

func TestSnapshotReferenceBlock(t *testing.T) {
	snap := setupTestSnapshot(t)
	putRaw(t, snap, snapshotMetaKey, "12345678901234567890")

	block, err := snap.ReferenceBlock(context.Background())
	if err != nil {
		t.Fatalf("ReferenceBlock failed: %v", err)
	}
	if block.String() != "12345678901234567890" {
		t.Errorf("expected block 12345678901234567890, got %s", block.String())
	}
}

func TestSnapshotMissingBlockMarker(t *testing.T) {
	snap := setupTestSnapshot(t)

	_, err := snap.ReferenceBlock(context.Background())
	if err == nil {
		t.Fatal("expected an error for a snapshot without the block marker")
	}
	audit, ok := err.(vesting.AuditError)
	if !ok {
		t.Fatalf("expected AuditError, got %T: %v", err, err)
	}
	if audit.Code != 404 {
		t.Errorf("expected code 404, got %d", audit.Code)
	}
}

func TestSnapshotBadBlockMarker(t *testing.T) {
	snap := setupTestSnapshot(t)
	putRaw(t, snap, snapshotMetaKey, "not-a-number")

	_, err := snap.ReferenceBlock(context.Background())
	if err == nil {
		t.Fatal("expected an error for a garbage block marker")
	}
	if audit, ok := err.(vesting.AuditError); !ok || audit.Code != 500 {
		t.Errorf("expected AuditError 500, got %T: %v", err, err)
	}
}

func TestSnapshotEntriesComeOutInAccountOrder(t *testing.T) {
	snap := setupTestSnapshot(t)
	// seeded out of order on purpose: iteration is in key order
	putRaw(t, snap, scheduleKey("carol"), `[{"locked":"1000","per_block":"10","starting_block":"250"}]`)
	putRaw(t, snap, scheduleKey("alice"), `[{"locked":"1000","per_block":"10","starting_block":"100"}]`)
	putRaw(t, snap, scheduleKey("bob"), `[{"locked":"600","per_block":"2","starting_block":"0"},{"locked":"100","per_block":"1","starting_block":"50"}]`)
	putRaw(t, snap, snapshotMetaKey, "300")

	entries, err := snap.VestingEntries(context.Background())
	if err != nil {
		t.Fatalf("VestingEntries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, account := range []vesting.AccountID{"alice", "bob", "carol"} {
		if entries[i].Account != account {
			t.Errorf("entry %d: expected %s, got %s", i, account, entries[i].Account)
		}
	}
	if len(entries[1].Schedules) != 2 {
		t.Errorf("expected bob to carry 2 schedules, got %d", len(entries[1].Schedules))
	}
	if entries[0].Schedules[0].Locked.String() != "1000" {
		t.Errorf("alice locked amount mangled: %s", entries[0].Schedules[0].Locked.String())
	}
}

func TestSnapshotAccountEntry(t *testing.T) {
	snap := setupTestSnapshot(t)
	putRaw(t, snap, scheduleKey("alice"), `[{"locked":"1000","per_block":"10","starting_block":"100"}]`)

	entry, err := snap.AccountEntry(context.Background(), "alice")
	if err != nil {
		t.Fatalf("AccountEntry failed: %v", err)
	}
	if entry.Account != "alice" || len(entry.Schedules) != 1 {
		t.Errorf("unexpected entry: %+v", entry)
	}

	_, err = snap.AccountEntry(context.Background(), "nobody")
	if err == nil {
		t.Fatal("expected an error for an unknown account")
	}
	if audit, ok := err.(vesting.AuditError); !ok || audit.Code != 404 {
		t.Errorf("expected AuditError 404, got %T: %v", err, err)
	}
}

func TestSnapshotMalformedScheduleFailsTheRead(t *testing.T) {
	snap := setupTestSnapshot(t)
	putRaw(t, snap, scheduleKey("alice"), `[{"locked":"1000","per_block":"10","starting_block":"100"}]`)
	putRaw(t, snap, scheduleKey("mallory"), `[{"locked":"12.5","per_block":"10","starting_block":"0"}]`)

	_, err := snap.VestingEntries(context.Background())
	if err == nil {
		t.Fatal("expected the malformed row to fail the read")
	}
	malformed, ok := err.(vesting.MalformedScheduleError)
	if !ok {
		t.Fatalf("expected MalformedScheduleError, got %T: %v", err, err)
	}
	if malformed.Account != "mallory" || malformed.Field != "locked" {
		t.Errorf("expected mallory/locked, got %s/%s", malformed.Account, malformed.Field)
	}
}

func TestSnapshotGarbageValueFailsTheRead(t *testing.T) {
	snap := setupTestSnapshot(t)
	putRaw(t, snap, scheduleKey("alice"), `not json at all`)

	_, err := snap.VestingEntries(context.Background())
	if err == nil {
		t.Fatal("expected the garbage value to fail the read")
	}
	malformed, ok := err.(vesting.MalformedScheduleError)
	if !ok {
		t.Fatalf("expected MalformedScheduleError, got %T: %v", err, err)
	}
	if malformed.Field != "schedules" {
		t.Errorf("expected field 'schedules', got %s", malformed.Field)
	}
}

func TestExportSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot")

	entries := []vesting.Entry{}
	for _, seed := range []struct {
		account       vesting.AccountID
		locked        string
		perBlock      string
		startingBlock string
	}{
		{"alice", "1000", "10", "100"},
		{"bob", "340282366920938463463374607431768211456", "18446744073709551616", "0"},
	} {
		schedule, err := vesting.NewSchedule(seed.account, seed.locked, seed.perBlock, seed.startingBlock)
		if err != nil {
			t.Fatalf("NewSchedule failed: %v", err)
		}
		entries = append(entries, vesting.Entry{Account: seed.account, Schedules: []vesting.Schedule{schedule}})
	}

	if err := ExportSnapshot(path, big.NewInt(300), entries); err != nil {
		t.Fatalf("ExportSnapshot failed: %v", err)
	}

	snap, err := OpenSnapshot(path)
	if err != nil {
		t.Fatalf("OpenSnapshot failed: %v", err)
	}
	defer snap.Close()

	block, err := snap.ReferenceBlock(context.Background())
	if err != nil {
		t.Fatalf("ReferenceBlock failed: %v", err)
	}
	if block.String() != "300" {
		t.Errorf("expected block 300, got %s", block.String())
	}

	read, err := snap.VestingEntries(context.Background())
	if err != nil {
		t.Fatalf("VestingEntries failed: %v", err)
	}
	if len(read) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(read))
	}
	if read[0].Account != "alice" || read[1].Account != "bob" {
		t.Errorf("unexpected account order: %s, %s", read[0].Account, read[1].Account)
	}
	if read[1].Schedules[0].Locked.String() != "340282366920938463463374607431768211456" {
		t.Errorf("big locked amount mangled: %s", read[1].Schedules[0].Locked.String())
	}
}

func TestOpenSnapshotMissingPath(t *testing.T) {
	_, err := OpenSnapshot(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("expected an error when the snapshot path does not exist")
	}
}
