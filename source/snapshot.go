package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"vesting-audit/vesting"
)

// Snapshot key layout: one meta key with the finalized block, one key per
// account holding its schedule list as a JSON array.
var (
	snapshotMetaKey        = []byte("meta:finalized_block")
	snapshotSchedulePrefix = []byte("vs:")
)

type scheduleRow struct {
	Locked        string `json:"locked"`
	PerBlock      string `json:"per_block"`
	StartingBlock string `json:"starting_block"`
}

// Snapshot reads audit inputs from a LevelDB snapshot written by a previous
// run with -export. Snapshots pin both the schedule table and the reference
// block, so a report can be reproduced long after the index moved on.
type Snapshot struct {
	db *leveldb.DB
}

func OpenSnapshot(path string) (*Snapshot, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{ErrorIfMissing: true, ReadOnly: true})
	if err != nil {
		return nil, err
	}
	return &Snapshot{db: db}, nil
}

func (s *Snapshot) Close() {
	s.db.Close()
}

func (s *Snapshot) ReferenceBlock(ctx context.Context) (*big.Int, error) {
	raw, err := s.db.Get(snapshotMetaKey, nil)
	if err == leveldb.ErrNotFound {
		return nil, vesting.AuditError{Code: 404, Message: "snapshot has no finalized block marker"}
	}
	if err != nil {
		return nil, err
	}
	value, ok := new(big.Int).SetString(string(raw), 10)
	if !ok || value.Sign() < 0 {
		return nil, vesting.AuditError{Code: 500, Message: fmt.Sprintf("bad finalized block marker: %q", raw)}
	}
	return value, nil
}

// VestingEntries walks the schedule keyspace. LevelDB iterates keys in byte
// order, so entries come out sorted by account like the database source.
func (s *Snapshot) VestingEntries(ctx context.Context) ([]vesting.Entry, error) {
	iter := s.db.NewIterator(util.BytesPrefix(snapshotSchedulePrefix), nil)
	defer iter.Release()

	entries := []vesting.Entry{}
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		account := vesting.AccountID(bytes.TrimPrefix(iter.Key(), snapshotSchedulePrefix))
		entry, err := decodeSnapshotEntry(account, iter.Value())
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Snapshot) AccountEntry(ctx context.Context, account vesting.AccountID) (*vesting.Entry, error) {
	raw, err := s.db.Get(scheduleKey(account), nil)
	if err == leveldb.ErrNotFound {
		return nil, vesting.AuditError{Code: 404, Message: fmt.Sprintf("account %s has no vesting schedules", account)}
	}
	if err != nil {
		return nil, err
	}
	entry, err := decodeSnapshotEntry(account, raw)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func scheduleKey(account vesting.AccountID) []byte {
	return append(append([]byte{}, snapshotSchedulePrefix...), account...)
}

func decodeSnapshotEntry(account vesting.AccountID, raw []byte) (vesting.Entry, error) {
	rows := []scheduleRow{}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return vesting.Entry{}, vesting.MalformedScheduleError{Account: account, Field: "schedules", Value: string(raw)}
	}
	entry := vesting.Entry{Account: account}
	for _, row := range rows {
		schedule, err := vesting.NewSchedule(account, row.Locked, row.PerBlock, row.StartingBlock)
		if err != nil {
			return vesting.Entry{}, err
		}
		entry.Schedules = append(entry.Schedules, schedule)
	}
	return entry, nil
}

// ExportSnapshot writes audit inputs to a fresh snapshot at path. Writes go
// out in batches of 1000 accounts with a final synced flush.
func ExportSnapshot(path string, referenceBlock *big.Int, entries []vesting.Entry) error {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	batch := new(leveldb.Batch)
	batch.Put(snapshotMetaKey, []byte(referenceBlock.String()))
	for _, entry := range entries {
		rows := make([]scheduleRow, 0, len(entry.Schedules))
		for _, schedule := range entry.Schedules {
			rows = append(rows, scheduleRow{
				Locked:        schedule.Locked.String(),
				PerBlock:      schedule.PerBlock.String(),
				StartingBlock: schedule.StartingBlock.String(),
			})
		}
		raw, err := json.Marshal(rows)
		if err != nil {
			return err
		}
		batch.Put(scheduleKey(entry.Account), raw)
		if batch.Len() >= 1000 {
			if err := db.Write(batch, nil); err != nil {
				return err
			}
			batch.Reset()
		}
	}
	return db.Write(batch, &opt.WriteOptions{Sync: true})
}

var _ Source = (*Snapshot)(nil)
