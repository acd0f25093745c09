package vesting

import (
	"fmt"
	"math/big"

	mapset "github.com/deckarep/golang-set/v2"
)

// AccountID is an opaque account identifier, kept exactly as the index stores it.
type AccountID string

// Schedule is a single linear vesting schedule: starting at StartingBlock,
// PerBlock base units unlock every block until Locked is exhausted.
type Schedule struct {
	Locked        *big.Int
	PerBlock      *big.Int
	StartingBlock *big.Int
}

// Entry is the full schedule set of one account. Accounts without schedules
// never appear in the schedule table, so a valid Entry carries at least one.
type Entry struct {
	Account   AccountID
	Schedules []Schedule
}

type ScheduleOutcome struct {
	Released    *big.Int
	StillLocked *big.Int
}

type AccountOutcome struct {
	Released      *big.Int
	StillLocked   *big.Int
	FullyReleased bool
}

// LockedAccount is one row of the partially locked bucket.
type LockedAccount struct {
	Account     AccountID
	StillLocked *big.Int
}

// Report is the aggregated result of one audit run. PartiallyLocked keeps
// the order in which accounts were fed to the accumulator.
type Report struct {
	ReferenceBlock   *big.Int
	FullyReleased    mapset.Set[AccountID]
	PartiallyLocked  []LockedAccount
	TotalReleased    *big.Int
	TotalStillLocked *big.Int
	Accounts         int
	Schedules        int
}

type AuditError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
}

func (e AuditError) Error() string {
	return e.Message
}

// MalformedScheduleError marks a schedule row that cannot be read as
// non-negative base-10 integers. The audit stops at the first one instead of
// reporting totals computed from a partially dropped population.
type MalformedScheduleError struct {
	Account AccountID
	Field   string
	Value   string
}

func (e MalformedScheduleError) Error() string {
	return fmt.Sprintf("account %s: malformed schedule field %s: %q", e.Account, e.Field, e.Value)
}

// NewSchedule parses the textual amounts of one schedule row. Every field
// must be a non-negative base-10 integer of arbitrary size.
func NewSchedule(account AccountID, locked string, perBlock string, startingBlock string) (Schedule, error) {
	locked_value, err := parseAmount(account, "locked", locked)
	if err != nil {
		return Schedule{}, err
	}
	per_block_value, err := parseAmount(account, "per_block", perBlock)
	if err != nil {
		return Schedule{}, err
	}
	starting_block_value, err := parseAmount(account, "starting_block", startingBlock)
	if err != nil {
		return Schedule{}, err
	}
	return Schedule{
		Locked:        locked_value,
		PerBlock:      per_block_value,
		StartingBlock: starting_block_value,
	}, nil
}

func parseAmount(account AccountID, field string, value string) (*big.Int, error) {
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok || parsed.Sign() < 0 {
		return nil, MalformedScheduleError{Account: account, Field: field, Value: value}
	}
	return parsed, nil
}
