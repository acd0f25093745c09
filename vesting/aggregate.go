package vesting

import (
	"fmt"
	"math/big"
	"slices"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

// Accumulator folds account entries into a report. Two accumulators built
// over the same reference block can be combined with Merge, which lets
// disjoint chunks of the input be folded concurrently and joined afterwards.
type Accumulator struct {
	referenceBlock   *big.Int
	fullyReleased    mapset.Set[AccountID]
	partiallyLocked  []LockedAccount
	totalReleased    *big.Int
	totalStillLocked *big.Int
	accounts         int
	schedules        int
}

func NewAccumulator(referenceBlock *big.Int) *Accumulator {
	return &Accumulator{
		referenceBlock:   new(big.Int).Set(referenceBlock),
		fullyReleased:    mapset.NewSet[AccountID](),
		partiallyLocked:  []LockedAccount{},
		totalReleased:    new(big.Int),
		totalStillLocked: new(big.Int),
	}
}

// Add folds one account entry. Every account in the schedule table has at
// least one schedule; an entry without any means the feed is corrupt, so Add
// refuses it instead of silently counting the account as fully released.
func (agg *Accumulator) Add(entry Entry) error {
	if len(entry.Schedules) == 0 {
		return AuditError{Code: 500, Message: fmt.Sprintf("account %s has no vesting schedules", entry.Account)}
	}
	outcome := ComputeAccount(entry, agg.referenceBlock)
	agg.totalReleased.Add(agg.totalReleased, outcome.Released)
	agg.totalStillLocked.Add(agg.totalStillLocked, outcome.StillLocked)
	agg.accounts += 1
	agg.schedules += len(entry.Schedules)
	if outcome.FullyReleased {
		agg.fullyReleased.Add(entry.Account)
	} else {
		agg.partiallyLocked = append(agg.partiallyLocked, LockedAccount{
			Account:     entry.Account,
			StillLocked: outcome.StillLocked,
		})
	}
	return nil
}

// Merge folds other into agg. Partially locked rows are appended as they
// are, so merging chunk accumulators in chunk order reproduces the row order
// of a sequential fold.
func (agg *Accumulator) Merge(other *Accumulator) {
	agg.totalReleased.Add(agg.totalReleased, other.totalReleased)
	agg.totalStillLocked.Add(agg.totalStillLocked, other.totalStillLocked)
	agg.fullyReleased = agg.fullyReleased.Union(other.fullyReleased)
	agg.partiallyLocked = append(agg.partiallyLocked, other.partiallyLocked...)
	agg.accounts += other.accounts
	agg.schedules += other.schedules
}

// Report detaches a copy of the accumulated state.
func (agg *Accumulator) Report() *Report {
	return &Report{
		ReferenceBlock:   new(big.Int).Set(agg.referenceBlock),
		FullyReleased:    agg.fullyReleased.Clone(),
		PartiallyLocked:  slices.Clone(agg.partiallyLocked),
		TotalReleased:    new(big.Int).Set(agg.totalReleased),
		TotalStillLocked: new(big.Int).Set(agg.totalStillLocked),
		Accounts:         agg.accounts,
		Schedules:        agg.schedules,
	}
}

// Aggregate folds all entries sequentially.
func Aggregate(entries []Entry, referenceBlock *big.Int) (*Report, error) {
	agg := NewAccumulator(referenceBlock)
	for _, entry := range entries {
		if err := agg.Add(entry); err != nil {
			return nil, err
		}
	}
	return agg.Report(), nil
}

// AggregateParallel splits entries into contiguous chunks, folds every chunk
// on its own goroutine and merges the chunk accumulators in chunk order. The
// result is identical to Aggregate over the same input.
func AggregateParallel(entries []Entry, referenceBlock *big.Int, workers int) (*Report, error) {
	if workers < 2 || len(entries) <= workers {
		return Aggregate(entries, referenceBlock)
	}
	chunk_size := (len(entries) + workers - 1) / workers
	num_chunks := (len(entries) + chunk_size - 1) / chunk_size
	accs := make([]*Accumulator, num_chunks)
	errs := make([]error, num_chunks)

	var wg sync.WaitGroup
	for idx := 0; idx < num_chunks; idx++ {
		begin := idx * chunk_size
		end := begin + chunk_size
		if end > len(entries) {
			end = len(entries)
		}
		accs[idx] = NewAccumulator(referenceBlock)
		wg.Add(1)
		go func(acc *Accumulator, part []Entry, slot *error) {
			defer wg.Done()
			for _, entry := range part {
				if err := acc.Add(entry); err != nil {
					*slot = err
					return
				}
			}
		}(accs[idx], entries[begin:end], &errs[idx])
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	result := accs[0]
	for _, acc := range accs[1:] {
		result.Merge(acc)
	}
	return result.Report(), nil
}
