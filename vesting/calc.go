package vesting

import "math/big"

// ComputeSchedule evaluates one schedule against the reference block.
// Released grows by PerBlock for every block past StartingBlock and is capped
// at Locked; StillLocked is the remainder. The outcome owns its values, the
// schedule and the reference block are never written to.
func ComputeSchedule(schedule Schedule, referenceBlock *big.Int) ScheduleOutcome {
	released := new(big.Int)
	if referenceBlock.Cmp(schedule.StartingBlock) > 0 {
		released.Sub(referenceBlock, schedule.StartingBlock)
		released.Mul(released, schedule.PerBlock)
	}
	if released.Cmp(schedule.Locked) > 0 {
		released.Set(schedule.Locked)
	}
	still_locked := new(big.Int).Sub(schedule.Locked, released)
	return ScheduleOutcome{Released: released, StillLocked: still_locked}
}

// ComputeAccount sums schedule outcomes for one account. The account counts
// as fully released only if no schedule has anything left; with no schedules
// at all the totals are zero and FullyReleased holds vacuously.
func ComputeAccount(entry Entry, referenceBlock *big.Int) AccountOutcome {
	outcome := AccountOutcome{
		Released:      new(big.Int),
		StillLocked:   new(big.Int),
		FullyReleased: true,
	}
	for _, schedule := range entry.Schedules {
		res := ComputeSchedule(schedule, referenceBlock)
		outcome.Released.Add(outcome.Released, res.Released)
		outcome.StillLocked.Add(outcome.StillLocked, res.StillLocked)
		if res.StillLocked.Sign() != 0 {
			outcome.FullyReleased = false
		}
	}
	return outcome
}
