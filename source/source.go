package source

import (
	"context"
	"math/big"

	"vesting-audit/vesting"
)

// Source yields the inputs of one audit run: the finalized block the
// calculation is pinned to and the vesting schedule table grouped by
// account. Implementations return entries in a stable account order so
// repeated runs over the same data produce identical reports.
type Source interface {
	ReferenceBlock(ctx context.Context) (*big.Int, error)
	VestingEntries(ctx context.Context) ([]vesting.Entry, error)
	AccountEntry(ctx context.Context, account vesting.AccountID) (*vesting.Entry, error)
	Close()
}
