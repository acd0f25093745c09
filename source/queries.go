package source

import (
	"context"
	"fmt"
	"strings"

	"vesting-audit/vesting"
)

type ScheduleRequest struct {
	Account []vesting.AccountID
}

// VestingEntries reads the whole schedule table grouped by account, in
// account order.
func (db *DbClient) VestingEntries(ctx context.Context) ([]vesting.Entry, error) {
	query := buildSchedulesQuery(ScheduleRequest{})
	return db.queryEntriesImpl(ctx, query)
}

// AccountEntry reads the schedule set of a single account.
func (db *DbClient) AccountEntry(ctx context.Context, account vesting.AccountID) (*vesting.Entry, error) {
	query := buildSchedulesQuery(ScheduleRequest{Account: []vesting.AccountID{account}})
	entries, err := db.queryEntriesImpl(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, vesting.AuditError{Code: 404, Message: fmt.Sprintf("account %s has no vesting schedules", account)}
	}
	return &entries[0], nil
}

func buildSchedulesQuery(sched_req ScheduleRequest) string {
	clmn_query := `S.account, S.locked::text, S.per_block::text, S.starting_block::text`
	from_query := `vesting_schedules S`
	filter_list := []string{}
	filter_query := ``
	orderby_query := ` ORDER BY S.account ASC, S.idx ASC`

	if len(sched_req.Account) > 0 {
		filter_list = append(filter_list, filterByAccounts(`S.account`, sched_req.Account))
	}
	if len(filter_list) > 0 {
		filter_query = ` WHERE ` + strings.Join(filter_list, " AND ")
	}

	query := `SELECT ` + clmn_query
	query += ` FROM ` + from_query
	query += filter_query
	query += orderby_query
	return query
}

func filterByAccounts(clmn string, accounts []vesting.AccountID) string {
	quoted := make([]string, 0, len(accounts))
	for _, account := range accounts {
		quoted = append(quoted, fmt.Sprintf("'%s'", strings.ReplaceAll(string(account), `'`, `''`)))
	}
	return fmt.Sprintf("%s IN (%s)", clmn, strings.Join(quoted, ","))
}

func (db *DbClient) queryEntriesImpl(ctx context.Context, query string) ([]vesting.Entry, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, vesting.AuditError{Code: 500, Message: err.Error()}
	}
	defer conn.Release()

	ctx, cancel_ctx := context.WithTimeout(ctx, db.settings.Timeout)
	defer cancel_ctx()

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, vesting.AuditError{Code: 500, Message: err.Error()}
	}
	defer rows.Close()

	entries := []vesting.Entry{}
	for rows.Next() {
		var (
			account        string
			locked         *string
			per_block      *string
			starting_block *string
		)
		if err := rows.Scan(&account, &locked, &per_block, &starting_block); err != nil {
			return nil, vesting.AuditError{Code: 500, Message: err.Error()}
		}
		schedule, err := scanSchedule(vesting.AccountID(account), locked, per_block, starting_block)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 || entries[len(entries)-1].Account != vesting.AccountID(account) {
			entries = append(entries, vesting.Entry{Account: vesting.AccountID(account)})
		}
		last := &entries[len(entries)-1]
		last.Schedules = append(last.Schedules, schedule)
	}
	if rows.Err() != nil {
		return nil, vesting.AuditError{Code: 500, Message: rows.Err().Error()}
	}
	return entries, nil
}

// scanSchedule validates one schedule row. NULLs and values that do not
// parse as non-negative integers fail the audit right here.
func scanSchedule(account vesting.AccountID, locked *string, per_block *string, starting_block *string) (vesting.Schedule, error) {
	if locked == nil {
		return vesting.Schedule{}, vesting.MalformedScheduleError{Account: account, Field: "locked", Value: "NULL"}
	}
	if per_block == nil {
		return vesting.Schedule{}, vesting.MalformedScheduleError{Account: account, Field: "per_block", Value: "NULL"}
	}
	if starting_block == nil {
		return vesting.Schedule{}, vesting.MalformedScheduleError{Account: account, Field: "starting_block", Value: "NULL"}
	}
	return vesting.NewSchedule(account, *locked, *per_block, *starting_block)
}

var _ Source = (*DbClient)(nil)
