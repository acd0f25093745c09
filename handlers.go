package main

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/swagger"
	"github.com/sirupsen/logrus"

	"vesting-audit/vesting"
)

type AccountRequest struct {
	Address string `query:"address"`
}

// ScheduleView is one schedule row of an account together with the amounts
// derived from it at the reference block. All amounts are base units.
type ScheduleView struct {
	Locked        string `json:"locked"`
	PerBlock      string `json:"per_block"`
	StartingBlock string `json:"starting_block"`
	Released      string `json:"released"`
	StillLocked   string `json:"still_locked"`
}

type LockedAccountView struct {
	Account            string `json:"account"`
	StillLocked        string `json:"still_locked"`
	StillLockedDisplay string `json:"still_locked_display"`
}

type ReportResponse struct {
	ReferenceBlock          string              `json:"reference_block"`
	Accounts                int                 `json:"accounts"`
	Schedules               int                 `json:"schedules"`
	FullyReleased           []string            `json:"fully_released"`
	PartiallyLocked         []LockedAccountView `json:"partially_locked"`
	TotalReleased           string              `json:"total_released"`
	TotalReleasedDisplay    string              `json:"total_released_display"`
	TotalStillLocked        string              `json:"total_still_locked"`
	TotalStillLockedDisplay string              `json:"total_still_locked_display"`
}

type AccountResponse struct {
	Account            string         `json:"account"`
	ReferenceBlock     string         `json:"reference_block"`
	FullyReleased      bool           `json:"fully_released"`
	Released           string         `json:"released"`
	ReleasedDisplay    string         `json:"released_display"`
	StillLocked        string         `json:"still_locked"`
	StillLockedDisplay string         `json:"still_locked_display"`
	Schedules          []ScheduleView `json:"schedules"`
}

func buildReportResponse(rep *vesting.Report) ReportResponse {
	fully_released := make([]string, 0, rep.FullyReleased.Cardinality())
	for _, account := range rep.FullyReleased.ToSlice() {
		fully_released = append(fully_released, string(account))
	}
	slices.Sort(fully_released)

	partially_locked := make([]LockedAccountView, 0, len(rep.PartiallyLocked))
	for _, row := range rep.PartiallyLocked {
		partially_locked = append(partially_locked, LockedAccountView{
			Account:            string(row.Account),
			StillLocked:        row.StillLocked.String(),
			StillLockedDisplay: vesting.DisplayUnits(row.StillLocked),
		})
	}

	return ReportResponse{
		ReferenceBlock:          rep.ReferenceBlock.String(),
		Accounts:                rep.Accounts,
		Schedules:               rep.Schedules,
		FullyReleased:           fully_released,
		PartiallyLocked:         partially_locked,
		TotalReleased:           rep.TotalReleased.String(),
		TotalReleasedDisplay:    vesting.DisplayUnits(rep.TotalReleased),
		TotalStillLocked:        rep.TotalStillLocked.String(),
		TotalStillLockedDisplay: vesting.DisplayUnits(rep.TotalStillLocked),
	}
}

// @summary		Get Vesting Report
// @description	Audit every account with a vesting schedule at the latest finalized block.
// @id	api_v1_get_vesting_report
// @tags	vesting
// @Accept       json
// @Produce      json
// @success		200	{object}	ReportResponse
// @failure		400	{object}	vesting.AuditError
// @router			/api/v1/vestingReport [get]
func GetVestingReport(c *fiber.Ctx) error {
	ctx := context.Background()

	reference_block, err := src.ReferenceBlock(ctx)
	if err != nil {
		return err
	}
	entries, err := src.VestingEntries(ctx)
	if err != nil {
		return err
	}

	rep, err := vesting.AggregateParallel(entries, reference_block, settings.Workers)
	if err != nil {
		return err
	}
	return c.JSON(buildReportResponse(rep))
}

// @summary Get Account
// @description Returns the vesting schedules of one account with released and still locked amounts.
// @id api_v1_get_account
// @tags	vesting
// @Accept       json
// @Produce      json
// @success		200	{object}	AccountResponse
// @failure		400	{object}	vesting.AuditError
// @param	address	query	string	true	"Account to audit."
// @router			/api/v1/account [get]
func GetAccount(c *fiber.Ctx) error {
	acc_req := AccountRequest{}
	if err := c.QueryParser(&acc_req); err != nil {
		return vesting.AuditError{Code: 422, Message: err.Error()}
	}
	if len(acc_req.Address) == 0 {
		return vesting.AuditError{Code: 422, Message: "address is required"}
	}

	ctx := context.Background()

	reference_block, err := src.ReferenceBlock(ctx)
	if err != nil {
		return err
	}
	entry, err := src.AccountEntry(ctx, vesting.AccountID(acc_req.Address))
	if err != nil {
		return err
	}

	outcome := vesting.ComputeAccount(*entry, reference_block)
	acc_resp := AccountResponse{
		Account:            string(entry.Account),
		ReferenceBlock:     reference_block.String(),
		FullyReleased:      outcome.FullyReleased,
		Released:           outcome.Released.String(),
		ReleasedDisplay:    vesting.DisplayUnits(outcome.Released),
		StillLocked:        outcome.StillLocked.String(),
		StillLockedDisplay: vesting.DisplayUnits(outcome.StillLocked),
		Schedules:          make([]ScheduleView, 0, len(entry.Schedules)),
	}
	for _, schedule := range entry.Schedules {
		res := vesting.ComputeSchedule(schedule, reference_block)
		acc_resp.Schedules = append(acc_resp.Schedules, ScheduleView{
			Locked:        schedule.Locked.String(),
			PerBlock:      schedule.PerBlock.String(),
			StartingBlock: schedule.StartingBlock.String(),
			Released:      res.Released.String(),
			StillLocked:   res.StillLocked.String(),
		})
	}
	return c.JSON(acc_resp)
}

func HealthCheck(c *fiber.Ctx) error {
	return c.Status(200).SendString("OK")
}

func ErrorHandlerFunc(ctx *fiber.Ctx, err error) error {
	switch e := err.(type) {
	case vesting.AuditError:
		if e.Code != 404 {
			logger.WithFields(logrus.Fields{
				"code":    e.Code,
				"path":    ctx.Path(),
				"queries": ctx.Queries(),
			}).Error(err.Error())
		}
		return ctx.Status(e.Code).JSON(e)
	default:
		logger.WithFields(logrus.Fields{
			"path":    ctx.Path(),
			"queries": ctx.Queries(),
		}).Error(err.Error())
		resp := map[string]string{}
		resp["error"] = fmt.Sprintf("internal server error: %s", err.Error())
		return ctx.Status(fiber.StatusInternalServerError).JSON(resp)
	}
}

func setupApp() *fiber.App {
	config := fiber.Config{
		AppName:      "Vesting Audit API",
		Concurrency:  256 * 1024,
		Prefork:      settings.Prefork,
		ErrorHandler: ErrorHandlerFunc,
	}
	app := fiber.New(config)

	app.Use("/api/v1/", func(c *fiber.Ctx) error {
		c.Accepts("application/json")
		start := time.Now()
		err := c.Next()
		stop := time.Now()
		c.Append("Server-timing", fmt.Sprintf("app;dur=%v", stop.Sub(start).String()))
		return err
	})
	if settings.Debug {
		app.Use(pprof.New())
	}

	// healthcheck
	app.Get("/healthcheck", HealthCheck)

	// report
	app.Get("/api/v1/vestingReport", GetVestingReport)
	app.Get("/api/v1/account", GetAccount)

	// swagger
	var swagger_config = swagger.Config{
		Title:           "Vesting Audit (" + settings.InstanceName + ") - Swagger UI",
		Layout:          "BaseLayout",
		DeepLinking:     true,
		TryItOutEnabled: true,
	}
	app.Get("/api/v1/*", swagger.New(swagger_config))
	return app
}
