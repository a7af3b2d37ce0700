package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"searchlens/internal/analytics"
	"searchlens/internal/periods"
	"searchlens/internal/session"
	"searchlens/internal/urlists"
)

// HeaderSessionID names the report session a request runs under.
const HeaderSessionID = "X-Session-ID"

const (
	defaultPeriod      = "30"
	defaultPeriodCount = 1

	exportTableMetrics = "metrics"
	exportTableSummary = "summary"
)

// CompareRequest is the body of a comparison report request. Fields left
// empty are filled from the request's session when one is named, so a client
// that already chose its property and URLs can send an almost empty body.
type CompareRequest struct {
	Site    string   `json:"site"`
	URLs    []string `json:"urls"`
	List    string   `json:"list"`
	Period  string   `json:"period"`
	Periods int      `json:"periods"`
}

// WindowView is one report window in API responses.
type WindowView struct {
	Label     string `json:"label"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type compareParams struct {
	Site     string
	URLs     []string
	Selector string
	Count    int
	Windows  []periods.Window
}

// resolveCompareParams merges the request body, the named session and the
// defaults into a runnable report request. Validation failures come back as
// typed errors so serviceError can pick the status code.
func resolveCompareParams(deps Deps, c *fiber.Ctx) (*compareParams, error) {
	var req CompareRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, periods.NewInvalidArgumentError("malformed request body")
	}

	if sid := c.Get(HeaderSessionID); sid != "" {
		sess, err := deps.Sessions.Get(sid)
		if err != nil {
			return nil, err
		}
		if req.Site == "" {
			req.Site = sess.Property
		}
		if len(req.URLs) == 0 && req.List == "" {
			req.URLs = sess.URLs
		}
		if req.Period == "" {
			req.Period = sess.Selector
		}
		if req.Periods == 0 {
			req.Periods = sess.PeriodCount
		}
	}

	if req.Period == "" {
		req.Period = defaultPeriod
	}
	if req.Periods == 0 {
		req.Periods = defaultPeriodCount
	}
	if req.Periods > deps.Config.MaxPeriods {
		deps.Logger.Debug("Clamping period count",
			slog.Int("requested", req.Periods),
			slog.Int("max", deps.Config.MaxPeriods))
		req.Periods = deps.Config.MaxPeriods
	}

	if req.Site == "" {
		return nil, periods.NewInvalidArgumentError("site is required")
	}

	urls := req.URLs
	if len(urls) == 0 && req.List != "" {
		list, err := urlists.GetListByName(deps.DB, req.List)
		if err != nil {
			return nil, err
		}
		urls = list.Entries()
	}
	if len(urls) == 0 {
		return nil, periods.NewInvalidArgumentError("urls or list is required")
	}

	selector, err := periods.ParseSelector(req.Period)
	if err != nil {
		return nil, err
	}
	windows, err := periods.NewPlanner().Plan(selector, req.Periods)
	if err != nil {
		return nil, err
	}

	return &compareParams{
		Site:     req.Site,
		URLs:     urls,
		Selector: req.Period,
		Count:    req.Periods,
		Windows:  windows,
	}, nil
}

// ReportCompareAction runs the multi-period comparison report.
func ReportCompareAction(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		params, err := resolveCompareParams(deps, c)
		if err != nil {
			return serviceError(c, deps.Logger, err)
		}

		start := time.Now()
		table, err := analytics.Aggregate(c.UserContext(), deps.Search, deps.Logger, params.Site, params.URLs, params.Windows)
		deps.Metrics.ObserveReportDuration(time.Since(start).Seconds())
		if err != nil {
			return serviceError(c, deps.Logger, err)
		}

		rememberSession(deps, c, params)

		return c.JSON(fiber.Map{
			"windows": windowViews(table),
			"rows":    table.Pages,
			"summary": analytics.Summarize(table),
			"changes": analytics.Changes(table),
		})
	}
}

// ReportExportAction runs the comparison report and streams one of its tables
// as a CSV download. The table query parameter picks metrics or summary.
func ReportExportAction(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tableName := c.Query("table", exportTableMetrics)
		if tableName != exportTableMetrics && tableName != exportTableSummary {
			return invalidArgument(c, fmt.Sprintf("unknown export table %q", tableName))
		}

		params, err := resolveCompareParams(deps, c)
		if err != nil {
			return serviceError(c, deps.Logger, err)
		}

		start := time.Now()
		table, err := analytics.Aggregate(c.UserContext(), deps.Search, deps.Logger, params.Site, params.URLs, params.Windows)
		deps.Metrics.ObserveReportDuration(time.Since(start).Seconds())
		if err != nil {
			return serviceError(c, deps.Logger, err)
		}

		rememberSession(deps, c, params)

		var rows [][]string
		filename := "gsc_url_metrics.csv"
		if tableName == exportTableSummary {
			rows = analytics.BuildSummaryTable(analytics.Summarize(table))
			filename = "gsc_summary.csv"
		} else {
			rows = analytics.BuildMainTable(table)
		}

		return sendCSV(c, deps.Logger, filename, rows)
	}
}

func windowViews(table *analytics.WideTable) []WindowView {
	views := make([]WindowView, len(table.Windows))
	for i, w := range table.Windows {
		views[i] = WindowView{
			Label:     table.Labels[i],
			StartDate: w.StartDate(),
			EndDate:   w.EndDate(),
		}
	}
	return views
}

// rememberSession writes the effective report parameters back to the named
// session so follow-up requests can omit them. Best effort: a session that
// expired mid-request only costs the client its saved context.
func rememberSession(deps Deps, c *fiber.Ctx, params *compareParams) {
	sid := c.Get(HeaderSessionID)
	if sid == "" {
		return
	}

	if _, err := deps.Sessions.Update(sid, func(s *session.Session) {
		s.Property = params.Site
		s.URLs = params.URLs
		s.Selector = params.Selector
		s.PeriodCount = params.Count
	}); err != nil {
		deps.Logger.Debug("Failed to update session after report", slog.Any("error", err))
	}
}

func sendCSV(c *fiber.Ctx, logger *slog.Logger, filename string, rows [][]string) error {
	var buf bytes.Buffer
	if err := analytics.WriteCSV(&buf, rows); err != nil {
		return serviceError(c, logger, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(buf.Bytes())
}
