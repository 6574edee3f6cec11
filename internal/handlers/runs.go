package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/models"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/service"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/workload"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"
	errListRuns    = "failed to load runs"
	errRunFailed   = "run failed"
	errRunDeferred = "run deferred: intensity above threshold"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// isDateOnly reports whether the query string has no time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2026-08-27T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}

// bindTimeFilter parses optional from/to query params into a LogFilter,
// answering the request itself on validation failure. A date-only 'to' is
// widened to end-of-day inclusive.
func (h *Handler) bindTimeFilter(c *gin.Context) (service.LogFilter, bool) {
	var filter service.LogFilter

	if qs := c.Query("from"); qs != "" {
		t, err := parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return filter, false
		}
		filter.From = t
	}
	if qs := c.Query("to"); qs != "" {
		t, err := parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return filter, false
		}
		if isDateOnly(qs) {
			t = t.Add(24*time.Hour - time.Nanosecond).UTC()
		}
		filter.To = t
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.From.After(filter.To) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be <= 'to'"})
		return filter, false
	}
	return filter, true
}

// Request DTO for a measured run.
type runRequest struct {
	Mode                string  `json:"mode" binding:"required,oneof=baseline optimized"`
	Seed                int64   `json:"seed"`
	ThresholdGCO2PerKWh float64 `json:"threshold_gco2_per_kwh" binding:"required,gte=0"`
	DeferSeconds        int     `json:"defer_seconds" binding:"omitempty,gte=0"`
	HorizonHours        int     `json:"horizon_hours" binding:"omitempty,gte=0"`
	WaitForGreen        bool    `json:"wait_for_green"`
	Task                string  `json:"task"`
	Notes               string  `json:"notes"`
}

// @Summary      Execute one measured training run
// @Description  Evaluates the policy, optionally defers, then runs the built-in training workload under energy measurement and records the evidence row. With wait_for_green and no defer_seconds, an above-threshold reading returns 409 without running.
// @Tags         runs
// @Accept       json
// @Produce      json
// @Param        body  body  runRequest  true  "Run request"
// @Success      200  {object}  models.RunRecord
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/run [post]
// @Security     BearerAuth
func (h *Handler) postRun(c *gin.Context) {
	var input runRequest
	if !h.bindJSON(c, &input) {
		return
	}

	task := input.Task
	if task == "" {
		task = "regression"
	}

	record, err := h.services.Runner.RunOnce(c.Request.Context(), service.RunParams{
		Policy: models.SchedulingPolicy{
			ThresholdGCO2PerKWh: input.ThresholdGCO2PerKWh,
			DeferSeconds:        input.DeferSeconds,
			HorizonHours:        input.HorizonHours,
		},
		Job:          workload.Job(workload.Mode(input.Mode), input.Seed),
		WaitForGreen: input.WaitForGreen,
		Phase:        input.Mode,
		Task:         task,
		Dataset:      "synthetic",
		Hardware:     workload.DetectHardware(),
		Notes:        input.Notes,
		MetricName:   "MAE",
		MetricFrom: func(result any) (float64, bool) {
			r, ok := result.(workload.Result)
			return r.MAE, ok
		},
	})
	if err != nil {
		if errors.Is(err, service.ErrDeferred) {
			c.JSON(http.StatusConflict, gin.H{"error": errRunDeferred})
			return
		}
		h.providerErrorJSON(c, errRunFailed, "run_failed", err, "mode", input.Mode)
		return
	}
	c.JSON(http.StatusOK, record)
}

// @Summary      List evidence runs
// @Description  Completed runs with energy/emissions figures. Filter by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD').
// @Tags         runs
// @Produce      json
// @Param        from  query  string  false  "Start of range"  example(2026-08-01)
// @Param        to    query  string  false  "End of range. Date-only treated as end of day."  example(2026-08-31)
// @Success      200  {object}  map[string]interface{}  "count, runs"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/runs [get]
// @Security     BearerAuth
func (h *Handler) listRuns(c *gin.Context) {
	filter, ok := h.bindTimeFilter(c)
	if !ok {
		return
	}

	runs, err := h.services.Evidence.Runs(c.Request.Context(), filter)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("runs_list_failed", "err", err, "from", filter.From, "to", filter.To)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": errListRuns})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(runs),
		"runs":  runs,
	})
}
