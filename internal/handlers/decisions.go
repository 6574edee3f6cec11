package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/models"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/provider"
)

const (
	errDecide        = "failed to make scheduling decision"
	errListDecisions = "failed to load decisions"
)

// Request DTO for a decision evaluation.
type decisionRequest struct {
	ThresholdGCO2PerKWh float64 `json:"threshold_gco2_per_kwh" binding:"required,gte=0"`
	DeferSeconds        int     `json:"defer_seconds" binding:"omitempty,gte=0"`
	HorizonHours        int     `json:"horizon_hours" binding:"omitempty,gte=0"`
}

// providerErrorJSON logs err and maps it to a status: upstream source
// failures are 502, local data problems 400, everything else 500.
func (h *Handler) providerErrorJSON(c *gin.Context, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}

	var (
		provErr *provider.ProviderError
		dataErr *provider.DataError
	)
	switch {
	case errors.As(err, &provErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": userMsg, "detail": provErr.Error()})
	case errors.As(err, &dataErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": userMsg, "detail": dataErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": userMsg})
	}
}

// @Summary      Evaluate a scheduling policy
// @Description  Obtains one intensity reading and returns a run/defer decision; the decision is appended to the decision log.
// @Tags         decisions
// @Accept       json
// @Produce      json
// @Param        body  body  decisionRequest  true  "Policy to evaluate"
// @Success      200  {object}  models.Decision
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/decision [post]
// @Security     BearerAuth
func (h *Handler) postDecision(c *gin.Context) {
	var input decisionRequest
	if !h.bindJSON(c, &input) {
		return
	}

	policy := models.SchedulingPolicy{
		ThresholdGCO2PerKWh: input.ThresholdGCO2PerKWh,
		DeferSeconds:        input.DeferSeconds,
		HorizonHours:        input.HorizonHours,
	}

	decision, err := h.services.Scheduling.Decide(c.Request.Context(), policy)
	if err != nil {
		h.providerErrorJSON(c, errDecide, "decision_failed", err, "policy", policy)
		return
	}
	c.JSON(http.StatusOK, decision)
}

// @Summary      List scheduling decisions
// @Description  Filter by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). A date-only 'to' is treated as end-of-day inclusive.
// @Tags         decisions
// @Produce      json
// @Param        from  query  string  false  "Start of range"  example(2026-08-01)
// @Param        to    query  string  false  "End of range"    example(2026-08-31)
// @Success      200  {object}  map[string]interface{}  "count, decisions"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/decisions [get]
// @Security     BearerAuth
func (h *Handler) listDecisions(c *gin.Context) {
	filter, ok := h.bindTimeFilter(c)
	if !ok {
		return
	}

	decisions, err := h.services.Evidence.Decisions(c.Request.Context(), filter)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("decisions_list_failed", "err", err, "from", filter.From, "to", filter.To)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": errListDecisions})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":     len(decisions),
		"decisions": decisions,
	})
}
