package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	errInvalidHorizon = "invalid 'horizon' hours; must be an integer >= 0"
	errGetIntensity   = "failed to obtain intensity reading"
)

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary      Current carbon intensity
// @Description  Latest observed reading, or the minimum-intensity forecast window within 'horizon' hours when horizon > 0.
// @Tags         intensity
// @Produce      json
// @Param        horizon  query  int  false  "Forecast horizon in hours"  example(12)
// @Success      200  {object}  models.IntensityReading
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/intensity [get]
// @Security     BearerAuth
func (h *Handler) getIntensity(c *gin.Context) {
	ctx := c.Request.Context()

	horizon := 0
	if qs := c.Query("horizon"); qs != "" {
		v, err := strconv.Atoi(qs)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidHorizon})
			return
		}
		horizon = v
	}

	reading, err := h.services.Monitor.Lookup(ctx, horizon)
	if err != nil {
		h.providerErrorJSON(c, errGetIntensity, "intensity_lookup_failed", err, "horizon", horizon)
		return
	}
	c.JSON(http.StatusOK, reading)
}
