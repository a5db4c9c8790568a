package handlers

import (
	"net/http"

	"awareness_bell/internal/service"

	"github.com/gin-gonic/gin"
)

// Response statuses for the control endpoints.
const (
	statusOK             = "ok"
	statusStarted        = "started"
	statusStopped        = "stopped"
	statusAlreadyRunning = "already_running"
	statusNotRunning     = "not_running"

	errStartBell = "failed to start bell"
	errStopBell  = "failed to stop bell"
	errGetState  = "failed to load state"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...any) {
	if h.log != nil && err != nil {
		fields := append([]any{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Respond with a status and include current state if available (best-effort).
func (h *Handler) respondWithStatusAndState(c *gin.Context, status string, ack service.Ack) {
	resp := gin.H{"status": status, "ack": ack}
	if st, err := h.services.Monitoring.GetState(c.Request.Context()); err == nil {
		resp["state"] = st
	}
	c.JSON(http.StatusOK, resp)
}

// ackStatus maps an Ack to the user-facing status for the requested transition.
func ackStatus(ack service.Ack, transitioned, already string) string {
	if ack == service.AckAlreadyInState {
		return already
	}
	return transitioned
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Start the bell
// @Description  Idempotent: a second start reports already_running.
// @Tags         bell
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, ack, state"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/bell/start [post]
// @Security     BearerAuth
func (h *Handler) startBell(c *gin.Context) {
	ack, err := h.services.Bell.Start(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errStartBell, "bell_start_failed", err)
		return
	}
	h.respondWithStatusAndState(c, ackStatus(ack, statusStarted, statusAlreadyRunning), ack)
}

// @Summary      Stop the bell
// @Description  Idempotent: a second stop reports not_running. An in-flight tone finishes.
// @Tags         bell
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, ack, state"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/bell/stop [post]
// @Security     BearerAuth
func (h *Handler) stopBell(c *gin.Context) {
	ack, err := h.services.Bell.Stop(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errStopBell, "bell_stop_failed", err)
		return
	}
	h.respondWithStatusAndState(c, ackStatus(ack, statusStopped, statusNotRunning), ack)
}

// @Summary      Get bell state
// @Tags         bell
// @Produce      json
// @Success      200  {object}  models.BellState
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/bell/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "bell_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}
