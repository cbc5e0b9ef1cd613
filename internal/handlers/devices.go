package handlers

import (
	"net/http"

	"nexadomus/internal/models"
	"nexadomus/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	errGetState        = "failed to load state"
	errRefreshStatus   = "failed to refresh status"
	errListDevices     = "failed to list devices"
	errSendCommand     = "failed to send command"
	errInvalidBodyPref = "invalid body: "
)

// CommandRequest is the payload of a device command.
type CommandRequest struct {
	// Action for the device kind, e.g. open, close, toggle, on, off, set, or a raw relay command for custom
	Action string `json:"action" binding:"required" example:"open"`
	// Optional parameters, e.g. brightness or duration_seconds
	Parameters map[string]string `json:"parameters,omitempty"`
}

// CommandResponse reports how a command was delivered.
type CommandResponse struct {
	// executed_locally | relayed_unconfirmed | failed
	Status  string                `json:"status" example:"executed_locally"`
	Outcome models.CommandOutcome `json:"outcome"`
}

func newCommandResponse(out models.CommandOutcome) CommandResponse {
	return CommandResponse{Status: out.Classification(), Outcome: out}
}

// outcomeStatus is 202 for relayed commands since the controller never confirmed them.
func outcomeStatus(out models.CommandOutcome) int {
	if out.Classification() == models.ClassRelayedUnconfirmed {
		return http.StatusAccepted
	}
	return http.StatusOK
}

// writeOutcome writes a routed command's result. Failures carry the mapped
// error status and the outcome so callers see the attempted path and mode.
func (h *Handler) writeOutcome(c *gin.Context, out models.CommandOutcome, err error, logKey string) {
	if err != nil {
		h.log.Warnw(logKey, "err", err, "mode", out.Mode, "path", out.PathUsed)
		c.JSON(httpStatusFor(err), gin.H{
			"status":     models.ClassFailed,
			"outcome":    out,
			"error":      err.Error(),
			"error_kind": models.KindOf(err),
		})
		return
	}
	c.JSON(outcomeStatus(out), newCommandResponse(out))
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

// @Summary      Send a device command
// @Description  Routes the command over the local controller when reachable, otherwise through the relay.
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        kind  path   string          true  "Device kind"  Enums(garage,lights,sprinklers,climate,custom)
// @Param        body  body   CommandRequest  true  "Command payload"
// @Success      200   {object}  CommandResponse  "executed locally"
// @Success      202   {object}  CommandResponse  "relayed, unconfirmed"
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]interface{}
// @Failure      503   {object}  map[string]interface{}
// @Failure      504   {object}  map[string]interface{}
// @Router       /api/v1/devices/{kind}/command [post]
func (h *Handler) sendCommand(c *gin.Context) {
	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	cmd, err := service.ParseCommand(c.Param("kind"), req.Action, req.Parameters)
	if err != nil {
		h.respondError(c, errSendCommand, "command_rejected", err, "kind", c.Param("kind"))
		return
	}
	out, err := h.services.Devices.Control(c.Request.Context(), cmd)
	h.writeOutcome(c, out, err, "command_failed")
}

// @Summary      List attached devices
// @Description  Reads the controller's device listing. Only available on the local network.
// @Tags         devices
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, devices"
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/devices [get]
func (h *Handler) listDevices(c *gin.Context) {
	devices, err := h.services.Status.ListDevices(c.Request.Context())
	if err != nil {
		h.respondError(c, errListDevices, "devices_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(devices),
		"devices": devices,
	})
}

// @Summary      Refresh controller status
// @Description  Polls /status once and writes the result through to the state cache.
// @Tags         status
// @Produce      json
// @Success      200  {object}  models.DeviceStatus
// @Failure      502  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/status/refresh [post]
func (h *Handler) refreshStatus(c *gin.Context) {
	st, err := h.services.Status.Refresh(c.Request.Context())
	if err != nil {
		h.respondError(c, errRefreshStatus, "status_refresh_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Get combined state
// @Description  Cached device states, countdown, schedule and both connectivity views. Never touches the network.
// @Tags         status
// @Produce      json
// @Success      200  {object}  models.StateSnapshot
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/state [get]
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}
