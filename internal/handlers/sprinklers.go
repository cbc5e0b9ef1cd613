package handlers

import (
	"errors"
	"io"
	"net/http"

	"nexadomus/internal/models"
	"nexadomus/internal/schedule"

	"github.com/gin-gonic/gin"
)

const (
	errSprinklersOn = "failed to start sprinklers"
	errGetSchedule  = "failed to load schedule"
	errSaveSchedule = "failed to save schedule"
	errGetManual    = "failed to load manual duration"
	errSaveManual   = "failed to save manual duration"
)

// SprinklersOnRequest is the optional payload of a timed run. Omit it to use
// the stored manual duration.
type SprinklersOnRequest struct {
	Minutes *int `json:"minutes,omitempty" binding:"omitempty,min=0" example:"5"`
	Seconds *int `json:"seconds,omitempty" binding:"omitempty,min=0,max=59" example:"0"`
}

func (r SprinklersOnRequest) duration() *models.ManualDuration {
	if r.Minutes == nil && r.Seconds == nil {
		return nil
	}
	var d models.ManualDuration
	if r.Minutes != nil {
		d.Minutes = *r.Minutes
	}
	if r.Seconds != nil {
		d.Seconds = *r.Seconds
	}
	return &d
}

// ManualDurationRequest is the payload for storing the manual run length.
type ManualDurationRequest struct {
	Minutes *int `json:"minutes" binding:"required,min=0" example:"5"`
	Seconds *int `json:"seconds" binding:"required,min=0,max=59" example:"0"`
}

// ManualDurationResponse is the stored manual run length.
type ManualDurationResponse struct {
	Minutes   int    `json:"minutes" example:"5"`
	Seconds   int    `json:"seconds" example:"0"`
	Formatted string `json:"formatted" example:"5 minutes"`
}

func newManualDurationResponse(d models.ManualDuration) ManualDurationResponse {
	return ManualDurationResponse{Minutes: d.Minutes, Seconds: d.Seconds, Formatted: schedule.FormatDuration(d.TotalSeconds())}
}

// ScheduleResponse is the stored weekly schedule with its display summary.
type ScheduleResponse struct {
	Schedule models.ScheduleEntry `json:"schedule"`
	Summary  string               `json:"summary" example:"Mon, Wed\n6:00:00 AM for 1 hour"`
	// Present on PUT: how the controller push went
	Push *CommandResponse `json:"push,omitempty"`
}

// @Summary      Turn sprinklers on
// @Description  Starts a timed run. The body is optional; without it the stored manual duration is used. A zero duration runs until turned off.
// @Tags         sprinklers
// @Accept       json
// @Produce      json
// @Param        body  body   SprinklersOnRequest  false  "Run length"
// @Success      200   {object}  map[string]interface{}  "status, outcome, timer"
// @Success      202   {object}  map[string]interface{}  "status, outcome, timer"
// @Failure      400   {object}  map[string]string
// @Failure      503   {object}  map[string]interface{}
// @Router       /api/v1/sprinklers/on [post]
func (h *Handler) sprinklersOn(c *gin.Context) {
	var req SprinklersOnRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	out, err := h.services.Sprinklers.TurnOn(c.Request.Context(), req.duration())
	if err != nil && models.KindOf(err) == "" {
		h.respondError(c, errSprinklersOn, "sprinklers_on_failed", err)
		return
	}
	if err != nil {
		h.writeOutcome(c, out, err, "sprinklers_on_failed")
		return
	}
	c.JSON(outcomeStatus(out), gin.H{
		"status":  out.Classification(),
		"outcome": out,
		"timer":   h.services.Sprinklers.Timer(),
	})
}

// @Summary      Turn sprinklers off
// @Tags         sprinklers
// @Produce      json
// @Success      200  {object}  CommandResponse
// @Success      202  {object}  CommandResponse
// @Failure      503  {object}  map[string]interface{}
// @Router       /api/v1/sprinklers/off [post]
func (h *Handler) sprinklersOff(c *gin.Context) {
	out, err := h.services.Sprinklers.TurnOff(c.Request.Context())
	h.writeOutcome(c, out, err, "sprinklers_off_failed")
}

// @Summary      Get sprinkler countdown
// @Tags         sprinklers
// @Produce      json
// @Success      200  {object}  models.TimerState
// @Router       /api/v1/sprinklers/timer [get]
func (h *Handler) getTimer(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Sprinklers.Timer())
}

// @Summary      Get weekly schedule
// @Tags         sprinklers
// @Produce      json
// @Success      200  {object}  ScheduleResponse
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/sprinklers/schedule [get]
func (h *Handler) getSchedule(c *gin.Context) {
	e, err := h.services.Sprinklers.GetSchedule(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetSchedule, "schedule_load_failed", err)
		return
	}
	c.JSON(http.StatusOK, ScheduleResponse{Schedule: e, Summary: schedule.Summary(e)})
}

// @Summary      Save weekly schedule
// @Description  Durations over one hour are clamped. The schedule is stored even when pushing it to the controller fails; see push.
// @Tags         sprinklers
// @Accept       json
// @Produce      json
// @Param        body  body   models.ScheduleEntry  true  "Schedule"
// @Success      200   {object}  ScheduleResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/sprinklers/schedule [put]
func (h *Handler) putSchedule(c *gin.Context) {
	var req models.ScheduleEntry
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	saved, out, err := h.services.Sprinklers.SaveSchedule(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, errSaveSchedule, "schedule_save_failed", err)
		return
	}
	push := newCommandResponse(out)
	c.JSON(http.StatusOK, ScheduleResponse{Schedule: saved, Summary: schedule.Summary(saved), Push: &push})
}

// @Summary      Get manual run duration
// @Tags         sprinklers
// @Produce      json
// @Success      200  {object}  ManualDurationResponse
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/sprinklers/manual-duration [get]
func (h *Handler) getManualDuration(c *gin.Context) {
	d, err := h.services.Sprinklers.GetManualDuration(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetManual, "manual_duration_load_failed", err)
		return
	}
	c.JSON(http.StatusOK, newManualDurationResponse(d))
}

// @Summary      Save manual run duration
// @Description  Values over 15 minutes are clamped to 15:00.
// @Tags         sprinklers
// @Accept       json
// @Produce      json
// @Param        body  body   ManualDurationRequest  true  "Duration"
// @Success      200   {object}  ManualDurationResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/sprinklers/manual-duration [put]
func (h *Handler) putManualDuration(c *gin.Context) {
	var req ManualDurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	d, err := h.services.Sprinklers.SaveManualDuration(c.Request.Context(), models.ManualDuration{Minutes: *req.Minutes, Seconds: *req.Seconds})
	if err != nil {
		h.respondError(c, errSaveManual, "manual_duration_save_failed", err)
		return
	}
	c.JSON(http.StatusOK, newManualDurationResponse(d))
}
