package handlers

import (
	"errors"
	"net/http"

	"nexadomus/internal/models"
	"nexadomus/internal/schedule"
	"nexadomus/internal/service"

	"github.com/gin-gonic/gin"
)

// httpStatusFor maps service errors onto HTTP status codes.
func httpStatusFor(err error) int {
	switch models.KindOf(err) {
	case models.ErrKindUnknownCommand, models.ErrKindEncoding:
		return http.StatusBadRequest
	case models.ErrKindNoConnectivity:
		return http.StatusServiceUnavailable
	case models.ErrKindTimeout:
		return http.StatusGatewayTimeout
	case models.ErrKindHostUnreachable, models.ErrKindHTTPStatus, models.ErrKindMalformedResponse:
		return http.StatusBadGateway
	}
	switch {
	case errors.Is(err, schedule.ErrInvalidSchedule),
		errors.Is(err, schedule.ErrInvalidManual),
		errors.Is(err, service.ErrInvalidDuration):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		if httpCode >= http.StatusInternalServerError {
			h.log.Errorw(logKey, fields...)
		} else {
			h.log.Infow(logKey, fields...)
		}
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// respondError writes err with its mapped status. Client errors expose the
// message, server errors only userMsg.
func (h *Handler) respondError(c *gin.Context, userMsg, logKey string, err error, kv ...interface{}) {
	code := httpStatusFor(err)
	msg := userMsg
	if code < http.StatusInternalServerError || models.KindOf(err) != "" {
		msg = err.Error()
	}
	body := gin.H{"error": msg}
	if kind := models.KindOf(err); kind != "" {
		body["error_kind"] = kind
	}
	fields := append([]interface{}{"err", err}, kv...)
	h.log.Warnw(logKey, fields...)
	c.JSON(code, body)
}
