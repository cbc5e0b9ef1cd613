package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"nexadomus/internal/models"
	"nexadomus/internal/repository"
)

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", errInvalidTimeRange
	}

	kind := strings.TrimSpace(f.Kind)
	if kind != "" {
		k, err := models.ParseDeviceKind(kind)
		if err != nil {
			return time.Time{}, time.Time{}, "", err
		}
		kind = string(k)
	}
	return from, to, kind, nil
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.CommandEvent, error) {
	from, to, kind, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, from, to, kind)
}
