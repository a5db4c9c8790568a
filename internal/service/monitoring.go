package service

import (
	"context"
	"time"

	"awareness_bell/internal/models"
)

// StateSource is the read side of the schedule controller.
type StateSource interface {
	Snapshot() models.BellState
}

// QuoteCounter reports how many quotes are loaded.
type QuoteCounter interface {
	Len() int
}

type MonitoringService struct {
	source StateSource
	quotes QuoteCounter
	clock  Clock
}

func NewMonitoringService(source StateSource, quotes QuoteCounter, clock Clock) *MonitoringService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &MonitoringService{source: source, quotes: quotes, clock: clock}
}

// GetState returns the live controller state. NextToneAt is set only while
// running. Timestamps are reported in UTC.
func (s *MonitoringService) GetState(ctx context.Context) (models.BellState, error) {
	if err := ctx.Err(); err != nil {
		return models.BellState{}, err
	}
	now := s.clock.Now()
	st := s.source.Snapshot()
	if s.quotes != nil {
		st.QuoteCount = s.quotes.Len()
	}
	if st.IsRunning {
		next := nextQuarterHour(now).UTC()
		st.NextToneAt = &next
	}
	st.LastToneAt = ptrUTC(st.LastToneAt)
	st.LastQuoteAt = ptrUTC(st.LastQuoteAt)
	st.UpdatedAt = normalizeToUTC(now)
	return st, nil
}

func ptrUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := normalizeToUTC(*t)
	return &u
}
