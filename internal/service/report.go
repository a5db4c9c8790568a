package service

import (
	"context"
	"time"

	"awareness_bell/internal/logger"
	"awareness_bell/internal/metrics"
	"awareness_bell/internal/models"
	"awareness_bell/internal/repository"
)

// Reporter is the user-facing channel for status and failure messages.
type Reporter interface {
	Publish(n models.Notification)
}

// recorder fans an occurrence out to the log, the history, metrics and the
// display channel. None of its methods return errors.
type recorder struct {
	log      *logger.Logger
	events   repository.EventRepo
	metrics  *metrics.Metrics
	reporter Reporter
}

func (r recorder) event(ctx context.Context, at time.Time, typ, desc string, meta map[string]any) {
	if r.events == nil {
		return
	}
	e := models.BellEvent{OccurredAt: at, Type: typ, Description: desc}
	if len(meta) > 0 {
		e.Metadata = meta
	}
	err := r.events.Append(ctx, e)
	if err != nil {
		r.log.Errorw("event_append_failed", "type", typ, "err", err)
		r.metrics.Failed(metrics.KindStore)
	}
}

func (r recorder) notify(kind, text string, at time.Time) {
	if r.reporter != nil {
		r.reporter.Publish(models.Notification{Kind: kind, Text: text, At: at})
	}
}

// fail logs err under key, counts it, stores an ERROR event and shows it.
func (r recorder) fail(ctx context.Context, at time.Time, kind, key string, err error) {
	r.log.Errorw(key, "kind", kind, "err", err)
	r.metrics.Failed(kind)
	r.event(ctx, at, models.EventError, err.Error(), map[string]any{"kind": kind})
	r.notify(models.NotificationError, err.Error(), at)
}
