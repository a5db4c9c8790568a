package service

import (
	"context"
	"fmt"
	"time"

	"awareness_bell/internal/logger"
	"awareness_bell/internal/metrics"
	"awareness_bell/internal/repository"
)

// Speaker renders text as audible speech.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

const DefaultSpeechTimeout = 2 * time.Minute

// SpeechWorker speaks submitted quotes one at a time, off the controller's
// loop. At most one quote waits behind the one being spoken.
type SpeechWorker struct {
	speaker Speaker
	queue   chan string
	timeout time.Duration
	clock   Clock
	rec     recorder
}

type SpeechDeps struct {
	Speaker  Speaker
	Events   repository.EventRepo
	Reporter Reporter
	Metrics  *metrics.Metrics
	Log      *logger.Logger
	Clock    Clock
	Timeout  time.Duration
}

func NewSpeechWorker(d SpeechDeps) *SpeechWorker {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Clock == nil {
		d.Clock = SystemClock{}
	}
	if d.Timeout <= 0 {
		d.Timeout = DefaultSpeechTimeout
	}
	return &SpeechWorker{
		speaker: d.Speaker,
		queue:   make(chan string, 1),
		timeout: d.Timeout,
		clock:   d.Clock,
		rec:     recorder{log: d.Log, events: d.Events, metrics: d.Metrics, reporter: d.Reporter},
	}
}

// Submit queues text without blocking. It reports false when the queue is
// already full.
func (w *SpeechWorker) Submit(text string) bool {
	select {
	case w.queue <- text:
		return true
	default:
		return false
	}
}

// Run speaks queued text until ctx is done. A speech failure is reported
// and the worker moves on to the next item.
func (w *SpeechWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case text := <-w.queue:
			w.speak(ctx, text)
		}
	}
}

func (w *SpeechWorker) speak(ctx context.Context, text string) {
	speakCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	started := w.clock.Now()
	if err := w.speaker.Speak(speakCtx, text); err != nil {
		if ctx.Err() != nil {
			return
		}
		w.rec.fail(ctx, w.clock.Now(), metrics.KindSpeech, "speech_failed", fmt.Errorf("speak quote: %w", err))
		return
	}
	w.rec.log.Debugw("speech_done", "took", w.clock.Now().Sub(started).String())
}

// compile-time check
var _ SpeechDispatcher = (*SpeechWorker)(nil)

