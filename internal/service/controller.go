package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"awareness_bell/internal/logger"
	"awareness_bell/internal/metrics"
	"awareness_bell/internal/models"
	"awareness_bell/internal/repository"
)

// NotificationSink is what the controller rings and shows through.
// PlayTone blocks until playback completes.
type NotificationSink interface {
	PlayTone(ctx context.Context) error
	Speak(ctx context.Context, text string) error
	Display(text string)
}

// QuotePicker yields one quote per hourly fire.
type QuotePicker interface {
	PickRandom() (string, error)
}

// SpeechDispatcher hands a quote to the speech worker without waiting.
type SpeechDispatcher interface {
	Submit(text string) bool
}

// RunState of the controller.
type RunState int32

const (
	Stopped RunState = iota
	Running
)

func (s RunState) String() string {
	if s == Running {
		return models.RunStateRunning
	}
	return models.RunStateStopped
}

// FireRecord is the de-duplication state of one run.
type FireRecord struct {
	LastQuoteHour int // models.NoQuoteHour until the first hourly quote
	LastToneAt    time.Time
	LastQuoteAt   time.Time
	LastQuote     string
}

func freshRecord() FireRecord { return FireRecord{LastQuoteHour: models.NoQuoteHour} }

// TickResult describes what one evaluation fired.
type TickResult struct {
	At        time.Time
	Tone      bool
	ToneErr   error
	Quote     bool
	QuoteText string
	QuoteErr  error
}

// Defaults for ControllerDeps.
const (
	DefaultToneTimeout = 2 * time.Minute
	DefaultMaxSleep    = time.Minute
)

// ControllerDeps wires the controller. Sink, Quotes and Speech are required.
type ControllerDeps struct {
	Sink        NotificationSink
	Quotes      QuotePicker
	Speech      SpeechDispatcher
	Events      repository.EventRepo
	Reporter    Reporter
	Metrics     *metrics.Metrics
	Log         *logger.Logger
	Clock       Clock
	ToneTimeout time.Duration
	MaxSleep    time.Duration
}

// ScheduleController rings the quarter-hour tone and fires the hourly quote
// while running. Start and Stop may be called from any goroutine; Run is the
// single evaluation loop.
type ScheduleController struct {
	sink        NotificationSink
	quotes      QuotePicker
	speech      SpeechDispatcher
	clock       Clock
	rec         recorder
	toneTimeout time.Duration
	maxSleep    time.Duration

	// cadence returns how long to wait before the next evaluation.
	cadence func(now time.Time) time.Duration

	mu     sync.Mutex
	state  RunState
	run    uint64 // bumped on every Start
	record FireRecord

	tickMu sync.Mutex    // one evaluation at a time
	wake   chan struct{} // cap 1; nudges Run after Start/Stop
}

func NewScheduleController(d ControllerDeps) *ScheduleController {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Clock == nil {
		d.Clock = SystemClock{}
	}
	if d.ToneTimeout <= 0 {
		d.ToneTimeout = DefaultToneTimeout
	}
	if d.MaxSleep <= 0 {
		d.MaxSleep = DefaultMaxSleep
	}
	c := &ScheduleController{
		sink:        d.Sink,
		quotes:      d.Quotes,
		speech:      d.Speech,
		clock:       d.Clock,
		rec:         recorder{log: d.Log, events: d.Events, metrics: d.Metrics, reporter: d.Reporter},
		toneTimeout: d.ToneTimeout,
		maxSleep:    d.MaxSleep,
		state:       Stopped,
		record:      freshRecord(),
		wake:        make(chan struct{}, 1),
	}
	c.cadence = func(now time.Time) time.Duration { return untilNextMinute(now, c.maxSleep) }
	return c
}

// Start moves Stopped to Running and clears the FireRecord.
func (c *ScheduleController) Start(ctx context.Context) (Ack, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	if c.state == Running {
		c.mu.Unlock()
		return AckAlreadyInState, nil
	}
	c.state = Running
	c.run++
	c.record = freshRecord()
	c.mu.Unlock()

	c.signal()
	now := c.clock.Now()
	c.rec.metrics.SetRunning(true)
	c.rec.log.Infow("bell_started")
	c.rec.event(ctx, now, models.EventStart, "Awareness bell started", nil)
	c.rec.notify(models.NotificationStatus, "Awareness Bell started.", now)
	return AckTransitioned, nil
}

// Stop moves Running to Stopped. An in-flight tone or speech is not
// interrupted; nothing new fires once the loop observes the change.
func (c *ScheduleController) Stop(ctx context.Context) (Ack, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	if c.state == Stopped {
		c.mu.Unlock()
		return AckAlreadyInState, nil
	}
	c.state = Stopped
	c.mu.Unlock()

	c.signal()
	now := c.clock.Now()
	c.rec.metrics.SetRunning(false)
	c.rec.log.Infow("bell_stopped")
	c.rec.event(ctx, now, models.EventStop, "Awareness bell stopped", nil)
	c.rec.notify(models.NotificationStatus, "Awareness Bell stopped.", now)
	return AckTransitioned, nil
}

func (c *ScheduleController) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// State returns the current run state.
func (c *ScheduleController) State() RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *ScheduleController) IsRunning() bool { return c.State() == Running }

// Record returns a copy of the FireRecord.
func (c *ScheduleController) Record() FireRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record
}

// Snapshot reports run state and fire history.
func (c *ScheduleController) Snapshot() models.BellState {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := models.BellState{
		State:         c.state.String(),
		IsRunning:     c.state == Running,
		LastQuoteHour: c.record.LastQuoteHour,
		LastQuote:     c.record.LastQuote,
	}
	if !c.record.LastToneAt.IsZero() {
		t := c.record.LastToneAt
		st.LastToneAt = &t
	}
	if !c.record.LastQuoteAt.IsZero() {
		t := c.record.LastQuoteAt
		st.LastQuoteAt = &t
	}
	return st
}

// Run evaluates once per wall-clock minute while Running and parks while
// Stopped. It returns when ctx is done.
func (c *ScheduleController) Run(ctx context.Context) {
	var last evalKey
	for {
		running, run := c.runID()
		if !running {
			select {
			case <-ctx.Done():
				return
			case <-c.wake:
				continue
			}
		}

		// Each minute is evaluated once per run; a restart within the same
		// minute gets a fresh evaluation.
		now := c.clock.Now()
		if key := (evalKey{run: run, minute: minuteOf(now).Unix()}); key != last {
			last = key
			c.Tick(ctx, now)
		}

		timer := time.NewTimer(c.cadence(c.clock.Now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-c.wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

type evalKey struct {
	run    uint64
	minute int64
}

func (c *ScheduleController) runID() (bool, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == Running, c.run
}

// Tick runs one evaluation for the sampled time now. The tone always goes
// first and blocks; the hourly quote follows when minute is 0 and the hour
// has not fired yet. Failures are reported and never stop the loop.
func (c *ScheduleController) Tick(ctx context.Context, now time.Time) TickResult {
	c.tickMu.Lock()
	defer c.tickMu.Unlock()

	res := TickResult{At: now}
	if !c.IsRunning() || !isQuarterHour(now) {
		return res
	}

	res.Tone = true
	res.ToneErr = c.playTone(ctx, now)

	hour, ok := c.claimHour(now)
	if !ok {
		return res
	}
	res.Quote = true
	res.QuoteText, res.QuoteErr = c.fireQuote(ctx, now, hour)
	return res
}

func (c *ScheduleController) playTone(ctx context.Context, now time.Time) error {
	toneCtx, cancel := context.WithTimeout(ctx, c.toneTimeout)
	defer cancel()

	c.rec.log.Infow("tone_fire", "at", now.Format("15:04:05"))
	if err := c.sink.PlayTone(toneCtx); err != nil {
		c.rec.fail(ctx, now, metrics.KindPlayback, "tone_play_failed", err)
		return err
	}

	c.mu.Lock()
	c.record.LastToneAt = now
	c.mu.Unlock()
	c.rec.metrics.ToneFired()
	c.rec.event(ctx, now, models.EventTone, "Quarter-hour bell", map[string]any{
		"hour":   now.Hour(),
		"minute": now.Minute(),
	})
	return nil
}

// claimHour marks the hour as fired and reports whether the caller owns the
// hourly event. It re-checks the run state so a stop that landed during the
// tone suppresses the quote.
func (c *ScheduleController) claimHour(now time.Time) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Running || now.Minute() != 0 || now.Hour() == c.record.LastQuoteHour {
		return 0, false
	}
	c.record.LastQuoteHour = now.Hour()
	return now.Hour(), true
}

func (c *ScheduleController) fireQuote(ctx context.Context, now time.Time, hour int) (string, error) {
	quote, err := c.quotes.PickRandom()
	if err != nil {
		err = fmt.Errorf("hourly quote at %02d:00: %w", hour, err)
		c.rec.fail(ctx, now, metrics.KindQuote, "quote_pick_failed", err)
		return "", err
	}

	if !c.speech.Submit(quote) {
		c.rec.log.Warnw("speech_busy_quote_not_spoken", "hour", hour)
		c.rec.metrics.SpeechDropped()
	}
	c.sink.Display(quote)

	c.mu.Lock()
	c.record.LastQuoteAt = now
	c.record.LastQuote = quote
	c.mu.Unlock()
	c.rec.metrics.QuoteFired()
	c.rec.log.Infow("quote_fire", "hour", hour, "quote", quote)
	c.rec.event(ctx, now, models.EventQuote, quote, map[string]any{"hour": hour})
	return quote, nil
}
