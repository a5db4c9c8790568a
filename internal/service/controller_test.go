package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"awareness_bell/internal/models"
	"awareness_bell/internal/quotes"
)

// fakeClock returns whatever time the test last set.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// fakeSink records every call. When block is set, PlayTone waits on it.
type fakeSink struct {
	mu        sync.Mutex
	tones     int
	displayed []string
	spoken    []string
	order     []string
	toneErr   error
	block     chan struct{}
	toneStart chan struct{}
}

func (s *fakeSink) PlayTone(ctx context.Context) error {
	s.mu.Lock()
	s.order = append(s.order, "tone")
	block, started := s.block, s.toneStart
	s.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		<-block
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.toneErr != nil {
		return s.toneErr
	}
	s.tones++
	return nil
}

func (s *fakeSink) Speak(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spoken = append(s.spoken, text)
	return nil
}

func (s *fakeSink) Display(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = append(s.order, "display")
	s.displayed = append(s.displayed, text)
}

func (s *fakeSink) toneCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tones
}

func (s *fakeSink) displayCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.displayed)
}

// fakeSpeech accepts submissions unless busy is set.
type fakeSpeech struct {
	mu        sync.Mutex
	busy      bool
	submitted []string
}

func (f *fakeSpeech) Submit(text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return false
	}
	f.submitted = append(f.submitted, text)
	return true
}

type fakeReporter struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (r *fakeReporter) Publish(n models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *fakeReporter) ofKind(kind string) []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.sent {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

type controllerFixture struct {
	ctrl     *ScheduleController
	sink     *fakeSink
	speech   *fakeSpeech
	events   *memEventRepo
	reporter *fakeReporter
	clock    *fakeClock
}

var scenarioQuotes = []string{"Breathe.", "Observe.", "Let go."}

func newControllerFixture(t *testing.T, bank *quotes.Bank) *controllerFixture {
	t.Helper()
	f := &controllerFixture{
		sink:     &fakeSink{},
		speech:   &fakeSpeech{},
		events:   &memEventRepo{},
		reporter: &fakeReporter{},
		clock:    &fakeClock{now: at(8, 59, 30)},
	}
	f.ctrl = NewScheduleController(ControllerDeps{
		Sink:     f.sink,
		Quotes:   bank,
		Speech:   f.speech,
		Events:   f.events,
		Reporter: f.reporter,
		Clock:    f.clock,
	})
	return f
}

func at(hour, minute, second int) time.Time {
	return time.Date(2025, 3, 14, hour, minute, second, 0, time.Local)
}

func mustStart(t *testing.T, c *ScheduleController) {
	t.Helper()
	ack, err := c.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if ack != AckTransitioned {
		t.Fatalf("Start ack: got %q; want %q", ack, AckTransitioned)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestTick_TopOfHourFiresToneAndQuote(t *testing.T) {
	f := newControllerFixture(t, quotes.New(scenarioQuotes))
	mustStart(t, f.ctrl)
	if got := f.ctrl.Record().LastQuoteHour; got != models.NoQuoteHour {
		t.Fatalf("lastQuoteHour before tick: got %d; want %d", got, models.NoQuoteHour)
	}

	res := f.ctrl.Tick(context.Background(), at(9, 0, 0))

	if !res.Tone || res.ToneErr != nil {
		t.Fatalf("tone: fired=%v err=%v", res.Tone, res.ToneErr)
	}
	if !res.Quote || res.QuoteErr != nil {
		t.Fatalf("quote: fired=%v err=%v", res.Quote, res.QuoteErr)
	}
	if !contains(scenarioQuotes, res.QuoteText) {
		t.Fatalf("quote %q not drawn from the bank", res.QuoteText)
	}
	if f.sink.toneCount() != 1 {
		t.Errorf("tones: got %d; want 1", f.sink.toneCount())
	}
	if len(f.speech.submitted) != 1 || f.speech.submitted[0] != res.QuoteText {
		t.Errorf("speech submissions: got %v; want [%q]", f.speech.submitted, res.QuoteText)
	}
	if f.sink.displayCount() != 1 {
		t.Errorf("displays: got %d; want 1", f.sink.displayCount())
	}
	if got := f.ctrl.Record().LastQuoteHour; got != 9 {
		t.Errorf("lastQuoteHour: got %d; want 9", got)
	}
	if n := len(f.events.ofType(models.EventTone)); n != 1 {
		t.Errorf("TONE events: got %d; want 1", n)
	}
	if n := len(f.events.ofType(models.EventQuote)); n != 1 {
		t.Errorf("QUOTE events: got %d; want 1", n)
	}
}

func TestTick_QuarterPastFiresToneOnly(t *testing.T) {
	f := newControllerFixture(t, quotes.New(scenarioQuotes))
	mustStart(t, f.ctrl)
	f.ctrl.Tick(context.Background(), at(9, 0, 0))

	res := f.ctrl.Tick(context.Background(), at(9, 15, 0))

	if !res.Tone {
		t.Fatalf("expected tone at 09:15")
	}
	if res.Quote {
		t.Fatalf("unexpected quote at 09:15")
	}
	if f.sink.toneCount() != 2 {
		t.Errorf("tones: got %d; want 2", f.sink.toneCount())
	}
	if f.sink.displayCount() != 1 {
		t.Errorf("displays: got %d; want 1", f.sink.displayCount())
	}
}

func TestTick_SameHourDoesNotRefireQuote(t *testing.T) {
	f := newControllerFixture(t, quotes.New(scenarioQuotes))
	mustStart(t, f.ctrl)

	first := f.ctrl.Tick(context.Background(), at(9, 0, 0))
	second := f.ctrl.Tick(context.Background(), at(9, 0, 0))

	if !first.Quote {
		t.Fatalf("first evaluation should fire the quote")
	}
	if second.Quote {
		t.Fatalf("second evaluation at 09:00 must not re-fire the quote")
	}
	if len(f.speech.submitted) != 1 {
		t.Errorf("speech submissions: got %d; want 1", len(f.speech.submitted))
	}
	if got := f.ctrl.Record().LastQuoteHour; got != 9 {
		t.Errorf("lastQuoteHour: got %d; want 9", got)
	}
}

func TestTick_ToneCadence(t *testing.T) {
	f := newControllerFixture(t, quotes.New(scenarioQuotes))
	mustStart(t, f.ctrl)

	tones, quotesFired := 0, 0
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m++ {
			res := f.ctrl.Tick(context.Background(), at(h, m, 0))
			if res.Tone != (m%15 == 0) {
				t.Fatalf("%02d:%02d tone=%v", h, m, res.Tone)
			}
			if res.Quote && !res.Tone {
				t.Fatalf("%02d:%02d quote without tone", h, m)
			}
			if res.Tone {
				tones++
			}
			if res.Quote {
				quotesFired++
			}
		}
	}
	if tones != 96 {
		t.Errorf("tones over a day: got %d; want 96", tones)
	}
	if quotesFired != 24 {
		t.Errorf("quotes over a day: got %d; want 24", quotesFired)
	}
}

func TestTick_EmptyBankStillRingsTone(t *testing.T) {
	f := newControllerFixture(t, quotes.New(nil))
	mustStart(t, f.ctrl)

	res := f.ctrl.Tick(context.Background(), at(9, 0, 0))

	if !res.Tone || res.ToneErr != nil {
		t.Fatalf("tone must fire independently: fired=%v err=%v", res.Tone, res.ToneErr)
	}
	if !errors.Is(res.QuoteErr, quotes.ErrEmptyCollection) {
		t.Fatalf("quote error: got %v; want ErrEmptyCollection", res.QuoteErr)
	}
	if !f.ctrl.IsRunning() {
		t.Fatalf("a quote failure must not change the run state")
	}
	if got := f.ctrl.Record().LastQuoteHour; got != 9 {
		t.Errorf("lastQuoteHour: got %d; want 9", got)
	}
	if n := len(f.events.ofType(models.EventError)); n != 1 {
		t.Errorf("ERROR events: got %d; want 1", n)
	}
	if n := len(f.reporter.ofKind(models.NotificationError)); n != 1 {
		t.Errorf("error notifications: got %d; want 1", n)
	}
}

func TestTick_ToneFailureDoesNotSuppressQuote(t *testing.T) {
	f := newControllerFixture(t, quotes.New(scenarioQuotes))
	f.sink.toneErr = errors.New("asset missing")
	mustStart(t, f.ctrl)

	res := f.ctrl.Tick(context.Background(), at(10, 0, 0))

	if res.ToneErr == nil {
		t.Fatalf("expected tone error")
	}
	if !res.Quote || res.QuoteErr != nil {
		t.Fatalf("quote should still fire: fired=%v err=%v", res.Quote, res.QuoteErr)
	}
	if n := len(f.events.ofType(models.EventTone)); n != 0 {
		t.Errorf("TONE events: got %d; want 0", n)
	}
	if n := len(f.events.ofType(models.EventError)); n != 1 {
		t.Errorf("ERROR events: got %d; want 1", n)
	}
}

func TestTick_ToneBeforeDisplay(t *testing.T) {
	f := newControllerFixture(t, quotes.New(scenarioQuotes))
	mustStart(t, f.ctrl)

	f.ctrl.Tick(context.Background(), at(11, 0, 0))

	if len(f.sink.order) != 2 || f.sink.order[0] != "tone" || f.sink.order[1] != "display" {
		t.Fatalf("call order: got %v; want [tone display]", f.sink.order)
	}
}

func TestTick_SpeechBusyStillDisplays(t *testing.T) {
	f := newControllerFixture(t, quotes.New(scenarioQuotes))
	f.speech.busy = true
	mustStart(t, f.ctrl)

	res := f.ctrl.Tick(context.Background(), at(12, 0, 0))

	if !res.Quote || res.QuoteErr != nil {
		t.Fatalf("quote: fired=%v err=%v", res.Quote, res.QuoteErr)
	}
	if f.sink.displayCount() != 1 {
		t.Errorf("displays: got %d; want 1", f.sink.displayCount())
	}
}

func TestTick_StoppedDoesNothing(t *testing.T) {
	f := newControllerFixture(t, quotes.New(scenarioQuotes))

	res := f.ctrl.Tick(context.Background(), at(9, 0, 0))

	if res.Tone || res.Quote {
		t.Fatalf("stopped controller fired: %+v", res)
	}
	if f.sink.toneCount() != 0 {
		t.Fatalf("tones: got %d; want 0", f.sink.toneCount())
	}
}

func TestTick_StopDuringToneSkipsQuote(t *testing.T) {
	f := newControllerFixture(t, quotes.New(scenarioQuotes))
	f.sink.block = make(chan struct{})
	f.sink.toneStart = make(chan struct{}, 1)
	mustStart(t, f.ctrl)

	done := make(chan TickResult, 1)
	go func() { done <- f.ctrl.Tick(context.Background(), at(9, 0, 0)) }()

	<-f.sink.toneStart
	if _, err := f.ctrl.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	close(f.sink.block)

	res := <-done
	if !res.Tone || res.ToneErr != nil {
		t.Fatalf("in-flight tone should complete: %+v", res)
	}
	if res.Quote {
		t.Fatalf("quote fired after stop")
	}
}

func TestStartStop_Idempotent(t *testing.T) {
	f := newControllerFixture(t, quotes.New(scenarioQuotes))
	ctx := context.Background()

	if ack, _ := f.ctrl.Stop(ctx); ack != AckAlreadyInState {
		t.Fatalf("stop while stopped: got %q; want %q", ack, AckAlreadyInState)
	}
	if ack, _ := f.ctrl.Start(ctx); ack != AckTransitioned {
		t.Fatalf("first start: got %q", ack)
	}
	if ack, _ := f.ctrl.Start(ctx); ack != AckAlreadyInState {
		t.Fatalf("second start: got %q; want %q", ack, AckAlreadyInState)
	}
	if f.ctrl.State() != Running {
		t.Fatalf("state after two starts: got %v", f.ctrl.State())
	}
	if ack, _ := f.ctrl.Stop(ctx); ack != AckTransitioned {
		t.Fatalf("first stop: got %q", ack)
	}
	if ack, _ := f.ctrl.Stop(ctx); ack != AckAlreadyInState {
		t.Fatalf("second stop: got %q; want %q", ack, AckAlreadyInState)
	}
	if f.ctrl.State() != Stopped {
		t.Fatalf("state after two stops: got %v", f.ctrl.State())
	}

	if n := len(f.events.ofType(models.EventStart)); n != 1 {
		t.Errorf("START events: got %d; want 1", n)
	}
	if n := len(f.events.ofType(models.EventStop)); n != 1 {
		t.Errorf("STOP events: got %d; want 1", n)
	}
	status := f.reporter.ofKind(models.NotificationStatus)
	if len(status) != 2 || status[0].Text != "Awareness Bell started." || status[1].Text != "Awareness Bell stopped." {
		t.Errorf("status notifications: got %+v", status)
	}
}

func TestStart_ResetsFireRecord(t *testing.T) {
	f := newControllerFixture(t, quotes.New(scenarioQuotes))
	ctx := context.Background()
	mustStart(t, f.ctrl)
	f.ctrl.Tick(ctx, at(9, 0, 0))
	_, _ = f.ctrl.Stop(ctx)
	mustStart(t, f.ctrl)

	if got := f.ctrl.Record().LastQuoteHour; got != models.NoQuoteHour {
		t.Fatalf("lastQuoteHour after restart: got %d; want %d", got, models.NoQuoteHour)
	}
	if res := f.ctrl.Tick(ctx, at(9, 0, 0)); !res.Quote {
		t.Fatalf("a new run should fire the hourly quote again")
	}
}

func TestStart_CanceledContext(t *testing.T) {
	f := newControllerFixture(t, quotes.New(scenarioQuotes))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.ctrl.Start(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v; want context.Canceled", err)
	}
	if f.ctrl.IsRunning() {
		t.Fatalf("controller must stay stopped")
	}
}

func TestSnapshot(t *testing.T) {
	f := newControllerFixture(t, quotes.New([]string{"Only one."}))
	mustStart(t, f.ctrl)
	f.ctrl.Tick(context.Background(), at(7, 0, 0))

	st := f.ctrl.Snapshot()
	if st.State != models.RunStateRunning || !st.IsRunning {
		t.Fatalf("state: got %q running=%v", st.State, st.IsRunning)
	}
	if st.LastQuoteHour != 7 || st.LastQuote != "Only one." {
		t.Errorf("last quote: hour=%d text=%q", st.LastQuoteHour, st.LastQuote)
	}
	if st.LastToneAt == nil || !st.LastToneAt.Equal(at(7, 0, 0)) {
		t.Errorf("LastToneAt: got %v", st.LastToneAt)
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestRun_EvaluatesEachMinuteOnce(t *testing.T) {
	f := newControllerFixture(t, quotes.New(scenarioQuotes))
	f.ctrl.cadence = func(time.Time) time.Duration { return time.Millisecond }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.ctrl.Run(ctx)
		close(done)
	}()

	f.clock.Set(at(9, 0, 0))
	mustStart(t, f.ctrl)
	waitFor(t, "09:00 tone and quote", func() bool {
		return f.sink.toneCount() == 1 && f.sink.displayCount() == 1
	})

	// Many loop iterations inside the same minute.
	f.clock.Set(at(9, 0, 40))
	time.Sleep(30 * time.Millisecond)
	if f.sink.toneCount() != 1 {
		t.Fatalf("tone re-fired within 09:00: %d", f.sink.toneCount())
	}

	f.clock.Set(at(9, 1, 0))
	time.Sleep(30 * time.Millisecond)
	if f.sink.toneCount() != 1 {
		t.Fatalf("tone fired at 09:01")
	}

	f.clock.Set(at(9, 15, 0))
	waitFor(t, "09:15 tone", func() bool { return f.sink.toneCount() == 2 })
	if f.sink.displayCount() != 1 {
		t.Fatalf("quote fired at 09:15")
	}

	if _, err := f.ctrl.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	f.clock.Set(at(9, 30, 0))
	time.Sleep(30 * time.Millisecond)
	if f.sink.toneCount() != 2 {
		t.Fatalf("tone fired after stop")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestRun_RestartInSameMinuteEvaluatesAgain(t *testing.T) {
	f := newControllerFixture(t, quotes.New(scenarioQuotes))
	f.ctrl.cadence = func(time.Time) time.Duration { return time.Millisecond }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.ctrl.Run(ctx)

	f.clock.Set(at(10, 0, 5))
	mustStart(t, f.ctrl)
	waitFor(t, "first run", func() bool {
		return f.sink.toneCount() == 1 && f.sink.displayCount() == 1
	})

	_, _ = f.ctrl.Stop(context.Background())
	mustStart(t, f.ctrl)
	waitFor(t, "second run tone", func() bool { return f.sink.toneCount() == 2 })
	waitFor(t, "second run quote", func() bool { return f.sink.displayCount() == 2 })
}
