package notify

import "context"

// Sink bundles the three notification capabilities behind one value.
type Sink struct {
	Tone  *TonePlayer
	Voice *Speaker
	Hub   *Hub
}

func (s *Sink) PlayTone(ctx context.Context) error { return s.Tone.PlayTone(ctx) }

func (s *Sink) Speak(ctx context.Context, text string) error { return s.Voice.Speak(ctx, text) }

func (s *Sink) Display(text string) { s.Hub.Display(text) }
