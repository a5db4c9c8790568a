package notify

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// TextPlaceholder marks where the spoken text goes in SpeechConfig.Args.
const TextPlaceholder = "{text}"

// SpeechConfig describes the text-to-speech command.
type SpeechConfig struct {
	Command string
	Args    []string
}

// Speaker reads text aloud through an external TTS command.
type Speaker struct {
	cfg      SpeechConfig
	runner   Runner
	lookPath func(string) (string, error)

	mu       sync.Mutex
	resolved string
}

// NewSpeaker mirrors NewTonePlayer: the init step may fail and is retried on
// every Speak.
func NewSpeaker(cfg SpeechConfig, runner Runner) (*Speaker, error) {
	if runner == nil {
		runner = ExecRunner{}
	}
	s := &Speaker{cfg: cfg, runner: runner, lookPath: exec.LookPath}
	_, err := s.ready()
	return s, err
}

func (s *Speaker) ready() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolved != "" {
		return s.resolved, nil
	}
	if s.cfg.Command == "" {
		return "", errNoCommand
	}
	path, err := s.lookPath(s.cfg.Command)
	if err != nil {
		return "", fmt.Errorf("tts %q: %w", s.cfg.Command, err)
	}
	s.resolved = path
	return path, nil
}

// Speak blocks until the text has been read out.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	cmd, err := s.ready()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSpeech, err)
	}
	if err := s.runner.Run(ctx, cmd, expandArgs(s.cfg.Args, TextPlaceholder, text)...); err != nil {
		return fmt.Errorf("%w: %w", ErrSpeech, err)
	}
	return nil
}
