// Package notify holds the adapters that make noise and show text: the tone
// player, the text-to-speech speaker and the display hub.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Failure kinds returned by the adapters.
var (
	ErrPlayback = errors.New("tone playback failed")
	ErrSpeech   = errors.New("speech failed")
)

// Runner runs an external command and blocks until it exits.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands with os/exec. Cancelling ctx kills the process.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// expandArgs substitutes placeholder in args with value, or appends value
// when no argument mentions the placeholder.
func expandArgs(args []string, placeholder, value string) []string {
	out := make([]string, 0, len(args)+1)
	found := false
	for _, a := range args {
		if strings.Contains(a, placeholder) {
			found = true
			a = strings.ReplaceAll(a, placeholder, value)
		}
		out = append(out, a)
	}
	if !found {
		out = append(out, value)
	}
	return out
}
