package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"

	"github.com/spf13/afero"
)

// FilePlaceholder marks where the tone asset goes in ToneConfig.Args.
const FilePlaceholder = "{file}"

// ToneConfig describes the player command and the audio asset.
type ToneConfig struct {
	Command string
	Args    []string
	Asset   string
}

// TonePlayer plays the bell asset through an external player and blocks
// until playback ends.
type TonePlayer struct {
	cfg      ToneConfig
	fs       afero.Fs
	runner   Runner
	lookPath func(string) (string, error)

	mu       sync.Mutex
	resolved string // command path once the init step has succeeded
}

var errNoCommand = errors.New("no command configured")

// NewTonePlayer builds the player and runs its init step. A non-nil error
// means the player is not ready yet; the returned player is still usable and
// retries the init step on every PlayTone.
func NewTonePlayer(cfg ToneConfig, fs afero.Fs, runner Runner) (*TonePlayer, error) {
	if runner == nil {
		runner = ExecRunner{}
	}
	p := &TonePlayer{cfg: cfg, fs: fs, runner: runner, lookPath: exec.LookPath}
	_, err := p.ready()
	return p, err
}

func (p *TonePlayer) ready() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.resolved != "" {
		return p.resolved, nil
	}
	if p.cfg.Command == "" {
		return "", errNoCommand
	}
	if _, err := p.fs.Stat(p.cfg.Asset); err != nil {
		return "", fmt.Errorf("tone asset: %w", err)
	}
	path, err := p.lookPath(p.cfg.Command)
	if err != nil {
		return "", fmt.Errorf("player %q: %w", p.cfg.Command, err)
	}
	p.resolved = path
	return path, nil
}

// PlayTone blocks until the player exits or ctx ends.
func (p *TonePlayer) PlayTone(ctx context.Context) error {
	cmd, err := p.ready()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPlayback, err)
	}
	if err := p.runner.Run(ctx, cmd, expandArgs(p.cfg.Args, FilePlaceholder, p.cfg.Asset)...); err != nil {
		return fmt.Errorf("%w: %w", ErrPlayback, err)
	}
	return nil
}
