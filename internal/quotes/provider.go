package quotes

import (
	"sync"
	"sync/atomic"

	"awareness_bell/internal/logger"

	"github.com/spf13/afero"
)

// Provider owns the current bank for a quote file. Reloads swap in a new
// bank; a bank already handed out is never modified.
type Provider struct {
	fs   afero.Fs
	path string
	log  *logger.Logger

	mu   sync.Mutex // serializes reloads
	bank atomic.Pointer[Bank]
}

// NewProvider starts with an empty bank; call Reload to read the source.
func NewProvider(fs afero.Fs, path string, log *logger.Logger) *Provider {
	if log == nil {
		log = logger.Nop()
	}
	p := &Provider{fs: fs, path: path, log: log}
	p.bank.Store(New(nil))
	return p
}

// Path of the quote source.
func (p *Provider) Path() string { return p.path }

// Bank returns the current snapshot.
func (p *Provider) Bank() *Bank { return p.bank.Load() }

// Len is the size of the current bank.
func (p *Provider) Len() int { return p.Bank().Len() }

// PickRandom picks from the current bank.
func (p *Provider) PickRandom() (string, error) { return p.Bank().PickRandom() }

// Reload re-reads the source. On failure the previous bank stays active and
// the *LoadError is returned.
func (p *Provider) Reload() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	b, err := Load(p.fs, p.path)
	if err != nil {
		return p.Len(), err
	}
	p.bank.Store(b)
	if b.Len() == 0 {
		p.log.Warnw("quotes_loaded_empty", "path", p.path)
	} else {
		p.log.Infow("quotes_loaded", "path", p.path, "count", b.Len())
	}
	return b.Len(), nil
}
