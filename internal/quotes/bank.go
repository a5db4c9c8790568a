// Package quotes loads the hourly quote collection and picks from it.
package quotes

import (
	"errors"
	"math/rand"
	"strings"
)

// ErrEmptyCollection is returned when a pick is attempted on a bank with no
// usable quotes.
var ErrEmptyCollection = errors.New("quote collection is empty")

// Bank is an immutable set of trimmed, non-blank quotes.
type Bank struct {
	quotes []string
}

// New builds a bank from raw candidates, trimming each and dropping blanks.
func New(candidates []string) *Bank {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if q := strings.TrimSpace(c); q != "" {
			out = append(out, q)
		}
	}
	return &Bank{quotes: out}
}

// Len is safe on a nil bank.
func (b *Bank) Len() int {
	if b == nil {
		return 0
	}
	return len(b.quotes)
}

// Quotes returns a copy of the collection in source order.
func (b *Bank) Quotes() []string {
	if b == nil {
		return nil
	}
	return append([]string(nil), b.quotes...)
}

// PickRandom returns one quote chosen uniformly, independently of earlier picks.
func (b *Bank) PickRandom() (string, error) {
	n := b.Len()
	if n == 0 {
		return "", ErrEmptyCollection
	}
	return b.quotes[rand.Intn(n)], nil
}
