package cue

import (
	"io"
	"sync"
)

// Cue signals that a scan was accepted
type Cue interface {
	Play() error
}

// Bell rings the terminal bell on the wrapped writer
type Bell struct {
	w  io.Writer
	mu sync.Mutex
}

func NewBell(w io.Writer) *Bell {
	return &Bell{w: w}
}

func (b *Bell) Play() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := b.w.Write([]byte("\a"))
	return err
}

// Silent never makes a sound
type Silent struct{}

func (Silent) Play() error { return nil }

// New returns the cue for the given name: "bell" or "silent"
func New(name string, w io.Writer) Cue {
	if name == "silent" {
		return Silent{}
	}
	return NewBell(w)
}
