package scanner

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/omniscan/internal/cue"
	"github.com/lehigh-university-libraries/omniscan/internal/decoder"
	"github.com/lehigh-university-libraries/omniscan/internal/enrichment"
	"github.com/lehigh-university-libraries/omniscan/internal/models"
)

// DefaultCooldown is how long the coordinator stays busy after enrichment settles
const DefaultCooldown = 2 * time.Second

var (
	ErrBusy       = errors.New("scanner busy")
	ErrEmptyInput = errors.New("manual entry is empty")
	ErrClosed     = errors.New("scanner closed")
)

// History receives new and settled entries
type History interface {
	Record(entry models.ScanEntry)
	Update(entry models.ScanEntry) bool
}

// Enricher interprets a decoded payload. It must always return a result.
type Enricher interface {
	Analyze(ctx context.Context, rawValue, format string) models.EnrichmentResult
}

// Coordinator decides which detections become history entries. One scan is
// in flight at a time: from acceptance until the cooldown after enrichment
// settles, every submission is rejected.
type Coordinator struct {
	history  History
	enricher Enricher
	cue      cue.Cue
	cooldown time.Duration
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	busy          bool
	closed        bool
	cooldownTimer *time.Timer
}

type Option func(*Coordinator)

func WithCooldown(d time.Duration) Option {
	return func(c *Coordinator) {
		c.cooldown = d
	}
}

func WithCue(q cue.Cue) Option {
	return func(c *Coordinator) {
		c.cue = q
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

func New(history History, enricher Enricher, opts ...Option) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		history:  history,
		enricher: enricher,
		cue:      cue.Silent{},
		cooldown: DefaultCooldown,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Busy reports whether a scan is in flight or cooling down
func (c *Coordinator) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Submit accepts a detection when idle. The returned entry is the pending
// entry already published to history; enrichment continues in the background.
// The cue plays after the coordinator lock is released.
func (c *Coordinator) Submit(rawValue, format string) (models.ScanEntry, error) {
	entry, err := c.accept(rawValue, format)
	if err != nil {
		return models.ScanEntry{}, err
	}
	c.playCue()
	return entry, nil
}

func (c *Coordinator) accept(rawValue, format string) (models.ScanEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return models.ScanEntry{}, ErrClosed
	}
	if c.busy {
		return models.ScanEntry{}, ErrBusy
	}
	c.busy = true

	entry := models.ScanEntry{
		ID:        uuid.NewString(),
		RawValue:  rawValue,
		Format:    format,
		Timestamp: c.now(),
		Pending:   true,
	}

	c.history.Record(entry)
	slog.Info("Scan accepted", "id", entry.ID, "format", format)

	go c.enrich(entry)

	return entry, nil
}

func (c *Coordinator) playCue() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Scan cue panicked", "panic", r)
		}
	}()
	if err := c.cue.Play(); err != nil {
		slog.Warn("Unable to play scan cue", "err", err)
	}
}

// SubmitManual routes typed text through the same path as camera detections
func (c *Coordinator) SubmitManual(text string) (models.ScanEntry, error) {
	if strings.TrimSpace(text) == "" {
		return models.ScanEntry{}, ErrEmptyInput
	}
	return c.Submit(text, decoder.FormatManualEntry)
}

// Close abandons in-flight enrichment. Results arriving later are discarded.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	if c.cooldownTimer != nil {
		c.cooldownTimer.Stop()
		c.cooldownTimer = nil
	}
	c.cancel()
}

func (c *Coordinator) enrich(entry models.ScanEntry) {
	result := c.analyze(entry)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		slog.Debug("Discarding enrichment result after close", "id", entry.ID)
		return
	}

	if !c.history.Update(entry.Settle(result)) {
		slog.Debug("Entry left history before enrichment settled", "id", entry.ID)
	}
	slog.Info("Scan enriched", "id", entry.ID, "actionable_type", result.ActionableType, "elapsed", c.now().Sub(entry.Timestamp))

	c.cooldownTimer = time.AfterFunc(c.cooldown, c.release)
}

func (c *Coordinator) analyze(entry models.ScanEntry) (result models.EnrichmentResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Enrichment panicked", "id", entry.ID, "panic", r)
			result = enrichment.AnalysisFailed
		}
	}()
	return c.enricher.Analyze(c.ctx, entry.RawValue, entry.Format)
}

func (c *Coordinator) release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.busy = false
	c.cooldownTimer = nil
}
