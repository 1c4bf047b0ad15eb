package models

import "time"

// ActionableType classifies scanned content so a client can pick the best action
type ActionableType string

const (
	ActionableProduct ActionableType = "PRODUCT"
	ActionableURL     ActionableType = "URL"
	ActionableText    ActionableType = "TEXT"
	ActionableWiFi    ActionableType = "WIFI"
	ActionableUnknown ActionableType = "UNKNOWN"
)

// ActionableTypes lists every valid actionable type
var ActionableTypes = []ActionableType{
	ActionableProduct,
	ActionableURL,
	ActionableText,
	ActionableWiFi,
	ActionableUnknown,
}

// Valid reports whether t is one of the five known actionable types
func (t ActionableType) Valid() bool {
	for _, known := range ActionableTypes {
		if t == known {
			return true
		}
	}
	return false
}

// EnrichmentResult is the human-readable interpretation of a scanned payload
type EnrichmentResult struct {
	Title          string         `json:"title" yaml:"title"`
	Category       string         `json:"category" yaml:"category"`
	Description    string         `json:"description" yaml:"description"`
	PriceEstimate  string         `json:"priceEstimate,omitempty" yaml:"price_estimate,omitempty"`
	ActionableType ActionableType `json:"actionableType" yaml:"actionable_type"`
	SafetyRating   string         `json:"safetyRating,omitempty" yaml:"safety_rating,omitempty"`
}

// ScanEntry is one accepted detection in the scan history
type ScanEntry struct {
	ID        string            `json:"id" yaml:"id"`
	RawValue  string            `json:"raw_value" yaml:"raw_value"`
	Format    string            `json:"format" yaml:"format"`
	Timestamp time.Time         `json:"timestamp" yaml:"timestamp"`
	Result    *EnrichmentResult `json:"result,omitempty" yaml:"result,omitempty"`
	Pending   bool              `json:"pending" yaml:"pending"`
}

// Settle returns a copy of the entry with the enrichment result attached
func (e ScanEntry) Settle(result EnrichmentResult) ScanEntry {
	e.Result = &result
	e.Pending = false
	return e
}

// HistoryEventType names a change to the scan history
type HistoryEventType string

const (
	EventCreated HistoryEventType = "created"
	EventUpdated HistoryEventType = "updated"
	EventCleared HistoryEventType = "cleared"
)

// HistoryEvent is emitted by the history store for every mutation
type HistoryEvent struct {
	Type  HistoryEventType `json:"type"`
	Entry *ScanEntry       `json:"entry,omitempty"`
}
