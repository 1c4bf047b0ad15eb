package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/omniscan/internal/models"
	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// Session is the YAML document written for a session's history
type Session struct {
	ExportedAt string             `yaml:"exported_at"`
	Count      int                `yaml:"count"`
	Entries    []models.ScanEntry `yaml:"entries"`
}

// Row is the flattened Parquet layout of one scan entry
type Row struct {
	ID             string `parquet:"id"`
	RawValue       string `parquet:"raw_value"`
	Format         string `parquet:"format"`
	TimestampMs    int64  `parquet:"timestamp_ms"`
	Pending        bool   `parquet:"pending"`
	Title          string `parquet:"title,optional"`
	Category       string `parquet:"category,optional"`
	Description    string `parquet:"description,optional"`
	PriceEstimate  string `parquet:"price_estimate,optional"`
	ActionableType string `parquet:"actionable_type,optional"`
	SafetyRating   string `parquet:"safety_rating,optional"`
}

// Save writes the entries to path, choosing the format from its extension
func Save(path string, entries []models.ScanEntry) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	var err error
	switch ext {
	case ".yaml", ".yml":
		err = saveYAML(path, entries)
	case ".parquet":
		err = saveParquet(path, entries)
	default:
		return fmt.Errorf("unsupported export format: %s (supported: .yaml, .parquet)", ext)
	}
	if err != nil {
		return err
	}

	slog.Info("History exported", "path", path, "entries", len(entries))
	return nil
}

func saveYAML(path string, entries []models.ScanEntry) error {
	session := Session{
		ExportedAt: time.Now().Format(time.RFC3339),
		Count:      len(entries),
		Entries:    entries,
	}

	data, err := yaml.Marshal(&session)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write YAML file: %w", err)
	}
	return nil
}

func saveParquet(path string, entries []models.ScanEntry) error {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, toRow(e))
	}

	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("failed to write parquet file: %w", err)
	}
	return nil
}

func toRow(e models.ScanEntry) Row {
	row := Row{
		ID:          e.ID,
		RawValue:    e.RawValue,
		Format:      e.Format,
		TimestampMs: e.Timestamp.UnixMilli(),
		Pending:     e.Pending,
	}
	if e.Result != nil {
		row.Title = e.Result.Title
		row.Category = e.Result.Category
		row.Description = e.Result.Description
		row.PriceEstimate = e.Result.PriceEstimate
		row.ActionableType = string(e.Result.ActionableType)
		row.SafetyRating = e.Result.SafetyRating
	}
	return row
}
