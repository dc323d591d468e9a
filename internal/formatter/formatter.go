// package formatter writes migration run reports in JSON, YAML, CSV and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/hearditsomewhere/internal/shared"
	"github.com/desertthunder/hearditsomewhere/internal/tasks"
	"gopkg.in/yaml.v3"
)

// Format is a report encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	CSV  Format = "csv"
	Text Format = "txt"
)

// ParseFormat accepts a format name, case-insensitive. "yml" and "text" are aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "csv":
		return CSV, nil
	case "txt", "text":
		return Text, nil
	default:
		return "", fmt.Errorf("%w: unknown report format %q (json, yaml, csv, txt)", shared.ErrInvalidArgument, s)
	}
}

// ExportToJSON encodes the full result, indented.
func ExportToJSON(result *tasks.MigrationResult) ([]byte, error) {
	return shared.MarshalJSON(result, true)
}

// ExportToYAML encodes the full result as YAML.
func ExportToYAML(result *tasks.MigrationResult) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(result); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToCSV writes one row per gathered track with columns:
// Source ID, Artist, Title, Raw Artist, Raw Title, Track ID, Matched Artist, Matched Title, Confidence, Cached
func ExportToCSV(result *tasks.MigrationResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Source ID", "Artist", "Title", "Raw Artist", "Raw Title", "Track ID", "Matched Artist", "Matched Title", "Confidence", "Cached"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range result.Matches {
		row := []string{m.Record.SourceItemID, m.Record.Artist, m.Record.Title, m.Record.RawArtist, m.Record.RawTitle, "", "", "", "", ""}
		if m.Track != nil {
			row[5] = m.Track.ID
			row[6] = m.Track.Artist
			row[7] = m.Track.Title
			row[8] = strconv.FormatFloat(m.Confidence, 'f', 2, 64)
			row[9] = strconv.FormatBool(m.Cached)
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToText renders a human-readable summary followed by the per-track outcome.
func ExportToText(result *tasks.MigrationResult) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Run: %s\n", result.RunID)
	if result.Source != nil {
		fmt.Fprintf(&buf, "Source: %s on %s (ID: %s)\n", result.Source.Name, result.SourceService, result.Source.ID)
	}
	if result.Destination != nil {
		fmt.Fprintf(&buf, "Destination: %s on %s (ID: %s)\n", result.Destination.Name, result.DestinationService, result.Destination.ID)
	}
	fmt.Fprintf(&buf, "State: %s\n", result.State)
	fmt.Fprintf(&buf, "Tracks: %d gathered, %d skipped, %d matched (%.1f%%), %d not found\n",
		result.Gathered, result.SkippedMissing, result.Matched, result.MatchPercentage, result.NoMatch)
	if result.Error != "" {
		fmt.Fprintf(&buf, "Error: %s\n", result.Error)
	}

	if len(result.Matches) > 0 {
		buf.WriteString("\n")
	}
	for i, m := range result.Matches {
		if m.Track == nil {
			fmt.Fprintf(&buf, "%d. ✗ %s - %s\n", i+1, m.Record.Artist, m.Record.Title)
			continue
		}
		fmt.Fprintf(&buf, "%d. ✓ %s - %s → %s - %s [%s]\n", i+1, m.Record.Artist, m.Record.Title, m.Track.Artist, m.Track.Title, m.Track.ID)
	}

	return buf.Bytes(), nil
}

// Export encodes the result in the given format.
func Export(result *tasks.MigrationResult, format Format) ([]byte, error) {
	switch format {
	case JSON:
		return ExportToJSON(result)
	case YAML:
		return ExportToYAML(result)
	case CSV:
		return ExportToCSV(result)
	case Text:
		return ExportToText(result)
	default:
		return nil, fmt.Errorf("%w: unknown report format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteReport writes the result to path and returns the path written.
//
// Defaults to heard_{run id prefix}.{format} in the working directory. Parent directories are created.
func WriteReport(result *tasks.MigrationResult, format Format, path string) (string, error) {
	if path == "" {
		id := result.RunID
		if len(id) > 8 {
			id = id[:8]
		}
		path = fmt.Sprintf("heard_%s.%s", id, format)
	}

	data, err := Export(result, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
