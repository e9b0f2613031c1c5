package lastlogon

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
)

// Event is one logon observation from the telemetry export: which account
// logged on, when, and on which collector it was seen.
type Event struct {
	Account string
	Time    time.Time
	Source  string
}

// ReadTelemetry parses a CSV export with columns account,timestamp,source.
// Timestamps are RFC 3339. A header row is skipped when present.
func ReadTelemetry(r io.Reader) ([]Event, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3

	var events []Event
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading telemetry line %d: %w", line, err)
		}

		if line == 1 && strings.EqualFold(record[0], "account") {
			continue
		}

		timestamp, err := time.Parse(time.RFC3339, record[1])
		if err != nil {
			return nil, fmt.Errorf("telemetry line %d: %w", line, err)
		}

		events = append(events, Event{
			Account: record[0],
			Time:    timestamp.UTC(),
			Source:  record[2],
		})
	}
	return events, nil
}

// Latest reduces the events to the newest observation per account.
func Latest(events []Event) map[string]Event {
	latest := make(map[string]Event, len(events))
	for _, event := range events {
		if existing, ok := latest[event.Account]; !ok || event.Time.After(existing.Time) {
			latest[event.Account] = event
		}
	}
	return latest
}
