package cleanup

import (
	"fmt"
	"sort"
	"time"

	"opslab/adjanitor/activedirectory"
)

// DefaultMaxAgeDays is the staleness window applied when the operator does
// not override it.
const DefaultMaxAgeDays = 185

// SelectStale fetches every enabled workstation and returns those whose
// modification, password and LAPS-expiration signals are all older than
// now − maxAgeDays. A machine with any one fresh signal is kept out of the
// result: it is still actively managed even if its object has not been
// written in a long time. The result is sorted by account name. A directory
// failure is fatal for the stage.
func (s *Service) SelectStale(maxAgeDays int, now time.Time) ([]activedirectory.Computer, error) {
	if maxAgeDays <= 0 {
		return nil, fmt.Errorf("maxAgeDays must be positive, got %d", maxAgeDays)
	}
	threshold := now.AddDate(0, 0, -maxAgeDays)

	computers, err := s.directory.EnabledWorkstations()
	if err != nil {
		return nil, fmt.Errorf("querying workstations: %w", err)
	}

	stale := make([]activedirectory.Computer, 0)
	for i, computer := range computers {
		s.progress.Step(i+1, len(computers), computer.Name)
		if computer.Stale(threshold) {
			stale = append(stale, computer)
		}
	}

	sort.Slice(stale, func(i, j int) bool {
		return stale[i].Name < stale[j].Name
	})
	return stale, nil
}
