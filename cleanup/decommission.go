package cleanup

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"opslab/adjanitor/activedirectory"
)

// batchPrefix names decommission OUs. Records already sitting under an OU
// with this prefix are treated as processed by an earlier run.
const batchPrefix = "Decommissioned"

// batchName builds a unique OU name. The short random suffix keeps two runs
// within the same second from colliding.
func batchName(t time.Time) string {
	return fmt.Sprintf("%s-%s-%s", batchPrefix, t.Format(snapshotTimeFormat), uuid.NewString()[:8])
}

// Decommission creates one timestamped OU under parentDN and, for each
// selected record independently, disables the account and moves it into the
// OU. The two mutations are not transactional: a failure between them leaves
// the record disabled in place, which the returned outcome makes visible.
// Per-record failures never abort the batch. Records are re-resolved by
// account name first, so re-running over an already-processed selection is a
// reported no-op rather than an error.
func (s *Service) Decommission(selected []ArchivedComputer, parentDN string) (*Batch, error) {
	ou, err := s.directory.CreateOrganizationalUnit(parentDN, batchName(time.Now().UTC()))
	if err != nil {
		return nil, fmt.Errorf("creating decommission OU: %w", err)
	}

	batch := &Batch{
		OU:       ou,
		Outcomes: make([]Outcome, 0, len(selected)),
	}

	for i, record := range selected {
		s.progress.Step(i+1, len(selected), record.Computer.Name)
		batch.Outcomes = append(batch.Outcomes, s.decommissionOne(record, ou))
	}
	return batch, nil
}

func (s *Service) decommissionOne(record ArchivedComputer, ou string) Outcome {
	outcome := Outcome{
		Name:  record.Computer.Name,
		OldDN: record.Computer.DN,
	}

	// The archived DN may be out of date; act on the current object.
	current, err := s.directory.LookupComputer(record.Computer.Name)
	if err != nil {
		if errors.Is(err, activedirectory.ErrNotFound) {
			outcome.Err = fmt.Sprintf("no longer exists: %v", err)
		} else {
			outcome.Err = err.Error()
		}
		return outcome
	}
	outcome.OldDN = current.DN

	disabled, err := s.directory.DisableAccount(current.DN)
	if err != nil {
		outcome.Err = err.Error()
		return outcome
	}
	outcome.Disabled = disabled

	if alreadyDecommissioned(current.DN) {
		outcome.NewDN = current.DN
		return outcome
	}

	newDN, err := s.directory.MoveObject(current.DN, ou)
	if err != nil {
		// Disabled but not moved; surfaced for a targeted retry.
		outcome.Err = err.Error()
		return outcome
	}
	outcome.NewDN = newDN
	outcome.Moved = true
	return outcome
}

// alreadyDecommissioned reports whether the object already lives under a
// decommission OU from some earlier batch.
func alreadyDecommissioned(dn string) bool {
	return strings.Contains(strings.ToLower(dn), strings.ToLower(",ou="+batchPrefix+"-"))
}
