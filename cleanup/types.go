package cleanup

import (
	"time"

	"opslab/adjanitor/activedirectory"
)

// Directory is the slice of directory operations the cleanup workflow
// depends on. *activedirectory.ActiveDirectoryInstance satisfies it; tests
// substitute fakes.
type Directory interface {
	EnabledWorkstations() ([]activedirectory.Computer, error)
	RecoveryKeys() ([]activedirectory.RecoveryKey, error)
	LookupComputer(accountName string) (activedirectory.Computer, error)
	DisableAccount(dn string) (bool, error)
	MoveObject(dn, newParentDN string) (string, error)
	CreateOrganizationalUnit(parentDN, name string) (string, error)
}

// Progress observes per-record progress within a stage. It replaces ambient
// progress reporting so stages stay pure functions of their inputs.
type Progress interface {
	Step(current, total int, message string)
}

// NopProgress discards progress updates.
type NopProgress struct{}

func (NopProgress) Step(int, int, string) {}

// Chooser picks the subset of records the operator wants to carry into the
// next stage. Interactive implementations live in the CLI; ChooseAll serves
// non-interactive runs and tests.
type Chooser[T any] interface {
	Choose(items []T) ([]T, error)
}

// ChooseAll selects every presented record.
type ChooseAll[T any] struct{}

func (ChooseAll[T]) Choose(items []T) ([]T, error) {
	return items, nil
}

// ArchivedComputer is a computer record joined with the recovery keys stored
// under it, captured before any destructive action.
type ArchivedComputer struct {
	Computer     activedirectory.Computer      `json:"computer"`
	RecoveryKeys []activedirectory.RecoveryKey `json:"recovery_keys,omitempty"`
}

// Snapshot is the write-once backup produced by the archive stage and the
// sole input to decommission selection.
type Snapshot struct {
	CreatedAt time.Time          `json:"created_at"`
	Computers []ArchivedComputer `json:"computers"`
}

// Outcome records what happened to one computer during a decommission run.
// Disabled and Moved report mutations performed by this run; both false with
// an empty Err means the record had already been processed earlier.
type Outcome struct {
	Name     string `json:"name"`
	OldDN    string `json:"old_dn"`
	NewDN    string `json:"new_dn,omitempty"`
	Disabled bool   `json:"disabled"`
	Moved    bool   `json:"moved"`
	Err      string `json:"error,omitempty"`
}

func (o Outcome) Failed() bool {
	return o.Err != ""
}

// Batch is the container OU created by one decommission run together with
// the per-record outcomes.
type Batch struct {
	OU       string    `json:"ou"`
	Outcomes []Outcome `json:"outcomes"`
}

// Failed returns the outcomes that need operator attention, so a retry can
// target only the failed subset.
func (b *Batch) Failed() []Outcome {
	var failed []Outcome
	for _, outcome := range b.Outcomes {
		if outcome.Failed() {
			failed = append(failed, outcome)
		}
	}
	return failed
}

// Service runs the three-stage offline-cleanup workflow. Stages share no
// state beyond what is explicitly passed between them or persisted to the
// snapshot file; ordering (archive before decommission) is enforced by the
// caller.
type Service struct {
	directory Directory
	progress  Progress
}

func NewService(directory Directory, progress Progress) *Service {
	if progress == nil {
		progress = NopProgress{}
	}
	return &Service{
		directory: directory,
		progress:  progress,
	}
}
