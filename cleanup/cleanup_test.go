package cleanup

import (
	"fmt"
	"strings"

	"opslab/adjanitor/activedirectory"
)

// fakeDirectory implements Directory in memory and counts mutations.
type fakeDirectory struct {
	workstations    []activedirectory.Computer
	keys            []activedirectory.RecoveryKey
	workstationsErr error
	keysErr         error
	keysCalls       int

	disabled     map[string]bool
	disableErr   map[string]error
	moveErr      map[string]error
	disableCalls int
	moveCalls    int
	createdOUs   []string
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		disabled:   make(map[string]bool),
		disableErr: make(map[string]error),
		moveErr:    make(map[string]error),
	}
}

func (f *fakeDirectory) EnabledWorkstations() ([]activedirectory.Computer, error) {
	if f.workstationsErr != nil {
		return nil, f.workstationsErr
	}
	return f.workstations, nil
}

func (f *fakeDirectory) RecoveryKeys() ([]activedirectory.RecoveryKey, error) {
	f.keysCalls++
	if f.keysErr != nil {
		return nil, f.keysErr
	}
	return f.keys, nil
}

func (f *fakeDirectory) LookupComputer(accountName string) (activedirectory.Computer, error) {
	for _, computer := range f.workstations {
		if computer.Name == accountName {
			return computer, nil
		}
	}
	return activedirectory.Computer{}, fmt.Errorf("computer %s: %w", accountName, activedirectory.ErrNotFound)
}

func (f *fakeDirectory) DisableAccount(dn string) (bool, error) {
	f.disableCalls++
	if err := f.disableErr[dn]; err != nil {
		return false, err
	}
	if f.disabled[dn] {
		return false, nil
	}
	f.disabled[dn] = true
	return true, nil
}

func (f *fakeDirectory) MoveObject(dn, newParentDN string) (string, error) {
	f.moveCalls++
	if err := f.moveErr[dn]; err != nil {
		return "", err
	}
	rdn := strings.SplitN(dn, ",", 2)[0]
	return rdn + "," + newParentDN, nil
}

func (f *fakeDirectory) CreateOrganizationalUnit(parentDN, name string) (string, error) {
	dn := "OU=" + name + "," + parentDN
	f.createdOUs = append(f.createdOUs, dn)
	return dn, nil
}
