package activedirectory

import (
	"strings"
	"time"
)

// Computer is a directory computer object with the attribute set needed for
// staleness evaluation. A Computer is immutable once fetched; staleness is a
// pure function of its fields and the evaluation time.
type Computer struct {
	// Name is the sAMAccountName, including the trailing "$".
	Name string `json:"name"`
	DN   string `json:"dn"`

	Created         time.Time `json:"created"`
	Changed         time.Time `json:"changed"`
	PasswordLastSet time.Time `json:"password_last_set"`
	LastLogon       time.Time `json:"last_logon"`

	// PasswordExpiration is the LAPS password expiration
	// (ms-Mcs-AdmPwdExpirationTime). Nil means the machine has no managed
	// local credential.
	PasswordExpiration *time.Time `json:"password_expiration,omitempty"`

	OperatingSystem string `json:"operating_system"`
	Enabled         bool   `json:"enabled"`
}

// Stale reports whether every staleness signal predates the threshold. The
// test is conjunctive: one fresh signal keeps the machine, since a recent
// password change or LAPS rotation means it is still managed even when the
// object itself has not been written in a long time.
func (c Computer) Stale(threshold time.Time) bool {
	if !c.Changed.Before(threshold) {
		return false
	}
	if !c.PasswordLastSet.Before(threshold) {
		return false
	}
	if c.PasswordExpiration != nil && !c.PasswordExpiration.Before(threshold) {
		return false
	}
	return true
}

// RecoveryKey is a BitLocker recovery object (msFVE-RecoveryInformation)
// stored as a child of its computer object.
type RecoveryKey struct {
	DN       string    `json:"dn"`
	Password string    `json:"password"`
	Created  time.Time `json:"created"`
}

// BelongsTo reports whether the recovery object is stored under the given
// computer DN. Recovery objects are direct children of the computer object,
// so an ancestor comparison on the DN is the join: the computer DN must be
// the tail of the recovery DN at a component boundary. Plain substring
// containment would over-match when one DN happens to appear inside another.
func (k RecoveryKey) BelongsTo(computerDN string) bool {
	suffix := "," + computerDN
	if len(k.DN) <= len(suffix) {
		return false
	}
	// DNs compare case-insensitively.
	return strings.EqualFold(k.DN[len(k.DN)-len(suffix):], suffix)
}
