package lastlogon

import (
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"opslab/adjanitor/activedirectory"
)

// Directory is the slice of directory operations the updater needs.
type Directory interface {
	LookupComputer(accountName string) (activedirectory.Computer, error)
	ReplaceAttribute(dn, attribute string, values ...string) error
}

// Result records what happened for one account. Stamped is zero when the
// directory already held an equal or newer logon time.
type Result struct {
	Account string    `json:"account"`
	DN      string    `json:"dn,omitempty"`
	Stamped time.Time `json:"stamped,omitempty"`
	Err     string    `json:"error,omitempty"`
}

// Updater stamps the newest observed logon time per computer account into a
// directory attribute. Accounts are processed independently; failures are
// collected, not fatal.
type Updater struct {
	Directory Directory
	// Attribute receives the RFC 3339 logon time, e.g. extensionAttribute13.
	Attribute string
	Logger    zerolog.Logger
}

func (u *Updater) Apply(events []Event) []Result {
	latest := Latest(events)

	accounts := make([]string, 0, len(latest))
	for account := range latest {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)

	results := make([]Result, 0, len(accounts))
	for _, account := range accounts {
		results = append(results, u.applyOne(latest[account]))
	}
	return results
}

func (u *Updater) applyOne(event Event) Result {
	result := Result{Account: event.Account}

	computer, err := u.Directory.LookupComputer(event.Account)
	if err != nil {
		if errors.Is(err, activedirectory.ErrNotFound) {
			u.Logger.Warn().Str("account", event.Account).Msg("telemetry references unknown computer")
		}
		result.Err = err.Error()
		return result
	}
	result.DN = computer.DN

	// The replicated lastLogonTimestamp can run ahead of the telemetry
	// export; never move the stamp backwards.
	if !event.Time.After(computer.LastLogon) {
		return result
	}

	if err := u.Directory.ReplaceAttribute(computer.DN, u.Attribute, event.Time.Format(time.RFC3339)); err != nil {
		result.Err = err.Error()
		return result
	}

	result.Stamped = event.Time
	u.Logger.Debug().Str("account", event.Account).Time("logon", event.Time).Msg("stamped logon time")
	return result
}
