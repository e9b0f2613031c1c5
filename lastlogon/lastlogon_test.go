package lastlogon

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opslab/adjanitor/activedirectory"
)

type fakeDirectory struct {
	computers map[string]activedirectory.Computer
	replaced  map[string][]string // dn -> [attribute, value]
}

func (f *fakeDirectory) LookupComputer(accountName string) (activedirectory.Computer, error) {
	computer, ok := f.computers[accountName]
	if !ok {
		return activedirectory.Computer{}, fmt.Errorf("computer %s: %w", accountName, activedirectory.ErrNotFound)
	}
	return computer, nil
}

func (f *fakeDirectory) ReplaceAttribute(dn, attribute string, values ...string) error {
	if f.replaced == nil {
		f.replaced = make(map[string][]string)
	}
	f.replaced[dn] = append([]string{attribute}, values...)
	return nil
}

func TestReadTelemetry(t *testing.T) {
	input := strings.NewReader(
		"account,timestamp,source\n" +
			"WS01$,2024-05-20T08:00:00Z,dc01\n" +
			"WS02$,2024-05-21T09:30:00Z,dc02\n")

	events, err := ReadTelemetry(input)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "WS01$", events[0].Account)
	assert.Equal(t, time.Date(2024, 5, 21, 9, 30, 0, 0, time.UTC), events[1].Time)
}

func TestReadTelemetryRejectsBadTimestamp(t *testing.T) {
	_, err := ReadTelemetry(strings.NewReader("WS01$,yesterday,dc01\n"))
	assert.Error(t, err)
}

func TestLatestKeepsNewestPerAccount(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	events := []Event{
		{Account: "WS01$", Time: base},
		{Account: "WS01$", Time: base.Add(48 * time.Hour), Source: "dc02"},
		{Account: "WS01$", Time: base.Add(24 * time.Hour)},
		{Account: "WS02$", Time: base},
	}

	latest := Latest(events)
	require.Len(t, latest, 2)
	assert.Equal(t, "dc02", latest["WS01$"].Source)
}

func TestUpdaterApply(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	dir := &fakeDirectory{
		computers: map[string]activedirectory.Computer{
			"WS01$": {Name: "WS01$", DN: "CN=WS01,DC=corp,DC=example", LastLogon: base.AddDate(0, -1, 0)},
			"WS02$": {Name: "WS02$", DN: "CN=WS02,DC=corp,DC=example", LastLogon: base.AddDate(0, 1, 0)},
		},
	}

	updater := &Updater{Directory: dir, Attribute: "extensionAttribute13", Logger: zerolog.Nop()}
	results := updater.Apply([]Event{
		{Account: "WS01$", Time: base},
		{Account: "WS02$", Time: base}, // directory already newer
		{Account: "GONE$", Time: base},
	})

	require.Len(t, results, 3)

	byAccount := make(map[string]Result)
	for _, result := range results {
		byAccount[result.Account] = result
	}

	assert.Empty(t, byAccount["WS01$"].Err)
	assert.True(t, byAccount["WS01$"].Stamped.Equal(base))
	assert.Equal(t,
		[]string{"extensionAttribute13", base.Format(time.RFC3339)},
		dir.replaced["CN=WS01,DC=corp,DC=example"])

	assert.True(t, byAccount["WS02$"].Stamped.IsZero())
	assert.NotContains(t, dir.replaced, "CN=WS02,DC=corp,DC=example")

	assert.NotEmpty(t, byAccount["GONE$"].Err)
}
