package cleanup

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opslab/adjanitor/activedirectory"
)

func TestSnapshotFilename(t *testing.T) {
	stamp := time.Date(2024, 6, 1, 9, 30, 45, 0, time.UTC)
	assert.Equal(t, "adbackup_20240601-093045.json", SnapshotFilename("adbackup", stamp))
}

func TestArchiveAttachesMatchingRecoveryKeys(t *testing.T) {
	ws01 := workstation("WS01$", daysAgo(200), daysAgo(200), nil)
	ws02 := workstation("WS02$", daysAgo(200), daysAgo(200), nil)

	dir := newFakeDirectory()
	dir.keys = []activedirectory.RecoveryKey{
		{
			DN:       "CN=2024-05-01T10:00:00-00:00{aa}," + ws01.DN,
			Password: "111111-222222-333333-444444-555555-666666-777777-888888",
			Created:  daysAgo(30),
		},
		{
			DN:       "CN=2024-03-01T10:00:00-00:00{bb}," + ws01.DN,
			Password: "888888-777777-666666-555555-444444-333333-222222-111111",
			Created:  daysAgo(90),
		},
		{
			DN:       "CN=2024-05-01T10:00:00-00:00{cc},CN=OTHER,OU=Servers,DC=corp,DC=example",
			Password: "000000-000000-000000-000000-000000-000000-000000-000000",
			Created:  daysAgo(30),
		},
	}

	destination := filepath.Join(t.TempDir(), "backup.json")
	snapshot, err := NewService(dir, nil).Archive([]activedirectory.Computer{ws01, ws02}, destination)
	require.NoError(t, err)

	require.Len(t, snapshot.Computers, 2)
	assert.Len(t, snapshot.Computers[0].RecoveryKeys, 2)
	assert.Empty(t, snapshot.Computers[1].RecoveryKeys)

	// One bulk query, not one per computer.
	assert.Equal(t, 1, dir.keysCalls)
}

// A computer whose DN merely contains another computer's DN as a substring
// must not pick up the other machine's keys.
func TestArchiveDoesNotOverMatchOnSubstring(t *testing.T) {
	ws1 := activedirectory.Computer{Name: "WS1$", DN: "CN=WS1,OU=Workstations,DC=corp,DC=example"}
	ws11 := activedirectory.Computer{Name: "WS11$", DN: "CN=WS11,OU=Workstations,DC=corp,DC=example"}

	dir := newFakeDirectory()
	dir.keys = []activedirectory.RecoveryKey{
		{DN: "CN=2024-05-01T10:00:00-00:00{aa}," + ws11.DN, Password: "key-for-ws11"},
	}

	destination := filepath.Join(t.TempDir(), "backup.json")
	snapshot, err := NewService(dir, nil).Archive([]activedirectory.Computer{ws1, ws11}, destination)
	require.NoError(t, err)

	assert.Empty(t, snapshot.Computers[0].RecoveryKeys)
	require.Len(t, snapshot.Computers[1].RecoveryKeys, 1)
}

func TestArchiveEmptySelection(t *testing.T) {
	destination := filepath.Join(t.TempDir(), "backup.json")

	snapshot, err := NewService(newFakeDirectory(), nil).Archive(nil, destination)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Computers)

	loaded, err := LoadSnapshot(destination)
	require.NoError(t, err)
	assert.Empty(t, loaded.Computers)
	assert.NotNil(t, loaded.Computers)
}

func TestArchiveRoundTrip(t *testing.T) {
	expiration := daysAgo(300)
	ws01 := workstation("WS01$", daysAgo(200), daysAgo(210), &expiration)
	ws01.LastLogon = daysAgo(199)
	ws01.Created = daysAgo(900)

	dir := newFakeDirectory()
	dir.keys = []activedirectory.RecoveryKey{
		{
			DN:       "CN=2024-05-01T10:00:00-00:00{aa}," + ws01.DN,
			Password: "111111-222222-333333-444444-555555-666666-777777-888888",
			Created:  daysAgo(30),
		},
	}

	destination := filepath.Join(t.TempDir(), "backup.json")
	snapshot, err := NewService(dir, nil).Archive([]activedirectory.Computer{ws01}, destination)
	require.NoError(t, err)

	loaded, err := LoadSnapshot(destination)
	require.NoError(t, err)
	assert.True(t, snapshot.CreatedAt.Equal(loaded.CreatedAt))
	assert.Equal(t, snapshot.Computers, loaded.Computers)
}

func TestArchiveUnwritableDestinationFails(t *testing.T) {
	ws01 := workstation("WS01$", daysAgo(200), daysAgo(200), nil)

	// A destination under an existing file cannot be created.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, writeSnapshot(&Snapshot{}, blocker))

	_, err := NewService(newFakeDirectory(), nil).Archive(
		[]activedirectory.Computer{ws01},
		filepath.Join(blocker, "nested", "backup.json"),
	)
	assert.Error(t, err)
}

func TestArchivePropagatesRecoveryQueryFailure(t *testing.T) {
	dir := newFakeDirectory()
	dir.keysErr = errors.New("access denied")

	_, err := NewService(dir, nil).Archive(nil, filepath.Join(t.TempDir(), "backup.json"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "access denied")
}
