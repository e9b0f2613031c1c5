package activedirectory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFiletime(t *testing.T) {
	// 2023-11-01 00:00:00 UTC.
	parsed, err := fromFiletime("133432704000000000")
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.Equal(t, time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC), *parsed)
}

func TestFromFiletimeSentinels(t *testing.T) {
	for _, value := range []string{"", "0", "9223372036854775807"} {
		parsed, err := fromFiletime(value)
		require.NoError(t, err)
		assert.Nil(t, parsed, "value %q", value)
	}
}

func TestFromFiletimeInvalid(t *testing.T) {
	_, err := fromFiletime("not-a-number")
	assert.Error(t, err)
}

func TestFiletimeRoundTrip(t *testing.T) {
	// FILETIME has 100ns resolution, so a 100ns-aligned instant survives.
	instant := time.Date(2024, 3, 15, 8, 45, 12, 3456700, time.UTC)

	parsed, err := fromFiletime(toFiletime(instant))
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.True(t, instant.Equal(*parsed))
}

func TestFromGeneralizedTime(t *testing.T) {
	parsed, err := fromGeneralizedTime("20240117093045.0Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 17, 9, 30, 45, 0, time.UTC), parsed)

	_, err = fromGeneralizedTime("17/01/2024")
	assert.Error(t, err)
}
