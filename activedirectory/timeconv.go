package activedirectory

import (
	"fmt"
	"strconv"
	"time"
)

const (
	// 100ns intervals between 1601-01-01 and the Unix epoch.
	filetimeEpochOffset = 116444736000000000
	filetimeNever       = int64(9223372036854775807)

	// whenCreated/whenChanged wire format, e.g. "20240117093045.0Z".
	generalizedTimeLayout = "20060102150405.0Z"
)

// fromFiletime converts an AD FILETIME attribute value (decimal string of
// 100ns intervals since 1601) to a time. Zero and "never" sentinel values
// yield nil.
func fromFiletime(value string) (*time.Time, error) {
	if value == "" || value == "0" {
		return nil, nil
	}

	ftVal, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid FILETIME integer %q: %w", value, err)
	}

	if ftVal == 0 || ftVal == filetimeNever {
		return nil, nil
	}

	nsSinceUnix := (ftVal - filetimeEpochOffset) * 100
	t := time.Unix(0, nsSinceUnix).UTC()
	return &t, nil
}

// toFiletime is the inverse of fromFiletime, used when stamping
// FILETIME-valued attributes.
func toFiletime(t time.Time) string {
	ftVal := t.UnixNano()/100 + filetimeEpochOffset
	return strconv.FormatInt(ftVal, 10)
}

func fromGeneralizedTime(value string) (time.Time, error) {
	t, err := time.Parse(generalizedTimeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid generalized time %q: %w", value, err)
	}
	return t.UTC(), nil
}
