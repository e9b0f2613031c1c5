package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		input   string
		n       int
		want    []int
		wantErr bool
	}{
		{input: "", n: 5, want: nil},
		{input: "all", n: 3, want: []int{1, 2, 3}},
		{input: "2", n: 5, want: []int{2}},
		{input: "1,3-5", n: 5, want: []int{1, 3, 4, 5}},
		{input: "3-5, 4", n: 5, want: []int{3, 4, 5}},
		{input: "0", n: 5, wantErr: true},
		{input: "6", n: 5, wantErr: true},
		{input: "5-3", n: 5, wantErr: true},
		{input: "two", n: 5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseSelection(tt.input, tt.n)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTerminalChooser(t *testing.T) {
	var out bytes.Buffer
	chooser := newTerminalChooser(strings.NewReader("1,3\n"), &out, func(s string) string { return s })

	chosen, err := chooser.Choose([]string{"WS01", "WS02", "WS03"})
	require.NoError(t, err)

	assert.Equal(t, []string{"WS01", "WS03"}, chosen)
	assert.Contains(t, out.String(), "WS02")
}

func TestTerminalChooserEmptyList(t *testing.T) {
	chooser := newTerminalChooser(strings.NewReader(""), &bytes.Buffer{}, func(s string) string { return s })

	chosen, err := chooser.Choose(nil)
	require.NoError(t, err)
	assert.Empty(t, chosen)
}
