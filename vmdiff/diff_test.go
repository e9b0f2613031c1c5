package vmdiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	report := Compare(
		[]string{"ws01", "WS02", "orphan-vm"},
		[]string{"WS01$", "WS02$", "GHOST$"},
	)

	assert.Equal(t, []string{"orphan-vm"}, report.MissingFromAD)
	assert.Equal(t, []string{"GHOST$"}, report.MissingFromVCenter)
	assert.False(t, report.InSync())
}

func TestCompareInSync(t *testing.T) {
	report := Compare([]string{"WS01"}, []string{"ws01$"})
	assert.True(t, report.InSync())
	assert.Empty(t, report.MissingFromAD)
	assert.Empty(t, report.MissingFromVCenter)
}

func TestCompareEmptyInventories(t *testing.T) {
	assert.True(t, Compare(nil, nil).InSync())

	report := Compare(nil, []string{"WS01$"})
	assert.Equal(t, []string{"WS01$"}, report.MissingFromVCenter)
}
