// Package vmdiff reconciles the virtual-machine inventory against the
// directory's computer accounts: VMs with no matching account and accounts
// with no matching VM are both worth an operator's attention.
package vmdiff

import (
	"sort"
	"strings"
)

// Report lists the two one-sided differences between the inventories.
type Report struct {
	// MissingFromAD are VM names with no computer account.
	MissingFromAD []string `json:"missing_from_ad"`
	// MissingFromVCenter are computer accounts with no VM.
	MissingFromVCenter []string `json:"missing_from_vcenter"`
}

func (r Report) InSync() bool {
	return len(r.MissingFromAD) == 0 && len(r.MissingFromVCenter) == 0
}

// Compare matches VM names against computer account names. Matching is
// case-insensitive and ignores the trailing "$" of account names; the
// reported names keep their original spelling. Results are sorted.
func Compare(vmNames, accountNames []string) Report {
	vms := normalize(vmNames)
	accounts := normalize(accountNames)

	var report Report
	for key, name := range vms {
		if _, ok := accounts[key]; !ok {
			report.MissingFromAD = append(report.MissingFromAD, name)
		}
	}
	for key, name := range accounts {
		if _, ok := vms[key]; !ok {
			report.MissingFromVCenter = append(report.MissingFromVCenter, name)
		}
	}

	sort.Strings(report.MissingFromAD)
	sort.Strings(report.MissingFromVCenter)
	return report
}

func normalize(names []string) map[string]string {
	normalized := make(map[string]string, len(names))
	for _, name := range names {
		key := strings.ToUpper(strings.TrimSuffix(name, "$"))
		if key == "" {
			continue
		}
		normalized[key] = name
	}
	return normalized
}
