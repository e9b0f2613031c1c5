package firewall

import (
	"bufio"
	"fmt"
	"strings"
)

// Profile is the state of one firewall profile (Domain, Private, Public).
type Profile struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// ParseNetshProfiles extracts per-profile firewall state from the output of
// "netsh advfirewall show allprofiles". Each profile appears as a
// "<Name> Profile Settings:" header followed by a "State  ON|OFF" line.
func ParseNetshProfiles(output string) ([]Profile, error) {
	var profiles []Profile
	current := ""

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasSuffix(line, "Profile Settings:") {
			current = strings.TrimSpace(strings.TrimSuffix(line, "Profile Settings:"))
			continue
		}

		if current != "" && strings.HasPrefix(line, "State") {
			fields := strings.Fields(line)
			if len(fields) < 2 {
				return nil, fmt.Errorf("malformed state line %q for profile %s", line, current)
			}
			profiles = append(profiles, Profile{
				Name:    current,
				Enabled: strings.EqualFold(fields[len(fields)-1], "ON"),
			})
			current = ""
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning netsh output: %w", err)
	}

	if len(profiles) == 0 {
		return nil, fmt.Errorf("no firewall profiles found in netsh output")
	}
	return profiles, nil
}
