package firewall

import (
	"context"
	"fmt"
	"time"

	"github.com/masterzen/winrm"
	"github.com/rs/zerolog"

	"opslab/adjanitor/config"
)

const netshCommand = "netsh advfirewall show allprofiles"

// Posture is the firewall state of one host. Err is set when the host could
// not be queried; Profiles is empty in that case.
type Posture struct {
	Host     string    `json:"host"`
	Profiles []Profile `json:"profiles,omitempty"`
	Err      string    `json:"error,omitempty"`
}

// Compliant reports whether the firewall is on for every profile. A host
// that could not be queried is not compliant.
func (p Posture) Compliant() bool {
	if p.Err != "" || len(p.Profiles) == 0 {
		return false
	}
	for _, profile := range p.Profiles {
		if !profile.Enabled {
			return false
		}
	}
	return true
}

// Checker queries host firewall posture over WinRM.
type Checker struct {
	Config config.WinRMConfiguration
	Logger zerolog.Logger
}

// CheckAll queries each host in turn. Per-host failures are recorded in the
// returned postures rather than aborting the sweep.
func (c *Checker) CheckAll(ctx context.Context, hosts []string) []Posture {
	postures := make([]Posture, 0, len(hosts))
	for _, host := range hosts {
		posture, err := c.CheckHost(ctx, host)
		if err != nil {
			c.Logger.Warn().Str("host", host).Err(err).Msg("firewall check failed")
			posture = Posture{Host: host, Err: err.Error()}
		}
		postures = append(postures, posture)
	}
	return postures
}

// CheckHost runs netsh on the host over WinRM and parses the per-profile
// firewall state.
func (c *Checker) CheckHost(ctx context.Context, host string) (Posture, error) {
	endpoint := winrm.NewEndpoint(host, c.Config.Port, c.Config.UseHTTPS, true, nil, nil, nil, 30*time.Second)
	client, err := winrm.NewClient(endpoint, c.Config.Username, c.Config.Password)
	if err != nil {
		return Posture{}, fmt.Errorf("creating WinRM client for %s: %w", host, err)
	}

	stdout, stderr, exitCode, err := client.RunWithContextWithString(ctx, netshCommand, "")
	if err != nil {
		return Posture{}, fmt.Errorf("running netsh on %s: %w", host, err)
	}
	if exitCode != 0 {
		return Posture{}, fmt.Errorf("netsh on %s exited %d: %s", host, exitCode, stderr)
	}

	profiles, err := ParseNetshProfiles(stdout)
	if err != nil {
		return Posture{}, fmt.Errorf("parsing netsh output from %s: %w", host, err)
	}
	return Posture{Host: host, Profiles: profiles}, nil
}
