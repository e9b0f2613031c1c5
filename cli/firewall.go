package cli

import (
	"bufio"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"opslab/adjanitor/firewall"
)

func newFirewallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "firewall",
		Short: "Check host firewall posture over WinRM",
	}
	cmd.AddCommand(newFirewallCheckCmd())
	return cmd
}

func newFirewallCheckCmd() *cobra.Command {
	var hostsFile string

	cmd := &cobra.Command{
		Use:   "check [host...]",
		Short: "Report per-profile firewall state for each host",
		RunE: func(cmd *cobra.Command, args []string) error {
			hosts := args
			if hostsFile != "" {
				fromFile, err := readHostsFile(hostsFile)
				if err != nil {
					return err
				}
				hosts = append(hosts, fromFile...)
			}
			if len(hosts) == 0 {
				return fmt.Errorf("no hosts given; pass them as arguments or via --hosts-file")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.WinRM.Username == "" {
				return fmt.Errorf("WINRM_USERNAME must be set in %s", settingsFile)
			}

			checker := &firewall.Checker{Config: cfg.WinRM, Logger: logger}
			postures := checker.CheckAll(cmd.Context(), hosts)

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "HOST\tCOMPLIANT\tPROFILES\tERROR")
			nonCompliant := 0
			for _, posture := range postures {
				if !posture.Compliant() {
					nonCompliant++
				}
				errText := "-"
				if posture.Err != "" {
					errText = posture.Err
				}
				fmt.Fprintf(w, "%s\t%t\t%s\t%s\n", posture.Host, posture.Compliant(), formatProfiles(posture.Profiles), errText)
			}
			w.Flush()

			if nonCompliant > 0 {
				return fmt.Errorf("%d of %d hosts are not compliant", nonCompliant, len(postures))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&hostsFile, "hosts-file", "", "file with one hostname per line")
	return cmd
}

func formatProfiles(profiles []firewall.Profile) string {
	if len(profiles) == 0 {
		return "-"
	}
	out := ""
	for i, profile := range profiles {
		state := "OFF"
		if profile.Enabled {
			state = "ON"
		}
		if i > 0 {
			out += " "
		}
		out += profile.Name + "=" + state
	}
	return out
}

func readHostsFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening hosts file: %w", err)
	}
	defer file.Close()

	var hosts []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			hosts = append(hosts, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading hosts file: %w", err)
	}
	return hosts, nil
}
