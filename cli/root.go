package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"opslab/adjanitor/activedirectory"
	"opslab/adjanitor/config"
)

var (
	settingsFile string
	verbose      bool
	logger       zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "adjanitor",
	Short: "Administrative maintenance tools for Windows domains",
	Long: `adjanitor bundles the recurring maintenance jobs of a Windows domain:
finding and decommissioning stale computer accounts (with a recovery-point
backup first), stamping logon telemetry into the directory, checking host
firewall posture over WinRM, and managing vSwitch port groups across a
vSphere cluster.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).Level(level).With().Timestamp().Logger()
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "settings.env", "settings env file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newCleanupCmd())
	rootCmd.AddCommand(newLastLogonCmd())
	rootCmd.AddCommand(newFirewallCmd())
	rootCmd.AddCommand(newVSwitchCmd())
	rootCmd.AddCommand(newVMDiffCmd())
}

func loadConfig() (config.Configuration, error) {
	return config.LoadEnvConfig(settingsFile)
}

// connectAD builds and binds the LDAP client from the settings file. Callers
// own Close.
func connectAD(cfg config.Configuration) (*activedirectory.ActiveDirectoryInstance, error) {
	instance := activedirectory.NewActiveDirectoryInstance(
		cfg.LDAP.BaseDN,
		cfg.LDAP.DcFQDN,
		cfg.LDAP.PageSize,
		logger,
	)
	if err := instance.Connect(cfg.LDAP.Username, cfg.LDAP.Password); err != nil {
		return nil, fmt.Errorf("connecting to Active Directory: %w", err)
	}
	return instance, nil
}
