package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"opslab/adjanitor/lastlogon"
)

func newLastLogonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lastlogon",
		Short: "Stamp logon telemetry into directory attributes",
	}
	cmd.AddCommand(newLastLogonUpdateCmd())
	return cmd
}

func newLastLogonUpdateCmd() *cobra.Command {
	var (
		telemetryPath string
		attribute     string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Write the newest observed logon time per computer to an attribute",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(telemetryPath)
			if err != nil {
				return fmt.Errorf("opening telemetry: %w", err)
			}
			defer file.Close()

			events, err := lastlogon.ReadTelemetry(file)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			instance, err := connectAD(cfg)
			if err != nil {
				return err
			}
			defer instance.Close()

			updater := &lastlogon.Updater{
				Directory: instance,
				Attribute: attribute,
				Logger:    logger,
			}

			stamped, failed := 0, 0
			for _, result := range updater.Apply(events) {
				switch {
				case result.Err != "":
					failed++
					logger.Warn().Str("account", result.Account).Str("error", result.Err).Msg("update failed")
				case !result.Stamped.IsZero():
					stamped++
				}
			}
			logger.Info().
				Int("events", len(events)).
				Int("stamped", stamped).
				Int("failed", failed).
				Msg("telemetry applied")

			if failed > 0 {
				return fmt.Errorf("%d accounts failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&telemetryPath, "telemetry", "", "CSV telemetry export (account,timestamp,source)")
	_ = cmd.MarkFlagRequired("telemetry")
	cmd.Flags().StringVar(&attribute, "attribute", "extensionAttribute13", "attribute that receives the logon time")
	return cmd
}
