package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"opslab/adjanitor/vmdiff"
)

func newVMDiffCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "vmdiff",
		Short: "Reconcile vCenter VMs against directory computer accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			manager, err := connectVCenter(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer manager.Logout(cmd.Context())

			vmNames, err := manager.VMNames(cmd.Context())
			if err != nil {
				return err
			}

			instance, err := connectAD(cfg)
			if err != nil {
				return err
			}
			defer instance.Close()

			accountNames, err := instance.AllComputerNames()
			if err != nil {
				return err
			}

			report := vmdiff.Compare(vmNames, accountNames)
			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(report)
			}

			for _, name := range report.MissingFromAD {
				fmt.Printf("VM without computer account: %s\n", name)
			}
			for _, name := range report.MissingFromVCenter {
				fmt.Printf("Computer account without VM: %s\n", name)
			}
			if report.InSync() {
				logger.Info().Msg("inventories are in sync")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of text")
	return cmd
}
