package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"opslab/adjanitor/config"
	"opslab/adjanitor/vswitch"
)

func newVSwitchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vswitch",
		Short: "Manage standard vSwitch port groups across a cluster",
	}
	cmd.AddCommand(newVSwitchAddCmd())
	cmd.AddCommand(newVSwitchRemoveCmd())
	return cmd
}

func connectVCenter(ctx context.Context, cfg config.Configuration) (*vswitch.Manager, error) {
	if cfg.VCenter.URL == "" {
		return nil, fmt.Errorf("VCENTER_URL must be set in %s", settingsFile)
	}
	return vswitch.NewManager(ctx, cfg.VCenter, logger)
}

func newVSwitchAddCmd() *cobra.Command {
	var (
		cluster    string
		name       string
		vlan       int32
		switchName string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a port group on every host of the cluster",
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

			results, err := manager.AddPortGroup(cmd.Context(), cluster, vswitch.PortGroupSpec{
				Name:   name,
				VLAN:   vlan,
				Switch: switchName,
			})
			if err != nil {
				return err
			}
			return printHostResults(results)
		},
	}

	cmd.Flags().StringVar(&cluster, "cluster", "", "cluster inventory path or name")
	cmd.Flags().StringVar(&name, "name", "", "port group name")
	cmd.Flags().Int32Var(&vlan, "vlan", 0, "VLAN ID")
	cmd.Flags().StringVar(&switchName, "switch", "vSwitch0", "standard vSwitch name")
	_ = cmd.MarkFlagRequired("cluster")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newVSwitchRemoveCmd() *cobra.Command {
	var (
		cluster string
		name    string
	)

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a port group from every host of the cluster",
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

			results, err := manager.RemovePortGroup(cmd.Context(), cluster, name)
			if err != nil {
				return err
			}
			return printHostResults(results)
		},
	}

	cmd.Flags().StringVar(&cluster, "cluster", "", "cluster inventory path or name")
	cmd.Flags().StringVar(&name, "name", "", "port group name")
	_ = cmd.MarkFlagRequired("cluster")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func printHostResults(results []vswitch.HostResult) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "HOST\tCHANGED\tERROR")
	failed := 0
	for _, result := range results {
		errText := "-"
		if result.Err != "" {
			errText = result.Err
			failed++
		}
		fmt.Fprintf(w, "%s\t%t\t%s\n", result.Host, result.Changed, errText)
	}
	w.Flush()

	if failed > 0 {
		return fmt.Errorf("%d of %d hosts failed", failed, len(results))
	}
	return nil
}
