package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"opslab/adjanitor/activedirectory"
	"opslab/adjanitor/cleanup"
)

// logProgress reports per-record stage progress through the logger.
type logProgress struct{}

func (logProgress) Step(current, total int, message string) {
	logger.Debug().Int("current", current).Int("total", total).Msg(message)
}

func newCleanupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Stale computer cleanup: select, archive, decommission",
		Long: `The cleanup workflow runs in three stages with an operator checkpoint
between each: select stale workstations, archive the chosen subset (with
their BitLocker recovery keys) to a snapshot file, then decommission a
subset of the archived records into a fresh timestamped OU. Decommission
only accepts records from a snapshot file, so a recovery point always
exists before anything is disabled or moved.`,
	}

	cmd.AddCommand(newCleanupSelectCmd())
	cmd.AddCommand(newCleanupArchiveCmd())
	cmd.AddCommand(newCleanupDecommissionCmd())
	return cmd
}

func newCleanupSelectCmd() *cobra.Command {
	var (
		maxAgeDays int
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "select",
		Short: "List stale workstation accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			instance, err := connectAD(cfg)
			if err != nil {
				return err
			}
			defer instance.Close()

			service := cleanup.NewService(instance, logProgress{})
			stale, err := service.SelectStale(maxAgeDays, time.Now().UTC())
			if err != nil {
				return err
			}

			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(stale)
			}
			printComputers(stale)
			logger.Info().Int("count", len(stale)).Int("max_age_days", maxAgeDays).Msg("stale workstations")
			return nil
		},
	}

	cmd.Flags().IntVar(&maxAgeDays, "max-age-days", cleanup.DefaultMaxAgeDays, "staleness window in days")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of a table")
	return cmd
}

func newCleanupArchiveCmd() *cobra.Command {
	var (
		maxAgeDays  int
		destination string
		selectAll   bool
	)

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Back up selected stale computers to a snapshot file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			instance, err := connectAD(cfg)
			if err != nil {
				return err
			}
			defer instance.Close()

			service := cleanup.NewService(instance, logProgress{})
			stale, err := service.SelectStale(maxAgeDays, time.Now().UTC())
			if err != nil {
				return err
			}

			selected, err := chooseComputers(stale, selectAll)
			if err != nil {
				return err
			}

			if destination == "" {
				destination = cleanup.SnapshotFilename("adbackup", time.Now().UTC())
			}

			snapshot, err := service.Archive(selected, destination)
			if err != nil {
				return err
			}

			keys := 0
			for _, archived := range snapshot.Computers {
				keys += len(archived.RecoveryKeys)
			}
			logger.Info().
				Int("computers", len(snapshot.Computers)).
				Int("recovery_keys", keys).
				Str("snapshot", destination).
				Msg("snapshot written")
			return nil
		},
	}

	cmd.Flags().IntVar(&maxAgeDays, "max-age-days", cleanup.DefaultMaxAgeDays, "staleness window in days")
	cmd.Flags().StringVar(&destination, "out", "", "snapshot file (default adbackup_<timestamp>.json)")
	cmd.Flags().BoolVar(&selectAll, "all", false, "archive every stale computer without prompting")
	return cmd
}

func newCleanupDecommissionCmd() *cobra.Command {
	var (
		snapshotPath string
		targetDN     string
		selectAll    bool
	)

	cmd := &cobra.Command{
		Use:   "decommission",
		Short: "Disable archived computers and move them into a fresh OU",
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := cleanup.LoadSnapshot(snapshotPath)
			if err != nil {
				return err
			}

			var chooser cleanup.Chooser[cleanup.ArchivedComputer] = cleanup.ChooseAll[cleanup.ArchivedComputer]{}
			if !selectAll {
				chooser = newTerminalChooser(os.Stdin, os.Stdout, func(a cleanup.ArchivedComputer) string {
					return fmt.Sprintf("%s  (%d recovery keys)", a.Computer.Name, len(a.RecoveryKeys))
				})
			}
			selected, err := chooser.Choose(snapshot.Computers)
			if err != nil {
				return err
			}
			if len(selected) == 0 {
				logger.Info().Msg("nothing selected")
				return nil
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

			service := cleanup.NewService(instance, logProgress{})
			batch, err := service.Decommission(selected, targetDN)
			if err != nil {
				return err
			}

			printOutcomes(batch)
			if failed := batch.Failed(); len(failed) > 0 {
				return fmt.Errorf("%d of %d records failed", len(failed), len(batch.Outcomes))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "snapshot file written by 'cleanup archive'")
	cmd.Flags().StringVar(&targetDN, "target", "", "parent DN that receives the new decommission OU")
	_ = cmd.MarkFlagRequired("snapshot")
	_ = cmd.MarkFlagRequired("target")
	cmd.Flags().BoolVar(&selectAll, "all", false, "decommission every archived computer without prompting")
	return cmd
}

func chooseComputers(computers []activedirectory.Computer, selectAll bool) ([]activedirectory.Computer, error) {
	if selectAll {
		return cleanup.ChooseAll[activedirectory.Computer]{}.Choose(computers)
	}
	chooser := newTerminalChooser(os.Stdin, os.Stdout, func(c activedirectory.Computer) string {
		return fmt.Sprintf("%s  %s  changed %s", c.Name, c.OperatingSystem, c.Changed.Format(time.DateOnly))
	})
	return chooser.Choose(computers)
}

func printComputers(computers []activedirectory.Computer) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tOS\tCHANGED\tPWD SET\tLAPS EXPIRY\tLAST LOGON")
	for _, c := range computers {
		expiry := "-"
		if c.PasswordExpiration != nil {
			expiry = c.PasswordExpiration.Format(time.DateOnly)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.Name,
			c.OperatingSystem,
			c.Changed.Format(time.DateOnly),
			c.PasswordLastSet.Format(time.DateOnly),
			expiry,
			c.LastLogon.Format(time.DateOnly),
		)
	}
	w.Flush()
}

func printOutcomes(batch *cleanup.Batch) {
	fmt.Printf("Batch OU: %s\n", batch.OU)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDISABLED\tMOVED\tERROR")
	for _, outcome := range batch.Outcomes {
		errText := "-"
		if outcome.Failed() {
			errText = outcome.Err
		}
		fmt.Fprintf(w, "%s\t%t\t%t\t%s\n", outcome.Name, outcome.Disabled, outcome.Moved, errText)
	}
	w.Flush()
}
