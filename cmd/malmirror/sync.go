package main

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/varoOP/malmirror/internal/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror anime records from Jikan into the local database",
	Long: `Sync walks the MAL id list in order. For every id it skips records that
are already stored, fetches new ones and, with --force, refreshes existing
ones. Progress is checkpointed after each item so an interrupted run can be
continued with --resume.

With --cron the command keeps running and starts a resumable sync on the
given schedule, e.g. --cron "@daily" or --cron "0 3 * * *".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		fromIndex, _ := flags.GetInt("from-index")
		limit, _ := flags.GetInt("limit")
		force, _ := flags.GetBool("force")
		resume, _ := flags.GetBool("resume")
		schedule, _ := flags.GetString("cron")

		if schedule == "" {
			schedule = viper.GetString("sync.cron")
		}

		opts := domain.SyncOptions{
			FromIndex:   fromIndex,
			Limit:       limit,
			ForceUpdate: force,
			Resume:      resume,
		}

		application, err := newApp()
		if err != nil {
			return err
		}
		defer application.Close()

		ctx, stop := signalContext()
		defer stop()

		if schedule != "" {
			opts.Resume = true

			c, err := application.Schedule(schedule, opts)
			if err != nil {
				return err
			}
			c.Start()
			<-ctx.Done()
			<-c.Stop().Done()
			return nil
		}

		report, err := application.Sync(ctx, opts)
		if err != nil {
			return errors.Wrap(err, "sync failed")
		}

		fmt.Printf("processed %d (created %d, updated %d, skipped %d, failed %d) in %s\n",
			report.Processed, report.Created, report.Updated, report.Skipped, report.Failed, report.Duration.Round(time.Millisecond))
		return nil
	},
}

func init() {
	syncCmd.Flags().Int("from-index", 0, "position in the id list to start from")
	syncCmd.Flags().Int("limit", 0, "maximum number of ids to process (0 means no limit)")
	syncCmd.Flags().Bool("force", false, "refetch and update records that already exist")
	syncCmd.Flags().Bool("resume", false, "continue after the last saved checkpoint")
	syncCmd.Flags().String("cron", "", "run on this cron schedule instead of once")
	rootCmd.AddCommand(syncCmd)
}
