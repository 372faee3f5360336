package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the mirrored catalog over HTTP",
	Long: `Serve starts the read API:
  GET /anime/:id      a single record
  GET /anime          filtered list (page, limit, order_by, order, q, filter[column])
  GET /anime/count    number of records matching the same filters
  GET /metrics        Prometheus metrics
  GET /health         liveness

If sync.cron is set, resumable syncs run in the background on that schedule.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApp()
		if err != nil {
			return err
		}
		defer application.Close()

		ctx, stop := signalContext()
		defer stop()

		return application.Serve(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "address to listen on")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}
