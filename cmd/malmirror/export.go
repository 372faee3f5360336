package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every stored record to a JSON or YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = "anime." + format
		}

		application, err := newApp()
		if err != nil {
			return err
		}
		defer application.Close()

		ctx, stop := signalContext()
		defer stop()

		n, err := application.Export(ctx, output, format)
		if err != nil {
			return err
		}

		fmt.Printf("exported %d records to %s\n", n, output)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", "json", "output format: json or yaml")
	exportCmd.Flags().StringP("output", "o", "", "output file (default anime.<format>)")
	rootCmd.AddCommand(exportCmd)
}
