package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/varoOP/malmirror/internal/jikan"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the malmirror version with its build metadata, the Go runtime and the
default Jikan endpoint. With --short only the version number is printed.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if short, _ := cmd.Flags().GetBool("short"); short {
			fmt.Fprintln(out, version)
			return
		}

		fmt.Fprintf(out, "malmirror %s (%s/%s, %s)\n", version, runtime.GOOS, runtime.GOARCH, runtime.Version())
		if commit != "" {
			fmt.Fprintf(out, "commit:  %s\n", commit)
		}
		if date != "" {
			fmt.Fprintf(out, "built:   %s\n", date)
		}
		fmt.Fprintf(out, "upstream: %s\n", jikan.DefaultBaseURL)
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "print only the version number")
	rootCmd.AddCommand(versionCmd)
}
