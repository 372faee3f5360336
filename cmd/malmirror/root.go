package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/varoOP/malmirror/internal/app"
	"github.com/varoOP/malmirror/internal/config"
	"github.com/varoOP/malmirror/internal/logger"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "malmirror",
	Short: "A local, cached mirror of MyAnimeList anime data",
	Long: `malmirror keeps a local sqlite copy of anime records fetched from the
Jikan API, serves them through a cached read API and exports snapshots.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.malmirror.yaml or ./config.yaml)")
	rootCmd.PersistentFlags().String("database", "", "path of the sqlite database")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error)")

	// Bind flags to viper
	viper.BindPFlag("database_path", rootCmd.PersistentFlags().Lookup("database"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in a .env file, the config file and ENV variables if set.
func initConfig() {
	// A missing .env file is fine
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in home directory and current directory
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newApp loads the configuration and builds the application from it
func newApp() (*app.App, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}

	log := logger.NewLoggerWithLevel(logger.ParseLevel(cfg.LogLevel))

	a, err := app.NewApp(cfg, log)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize application")
	}
	return a, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
