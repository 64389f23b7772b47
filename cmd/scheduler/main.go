package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fivetwenty-io/scheduler-client/cmd/scheduler/commands"
	"github.com/fivetwenty-io/scheduler-client/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Cloud Foundry Scheduler CLI",
	Long: `A command-line interface for the Cloud Foundry Scheduler API.

Create jobs and calls, run them on demand, schedule them with cron
expressions and inspect their execution history.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.scheduler/config.yml)")
	flags.String("scheduler", "", "Scheduler API endpoint URL")
	flags.StringP("api", "a", "", "Cloud Foundry API endpoint URL, used to discover UAA")
	flags.StringP("token", "t", "", "authentication token")
	flags.StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	flags.BoolP("verbose", "v", false, "log HTTP requests")
	flags.Int("per-page", constants.DefaultPerPage, "page size used when listing")
	flags.Int("concurrency", constants.DefaultPageConcurrency, "pages fetched in parallel when listing")
	flags.Bool("skip-ssl-validation", false, "skip SSL certificate validation during UAA discovery")

	for key, flag := range map[string]string{
		"config":              "config",
		"scheduler":           "scheduler",
		"api":                 "api",
		"token":               "token",
		"output":              "output",
		"verbose":             "verbose",
		"per_page":            "per-page",
		"concurrency":         "concurrency",
		"skip_ssl_validation": "skip-ssl-validation",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewLoginCommand())
	rootCmd.AddCommand(commands.NewLogoutCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewJobsCommand())
	rootCmd.AddCommand(commands.NewCallsCommand())
}

func initConfig() {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		viper.AddConfigPath(filepath.Join(home, ".scheduler"))
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("SCHEDULER")
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err == nil && viper.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
