// Package cmd wires the containercrack command line.
package cmd

import (
	"context"
	"errors"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/unclesp1d3r/containercrack/lib/config"
	"github.com/unclesp1d3r/containercrack/runstate"
)

// Version is the containercrack release, overridden at link time.
var Version = "0.1.0" //nolint:gochecknoglobals // Set with -ldflags

var (
	cfgFile     string
	enableDebug bool
)

// errNothingCracked makes a finished run that cracked nothing exit with status 1.
var errNothingCracked = errors.New("no password was recovered") //nolint:gochecknoglobals // Sentinel

// rootCmd is the base command; the work happens in its subcommands.
var rootCmd = &cobra.Command{
	Use:   "containercrack",
	Short: "Recover passwords of encrypted PDF, Office and ZIP files",
	Long: "containercrack tries candidate passwords against encrypted containers.\n" +
		"It runs dictionary, hybrid and brute force attacks over whole directories of\n" +
		"targets, sequentially or across a pool of workers, and writes a report.",
	SilenceUsage: true,
}

// Execute runs the root command through fang and returns the process exit status.
// SIGINT and SIGTERM cancel ctx, which stops every running attack at its next candidate.
func Execute(ctx context.Context) int {
	err := fang.Execute(ctx, rootCmd,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	)
	if err != nil {
		return 1
	}

	return 0
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is containercrack.yaml in the working or user config directory)")
	rootCmd.PersistentFlags().BoolVar(&enableDebug, "debug", false, "Enable debug mode")
	err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	cobra.CheckErr(err)

	config.SetDefaultConfigValues()

	rootCmd.AddCommand(crackCmd, verifyCmd, reportCmd, backendsCmd)
}

// initConfig loads configuration, resolves run state and configures logging.
func initConfig() {
	runstate.State.SetCurrentActivity(runstate.CurrentActivityStarting)
	config.InitConfig(cfgFile)
	config.SetupRunState()
	initLogger()
}

// initLogger sets the log level from the debug flag.
func initLogger() {
	if runstate.State.Debug {
		runstate.Logger.SetLevel(log.DebugLevel)
		runstate.Logger.SetReportCaller(true)
	} else {
		runstate.Logger.SetLevel(log.InfoLevel)
	}
}
