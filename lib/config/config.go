// Package config provides configuration management for containercrack.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"

	gap "github.com/muesli/go-app-paths"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/unclesp1d3r/containercrack/lib/strategy"
	"github.com/unclesp1d3r/containercrack/runstate"
)

const (
	// DefaultProgressInterval is the number of attempts between progress lines.
	DefaultProgressInterval = 1000
	// ConfigName is the base name of the configuration file.
	ConfigName = "containercrack"
)

var (
	scope = gap.NewScope(gap.User, "containercrack") //nolint:gochecknoglobals // Configuration scope
)

// InitConfig initializes the configuration from various sources.
// An explicit cfgFile must exist; otherwise a missing file just means defaults.
func InitConfig(cfgFile string) {
	runstate.ErrorLogger.SetReportCaller(true)

	home, err := os.UserConfigDir()
	cobra.CheckErr(err)

	cwd, err := os.Getwd()
	cobra.CheckErr(err)
	viper.AddConfigPath(cwd)

	configDirs, err := scope.ConfigDirs()
	cobra.CheckErr(err)

	for _, dir := range configDirs {
		viper.AddConfigPath(dir)
	}

	viper.AddConfigPath(home)
	viper.SetConfigType("yaml")
	viper.SetConfigName(ConfigName)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		runstate.Logger.Debug("Using config file", "config_file", viper.ConfigFileUsed())
	case errors.As(err, &notFound):
		runstate.Logger.Debug("No config file found, using defaults")
	default:
		cobra.CheckErr(err)
	}
}

// DefaultWorkers returns the number of logical CPUs, falling back to the Go runtime's count.
func DefaultWorkers() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}

	return n
}

// SetupRunState configures runstate.State from configuration values.
// Out-of-range values fall back to their defaults.
func SetupRunState() {
	dataRoot := viper.GetString("data_path")
	runstate.State.DataPath = dataRoot

	runstate.State.WordlistsPath = viper.GetString("wordlists_path")
	if runstate.State.WordlistsPath == "" {
		runstate.State.WordlistsPath = filepath.Join(dataRoot, "wordlists")
	}

	runstate.State.OutputPath = viper.GetString("output_path")
	runstate.State.Debug = viper.GetBool("debug")
	runstate.State.ExtraDebugging = viper.GetBool("extra_debugging")
	runstate.State.ShowProgressBar = viper.GetBool("show_progress_bar")

	runstate.State.Workers = viper.GetInt("workers")
	if runstate.State.Workers < 1 {
		runstate.State.Workers = DefaultWorkers()
	}

	interval := viper.GetInt64("progress_interval")
	if interval < 1 {
		interval = DefaultProgressInterval
	}
	runstate.State.ProgressInterval = uint64(interval)
}

// SetDefaultConfigValues sets default configuration values.
func SetDefaultConfigValues() {
	cwd, err := os.Getwd()
	cobra.CheckErr(err)

	viper.SetDefault("data_path", filepath.Join(cwd, "data"))
	viper.SetDefault("output_path", filepath.Join(cwd, "cracking_results"))
	viper.SetDefault("workers", DefaultWorkers())
	viper.SetDefault("progress_interval", DefaultProgressInterval)
	viper.SetDefault("attack_type", string(strategy.Dictionary))
	viper.SetDefault("charset", strategy.DefaultCharset)
	viper.SetDefault("min_length", strategy.DefaultMinLength)
	viper.SetDefault("max_length", strategy.DefaultMaxLength)
	viper.SetDefault("mutations", strategy.DefaultMutations())
	viper.SetDefault("recursive", false)
	viper.SetDefault("parallel", false)
	viper.SetDefault("extra_debugging", false)
	viper.SetDefault("show_progress_bar", true)
}
