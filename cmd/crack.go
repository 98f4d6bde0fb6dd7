package cmd

import (
	"context"
	"fmt"
	"runtime"
	"slices"

	"github.com/duke-git/lancet/v2/slice"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/unclesp1d3r/containercrack/lib/batch"
	"github.com/unclesp1d3r/containercrack/lib/candidates"
	"github.com/unclesp1d3r/containercrack/lib/config"
	"github.com/unclesp1d3r/containercrack/lib/crackerrors"
	"github.com/unclesp1d3r/containercrack/lib/display"
	"github.com/unclesp1d3r/containercrack/lib/report"
	"github.com/unclesp1d3r/containercrack/lib/session"
	"github.com/unclesp1d3r/containercrack/lib/strategy"
	"github.com/unclesp1d3r/containercrack/lib/verifier"
	"github.com/unclesp1d3r/containercrack/lib/wordlist"
	"github.com/unclesp1d3r/containercrack/runstate"
)

// crackFlags holds the crack options that are not bound to viper.
type crackFlags struct {
	dirs           []string
	wordlist       string
	checksum       string
	candidatesFile string
	startLine      int
}

var crackOpts crackFlags //nolint:gochecknoglobals // Cobra flag storage

var crackCmd = &cobra.Command{
	Use:   "crack [FILE|DIR...]",
	Short: "Attack encrypted containers, one file or whole directories",
	Long: "crack discovers PDF, Office and ZIP files in the given directories, adds any\n" +
		"files named directly, and runs the selected attack against each of them.\n" +
		"It exits with status 0 when at least one password was recovered.",
	Example: "  containercrack crack -d ./encrypted -w rockyou.txt -t hybrid -p\n" +
		"  containercrack crack secret.pdf -t brute_force --charset 0123456789 --max-length 4",
	Args: cobra.ArbitraryArgs,
	RunE: runCrack,
}

//nolint:errcheck // BindPFlag only fails for a nil flag
func init() {
	f := crackCmd.Flags()
	f.StringSliceVarP(&crackOpts.dirs, "dir", "d", nil, "directory containing target files (repeatable); files may also be passed as arguments")
	f.StringVarP(&crackOpts.wordlist, "wordlist", "w", "", "wordlist path or URL for dictionary and hybrid attacks")
	f.StringVar(&crackOpts.checksum, "checksum", "", "expected MD5 of a remote wordlist")
	f.StringVar(&crackOpts.candidatesFile, "candidates", "", "file of generated candidates to use instead of a wordlist")
	f.IntVar(&crackOpts.startLine, "start-line", 0, "resume position: wordlist line, or candidate ordinal for brute force")
	f.StringP("type", "t", string(strategy.Dictionary), "attack type: dictionary, hybrid or brute_force")
	f.Uint64P("max-attempts", "m", 0, "maximum attempts per file (0 means unlimited)")
	f.StringP("output", "o", "", "directory for the result files")
	f.BoolP("parallel", "p", false, "attack files concurrently")
	f.Int("workers", 0, "number of parallel workers (default: logical CPUs)")
	f.StringSlice("mutations", strategy.DefaultMutations(), "hybrid attack prefixes and suffixes")
	f.String("charset", strategy.DefaultCharset, "brute force character set")
	f.Int("min-length", strategy.DefaultMinLength, "brute force minimum length")
	f.Int("max-length", strategy.DefaultMaxLength, "brute force maximum length")
	f.BoolP("recursive", "r", false, "scan target directories recursively")

	crackCmd.MarkFlagsMutuallyExclusive("wordlist", "candidates")

	viper.BindPFlag("attack_type", f.Lookup("type"))
	viper.BindPFlag("max_attempts", f.Lookup("max-attempts"))
	viper.BindPFlag("output_path", f.Lookup("output"))
	viper.BindPFlag("parallel", f.Lookup("parallel"))
	viper.BindPFlag("workers", f.Lookup("workers"))
	viper.BindPFlag("mutations", f.Lookup("mutations"))
	viper.BindPFlag("charset", f.Lookup("charset"))
	viper.BindPFlag("min_length", f.Lookup("min-length"))
	viper.BindPFlag("max_length", f.Lookup("max-length"))
	viper.BindPFlag("recursive", f.Lookup("recursive"))
}

func runCrack(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	errs := &crackerrors.Handler{}

	displayStartup()

	cfg, err := buildAttackConfig(ctx, crackOpts)
	if err != nil {
		return errs.Handle(err, crackerrors.Options{Message: "Invalid attack configuration"})
	}

	runstate.State.SetCurrentActivity(runstate.CurrentActivityDiscovering)
	roots := append(slices.Clone(crackOpts.dirs), args...)
	targets, err := batch.Discover(roots, viper.GetBool("recursive"))
	if err != nil {
		return errs.Handle(err, crackerrors.Options{Message: "Failed to discover targets"})
	}
	display.TargetsDiscovered(len(targets), roots)

	bar := display.NewBatchBar(len(targets))
	runner := batch.Runner{
		Config:   cfg,
		Parallel: viper.GetBool("parallel"),
		Workers:  runstate.State.Workers,
		OnOutcome: func(o session.Outcome) {
			bar.Done()
			display.Outcome(o)
		},
	}

	meta := report.NewMeta(string(cfg.Kind))
	runstate.State.SetCurrentActivity(runstate.CurrentActivityCracking)
	result, err := runner.Run(ctx, targets)
	meta.Finish()
	bar.Finish()
	if err != nil {
		return errs.Handle(err, crackerrors.Options{Message: "Run aborted before any attempt"})
	}

	if ctx.Err() != nil {
		runstate.State.SetInterrupted(true)
		runstate.State.SetCurrentActivity(runstate.CurrentActivityStopping)
		display.RunInterrupted()
	}

	runstate.State.SetCurrentActivity(runstate.CurrentActivityReporting)
	paths, err := report.Write(runstate.State.OutputPath, result, meta)
	if err != nil {
		return errs.Handle(err, crackerrors.Options{Message: "Failed to write report"})
	}
	display.ReportWritten(paths.Results, paths.Passwords)

	fmt.Fprint(cmd.OutOrStdout(), report.FormatSummary(report.Summarize(result, meta.Elapsed()), report.FromResult(result)))
	display.ShuttingDown()

	if result.Cracked() == 0 {
		return errNothingCracked
	}

	return nil
}

// buildAttackConfig assembles the attack from flags and configuration.
// A remote wordlist is fetched here, before any target is touched.
func buildAttackConfig(ctx context.Context, opts crackFlags) (strategy.AttackConfig, error) {
	kind, err := strategy.ParseAttackKind(viper.GetString("attack_type"))
	if err != nil {
		return strategy.AttackConfig{}, err
	}

	cfg := strategy.AttackConfig{
		Kind:             kind,
		MaxAttempts:      viper.GetUint64("max_attempts"),
		StartLine:        opts.startLine,
		Mutations:        viper.GetStringSlice("mutations"),
		Charset:          viper.GetString("charset"),
		MinLength:        viper.GetInt("min_length"),
		MaxLength:        viper.GetInt("max_length"),
		ProgressInterval: runstate.State.ProgressInterval,
	}

	if !cfg.UsesWordlist() {
		return cfg, cfg.WithDefaults().Validate()
	}

	switch {
	case opts.candidatesFile != "":
		generated, err := candidates.Collect(candidates.File{Path: opts.candidatesFile})
		if err != nil {
			return strategy.AttackConfig{}, err
		}
		cfg.Candidates = slice.Map(generated, func(_ int, c candidates.Candidate) string { return c.Value })
		runstate.Logger.Info("Loaded generated candidates", "path", opts.candidatesFile, "count", len(cfg.Candidates))
	case opts.wordlist != "":
		local, err := wordlist.Resolve(ctx, opts.wordlist, opts.checksum)
		if err != nil {
			return strategy.AttackConfig{}, err
		}
		if local != opts.wordlist {
			display.WordlistFetched(opts.wordlist, local)
		}
		cfg.Wordlist = local
	}

	return cfg, cfg.WithDefaults().Validate()
}

// displayStartup logs the banner with host details and the compiled-in backends.
func displayStartup() {
	hostname, platform := "unknown", runtime.GOOS
	if info, err := host.Info(); err == nil {
		hostname = info.Hostname
		platform = fmt.Sprintf("%s %s/%s", info.Platform, info.OS, info.KernelArch)
	} else {
		runstate.Logger.Debug("Could not read host information", "error", err)
	}
	display.Startup(Version, hostname, platform, config.DefaultWorkers())

	names := slice.Map(verifier.Default.Available(), func(_ int, b verifier.Backend) string { return b.Name() })
	display.Backends(names)
}
