// Package main provides the entry point for the lexicc daemon.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/lexicc/lexicc/internal/audio"
	"github.com/lexicc/lexicc/internal/cache"
	"github.com/lexicc/lexicc/internal/config"
	"github.com/lexicc/lexicc/internal/daemon"
	"github.com/lexicc/lexicc/internal/inbox"
	"github.com/lexicc/lexicc/internal/instance"
	"github.com/lexicc/lexicc/internal/playback"
	"github.com/lexicc/lexicc/internal/queue"
	"github.com/lexicc/lexicc/internal/state"
	"github.com/lexicc/lexicc/internal/synth"
	"github.com/lexicc/lexicc/internal/text"
	"github.com/lexicc/lexicc/internal/tts"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile        string
	defaultConfigFile string
	debug             bool
	noReflow   bool

	rootCmd = &cobra.Command{
		Use:   "lexicc",
		Short: "Read queued text documents aloud",
		Long: paragraph(
			fmt.Sprintf("\nRead every document dropped into the inbox %s, line by line, and exit once everything has been played.", keyword("aloud")),
		),
		SilenceErrors:     false,
		SilenceUsage:      true,
		TraverseChildren:  true,
		Args:              cobra.NoArgs,
		PersistentPreRunE: validateOptions,
		RunE:              execute,
	}
)

func validateOptions(cmd *cobra.Command, _ []string) error {
	if debug {
		log.SetLevel(log.DebugLevel)
	}

	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
		log.Debug("Using configuration file", "path", configFile)
	}

	if noReflow {
		viper.Set("reflow", false)
	}
	return nil
}

// loadConfig returns the merged settings from file, environment and flags.
func loadConfig() (config.Config, error) {
	return config.Load(viper.GetViper())
}

// stateDirs resolves the state layout without creating anything.
func stateDirs(cfg config.Config) (state.Dirs, error) {
	if cfg.StateDir == "" {
		root, err := state.DefaultRoot()
		if err != nil {
			return state.Dirs{}, err
		}
		return state.Layout(root), nil
	}
	root, err := homedir.Expand(cfg.StateDir)
	if err != nil {
		return state.Dirs{}, fmt.Errorf("unable to expand state dir: %w", err)
	}
	return state.Layout(root), nil
}

func execute(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	guard := instance.NewFileLock(instance.DefaultLockPath())
	log.Debug("Acquiring instance guard", "path", guard.Path())
	return daemon.Launch(ctx, guard, func(ctx context.Context) (*daemon.Daemon, func() error, error) {
		return buildDaemon(ctx, cfg)
	})
}

// buildDaemon prepares the state directories and every collaborator. It only
// runs once the instance guard is held.
func buildDaemon(ctx context.Context, cfg config.Config) (*daemon.Daemon, func() error, error) {
	layout, err := stateDirs(cfg)
	if err != nil {
		return nil, nil, tts.NewError(tts.KindSetup, "resolve state dir", err)
	}
	dirs, err := state.Setup(layout.Root)
	if err != nil {
		return nil, nil, err
	}
	log.Debug("State directories ready", "inbox", dirs.Inbox, "audio", dirs.Audio)

	if maxBytes, _ := cfg.Cache.MaxBytes(); maxBytes > 0 {
		pruneCache(dirs.Audio, maxBytes)
	}

	synthesizer, err := synth.NewFromEnv(ctx, synth.Config{
		SampleRate:        cfg.SampleRate,
		Timeout:           cfg.Synth.Timeout,
		RequestsPerMinute: cfg.Synth.RequestsPerMinute,
	})
	if err != nil {
		return nil, nil, tts.NewError(tts.KindSetup, "configure speech service", err)
	}

	store, err := cache.NewStore(dirs.Audio, synthesizer)
	if err != nil {
		return nil, nil, err
	}

	sinkConfig := audio.DefaultSinkConfig()
	sinkConfig.SampleRate = synthesizer.SampleRate()
	sinkConfig.Speed = cfg.Speed
	sink, err := audio.NewSink(sinkConfig)
	if err != nil {
		return nil, nil, err
	}

	normalizer := text.NewNormalizer(text.WithReflow(cfg.Reflow))
	pending := queue.NewPending()
	decoder := audio.NewOggDecoder(sinkConfig.SampleRate, sinkConfig.Channels)
	scheduler := playback.NewScheduler(pending, normalizer, store, decoder, sink, cfg.ErrorPolicy())

	d := daemon.New(inbox.New(dirs.Inbox, normalizer), pending, scheduler, sink, cfg.PollInterval)

	cleanup := func() error {
		stats := store.Stats()
		log.Info("Cache summary",
			"dir", store.Dir(),
			"hits", stats.Hits,
			"hitRate", fmt.Sprintf("%.0f%%", stats.HitRate()*100),
			"misses", stats.Misses,
			"written", humanize.Bytes(uint64(stats.BytesWritten)), //nolint:gosec
			"synthesis", stats.SynthesisTime,
		)
		return sink.Close()
	}
	return d, cleanup, nil
}

func pruneCache(dir string, maxBytes int64) {
	removed, freed, err := cache.Prune(dir, maxBytes)
	if err != nil {
		log.Warn("Could not prune audio cache", "dir", dir, "err", err)
		return
	}
	if removed > 0 {
		log.Info("Pruned audio cache", "entries", removed, "freed", humanize.Bytes(uint64(freed))) //nolint:gosec
	}
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	defaults := config.Default()
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", configFileOrDefault()))
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("state-dir", "", "directory holding the inbox and audio cache")
	rootCmd.Flags().Duration("poll-interval", defaults.PollInterval, "how often to check the inbox and playback")
	rootCmd.Flags().Float64("speed", defaults.Speed, "playback speed (also raises pitch)")
	rootCmd.Flags().BoolVar(&noReflow, "no-reflow", false, "keep line breaks exactly as written")
	rootCmd.Flags().String("on-error", defaults.OnError, "on a failed line: abort or skip")

	// Config bindings
	_ = viper.BindPFlag("state_dir", rootCmd.PersistentFlags().Lookup("state-dir"))
	_ = viper.BindPFlag("poll_interval", rootCmd.Flags().Lookup("poll-interval"))
	_ = viper.BindPFlag("speed", rootCmd.Flags().Lookup("speed"))
	_ = viper.BindPFlag("on_error", rootCmd.Flags().Lookup("on-error"))

	config.SetDefaults(viper.GetViper())

	cacheCmd.AddCommand(cachePruneCmd)
	rootCmd.AddCommand(configCmd, manCmd, addCmd, cacheCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "lexicc")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "lexicc")}, dirs...)
	}

	if c := os.Getenv("LEXICC_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("lexicc")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("lexicc")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	// The default file is only written by `lexicc config`, so starting the
	// daemon never creates directories.
	defaultConfigFile = filepath.Join(dirs[0], "lexicc.yml")

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
	}
}
