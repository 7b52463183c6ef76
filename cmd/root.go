package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tkellner/timeclock/internal/assignment"
	"github.com/tkellner/timeclock/internal/clock"
	"github.com/tkellner/timeclock/internal/notify"
	"github.com/tkellner/timeclock/internal/output"
	"github.com/tkellner/timeclock/internal/store"
	"github.com/tkellner/timeclock/internal/timer"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	dataStore store.Store
	eventBus  *notify.Bus
	engine    *timer.Engine
	assignSvc *assignment.Service

	verbose bool
	dryRun  bool
	actorID string
)

var rootCmd = &cobra.Command{
	Use:   "timeclock",
	Short: "Timeclock - track time sessions and task assignments",
	Long: `timeclock records working time against tasks and manages
assignment acceptance. Each person runs at most one personal timer at a
time; tasks additionally carry a legacy per-task switch for shared
tracking, and every closed interval is credited to the task's total.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return rootRun(cmd)
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().StringVar(&actorID, "actor", "", "Acting user id (default from config or TIMECLOCK_ACTOR)")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/timeclock/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "timeclock")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("TIMECLOCK")
	viper.AutomaticEnv()

	// Defaults via viper.SetDefault()
	home, _ := os.UserHomeDir()
	defaultConfigDir := filepath.Join(home, ".config", "timeclock")

	viper.SetDefault("state_dir", defaultConfigDir)
	viper.SetDefault("db_path", filepath.Join(defaultConfigDir, "timeclock.db"))
	viper.SetDefault("actor", "")
	viper.SetDefault("http.port", 8080)
	viper.SetDefault("sessions.default_limit", 20)

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun

	// Store and services are initialized lazily so that config and
	// version commands can run without a db.
}

// rootRun handles `timeclock` with no subcommand: show the actor's active
// session if one exists, otherwise print help.
func rootRun(cmd *cobra.Command) error {
	actor := currentActor()
	if actor == "" {
		return cmd.Help()
	}
	if _, err := getEngine(); err != nil {
		return cmd.Help()
	}
	return trackStatusRun()
}

// currentActor resolves the acting user id from flag, env, or config.
func currentActor() string {
	if actorID != "" {
		return actorID
	}
	return viper.GetString("actor")
}

// requireActor resolves the acting user or errors with guidance.
func requireActor() (string, error) {
	actor := currentActor()
	if actor == "" {
		return "", fmt.Errorf("no actor set: pass --actor, set TIMECLOCK_ACTOR, or set 'actor' in config")
	}
	return actor, nil
}

// getStore returns the shared store, initializing it on first call.
func getStore() (store.Store, error) {
	if dataStore != nil {
		return dataStore, nil
	}

	dbPath := viper.GetString("db_path")
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := s.Migrate(rootCmd.Context()); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	dataStore = s
	return dataStore, nil
}

// getEngine returns the shared timer engine, building the dependency graph
// behind it on first call.
func getEngine() (*timer.Engine, error) {
	if engine != nil {
		return engine, nil
	}

	s, err := getStore()
	if err != nil {
		return nil, err
	}

	if eventBus == nil {
		eventBus = notify.NewBus()
	}
	engine = timer.NewEngine(s, clock.System{}, eventBus)
	return engine, nil
}

// getAssignments returns the shared assignment service.
func getAssignments() (*assignment.Service, error) {
	if assignSvc != nil {
		return assignSvc, nil
	}

	s, err := getStore()
	if err != nil {
		return nil, err
	}

	if eventBus == nil {
		eventBus = notify.NewBus()
	}
	notifier := notify.New(s, eventBus)
	assignSvc = assignment.NewService(s, clock.System{}, notifier, eventBus)
	return assignSvc, nil
}
