// sectorsim runs deterministic sector specials: doors, lifts, crushers,
// stairs and light effects, driven by a compatibility random stream.
//
// Usage:
//
//	sectorsim kinds               - List registered special kinds
//	sectorsim run <scenario>      - Run a scenario and print its digest
//	sectorsim record <scenario>   - Run a scenario and store it as a demo
//	sectorsim replay <demo-id>    - Replay and verify a stored demo
//	sectorsim demos               - List, export or delete stored demos
//	sectorsim rng                 - Print the random table from an index
//	sectorsim watch <scenario>    - Watch a scenario run live
//	sectorsim serve <scenario>    - Serve the live viewer over SSH
//
// Global flags:
//
//	--config <path>   - Config file (default: search ~/.sectorsim, ./configs)
//	--db <path>       - Demo database path (default from config)
//	--seed <index>    - Starting random index, overriding the scenario
//	--strict          - Panic if a terminated special is ever ticked
//	--log-level <lvl> - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/sectorsim/internal/config"
	"github.com/vovakirdan/sectorsim/internal/storage"

	// Import special families to register their kinds
	_ "github.com/vovakirdan/sectorsim/internal/lights"
	_ "github.com/vovakirdan/sectorsim/internal/movers"
)

var (
	// Global flags
	flagConfig     string
	flagDBPath     string
	flagSeed       uint32
	flagRandomSeed bool
	flagStrict     bool
	flagLogLevel   string

	appCfg config.Config
	logger *log.Logger
	db     *storage.Store // open database, closed by fail
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sectorsim",
	Short: "Deterministic sector special simulator",
	Long: `sectorsim runs classic sector specials (doors, lifts, crushers,
stairs and lights) tick by tick against a compatibility random stream,
so every run can be recorded, replayed and verified bit for bit.

Available commands:
  kinds    - Show all registered special kinds
  run      - Run a scenario
  record   - Record a scenario as a demo
  replay   - Replay a recorded demo
  demos    - Manage stored demos
  rng      - Inspect the random stream
  watch    - Watch a scenario live
  serve    - Serve the live viewer over SSH

Examples:
  sectorsim kinds
  sectorsim run hangar-tour --watch 350
  sectorsim record hangar-tour
  sectorsim replay 6f1c --seek 700
  sectorsim rng --index 1 --count 12`,
	PersistentPreRun: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to demo database (default from config)")
	rootCmd.PersistentFlags().Uint32Var(&flagSeed, "seed", 0, "Starting random index (overrides the scenario)")
	rootCmd.PersistentFlags().BoolVar(&flagRandomSeed, "random-seed", false, "Seed from the clock (runs only, cannot be recorded)")
	rootCmd.PersistentFlags().BoolVar(&flagStrict, "strict", false, "Panic when a terminated special is ticked")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (default from config)")

	// Add subcommands
	rootCmd.AddCommand(kindsCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(demosCmd)
	rootCmd.AddCommand(rngCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
}

// setup loads configuration and builds the logger before any subcommand.
func setup(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if flagDBPath != "" {
		cfg.Storage.DBPath = flagDBPath
	}
	if flagStrict {
		cfg.Sim.Strict = true
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	appCfg = cfg

	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: cfg.Log.Timestamps,
		Prefix:          cfg.Log.Prefix,
		Level:           cfg.LogLevel(),
	})
}

// openStore opens the configured database. fail closes it before exiting.
func openStore() *storage.Store {
	store, err := storage.Open(appCfg.Storage.DBPath)
	if err != nil {
		fail("opening database: %v", err)
	}
	db = store
	return store
}

func closeStore() {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		logger.Warn("closing database", "error", err)
	}
	db = nil
}

// fail prints an error, closes the database and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	closeStore()
	os.Exit(1)
}
