package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/sectorsim/internal/rng"
	"github.com/vovakirdan/sectorsim/internal/scenario"
	"github.com/vovakirdan/sectorsim/internal/sim"
	"github.com/vovakirdan/sectorsim/internal/storage"
)

var (
	flagTicks    uint64
	flagWatch    uint64
	flagStateIn  string
	flagStateOut string
	flagSaveRun  bool
)

var runCmd = &cobra.Command{
	Use:   "run <scenario>",
	Short: "Run a scenario",
	Long: `Run a builtin scenario or a scenario file to its last tick and print
the final sector table and state digest.

Builtin scenarios: hangar-tour

Examples:
  sectorsim run hangar-tour
  sectorsim run hangar-tour --watch 350
  sectorsim run ./my-scenario.yaml --ticks 700 --state-out mid.yaml
  sectorsim run hangar-tour --state-in mid.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runRun,
}

func init() {
	runCmd.Flags().Uint64Var(&flagTicks, "ticks", 0, "Stop after this many ticks (default: scenario length)")
	runCmd.Flags().Uint64Var(&flagWatch, "watch", 0, "Print the sector table every N ticks")
	runCmd.Flags().StringVar(&flagStateIn, "state-in", "", "Resume from a saved state file")
	runCmd.Flags().StringVar(&flagStateOut, "state-out", "", "Write the final state to a file")
	runCmd.Flags().BoolVar(&flagSaveRun, "save-run", false, "Record the result in the database")
}

// newSession builds a session for sc with the global seed flags applied.
func newSession(cmd *cobra.Command, sc *scenario.Scenario) (*sim.Session, *sim.Hazard, error) {
	lvl, err := sc.LoadLevel()
	if err != nil {
		return nil, nil, err
	}

	seed := sc.Seed
	if cmd.Flags().Changed("seed") {
		seed = flagSeed
	}
	var src rng.Source = rng.NewCompat(seed)
	if flagRandomSeed {
		src = rng.NewTimeSeeded()
	}

	opts, h := sc.Options()
	opts = append(opts, sim.WithLogger(logger))
	s, err := sim.New(lvl, src, appCfg.Runtime(src.Index(), flagRandomSeed), opts...)
	if err != nil {
		return nil, nil, err
	}
	return s, h, nil
}

func runRun(cmd *cobra.Command, args []string) {
	sc, err := scenario.Resolve(args[0])
	if err != nil {
		fail("%v", err)
	}

	s, h, err := newSession(cmd, sc)
	if err != nil {
		fail("%v", err)
	}

	if flagStateIn != "" {
		data, err := os.ReadFile(flagStateIn)
		if err != nil {
			fail("reading state: %v", err)
		}
		var st sim.SaveState
		if err := yaml.Unmarshal(data, &st); err != nil {
			fail("parsing state %s: %v", flagStateIn, err)
		}
		if err := s.Restore(st); err != nil {
			fail("%v", err)
		}
		s.Resume()
	}

	end := sc.Ticks
	if flagTicks > 0 {
		end = flagTicks
	}
	logger.Info("running", "scenario", sc.Name, "level", s.Level().Name, "index", s.StartIndex(), "from", s.Tick(), "to", end)

	for s.Tick() < end {
		if err := s.Step(); err != nil {
			fail("tick %d: %v", s.Tick(), err)
		}
		if flagWatch > 0 && s.Tick()%flagWatch == 0 && s.Tick() < end {
			fmt.Println(paint(dimStyle, fmt.Sprintf("tick %d", s.Tick())))
			printSectors(s.Level(), s.List())
			fmt.Println()
		}
	}

	digest := s.Digest()
	fmt.Printf("%s  %s\n", paint(headerStyle, sc.Name), paint(dimStyle, s.Level().Name))
	printSectors(s.Level(), s.List())
	fmt.Println()
	fmt.Printf("Tick:    %d (%.1fs)\n", s.Tick(), s.Config().Seconds(s.Tick()))
	fmt.Printf("Index:   %d (started at %d)\n", s.Index(), s.StartIndex())
	fmt.Printf("Live:    %d specials\n", s.List().Len())
	health := -1
	if h != nil {
		health = h.Health()
		fmt.Printf("Player:  health %d, secrets %d\n", h.Health(), h.Secrets())
	}
	fmt.Printf("Digest:  %s\n", digest)

	if flagStateOut != "" {
		data, err := yaml.Marshal(s.Save())
		if err != nil {
			fail("encoding state: %v", err)
		}
		if err := os.WriteFile(flagStateOut, data, 0o644); err != nil {
			fail("writing state: %v", err)
		}
		logger.Info("state written", "path", flagStateOut, "tick", s.Tick())
	}

	if flagSaveRun {
		store := openStore()
		defer closeStore()
		if _, err := store.SaveRun(storage.RunResult{
			Source: sc.Name,
			Level:  s.Level().Name,
			Seed:   s.StartIndex(),
			Ticks:  s.Tick(),
			Digest: digest,
			Health: health,
		}); err != nil {
			logger.Warn("could not save run", "error", err)
		}
	}
}
