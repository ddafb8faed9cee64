package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/sectorsim/internal/level"
	"github.com/vovakirdan/sectorsim/internal/sim"
	"github.com/vovakirdan/sectorsim/internal/storage"
)

var flagSeeks []int64

var replayCmd = &cobra.Command{
	Use:   "replay <demo-id>",
	Short: "Replay a recorded demo",
	Long: `Replay a stored demo by ID or unique ID prefix. Without --seek the
demo is played to the end and its digest compared with the recorded one.
With --seek the replay stops at that tick and prints the sector table;
several --seek values are visited in order, backwards or forwards.

Examples:
  sectorsim replay 6f1c
  sectorsim replay 6f1c --seek 700
  sectorsim replay 6f1c --seek 1000 --seek 200`,
	Args: cobra.ExactArgs(1),
	Run:  runReplay,
}

func init() {
	replayCmd.Flags().Int64SliceVar(&flagSeeks, "seek", nil, "Seek to tick (repeatable)")
}

func runReplay(cmd *cobra.Command, args []string) {
	store := openStore()
	defer closeStore()

	demo, err := store.LoadDemo(args[0])
	if err != nil {
		fail("%v", err)
	}
	lvl, err := level.Resolve(demo.Level)
	if err != nil {
		fail("%v", err)
	}

	p, err := sim.NewPlayer(*demo, lvl, appCfg.Runtime(demo.StartIndex, false), sim.WithLogger(logger))
	if err != nil {
		fail("%v", err)
	}

	if len(flagSeeks) > 0 {
		for _, t := range flagSeeks {
			if t < 0 {
				fail("seek tick %d is negative", t)
			}
			if err := p.Seek(uint64(t)); err != nil {
				fail("%v", err)
			}
			s := p.Session()
			fmt.Printf("%s  tick %d  index %d\n", paint(headerStyle, demo.Name), s.Tick(), s.Index())
			printSectors(s.Level(), s.List())
			fmt.Println()
		}
		return
	}

	err = p.Verify()
	verified := err == nil
	if err != nil && !errors.Is(err, sim.ErrDesync) {
		fail("%v", err)
	}

	s := p.Session()
	health := -1
	if h := p.Hazard(); h != nil {
		health = h.Health()
	}
	if _, serr := store.SaveRun(storage.RunResult{
		Source:   demo.ID,
		Level:    demo.Level,
		Seed:     demo.StartIndex,
		Ticks:    s.Tick(),
		Digest:   s.Digest(),
		Health:   health,
		Verified: verified,
	}); serr != nil {
		logger.Warn("could not save run", "error", serr)
	}

	if !verified {
		fmt.Printf("%s %v\n", paint(badStyle, "DESYNC"), err)
		closeStore()
		os.Exit(1)
	}
	fmt.Printf("%s %s reached tick %d with the recorded digest (%d checkpoints)\n",
		paint(okStyle, "OK"), shortID(demo.ID), s.Tick(), p.Checkpoints())
}
