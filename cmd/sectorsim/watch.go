package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/sectorsim/internal/platform/tui"
	"github.com/vovakirdan/sectorsim/internal/scenario"
	"github.com/vovakirdan/sectorsim/internal/sim"
)

var (
	flagWatchLoop bool
	flagSSHAddr   string
	flagHostKey   string
)

var watchCmd = &cobra.Command{
	Use:   "watch <scenario>",
	Short: "Watch a scenario run live",
	Long: `Run a scenario in real time in the terminal, showing the sector
table and which special controls each plane.

Controls:
  p/Space  - Pause the whole session
  .        - Step one tick while paused
  +/-      - Faster/slower
  r        - Restart from tick 0
  q        - Quit

Examples:
  sectorsim watch hangar-tour
  sectorsim watch hangar-tour --loop`,
	Args: cobra.ExactArgs(1),
	Run:  runWatch,
}

var serveCmd = &cobra.Command{
	Use:   "serve <scenario>",
	Short: "Serve the live viewer over SSH",
	Long: `Start an SSH server where every connection watches its own,
independent run of the scenario.

Examples:
  sectorsim serve hangar-tour --ssh :23234
  ssh -p 23234 localhost`,
	Args: cobra.ExactArgs(1),
	Run:  runServe,
}

func init() {
	watchCmd.Flags().BoolVar(&flagWatchLoop, "loop", false, "Keep running past the scenario's last tick")
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH listen address")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Host key path (default: ~/.sectorsim/host_key)")
}

// sessionFactory returns a factory that builds independent sessions for sc.
func sessionFactory(cmd *cobra.Command, sc *scenario.Scenario) tui.SessionFactory {
	return func() (*sim.Session, error) {
		s, _, err := newSession(cmd, sc)
		return s, err
	}
}

func runWatch(cmd *cobra.Command, args []string) {
	sc, err := scenario.Resolve(args[0])
	if err != nil {
		fail("%v", err)
	}

	width, height := 100, 30
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width, height = w, h
	}

	end := sc.Ticks
	if flagWatchLoop {
		end = 0
	}
	// Session logs would tear the alternate screen.
	logger.SetOutput(io.Discard)
	if err := tui.RunViewer(sc.Name, end, sessionFactory(cmd, sc), width, height); err != nil {
		fail("%v", err)
	}
}

func runServe(cmd *cobra.Command, args []string) {
	sc, err := scenario.Resolve(args[0])
	if err != nil {
		fail("%v", err)
	}

	cfg := tui.DefaultSSHServerConfig()
	cfg.Address = flagSSHAddr
	cfg.HostKeyPath = flagHostKey
	cfg.Title = sc.Name
	cfg.EndTick = sc.Ticks

	srv, err := tui.NewSSHServer(cfg, sessionFactory(cmd, sc), logger.WithPrefix(appCfg.Log.Prefix+"-ssh"))
	if err != nil {
		fail("%v", err)
	}
	if err := srv.ListenAndServe(); err != nil {
		fail("%v", err)
	}
}
