package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/sectorsim/internal/sim"
)

var flagDemoLimit int

var demosCmd = &cobra.Command{
	Use:   "demos",
	Short: "List stored demos",
	Long: `List the most recent demos in the database. Subcommands export a
demo as YAML, import one from a file, or delete one.

Examples:
  sectorsim demos
  sectorsim demos export 6f1c > tour.yaml
  sectorsim demos import tour.yaml
  sectorsim demos rm 6f1c`,
	Run: runDemos,
}

var demosExportCmd = &cobra.Command{
	Use:   "export <demo-id>",
	Short: "Write a demo as YAML to stdout",
	Args:  cobra.ExactArgs(1),
	Run:   runDemosExport,
}

var demosImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Store a demo from a YAML file",
	Args:  cobra.ExactArgs(1),
	Run:   runDemosImport,
}

var demosRmCmd = &cobra.Command{
	Use:   "rm <demo-id>",
	Short: "Delete a demo",
	Args:  cobra.ExactArgs(1),
	Run:   runDemosRm,
}

func init() {
	demosCmd.Flags().IntVar(&flagDemoLimit, "limit", 20, "Maximum demos to list")
	demosCmd.AddCommand(demosExportCmd)
	demosCmd.AddCommand(demosImportCmd)
	demosCmd.AddCommand(demosRmCmd)
}

func runDemos(cmd *cobra.Command, args []string) {
	store := openStore()
	defer closeStore()

	demos, err := store.ListDemos(flagDemoLimit)
	if err != nil {
		fail("%v", err)
	}

	if len(demos) == 0 {
		fmt.Println("No demos recorded yet.")
		fmt.Println()
		fmt.Println("Run 'sectorsim record hangar-tour' to record the first one.")
		return
	}

	fmt.Println(paint(headerStyle, fmt.Sprintf("  %-8s  %-16s  %-10s  %-10s  %-6s  %-8s  %s",
		"ID", "Name", "Level", "Index", "Ticks", "Triggers", "Date")))
	for _, d := range demos {
		fmt.Printf("  %-8s  %-16s  %-10s  %-10d  %-6d  %-8d  %s\n",
			shortID(d.ID), d.Name, d.Level, d.StartIndex, d.Ticks, d.Triggers,
			d.CreatedAt.Local().Format("2006-01-02 15:04"))
	}

	runs, err := store.RecentRuns("", 5)
	if err != nil || len(runs) == 0 {
		return
	}
	fmt.Println()
	fmt.Println(paint(headerStyle, "  Recent runs"))
	for _, r := range runs {
		status := paint(dimStyle, "run")
		if r.Verified {
			status = paint(okStyle, "verified")
		}
		fmt.Printf("  %-16s  tick %-6d  %s  %s\n", shortID(r.Source), r.Ticks, r.Digest[:min(12, len(r.Digest))], status)
	}
}

func runDemosExport(cmd *cobra.Command, args []string) {
	store := openStore()
	defer closeStore()

	demo, err := store.LoadDemo(args[0])
	if err != nil {
		fail("%v", err)
	}
	data, err := yaml.Marshal(demo)
	if err != nil {
		fail("encoding demo: %v", err)
	}
	os.Stdout.Write(data)
}

func runDemosImport(cmd *cobra.Command, args []string) {
	data, err := os.ReadFile(args[0])
	if err != nil {
		fail("reading demo: %v", err)
	}
	var demo sim.Demo
	if err := yaml.Unmarshal(data, &demo); err != nil {
		fail("parsing demo %s: %v", args[0], err)
	}
	for _, t := range demo.Triggers {
		if err := t.Validate(); err != nil {
			fail("%v", err)
		}
	}

	store := openStore()
	defer closeStore()

	id, err := store.SaveDemo(demo)
	if err != nil {
		fail("%v", err)
	}
	fmt.Printf("Imported %s (%s)\n", paint(okStyle, shortID(id)), demo.Name)
}

func runDemosRm(cmd *cobra.Command, args []string) {
	store := openStore()
	defer closeStore()

	if err := store.DeleteDemo(args[0]); err != nil {
		fail("%v", err)
	}
	fmt.Printf("Deleted %s\n", args[0])
}
