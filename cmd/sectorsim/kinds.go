package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/sectorsim/internal/registry"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List all registered special kinds",
	Long: `Shows every special kind that triggers can start, the plane it
claims and the map sector specials that spawn it at load.`,
	Run: runKinds,
}

func runKinds(cmd *cobra.Command, args []string) {
	kinds := registry.List()

	if len(kinds) == 0 {
		fmt.Println("No kinds registered.")
		return
	}

	// Calculate column widths
	maxNameLen := 4 // "Name" header
	for _, k := range kinds {
		if len(k.Name) > maxNameLen {
			maxNameLen = len(k.Name)
		}
	}

	fmt.Println(paint(headerStyle, fmt.Sprintf("  %-*s  %-7s  %-8s  %s", maxNameLen, "Name", "Plane", "Map spc", "Title")))
	for _, k := range kinds {
		fmt.Printf("  %-*s  %-7s  %-8s  %s\n", maxNameLen, k.Name, k.Plane, registry.FormatSectorSpecials(k.SectorSpecials), k.Title)
	}

	fmt.Println()
	fmt.Println("Start a kind from a scenario trigger: {action: start, kind: <name>, tag: <n>}")
}
