package sim

import (
	"fmt"
	"sort"

	"github.com/vovakirdan/sectorsim/internal/registry"
)

// Action is what a trigger does to the sectors carrying its tag.
type Action string

const (
	ActionStart   Action = "start"   // Spawn Kind on every tagged sector whose plane is free
	ActionPause   Action = "pause"   // Pause specials controlling tagged sectors
	ActionResume  Action = "resume"  // Resume them
	ActionFree    Action = "free"    // End them in their settled state
	ActionDestroy Action = "destroy" // Tear them down without touching geometry
)

// Trigger is one scripted event. It is applied at the start of tick Tick,
// before any special runs, so replaying the same triggers against the same
// starting index reproduces the same session.
type Trigger struct {
	Tick   uint64        `yaml:"tick"`
	Action Action        `yaml:"action"`
	Kind   string        `yaml:"kind,omitempty"`
	Tag    int           `yaml:"tag"`
	Args   registry.Args `yaml:"args,omitempty"`
}

// Validate checks that the action is known and that start names a
// registered kind. Kind is optional for other actions and filters targets.
func (t Trigger) Validate() error {
	switch t.Action {
	case ActionStart:
		if t.Kind == "" {
			return fmt.Errorf("sim: trigger at tick %d: start needs a kind", t.Tick)
		}
	case ActionPause, ActionResume, ActionFree, ActionDestroy:
	default:
		return fmt.Errorf("sim: trigger at tick %d: unknown action %q", t.Tick, t.Action)
	}
	if t.Kind != "" && !registry.Exists(t.Kind) {
		return fmt.Errorf("sim: trigger at tick %d: unknown kind %q", t.Tick, t.Kind)
	}
	return nil
}

// String formats the trigger for logs and listings.
func (t Trigger) String() string {
	if t.Kind == "" {
		return fmt.Sprintf("@%d %s tag=%d", t.Tick, t.Action, t.Tag)
	}
	return fmt.Sprintf("@%d %s %s tag=%d", t.Tick, t.Action, t.Kind, t.Tag)
}

// SortTriggers orders triggers by tick, keeping script order within a tick.
func SortTriggers(ts []Trigger) {
	sort.SliceStable(ts, func(i, j int) bool {
		return ts[i].Tick < ts[j].Tick
	})
}

func cloneTriggers(ts []Trigger) []Trigger {
	out := make([]Trigger, len(ts))
	for i, t := range ts {
		out[i] = t
		if t.Args != nil {
			out[i].Args = make(registry.Args, len(t.Args))
			for k, v := range t.Args {
				out[i].Args[k] = v
			}
		}
	}
	return out
}
