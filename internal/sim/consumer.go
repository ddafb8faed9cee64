package sim

import (
	"fmt"

	"github.com/vovakirdan/sectorsim/internal/level"
	"github.com/vovakirdan/sectorsim/internal/special"
)

// Consumer is per-tick gameplay logic outside the specials, such as damage
// or AI, that may draw from the session's random source. Consumers run after
// all specials, in registration order.
type Consumer interface {
	Name() string
	Consume(ctx *special.Context)
}

// Saver is implemented by consumers whose state must survive save/restore.
type Saver interface {
	SaveState() map[string]int64
	LoadState(state map[string]int64) error
}

// HazardConfig places a player for the hazard consumer.
type HazardConfig struct {
	Sector level.SectorID `yaml:"sector"`
	Health int            `yaml:"health"`
	Suit   bool           `yaml:"suit,omitempty"`
}

// Hazard applies classic damaging-floor rules to one player standing in a
// sector. Damage lands on ticks that are multiples of 32. With a radiation
// suit on the strongest floors, a byte is drawn every tick and a value
// under 5 lets damage through anyway.
type Hazard struct {
	sector  level.SectorID
	health  int
	suit    bool
	secrets int
}

// NewHazard creates the consumer from cfg.
func NewHazard(cfg HazardConfig) *Hazard {
	return &Hazard{sector: cfg.Sector, health: cfg.Health, suit: cfg.Suit}
}

// Name identifies the consumer in save states.
func (h *Hazard) Name() string { return "hazard" }

// Health returns the player's remaining health.
func (h *Hazard) Health() int { return h.health }

// Secrets returns how many secret sectors the player has found.
func (h *Hazard) Secrets() int { return h.secrets }

// Consume runs the floor rules for one tick.
func (h *Hazard) Consume(ctx *special.Context) {
	s := ctx.Level.Sector(h.sector)
	if s == nil || h.health <= 0 {
		return
	}
	onBeat := ctx.Tick&0x1f == 0

	switch s.Special {
	case 5:
		if !h.suit && onBeat {
			h.damage(10)
		}
	case 7:
		if !h.suit && onBeat {
			h.damage(5)
		}
	case 16, 4:
		if (!h.suit || ctx.Random.NextByte() < 5) && onBeat {
			h.damage(20)
		}
	case 9:
		h.secrets++
		s.Special = 0
	}
}

func (h *Hazard) damage(n int) {
	h.health -= n
	if h.health < 0 {
		h.health = 0
	}
}

// SaveState captures the player state.
func (h *Hazard) SaveState() map[string]int64 {
	suit := int64(0)
	if h.suit {
		suit = 1
	}
	return map[string]int64{
		"sector":  int64(h.sector),
		"health":  int64(h.health),
		"suit":    suit,
		"secrets": int64(h.secrets),
	}
}

// LoadState restores the player state.
func (h *Hazard) LoadState(state map[string]int64) error {
	for _, k := range []string{"sector", "health", "suit", "secrets"} {
		if _, ok := state[k]; !ok {
			return fmt.Errorf("sim: hazard state missing %q", k)
		}
	}
	h.sector = level.SectorID(state["sector"])
	h.health = int(state["health"])
	h.suit = state["suit"] != 0
	h.secrets = int(state["secrets"])
	return nil
}

var (
	_ Consumer = (*Hazard)(nil)
	_ Saver    = (*Hazard)(nil)
)
