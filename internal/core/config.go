package core

// TicRate is the classic simulation rate in ticks per second.
const TicRate = 35

// RuntimeConfig contains configuration passed to sessions at initialization.
// Nothing here is read from the wall clock once a session is running.
type RuntimeConfig struct {
	TickRate           int    // Nominal ticks per second, used only for reporting durations
	Seed               uint32 // RNG index for deterministic sessions
	RandomSeed         bool   // Seed from the clock instead (live sessions only, never demos)
	CheckpointInterval int    // Ticks between demo-player checkpoints
	Strict             bool   // Panic when a terminated special is ticked
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		TickRate:           TicRate,
		Seed:               0,
		CheckpointInterval: 350,
		Strict:             false,
	}
}

// Seconds converts a tick count to seconds at the configured rate.
func (c RuntimeConfig) Seconds(ticks uint64) float64 {
	rate := c.TickRate
	if rate <= 0 {
		rate = TicRate
	}
	return float64(ticks) / float64(rate)
}
