package sim

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"sort"

	"github.com/vovakirdan/sectorsim/internal/level"
	"github.com/vovakirdan/sectorsim/internal/registry"
	"github.com/vovakirdan/sectorsim/internal/rng"
	"github.com/vovakirdan/sectorsim/internal/special"
)

// SaveState is everything needed to resume a session exactly. It is only
// taken between ticks, so RNGIndex is always a tick-boundary index.
type SaveState struct {
	Level     string                      `yaml:"level"`
	Tick      uint64                      `yaml:"tick"`
	RNGIndex  uint32                      `yaml:"rng_index"`
	Paused    bool                        `yaml:"paused,omitempty"`
	Sectors   []level.Sector              `yaml:"sectors"`
	Specials  []special.Record            `yaml:"specials"`
	Pending   []Trigger                   `yaml:"pending,omitempty"`
	Consumers map[string]map[string]int64 `yaml:"consumers,omitempty"`
}

// Save captures the session. Specials held by a session-wide Pause are
// recorded as running and the session as paused, so Restore can put both
// back the same way.
func (s *Session) Save() SaveState {
	held := make(map[special.SectorEffect]bool, len(s.held))
	for _, e := range s.held {
		held[e] = true
	}

	st := SaveState{
		Level:    s.lvl.Name,
		Tick:     s.tick,
		RNGIndex: s.src.Index(),
		Paused:   s.paused,
		Sectors:  s.lvl.Snapshot(),
		Pending:  cloneTriggers(s.pending),
	}
	s.list.Each(func(e special.SectorEffect) {
		rec := e.Save()
		if held[e] {
			rec.Paused = false
		}
		st.Specials = append(st.Specials, rec)
	})
	for _, c := range s.consumers {
		if sv, ok := c.(Saver); ok {
			if st.Consumers == nil {
				st.Consumers = make(map[string]map[string]int64)
			}
			st.Consumers[c.Name()] = sv.SaveState()
		}
	}
	return st
}

// Restore replaces the session's state with st. The sector table and every
// special are rebuilt and checked before anything live changes, so a failed
// Restore leaves the session as it was. On success the current specials are
// destroyed without touching geometry, the sector table is overwritten, the
// random source is re-created at st.RNGIndex and the rebuilt specials take
// their saved registration order.
func (s *Session) Restore(st SaveState) error {
	if s.unloaded {
		return ErrUnloaded
	}
	if st.Level != s.lvl.Name {
		return fmt.Errorf("sim: save is for level %q, session runs %q", st.Level, s.lvl.Name)
	}
	if err := s.lvl.Clone().Restore(st.Sectors); err != nil {
		return fmt.Errorf("sim: restore: %w", err)
	}

	list := special.NewList()
	for i, rec := range st.Specials {
		e, err := registry.Restore(s.lvl, rec)
		if err != nil {
			return fmt.Errorf("sim: restore special %d: %w", i, err)
		}
		if err := list.Add(e); err != nil {
			return fmt.Errorf("sim: restore special %d: %w", i, err)
		}
	}
	if err := s.loadConsumers(st.Consumers); err != nil {
		return err
	}

	s.held = nil
	s.paused = false
	s.list.DestroyAll()
	s.list = list
	s.watchList()

	if err := s.lvl.Restore(st.Sectors); err != nil {
		return fmt.Errorf("sim: restore: %w", err)
	}
	s.src = rng.NewCounting(s.src.Unwrap().CloneAt(st.RNGIndex))
	s.tick = st.Tick
	s.lastCalls = 0
	s.pending = cloneTriggers(st.Pending)
	SortTriggers(s.pending)

	if st.Paused {
		s.Pause()
	}
	s.logger.Info("state restored", "tick", s.tick, "index", s.src.Index(), "specials", s.list.Len())
	return nil
}

// loadConsumers loads every saving consumer's state. If one fails, the
// consumers already loaded get their previous state back.
func (s *Session) loadConsumers(states map[string]map[string]int64) error {
	var savers []Saver
	for _, c := range s.consumers {
		sv, ok := c.(Saver)
		if !ok {
			continue
		}
		if _, ok := states[c.Name()]; !ok {
			return fmt.Errorf("sim: save has no state for consumer %q", c.Name())
		}
		savers = append(savers, sv)
	}

	prev := make([]map[string]int64, len(savers))
	for i, sv := range savers {
		prev[i] = sv.SaveState()
	}
	i := 0
	for _, c := range s.consumers {
		sv, ok := c.(Saver)
		if !ok {
			continue
		}
		if err := sv.LoadState(states[c.Name()]); err != nil {
			for j := 0; j < i; j++ {
				_ = savers[j].LoadState(prev[j])
			}
			return fmt.Errorf("sim: restore consumer %q: %w", c.Name(), err)
		}
		i++
	}
	return nil
}

// Digest returns a SHA-256 over the tick, the random index, every sector
// field, every special record and every consumer state. Two sessions with
// equal digests are in the same state.
func (s *Session) Digest() string {
	return s.Save().Digest()
}

// Digest hashes a save state; see Session.Digest.
func (st SaveState) Digest() string {
	h := sha256.New()
	putUint(h, st.Tick)
	putUint(h, uint64(st.RNGIndex))
	putBool(h, st.Paused)

	for _, sec := range st.Sectors {
		putInt(h, int64(sec.ID))
		putInt(h, int64(sec.Tag))
		putInt(h, int64(sec.Floor))
		putInt(h, int64(sec.Ceiling))
		putInt(h, int64(sec.Light))
		putString(h, sec.FloorPic)
		putString(h, sec.CeilingPic)
		putInt(h, int64(sec.Special))
	}

	for _, rec := range st.Specials {
		putString(h, rec.Kind)
		putBool(h, rec.Paused)
		for _, ref := range rec.Sectors {
			putInt(h, int64(ref.Sector))
			putInt(h, int64(ref.Plane))
		}
		for _, k := range rec.FieldKeys() {
			putString(h, k)
			putInt(h, rec.Fields[k])
		}
		for _, k := range rec.TextKeys() {
			putString(h, k)
			putString(h, rec.Texts[k])
		}
	}

	names := make([]string, 0, len(st.Consumers))
	for name := range st.Consumers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		putString(h, name)
		state := st.Consumers[name]
		keys := make([]string, 0, len(state))
		for k := range state {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			putString(h, k)
			putInt(h, state[k])
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}

func putUint(h hash.Hash, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	h.Write(b[:])
}

func putInt(h hash.Hash, v int64) {
	putUint(h, uint64(v))
}

func putBool(h hash.Hash, v bool) {
	if v {
		h.Write([]byte{1})
		return
	}
	h.Write([]byte{0})
}

func putString(h hash.Hash, s string) {
	putUint(h, uint64(len(s)))
	h.Write([]byte(s))
}
