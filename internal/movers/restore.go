package movers

import (
	"fmt"

	"github.com/vovakirdan/sectorsim/internal/core"
	"github.com/vovakirdan/sectorsim/internal/level"
	"github.com/vovakirdan/sectorsim/internal/registry"
	"github.com/vovakirdan/sectorsim/internal/special"
)

// effect converts a constructor result so a failed constructor never
// yields a non-nil interface holding a nil pointer.
func effect[T special.SectorEffect](e T, err error) (special.SectorEffect, error) {
	if err != nil {
		return nil, err
	}
	return e, nil
}

// singleSector returns the only sector of a single-sector record.
func singleSector(lvl *level.Level, rec special.Record) (level.SectorID, error) {
	if len(rec.Sectors) != 1 {
		return 0, fmt.Errorf("movers: %s record has %d sectors, expected 1", rec.Kind, len(rec.Sectors))
	}
	id := rec.Sectors[0].Sector
	if lvl.Sector(id) == nil {
		return 0, fmt.Errorf("movers: %s record: sector %d: %w", rec.Kind, id, level.ErrUnknownSector)
	}
	return id, nil
}

// scaledSpeed applies the "speed" multiplier argument to a base speed.
// Missing or non-positive multipliers leave the base unchanged.
func scaledSpeed(base core.Fixed, args registry.Args) core.Fixed {
	if n := args.Int("speed", 1); n > 1 {
		return base.Scale(n)
	}
	return base
}
