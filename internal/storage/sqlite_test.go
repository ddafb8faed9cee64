package storage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/vovakirdan/sectorsim/internal/registry"
	"github.com/vovakirdan/sectorsim/internal/sim"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleDemo(id string, created time.Time) sim.Demo {
	return sim.Demo{
		ID:         id,
		Name:       "tour",
		Level:      "hangar",
		StartIndex: 4000000000,
		Ticks:      700,
		Triggers: []sim.Trigger{
			{Tick: 0, Action: sim.ActionStart, Kind: "door_normal", Tag: 1},
			{Tick: 10, Action: sim.ActionStart, Kind: "floor_raise24", Tag: 6, Args: registry.Args{"speed": 2}},
			{Tick: 10, Action: sim.ActionPause, Tag: 1},
		},
		Hazard:      &sim.HazardConfig{Sector: 5, Health: 100, Suit: true},
		FinalDigest: "abc123",
		CreatedAt:   created,
	}
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveDemo(sampleDemo("keep", time.Now())); err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer store.Close()
	if _, err := store.LoadDemo("keep"); err != nil {
		t.Errorf("demo lost across reopen: %v", err)
	}
}

func TestDemoRoundTrip(t *testing.T) {
	store := openStore(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	want := sampleDemo("6f1c2a", created)

	id, err := store.SaveDemo(want)
	if err != nil {
		t.Fatalf("SaveDemo() failed: %v", err)
	}
	if id != want.ID {
		t.Errorf("SaveDemo() id = %q", id)
	}

	got, err := store.LoadDemo(id)
	if err != nil {
		t.Fatalf("LoadDemo() failed: %v", err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, expected %v", got.CreatedAt, created)
	}
	got.CreatedAt = want.CreatedAt
	if !reflect.DeepEqual(*got, want) {
		t.Errorf("LoadDemo() = %+v\nexpected %+v", *got, want)
	}
}

func TestSaveDemoAssignsID(t *testing.T) {
	store := openStore(t)
	d := sampleDemo("", time.Time{})
	d.Hazard = nil

	id, err := store.SaveDemo(d)
	if err != nil {
		t.Fatal(err)
	}
	if len(id) != 36 {
		t.Errorf("generated id %q is not a UUID", id)
	}
	got, err := store.LoadDemo(id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Hazard != nil || got.CreatedAt.IsZero() {
		t.Errorf("hazard %v created %v", got.Hazard, got.CreatedAt)
	}
}

func TestDemoPrefixLookup(t *testing.T) {
	store := openStore(t)
	now := time.Now().UTC()
	for _, id := range []string{"aa11", "aa22", "bb33"} {
		if _, err := store.SaveDemo(sampleDemo(id, now)); err != nil {
			t.Fatal(err)
		}
	}

	d, err := store.LoadDemo("bb")
	if err != nil || d.ID != "bb33" {
		t.Errorf("LoadDemo(bb) = %v, %v", d, err)
	}
	if _, err := store.LoadDemo("aa"); !errors.Is(err, ErrAmbiguousID) {
		t.Errorf("LoadDemo(aa) error = %v, expected ErrAmbiguousID", err)
	}
	if _, err := store.LoadDemo("cc"); !errors.Is(err, ErrDemoNotFound) {
		t.Errorf("LoadDemo(cc) error = %v, expected ErrDemoNotFound", err)
	}
}

func TestListAndDeleteDemos(t *testing.T) {
	store := openStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		if _, err := store.SaveDemo(sampleDemo(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := store.ListDemos(2)
	if err != nil {
		t.Fatalf("ListDemos() failed: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "third" || entries[1].ID != "second" {
		t.Fatalf("ListDemos() = %+v", entries)
	}
	if entries[0].Triggers != 3 || entries[0].Ticks != 700 || entries[0].StartIndex != 4000000000 {
		t.Errorf("entry = %+v", entries[0])
	}

	if err := store.DeleteDemo("third"); err != nil {
		t.Fatalf("DeleteDemo() failed: %v", err)
	}
	if _, err := store.LoadDemo("third"); !errors.Is(err, ErrDemoNotFound) {
		t.Error("deleted demo still loads")
	}
	entries, _ = store.ListDemos(0)
	if len(entries) != 2 {
		t.Errorf("ListDemos() after delete = %d entries", len(entries))
	}
}

func TestRuns(t *testing.T) {
	store := openStore(t)

	runs := []RunResult{
		{Source: "hangar-tour", Level: "hangar", Seed: 1, Ticks: 1400, Digest: "d1", Health: 100},
		{Source: "6f1c2a", Level: "hangar", Seed: 21, Ticks: 700, Digest: "d2", Health: -1, Verified: true},
		{Source: "hangar-tour", Level: "hangar", Seed: 2, Ticks: 1400, Digest: "d3", Health: 80},
	}
	for _, r := range runs {
		if _, err := store.SaveRun(r); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}

	all, err := store.RecentRuns("", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].Digest != "d3" {
		t.Fatalf("RecentRuns() = %+v", all)
	}
	if !all[1].Verified || all[1].Health != -1 || all[1].Seed != 21 {
		t.Errorf("run = %+v", all[1])
	}

	tour, err := store.RecentRuns("hangar-tour", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(tour) != 2 || tour[1].Digest != "d1" {
		t.Errorf("RecentRuns(hangar-tour) = %+v", tour)
	}
}
