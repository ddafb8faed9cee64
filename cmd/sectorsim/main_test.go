package main

import (
	"path/filepath"
	"testing"
)

func TestCloseStoreReleasesDatabase(t *testing.T) {
	appCfg.Storage.DBPath = filepath.Join(t.TempDir(), "demos.db")
	t.Cleanup(closeStore)

	store := openStore()
	if db != store {
		t.Fatal("openStore() should track the open database")
	}
	if _, err := store.ListDemos(0); err != nil {
		t.Fatalf("ListDemos() on an open store failed: %v", err)
	}

	closeStore()
	if db != nil {
		t.Error("closeStore() should forget the database")
	}
	if _, err := store.ListDemos(0); err == nil {
		t.Error("store should be closed after closeStore()")
	}
	closeStore()
}
