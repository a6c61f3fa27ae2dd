package workflow

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchStore_FiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	stop := make(chan struct{})
	defer close(stop)

	changed := make(chan struct{}, 8)
	if err := WatchStore(dir, func() { changed <- struct{}{} }, stop); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "demo.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("expected onChange to fire after file write")
	}
}
