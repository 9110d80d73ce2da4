package store

import (
	"io/ioutil"
	"os"
	"testing"
)

// NewTestKV returns a KV store for testing purposes, "inmem" or "level".
func NewTestKV(t testing.TB, kv string) KV {
	t.Helper()

	switch kv {
	case "inmem":
		db := NewInmem()
		t.Cleanup(func() {
			_ = db.Close()
		})

		return db
	case "level":
		dir, err := ioutil.TempDir("", "leveldb")
		if err != nil {
			t.Fatal(err)
		}

		db, err := NewLevelDB(dir)
		if err != nil {
			t.Fatalf("failed to create LevelDB: %s", err)
		}

		t.Cleanup(func() {
			if err := db.Close(); err != nil && err != ErrClosed {
				t.Fatal(err)
			}
			if err := os.RemoveAll(dir); err != nil {
				t.Fatal(err)
			}
		})

		return db
	}

	t.Fatalf("unknown kv %s", kv)
	panic("unknown kv " + kv)
}
