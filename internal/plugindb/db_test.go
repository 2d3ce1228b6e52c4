package plugindb

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nix-community/jetbrains-plugins-generator/internal/ide"
)

var (
	testIDE      = ide.Identity{Product: ide.GoLand, Version: "2025.1"}
	testOtherIDE = ide.Identity{Product: ide.Rider, Version: "2025.1"}
)

func TestNewKey(t *testing.T) {
	require.Equal(t, Key("org.example.plugin/--/2.0"), NewKey("org.example.plugin", "2.0"))
}

func TestInsertIdempotent(t *testing.T) {
	db := New()
	entry := Entry{Path: "files/plugin.zip", Hash: "aGFzaA=="}
	db.Insert(testIDE, "org.example.plugin", "2.0", entry)
	db.Insert(testIDE, "org.example.plugin", "2.0", entry)
	db.Insert(testOtherIDE, "org.example.plugin", "2.0", entry)

	require.Equal(t, 1, db.EntryCount())
	require.Equal(t, 2, db.IDECount())
	got, ok := db.Lookup(NewKey("org.example.plugin", "2.0"))
	require.True(t, ok)
	require.Equal(t, entry, got)
}

func TestInsertFirstWriterWins(t *testing.T) {
	db := New()
	first := Entry{Path: "files/plugin.zip", Hash: "Zmlyc3Q="}
	db.Insert(testIDE, "org.example.plugin", "2.0", first)
	db.Insert(testOtherIDE, "org.example.plugin", "2.0", Entry{Path: "files/plugin.zip", Hash: "c2Vjb25k"})

	got, ok := db.Lookup(NewKey("org.example.plugin", "2.0"))
	require.True(t, ok)
	require.Equal(t, first, got)
	// The per-IDE mapping is still written even when the entry already existed.
	require.Equal(t, "2.0", db.perIDE[testOtherIDE]["org.example.plugin"])
}

func TestInsertConcurrent(t *testing.T) {
	db := New()
	entry := Entry{Path: "files/plugin.zip", Hash: "aGFzaA=="}
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := ide.Identity{Product: ide.GoLand, Version: fmt.Sprintf("2025.%d", i%4)}
			db.Insert(id, "org.example.plugin", "2.0", entry)
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, db.EntryCount())
	require.Equal(t, 4, db.IDECount())
}

func TestGarbageCollect(t *testing.T) {
	db := New()
	db.entries[NewKey("a", "1.0")] = Entry{Path: "a.zip"}
	db.entries[NewKey("b", "1.0")] = Entry{Path: "b.zip"}
	db.entries[NewKey("c", "1.0")] = Entry{Path: "c.zip"}
	db.perIDE[testIDE] = map[string]string{"a": "1.0"}

	require.Equal(t, 2, db.GarbageCollect())
	require.Equal(t, 1, db.EntryCount())
	_, ok := db.Lookup(NewKey("a", "1.0"))
	require.True(t, ok)

	// Idempotent: a second pass removes nothing.
	require.Equal(t, 0, db.GarbageCollect())
	require.Equal(t, 1, db.EntryCount())
}

func TestGarbageCollectKeepsEntriesReferencedByAnyIDE(t *testing.T) {
	db := New()
	db.entries[NewKey("a", "1.0")] = Entry{Path: "a.zip"}
	db.entries[NewKey("a", "2.0")] = Entry{Path: "a2.zip"}
	db.perIDE[testIDE] = map[string]string{"a": "1.0"}
	db.perIDE[testOtherIDE] = map[string]string{"a": "2.0"}

	require.Equal(t, 0, db.GarbageCollect())
	require.Equal(t, 2, db.EntryCount())
}
