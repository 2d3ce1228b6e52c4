// Package plugindb holds the persisted plugin compatibility database: a
// deduplicated table of content-addressed plugin artifacts and, per IDE
// release, the newest installable version of each plugin.
package plugindb

import (
	"sync"

	"github.com/nix-community/jetbrains-plugins-generator/internal/ide"
)

const keySeparator = "/--/"

// Key uniquely identifies one published plugin release. The separator can
// appear in neither plugin ids nor versions, so distinct pairs never collide.
type Key string

func NewKey(pluginID, version string) Key {
	return Key(pluginID + keySeparator + version)
}

// Entry is the content address of one plugin artifact: the download path
// relative to the marketplace download host, and the base64 sha256 of the
// unpacked artifact contents. Entries are immutable; the same key must
// always resolve to the same entry.
type Entry struct {
	Path string `json:"p"`
	Hash string `json:"h"`
}

// Database is the shared crawl result store. It is safe for concurrent use.
type Database struct {
	mu      sync.RWMutex
	entries map[Key]Entry
	perIDE  map[ide.Identity]map[string]string
}

func New() *Database {
	return &Database{
		entries: make(map[Key]Entry),
		perIDE:  make(map[ide.Identity]map[string]string),
	}
}

// Insert records that the given IDE gets pluginID at version, backed by
// entry. The entries table keeps the first entry written for a key; the
// per-IDE mapping is always written. Both happen under one lock so the
// referential integrity between the two tables can never be observed broken.
func (d *Database) Insert(id ide.Identity, pluginID, version string, entry Entry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := NewKey(pluginID, version)
	if _, ok := d.entries[key]; !ok {
		d.entries[key] = entry
	}
	plugins, ok := d.perIDE[id]
	if !ok {
		plugins = make(map[string]string)
		d.perIDE[id] = plugins
	}
	plugins[pluginID] = version
}

// Lookup returns the entry for a key, if any.
func (d *Database) Lookup(key Key) (Entry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entry, ok := d.entries[key]
	return entry, ok
}

// PluginVersion returns the version of pluginID chosen for the given IDE.
func (d *Database) PluginVersion(id ide.Identity, pluginID string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	version, ok := d.perIDE[id][pluginID]
	return version, ok
}

// EntryCount returns the number of distinct content-addressed artifacts.
func (d *Database) EntryCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// IDECount returns the number of IDE releases with a plugin mapping.
func (d *Database) IDECount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.perIDE)
}

// GarbageCollect removes every entry not referenced by any per-IDE mapping
// and returns how many were removed. The caller must have loaded the full
// per-IDE table set first: with some IDE files missing, entries they
// reference would be wrongly evicted.
func (d *Database) GarbageCollect() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	used := make(map[Key]bool)
	for _, plugins := range d.perIDE {
		for pluginID, version := range plugins {
			used[NewKey(pluginID, version)] = true
		}
	}
	removed := 0
	for key := range d.entries {
		if !used[key] {
			delete(d.entries, key)
			removed++
		}
	}
	return removed
}
