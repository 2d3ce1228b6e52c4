package plugindb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/nix-community/jetbrains-plugins-generator/internal/ide"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func TestLoadMissingFile(t *testing.T) {
	db, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 0, db.EntryCount())
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, allPluginsFile), []byte("{not json"), 0o644))
	_, err := Load(dir)
	require.ErrorContains(t, err, "failed to parse")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	log := testLogger()

	db := New()
	entry := Entry{Path: "files/org.example.plugin-2.0.zip", Hash: "aGFzaA=="}
	db.Insert(testIDE, "org.example.plugin", "2.0", entry)
	db.Insert(testOtherIDE, "org.example.plugin", "2.0", entry)
	db.Insert(testOtherIDE, "org.example.other", "1.5", Entry{Path: "files/other.jar", Hash: "b3RoZXI="})
	require.NoError(t, db.Save(log, dir))

	// Entries-only load sees the full entries table but no IDE mappings.
	loaded, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, db.entries, loaded.entries)
	require.Equal(t, 0, loaded.IDECount())

	// The full load reproduces the per-IDE tables as well.
	full, err := LoadFull(log, dir)
	require.NoError(t, err)
	require.Equal(t, db.entries, full.entries)
	require.Equal(t, db.perIDE, full.perIDE)
}

func TestSaveIsPrettyPrinted(t *testing.T) {
	dir := t.TempDir()
	db := New()
	db.Insert(testIDE, "org.example.plugin", "2.0", Entry{Path: "files/p.zip", Hash: "aGFzaA=="})
	require.NoError(t, db.Save(testLogger(), dir))

	data, err := os.ReadFile(filepath.Join(dir, allPluginsFile))
	require.NoError(t, err)
	require.Contains(t, string(data), "\n  \"org.example.plugin/--/2.0\"")
	require.Contains(t, string(data), `"p": "files/p.zip"`)
	require.Contains(t, string(data), `"h": "aGFzaA=="`)

	data, err = os.ReadFile(filepath.Join(dir, idesDir, testIDE.Filename()))
	require.NoError(t, err)
	require.Contains(t, string(data), "\"org.example.plugin\": \"2.0\"")
}

func TestLoadFullSkipsUnknownFilenames(t *testing.T) {
	dir := t.TempDir()
	db := New()
	db.Insert(testIDE, "org.example.plugin", "2.0", Entry{Path: "files/p.zip", Hash: "aGFzaA=="})
	require.NoError(t, db.Save(testLogger(), dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, idesDir, "README.txt"), []byte("hi"), 0o644))

	full, err := LoadFull(testLogger(), dir)
	require.NoError(t, err)
	require.Equal(t, 1, full.IDECount())
}

func TestLoadFullMalformedIDEFileFails(t *testing.T) {
	dir := t.TempDir()
	db := New()
	db.Insert(testIDE, "org.example.plugin", "2.0", Entry{Path: "files/p.zip", Hash: "aGFzaA=="})
	require.NoError(t, db.Save(testLogger(), dir))
	badFile := ide.Identity{Product: ide.Rider, Version: "2025.2"}.Filename()
	require.NoError(t, os.WriteFile(filepath.Join(dir, idesDir, badFile), []byte("{oops"), 0o644))

	_, err := LoadFull(testLogger(), dir)
	require.ErrorContains(t, err, "failed to parse IDE file")
}
