package plugindb

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nix-community/jetbrains-plugins-generator/internal/ide"
	"github.com/sirupsen/logrus"
)

const (
	allPluginsFile = "all_plugins.json"
	idesDir        = "ides"
)

// Load reads the entries table from dir. A missing file yields an empty
// database; a malformed one is an error.
func Load(dir string) (*Database, error) {
	db := New()
	data, err := os.ReadFile(filepath.Join(dir, allPluginsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return db, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", allPluginsFile, err)
	}
	if err := json.Unmarshal(data, &db.entries); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", allPluginsFile, err)
	}
	return db, nil
}

// LoadFull reads the entries table and every per-IDE mapping. The loaded
// identities carry no build numbers, so the result supports garbage
// collection but never compatibility re-resolution. Files whose name does
// not parse as an IDE identity are skipped with a warning; files whose
// content does not parse are an error.
func LoadFull(log *logrus.Logger, dir string) (*Database, error) {
	db, err := Load(dir)
	if err != nil {
		return nil, err
	}
	files, err := os.ReadDir(filepath.Join(dir, idesDir))
	if err != nil {
		return nil, fmt.Errorf("failed to read IDE directory: %w", err)
	}
	for _, file := range files {
		id, ok := ide.IdentityFromFilename(file.Name())
		if !ok {
			log.Warnf("Invalid JSON file in ide directory skipped: %s", file.Name())
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, idesDir, file.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read IDE file %s: %w", file.Name(), err)
		}
		plugins := make(map[string]string)
		if err := json.Unmarshal(data, &plugins); err != nil {
			return nil, fmt.Errorf("failed to parse IDE file %s: %w", file.Name(), err)
		}
		db.perIDE[id] = plugins
	}
	return db, nil
}

// Save writes the database to dir: the entries table as all_plugins.json and
// one file per IDE identity under ides/, all pretty-printed with stable key
// order.
func (d *Database) Save(log *logrus.Logger, dir string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if err := os.MkdirAll(filepath.Join(dir, idesDir), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	outPath := filepath.Join(dir, allPluginsFile)
	log.Debugf("Generating %s...", outPath)
	data, err := json.MarshalIndent(d.entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", allPluginsFile, err)
	}

	for id, plugins := range d.perIDE {
		outPath := filepath.Join(dir, idesDir, id.Filename())
		log.Debugf("Generating %s...", outPath)
		data, err := json.MarshalIndent(plugins, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write IDE file %s: %w", id.Filename(), err)
		}
	}
	return nil
}
