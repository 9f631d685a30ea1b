// Package backup snapshots target-account asset definitions to disk before
// an overwrite replaces them.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dimkharitonov/quicksightsync/internal/logging"
	"github.com/dimkharitonov/quicksightsync/internal/model"
)

// timestampLayout keeps snapshot file names sortable.
const timestampLayout = "20060102-150405"

// Store writes and prunes asset snapshots under a base directory, one
// subdirectory per asset type.
type Store struct {
	dir         string
	maxPerAsset int

	// now is replaceable for tests.
	now func() time.Time
}

// NewStore creates a backup store rooted at dir, keeping at most max
// snapshots per asset. A max of zero or less disables pruning.
func NewStore(dir string, max int) *Store {
	return &Store{
		dir:         dir,
		maxPerAsset: max,
		now:         time.Now,
	}
}

// Dir returns the store's base directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes a JSON snapshot of v for the given asset and prunes old
// snapshots beyond the configured maximum. It returns the snapshot path.
func (s *Store) Save(assetType model.AssetType, id string, v any) (string, error) {
	dir := filepath.Join(s.dir, string(assetType))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode backup for %s %q: %w", assetType, id, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%s.json", id, s.now().UTC().Format(timestampLayout)))
	// #nosec G306 - snapshots hold no credentials
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	logging.Debug("wrote backup snapshot",
		logging.Asset(id),
		logging.AssetType(string(assetType)),
	)

	if err := s.prune(assetType, id); err != nil {
		logging.Warn("failed to prune old backups",
			logging.Asset(id),
			logging.Err(err),
		)
	}

	return path, nil
}

// List returns the snapshot paths for an asset, newest first.
func (s *Store) List(assetType model.AssetType, id string) ([]string, error) {
	pattern := filepath.Join(s.dir, string(assetType), id+"-*.json")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	// Filter out snapshots of assets whose ID merely shares a prefix;
	// the timestamp segment never contains another hyphenated word.
	var paths []string
	for _, m := range matches {
		rest := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), id+"-"), ".json")
		if _, err := time.Parse(timestampLayout, rest); err == nil {
			paths = append(paths, m)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
	return paths, nil
}

// prune removes the oldest snapshots past the per-asset maximum.
func (s *Store) prune(assetType model.AssetType, id string) error {
	if s.maxPerAsset <= 0 {
		return nil
	}
	paths, err := s.List(assetType, id)
	if err != nil {
		return err
	}
	for _, path := range paths[min(len(paths), s.maxPerAsset):] {
		if err := os.Remove(path); err != nil {
			return err
		}
	}
	return nil
}
