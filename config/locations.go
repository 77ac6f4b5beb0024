package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// Location is one pickup site the scraper knows how to search for.
type Location struct {
	// Query is the free text typed into the location field.
	Query string `json:"query"`
	// Sites maps a display language to the canonical suggestion text.
	Sites map[string]string `json:"sites"`
}

// Catalog is the set of known pickup locations keyed by a short name.
type Catalog struct {
	Locations map[string]Location `json:"locations"`
}

// Lookup returns the location registered under key.
func (c Catalog) Lookup(key string) (Location, bool) {
	loc, ok := c.Locations[strings.ToLower(strings.TrimSpace(key))]
	return loc, ok
}

// Keys returns the catalog keys in sorted order.
func (c Catalog) Keys() []string {
	keys := make([]string, 0, len(c.Locations))
	for k := range c.Locations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func splitExt(f string) (string, string) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i] == '.' {
			return f[0:i], f[i+1:]
		}
	}
	return f, ""
}

// LoadCatalog reads a json5 location catalog. A sibling file named
// <name>.local.<ext> is merged over it when present, so operators can add
// sites without editing the tracked file.
func LoadCatalog(path string) (Catalog, error) {
	var out Catalog
	found := false

	base, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return out, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	if len(base) > 0 {
		if err := json5.Unmarshal(base, &out); err != nil {
			return out, fmt.Errorf("catalog: parse %s: %w", path, err)
		}
		found = true
	}

	prefix, ext := splitExt(filepath.Base(path))
	localPath := filepath.Join(filepath.Dir(path), fmt.Sprintf("%s.local.%s", prefix, ext))
	local, err := os.ReadFile(localPath)
	if err != nil && !os.IsNotExist(err) {
		return out, fmt.Errorf("catalog: read %s: %w", localPath, err)
	}
	if len(local) > 0 {
		var override Catalog
		if err := json5.Unmarshal(local, &override); err != nil {
			return out, fmt.Errorf("catalog: parse %s: %w", localPath, err)
		}
		if err := mergo.Merge(&out, override, mergo.WithOverride); err != nil {
			return out, fmt.Errorf("catalog: merge %s: %w", localPath, err)
		}
		slog.Info("merged location catalog with local overrides", "local", localPath)
		found = true
	}

	if !found {
		return out, os.ErrNotExist
	}

	normalized := make(map[string]Location, len(out.Locations))
	for k, v := range out.Locations {
		normalized[strings.ToLower(strings.TrimSpace(k))] = v
	}
	out.Locations = normalized
	return out, nil
}
