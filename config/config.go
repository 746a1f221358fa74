// Package config is an opaque key/value store loaded from TOML
// Keys are dotted paths; nested tables flatten into them
package config

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

// Well-known keys
const (
	KeyFPS          = "present.fps"
	KeyWidth        = "present.width"
	KeyHeight       = "present.height"
	KeySampleRate   = "audio.sample_rate"
	KeyBlock        = "audio.block"
	KeyParallelism  = "scene.parallelism"
	KeyRecordFormat = "record.format"
)

// Defaults returns the built-in values for every well-known key
func Defaults() map[string]any {
	return map[string]any{
		KeyFPS:          int64(30),
		KeyWidth:        int64(80),
		KeyHeight:       int64(24),
		KeySampleRate:   int64(44100),
		KeyBlock:        int64(1470),
		KeyParallelism:  int64(4),
		KeyRecordFormat: "json",
	}
}

// Store is immutable after construction and safe to share across scenes
type Store struct {
	values map[string]any
}

// New builds a store from defaults overlaid with values
func New(values map[string]any) *Store {
	merged := Defaults()
	maps.Copy(merged, flatten("", values))
	return &Store{values: merged}
}

// Parse decodes TOML data over the defaults
func Parse(data []byte) (*Store, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return New(raw), nil
}

// Load reads a TOML file; an empty path yields the defaults
func Load(path string) (*Store, error) {
	if path == "" {
		return New(nil), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Marshal renders the store as nested TOML
func (s *Store) Marshal() ([]byte, error) {
	return toml.Marshal(nest(s.values))
}

// Lookup returns the raw value for key
func (s *Store) Lookup(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Keys returns every key in sorted order
func (s *Store) Keys() []string {
	return slices.Sorted(maps.Keys(s.values))
}

// View layers overrides over the shared store
func (s *Store) View(overrides map[string]any) *View {
	return &View{base: s, overrides: flatten("", overrides)}
}

func flatten(prefix string, in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			maps.Copy(out, flatten(key, sub))
			continue
		}
		out[key] = v
	}
	return out
}

func nest(flat map[string]any) map[string]any {
	out := make(map[string]any)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cur := out
		parts := splitKey(k)
		for _, p := range parts[:len(parts)-1] {
			next, ok := cur[p].(map[string]any)
			if !ok {
				next = make(map[string]any)
				cur[p] = next
			}
			cur = next
		}
		cur[parts[len(parts)-1]] = flat[k]
	}
	return out
}

func splitKey(k string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(k); i++ {
		if k[i] == '.' {
			parts = append(parts, k[start:i])
			start = i + 1
		}
	}
	return append(parts, k[start:])
}
