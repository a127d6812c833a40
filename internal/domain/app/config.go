package app

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Config is the persisted, type-erased form of an App's settings. Each app
// type reads and writes it through its own typed struct; keys the struct
// does not know about are preserved.
type Config map[string]any

// Clone returns a deep copy of c
func (c Config) Clone() Config {
	if c == nil {
		return Config{}
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return maps.Clone(c)
	}
	var out Config
	if err := json.Unmarshal(raw, &out); err != nil {
		return maps.Clone(c)
	}
	return out
}

// GetString returns the string stored under key, or "" when missing or not a string
func (c Config) GetString(key string) string {
	v, ok := c[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// Set stores v under key
func (c Config) Set(key string, v any) {
	c[key] = v
}

// Decode unmarshals the config into a typed struct
func (c Config) Decode(v any) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode app config: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode app config: %w", err)
	}
	return nil
}

// Overlay returns a copy of c with every field of v written over it. Fields
// v omits (omitempty) keep their current value in c.
func (c Config) Overlay(v any) (Config, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode app config: %w", err)
	}
	var patch map[string]any
	if err := json.Unmarshal(raw, &patch); err != nil {
		return nil, fmt.Errorf("app config must be an object: %w", err)
	}
	out := c.Clone()
	maps.Copy(out, patch)
	return out, nil
}

// ConfigFrom encodes a typed struct into a fresh Config
func ConfigFrom(v any) (Config, error) {
	return Config{}.Overlay(v)
}
