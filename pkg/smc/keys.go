package smc

import "sort"

// KnownKey documents a key that shows up across many platforms with a
// conventional meaning. The authoritative set of keys on a machine always
// comes from its description tree; this table only supplies display labels
// and plausible defaults for keys the tree does not describe.
//
// The table lives in keys_gen.go and is regenerated from data/smc-keys.yaml
// by cmd/smc-keygen.
type KnownKey struct {
	// Key is the four-character identifier.
	Key Key

	// Label is the conventional human-readable name.
	Label string

	// Quantity is the physical quantity class: "temperature", "voltage",
	// "current", "power" or "fan".
	Quantity string
}

// KnownKeyLabel returns the conventional label for a key, if the key is in
// the well-known table.
func KnownKeyLabel(key Key) (string, bool) {
	k, ok := knownKeys[key]
	if !ok {
		return "", false
	}
	return k.Label, true
}

// LookupKnownKey returns the full well-known entry for a key.
func LookupKnownKey(key Key) (KnownKey, bool) {
	k, ok := knownKeys[key]
	return k, ok
}

// KnownKeys returns all well-known entries sorted by key.
func KnownKeys() []KnownKey {
	out := make([]KnownKey, 0, len(knownKeys))
	for _, k := range knownKeys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
