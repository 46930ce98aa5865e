package scoring

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// ShuffleDeterministic orders options by the SHA-256 digest of
// seedMaterial||option. Identical seed material yields an identical order on
// every call; different seed material yields a reproducible but unpredictable
// different order, which defeats positional answer-sharing between examinees.
func ShuffleDeterministic(options []string, seedMaterial string) []string {
	type keyed struct {
		option string
		digest string
	}

	keys := make([]keyed, len(options))
	for i, option := range options {
		sum := sha256.Sum256([]byte(seedMaterial + "\x00" + option))
		keys[i] = keyed{option: option, digest: hex.EncodeToString(sum[:])}
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].digest != keys[j].digest {
			return keys[i].digest < keys[j].digest
		}
		return keys[i].option < keys[j].option
	})

	ordered := make([]string, len(keys))
	for i, k := range keys {
		ordered[i] = k.option
	}
	return ordered
}

// ShuffleIfNeeded returns the deterministic shuffle when enabled, otherwise a
// copy of the options in their given order.
func ShuffleIfNeeded(options []string, seedMaterial string, enabled bool) []string {
	if !enabled {
		return append([]string(nil), options...)
	}
	return ShuffleDeterministic(options, seedMaterial)
}
