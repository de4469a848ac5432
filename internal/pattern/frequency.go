package pattern

import "sort"

// FrequencyMap counts occurrences of canonical values (spacing boxes, font
// sizes, colors). Only counts and distinct-key counts carry meaning; Keys
// sorts so that anything derived from a map renders deterministically.
type FrequencyMap map[string]int

// Add increments the count for key.
func (f FrequencyMap) Add(key string) {
	f[key]++
}

// Count returns the occurrences of key.
func (f FrequencyMap) Count(key string) int {
	return f[key]
}

// Distinct returns the number of distinct keys.
func (f FrequencyMap) Distinct() int {
	return len(f)
}

// Max returns the highest count, or 0 for an empty map.
func (f FrequencyMap) Max() int {
	highest := 0
	for _, n := range f {
		if n > highest {
			highest = n
		}
	}
	return highest
}

// Keys returns all keys in lexical order.
func (f FrequencyMap) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MostCommon returns the key with the highest count. Ties resolve to the
// lexically smallest key. The second return is false for an empty map.
func (f FrequencyMap) MostCommon() (string, bool) {
	best, bestCount := "", 0
	for _, k := range f.Keys() {
		if f[k] > bestCount {
			best, bestCount = k, f[k]
		}
	}
	return best, bestCount > 0
}
