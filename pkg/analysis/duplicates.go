package analysis

import (
	"regexp"
	"sort"
	"strings"

	"github.com/vanderheijden86/keymatrix/pkg/model"
)

var nonWordRegex = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

// DuplicateConfig configures duplicate detection.
type DuplicateConfig struct {
	// Threshold is the minimum Jaccard similarity (0.0-1.0). Default 0.6.
	Threshold float64
	// MaxPairs limits the number of pairs returned. Default 20.
	MaxPairs int
}

// DefaultDuplicateConfig returns sensible defaults.
func DefaultDuplicateConfig() DuplicateConfig {
	return DuplicateConfig{Threshold: 0.6, MaxPairs: 20}
}

// DuplicatePair is two keywords whose names look alike.
type DuplicatePair struct {
	A, B       int      `json:"-"`
	NameA      string   `json:"name_a"`
	NameB      string   `json:"name_b"`
	Similarity float64  `json:"similarity"`
	Common     []string `json:"common_grams,omitempty"`
}

// DetectDuplicates compares keyword names by character-trigram Jaccard
// similarity. Exact matches after normalization score 1.
func DetectDuplicates(ks []model.Keyword, cfg DuplicateConfig) []DuplicatePair {
	if len(ks) < 2 {
		return nil
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultDuplicateConfig().Threshold
	}
	if cfg.MaxPairs <= 0 {
		cfg.MaxPairs = DefaultDuplicateConfig().MaxPairs
	}

	grams := make([][]string, len(ks))
	for i := range ks {
		grams[i] = nameGrams(ks[i].Name)
	}

	var pairs []DuplicatePair
	// O(n^2), fine for keyword sets of a few thousand.
	for i := 0; i < len(ks); i++ {
		for j := i + 1; j < len(ks); j++ {
			sim, common := jaccardSimilarity(grams[i], grams[j])
			if sim < cfg.Threshold {
				continue
			}
			sort.Strings(common)
			pairs = append(pairs, DuplicatePair{
				A: ks[i].ID, B: ks[j].ID,
				NameA: ks[i].Name, NameB: ks[j].Name,
				Similarity: sim,
				Common:     truncateStringSlice(common, 5),
			})
		}
	}

	sortPairsBySimilarity(pairs)
	if len(pairs) > cfg.MaxPairs {
		pairs = pairs[:cfg.MaxPairs]
	}
	return pairs
}

// normalizeName lowercases and strips punctuation, collapsing whitespace.
func normalizeName(s string) string {
	s = nonWordRegex.ReplaceAllString(strings.ToLower(s), " ")
	return strings.Join(strings.Fields(s), " ")
}

// nameGrams returns the distinct rune trigrams of the normalized name, or
// the whole name when it is shorter than three runes.
func nameGrams(name string) []string {
	r := []rune(normalizeName(name))
	if len(r) == 0 {
		return nil
	}
	if len(r) < 3 {
		return []string{string(r)}
	}
	seen := make(map[string]bool, len(r))
	out := make([]string, 0, len(r)-2)
	for i := 0; i+3 <= len(r); i++ {
		g := string(r[i : i+3])
		if !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}
	return out
}

// jaccardSimilarity computes Jaccard similarity between two sets.
// Returns the score and the common elements.
func jaccardSimilarity(set1, set2 []string) (float64, []string) {
	if len(set1) == 0 || len(set2) == 0 {
		return 0, nil
	}

	map1 := make(map[string]bool, len(set1))
	for _, k := range set1 {
		map1[k] = true
	}

	var intersection []string
	union := len(map1)
	seen2 := make(map[string]bool, len(set2))
	for _, k := range set2 {
		if seen2[k] {
			continue
		}
		seen2[k] = true
		if map1[k] {
			intersection = append(intersection, k)
		} else {
			union++
		}
	}
	return float64(len(intersection)) / float64(union), intersection
}

// sortPairsBySimilarity orders pairs by similarity, highest first, then by IDs.
func sortPairsBySimilarity(pairs []DuplicatePair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Similarity != pairs[j].Similarity {
			return pairs[i].Similarity > pairs[j].Similarity
		}
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
}

func truncateStringSlice(s []string, max int) []string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
