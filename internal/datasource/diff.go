package datasource

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vanderheijden86/keymatrix/pkg/model"
)

// FieldChange records one keyword whose tracked fields differ between sets.
type FieldChange struct {
	ID     int      `json:"id"`
	Fields []string `json:"fields"`
}

// KeywordDiff describes how a reloaded keyword set differs from the one on
// screen.
type KeywordDiff struct {
	Added   []int         `json:"added"`
	Removed []int         `json:"removed"`
	Changed []FieldChange `json:"changed"`
	CountA  int           `json:"count_a"`
	CountB  int           `json:"count_b"`
}

// Empty reports whether the two sets are equivalent for display.
func (d KeywordDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Summary returns a one-line description for the status bar.
func (d KeywordDiff) Summary() string {
	if d.Empty() {
		return fmt.Sprintf("no changes (%d keywords)", d.CountB)
	}
	var parts []string
	if n := len(d.Added); n > 0 {
		parts = append(parts, fmt.Sprintf("+%d added", n))
	}
	if n := len(d.Removed); n > 0 {
		parts = append(parts, fmt.Sprintf("-%d removed", n))
	}
	if n := len(d.Changed); n > 0 {
		parts = append(parts, fmt.Sprintf("~%d changed", n))
	}
	return fmt.Sprintf("%s (%d → %d keywords)", strings.Join(parts, ", "), d.CountA, d.CountB)
}

// Diff compares keyword set a (current) with b (reloaded). IDs in every
// list are sorted ascending.
func Diff(a, b []model.Keyword) KeywordDiff {
	d := KeywordDiff{CountA: len(a), CountB: len(b)}

	mapA := make(map[int]model.Keyword, len(a))
	for _, k := range a {
		mapA[k.ID] = k
	}
	mapB := make(map[int]model.Keyword, len(b))
	for _, k := range b {
		mapB[k.ID] = k
	}

	for id := range mapA {
		if _, ok := mapB[id]; !ok {
			d.Removed = append(d.Removed, id)
		}
	}
	for id, kb := range mapB {
		ka, ok := mapA[id]
		if !ok {
			d.Added = append(d.Added, id)
			continue
		}
		if fields := changedFields(ka, kb); len(fields) > 0 {
			d.Changed = append(d.Changed, FieldChange{ID: id, Fields: fields})
		}
	}

	sort.Ints(d.Added)
	sort.Ints(d.Removed)
	sort.Slice(d.Changed, func(i, j int) bool { return d.Changed[i].ID < d.Changed[j].ID })
	return d
}

func changedFields(a, b model.Keyword) []string {
	var fields []string
	if a.Name != b.Name {
		fields = append(fields, "name")
	}
	if a.Subcategory != b.Subcategory {
		fields = append(fields, "subcategory")
	}
	if a.Status != b.Status {
		fields = append(fields, "status")
	}
	if a.Weight != b.Weight {
		fields = append(fields, "weight")
	}
	if a.Color != b.Color {
		fields = append(fields, "color")
	}
	if !sameInts(a.Dependencies, b.Dependencies) {
		fields = append(fields, "dependencies")
	}
	return fields
}

func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
