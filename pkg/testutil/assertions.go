package testutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/vanderheijden86/keymatrix/pkg/model"
)

// AssertKeywordCount checks the number of keywords.
func AssertKeywordCount(t *testing.T, ks []model.Keyword, expected int) {
	t.Helper()
	if len(ks) != expected {
		t.Errorf("expected %d keywords, got %d", expected, len(ks))
	}
}

// AssertNoDuplicateIDs checks that no two keywords share an id.
func AssertNoDuplicateIDs(t *testing.T, ks []model.Keyword) {
	t.Helper()
	seen := make(map[int]bool, len(ks))
	for _, k := range ks {
		if seen[k.ID] {
			t.Errorf("duplicate keyword id %d", k.ID)
		}
		seen[k.ID] = true
	}
}

// AssertAllValid checks every keyword passes Validate.
func AssertAllValid(t *testing.T, ks []model.Keyword) {
	t.Helper()
	for _, k := range ks {
		if err := k.Validate(); err != nil {
			t.Errorf("invalid keyword: %v", err)
		}
	}
}

// T is the part of testing.TB the vector assertions use. *rapid.T
// satisfies it as well, so property tests can share them.
type T interface {
	Helper()
	Errorf(format string, args ...any)
}

// AssertOnSphere checks every position lies within tol of the sphere.
func AssertOnSphere(t T, ps []r3.Vec, radius, tol float64) {
	t.Helper()
	for i, p := range ps {
		if d := math.Abs(r3.Norm(p) - radius); d > tol {
			t.Errorf("position %d at %v is %.4f off radius %.2f", i, p, d, radius)
		}
	}
}

// AssertVecNear checks two vectors are within tol of each other.
func AssertVecNear(t T, got, want r3.Vec, tol float64) {
	t.Helper()
	if d := r3.Norm(r3.Sub(got, want)); d > tol {
		t.Errorf("expected %v, got %v (off by %g)", want, got, d)
	}
}

// AssertJSONEqual compares two values after JSON encoding.
func AssertJSONEqual(t *testing.T, expected, actual any) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}
	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}
	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}

// WriteKeywordsFile writes keywords as a JSON data file and returns its path.
func WriteKeywordsFile(t *testing.T, dir string, ks []model.Keyword) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	path := filepath.Join(dir, "keywords.json")
	if err := os.WriteFile(path, []byte(ToJSON(ks)), 0o644); err != nil {
		t.Fatalf("failed to write keywords file: %v", err)
	}
	return path
}

// FindKeyword returns the keyword with id, or nil.
func FindKeyword(ks []model.Keyword, id int) *model.Keyword {
	for i := range ks {
		if ks[i].ID == id {
			return &ks[i]
		}
	}
	return nil
}
