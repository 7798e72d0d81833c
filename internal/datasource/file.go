package datasource

import (
	"bytes"
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/keymatrix/pkg/keywordapi"
	"github.com/vanderheijden86/keymatrix/pkg/model"
)

// LoadFile reads a keyword data file. The file holds either a bare JSON array
// of keywords or a full matrix object with a "keywords" field. Derived
// matrix totals are recomputed from the keywords.
func LoadFile(path string, now time.Time) (model.Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Matrix{}, fmt.Errorf("reading data file: %w", err)
	}
	return ParseKeywords(data, now)
}

// ParseKeywords decodes keyword data in either accepted shape.
func ParseKeywords(data []byte, now time.Time) (model.Matrix, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return model.Matrix{}, fmt.Errorf("data file is empty")
	}

	var ks []model.Keyword
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &ks); err != nil {
			return model.Matrix{}, fmt.Errorf("parsing keywords: %w", err)
		}
	case '{':
		var m model.Matrix
		if err := json.Unmarshal(data, &m); err != nil {
			return model.Matrix{}, fmt.Errorf("parsing matrix: %w", err)
		}
		ks = m.Keywords
	default:
		return model.Matrix{}, fmt.Errorf("data file must hold a JSON array or object")
	}

	active := 0
	for i := range ks {
		k := &ks[i]
		if k.Status == "" {
			k.Status = model.StatusActive
		}
		if k.Category == "" {
			k.Category = model.CategoryOf(k.Subcategory)
		}
		if k.IsActive() {
			active++
		}
	}
	if err := ValidateKeywords(ks); err != nil {
		return model.Matrix{}, err
	}

	return model.Matrix{
		TotalKeywords:    len(ks),
		ActiveKeywords:   active,
		TotalConnections: keywordapi.TotalConnections(ks),
		NetworkDensity:   keywordapi.NetworkDensity(ks),
		Keywords:         ks,
		LastUpdated:      now,
		Source:           model.SourceFile,
	}, nil
}

// ValidateKeywords rejects a keyword set that cannot be laid out: an entry
// failing Keyword.Validate or an id used twice.
func ValidateKeywords(ks []model.Keyword) error {
	seen := make(map[int]bool, len(ks))
	for i, k := range ks {
		if err := k.Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		if seen[k.ID] {
			return fmt.Errorf("entry %d: duplicate id %d", i, k.ID)
		}
		seen[k.ID] = true
	}
	return nil
}
