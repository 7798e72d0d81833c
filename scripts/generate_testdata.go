//go:build ignore

// generate_testdata.go writes keyword data files for manual and benchmark runs.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	testdata/keywords/small.json   (60 keywords)
//	testdata/keywords/medium.json  (400 keywords)
//	testdata/keywords/large.json   (2000 keywords)
//
// Load one with: km --data testdata/keywords/medium.json
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/keymatrix/pkg/model"
	"github.com/vanderheijden86/keymatrix/pkg/testutil"
)

type datasetSpec struct {
	name string
	size int
}

var datasets = []datasetSpec{
	{"small", 60},
	{"medium", 400},
	{"large", 2000},
}

var stems = []string{
	"Resilience", "Curiosity", "Empathy", "Leadership", "Focus",
	"Collaboration", "Creativity", "Integrity", "Patience", "Ambition",
	"Humor", "Discipline", "Optimism", "Gratitude", "Courage",
}

func main() {
	outputDir := filepath.Join("testdata", "keywords")
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		fmt.Printf("Generating %s dataset (%d keywords)...\n", ds.name, ds.size)

		gen := testutil.New(testutil.GeneratorConfig{
			Seed:          int64(ds.size),
			InactiveEvery: 7,
		})
		gf := gen.Random(ds.size, calculateDensity(ds.size))
		ks := gen.ToKeywords(gf)
		nameKeywords(ks)

		body := testutil.ToJSON(ks)
		outputPath := filepath.Join(outputDir, ds.name+".json")
		if err := os.WriteFile(outputPath, []byte(body), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outputPath, err)
			os.Exit(1)
		}

		fmt.Printf("  Written %s (%d bytes, %d dependencies)\n", outputPath, len(body), len(gf.Edges))
	}

	fmt.Println("\nDone! Keyword datasets created in", outputDir)
}

// calculateDensity keeps the dependency count roughly linear in size.
func calculateDensity(size int) float64 {
	switch {
	case size <= 100:
		return 0.05
	case size <= 500:
		return 0.01
	default:
		return 0.002
	}
}

func nameKeywords(ks []model.Keyword) {
	for i := range ks {
		ks[i].Name = fmt.Sprintf("%s %d", stems[i%len(stems)], i/len(stems)+1)
	}
}
