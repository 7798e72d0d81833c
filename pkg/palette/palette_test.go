package palette

import (
	"strings"
	"testing"
)

func TestCategoryColor(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"A-1", "#3B82F6"},
		{"B-6", "#14B8A6"},
		{"C-9", "#450A0A"},
		{"Z-9", DefaultColor},
		{"", DefaultColor},
		{"a-1", DefaultColor},
	}
	for _, tt := range tests {
		if got := CategoryColor(tt.code); got != tt.want {
			t.Errorf("CategoryColor(%q) = %s, want %s", tt.code, got, tt.want)
		}
	}
}

func TestSubcategoriesTable(t *testing.T) {
	subs := Subcategories()
	if len(subs) != 20 {
		t.Fatalf("expected 20 subcategories, got %d", len(subs))
	}
	groups := map[string]int{}
	for _, s := range subs {
		groups[s.Group]++
		if !strings.HasPrefix(s.Code, s.Group+"-") {
			t.Errorf("code %s not in group %s", s.Code, s.Group)
		}
	}
	if groups["A"] != 5 || groups["B"] != 6 || groups["C"] != 9 {
		t.Errorf("unexpected group sizes: %v", groups)
	}
}

func TestInfoUnknown(t *testing.T) {
	info := Info("Q-1")
	if info.Group != "X" || info.Color != DefaultColor {
		t.Errorf("unexpected info for unknown code: %+v", info)
	}
}

func TestParse(t *testing.T) {
	c := Parse("#3B82F6")
	if got := strings.ToUpper(c.Hex()); got != "#3B82F6" {
		t.Errorf("Parse round trip = %s", got)
	}
	if got := Parse("not-a-color").Hex(); got != "#888888" {
		t.Errorf("malformed color should map to default, got %s", got)
	}
}

func TestMustParse(t *testing.T) {
	if got := strings.ToUpper(MustParse(FocusCenter).Hex()); got != "#FF6B35" {
		t.Errorf("MustParse(FocusCenter) = %s", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected MustParse to panic on malformed input")
		}
	}()
	MustParse("#12")
}
