// Package palette maps keyword subcategory codes to display colors.
package palette

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultColor is used for codes outside the table.
const DefaultColor = "#888888"

// Fixed highlight colors used by the view transitions and hover feedback.
const (
	FocusCenter        = "#FF6B35"
	RadialNeighbor     = "#3B82F6"
	Hover              = "#FFFFFF"
	ConnectedHighlight = "#FFFF00"
)

// SubcategoryInfo describes one subcategory code.
type SubcategoryInfo struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Group       string `json:"group"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

type entry struct {
	code, color, name, description string
}

// Group A is psychological, B neuroscientific, C improvement areas.
var table = []entry{
	{"A-1", "#3B82F6", "Cognition", "Reasoning, creativity, problem solving"},
	{"A-2", "#06B6D4", "Openness", "Curiosity, imagination, artistry"},
	{"A-3", "#10B981", "Energy", "Vitality, extraversion, initiative"},
	{"A-4", "#8B5CF6", "Relationships", "Sociability, empathy, communication"},
	{"A-5", "#F59E0B", "Emotion", "Emotion regulation, stability, maturity"},

	{"B-1", "#EF4444", "Prefrontal", "Executive function, planning, decisions"},
	{"B-2", "#EC4899", "Temporoparietal", "Language, spatial cognition, memory"},
	{"B-3", "#6366F1", "Limbic", "Emotion, motivation, stress response"},
	{"B-4", "#84CC16", "Basal ganglia", "Motor control, habits, reward"},
	{"B-5", "#F97316", "Brainstem", "Arousal, attention, circadian rhythm"},
	{"B-6", "#14B8A6", "Neurochemical", "Neurotransmitters, hormones"},

	{"C-1", "#DC2626", "Anxiety and stress", "Anxiety disorders, stress management"},
	{"C-2", "#7C2D12", "Depression", "Depression, loss of motivation"},
	{"C-3", "#991B1B", "Anger", "Anger control, aggression"},
	{"C-4", "#92400E", "Addiction", "Substance and behavioural addiction"},
	{"C-5", "#BE123C", "Social maladjustment", "Poor social skills, isolation"},
	{"C-6", "#A21CAF", "Obsessive perfectionism", "Compulsions, perfectionism"},
	{"C-7", "#581C87", "Self-destruction", "Self-harm, self-destructive behaviour"},
	{"C-8", "#1E1B4B", "Cognitive distortion", "Negative thinking patterns"},
	{"C-9", "#450A0A", "Personality disorder", "Extreme personality traits"},
}

var byCode = func() map[string]entry {
	m := make(map[string]entry, len(table))
	for _, e := range table {
		m[e.code] = e
	}
	return m
}()

// CategoryColor returns the hex color for a subcategory code, or DefaultColor.
func CategoryColor(code string) string {
	if e, ok := byCode[code]; ok {
		return e.color
	}
	return DefaultColor
}

// Info returns the description of a subcategory code. Unknown codes come back
// in group "X".
func Info(code string) SubcategoryInfo {
	e, ok := byCode[code]
	if !ok {
		return SubcategoryInfo{
			Code:        code,
			Name:        "Unclassified",
			Group:       "X",
			Color:       DefaultColor,
			Description: "Keyword without a known subcategory",
		}
	}
	group, _, _ := strings.Cut(code, "-")
	return SubcategoryInfo{
		Code:        e.code,
		Name:        e.name,
		Group:       group,
		Color:       e.color,
		Description: e.description,
	}
}

// Subcategories returns every known subcategory in table order.
func Subcategories() []SubcategoryInfo {
	out := make([]SubcategoryInfo, 0, len(table))
	for _, e := range table {
		out = append(out, Info(e.code))
	}
	return out
}

// Parse converts a hex string to a color. Malformed input yields the default color.
func Parse(hex string) colorful.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		c, _ = colorful.Hex(DefaultColor)
	}
	return c
}

// MustParse is Parse for compile-time constants.
func MustParse(hex string) colorful.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		panic(err)
	}
	return c
}
