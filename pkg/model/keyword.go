// Package model defines the keyword records shared by the layout, scene and
// data-source layers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Status is the activation state of a keyword.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

// Vec3 is a plain cartesian triple used on the data side (JSON, fixtures).
// The scene layer converts it to gonum vectors.
type Vec3 [3]float64

// Keyword is the canonical keyword record. View transitions never mutate it;
// only the renderable copies held by the scene move.
type Keyword struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Subcategory  string  `json:"subcategory"`
	Weight       float64 `json:"weight"`
	Connections  int     `json:"connections"`
	Status       Status  `json:"status"`
	Dependencies []int   `json:"dependencies"`
	Position     *Vec3   `json:"position,omitempty"`
	Color        string  `json:"color,omitempty"`
}

// IsActive reports whether the keyword is active.
func (k Keyword) IsActive() bool {
	return k.Status == StatusActive
}

// Validate checks the fields a keyword needs before it can be laid out.
func (k Keyword) Validate() error {
	if k.ID <= 0 {
		return fmt.Errorf("keyword %q: id must be positive, got %d", k.Name, k.ID)
	}
	if strings.TrimSpace(k.Name) == "" {
		return fmt.Errorf("keyword %d: name is required", k.ID)
	}
	if k.Status != "" && !k.Status.IsValid() {
		return fmt.Errorf("keyword %d: invalid status %q", k.ID, k.Status)
	}
	return nil
}

// CategoryOf returns the top-level group of a subcategory code ("A-1" -> "A").
func CategoryOf(subcategory string) string {
	group, _, _ := strings.Cut(subcategory, "-")
	return group
}

// Source names where a keyword set came from.
type Source string

const (
	SourceAPI      Source = "api"
	SourceCache    Source = "cache"
	SourceFile     Source = "file"
	SourceFallback Source = "fallback"
)

// Matrix is the keyword set plus aggregate counts shown by the viewer.
type Matrix struct {
	TotalKeywords    int       `json:"total_keywords"`
	ActiveKeywords   int       `json:"active_keywords"`
	TotalConnections int       `json:"total_connections"`
	NetworkDensity   float64   `json:"network_density"`
	Keywords         []Keyword `json:"keywords"`
	LastUpdated      time.Time `json:"last_updated"`
	Source           Source    `json:"source"`
}

// Stats mirrors the backend's aggregate counters.
type Stats struct {
	TotalKeywords        int            `json:"total_keywords"`
	ActiveKeywords       int            `json:"active_keywords"`
	TotalDependencies    int            `json:"total_dependencies"`
	CategoryDistribution map[string]int `json:"category_distribution"`
	CacheStatus          string         `json:"cache_status"`
}

// Health is the backend health report.
type Health struct {
	Service   string `json:"service"`
	Status    string `json:"status"`
	Database  string `json:"database"`
	Redis     string `json:"redis"`
	Timestamp string `json:"timestamp"`
}

// Dependency is one edge returned by the per-keyword dependency endpoint.
type Dependency struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Strength  float64 `json:"strength"`
	Weight    float64 `json:"weight"`
	Type      string  `json:"type"`
	Direction string  `json:"direction"`
}

// DependencyReport is the response of the dependency endpoint.
type DependencyReport struct {
	KeywordID    int          `json:"keyword_id"`
	Dependencies []Dependency `json:"dependencies"`
}

// KeywordInput carries create/update payloads. Nil fields are omitted on update.
type KeywordInput struct {
	Name        *string  `json:"name,omitempty"`
	Subcategory *string  `json:"subcategory,omitempty"`
	Weight      *float64 `json:"weight,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

// IndexByID builds an id -> keyword pointer map over ks.
func IndexByID(ks []Keyword) map[int]*Keyword {
	m := make(map[int]*Keyword, len(ks))
	for i := range ks {
		m[ks[i].ID] = &ks[i]
	}
	return m
}
