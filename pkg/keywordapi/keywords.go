package keywordapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/keymatrix/pkg/model"
	"github.com/vanderheijden86/keymatrix/pkg/palette"
)

// FetchKeywords loads the full keyword list without any fallback.
func (c *Client) FetchKeywords(ctx context.Context) ([]model.Keyword, error) {
	var raw []apiKeyword
	if err := c.do(ctx, "list keywords", http.MethodGet, "/keywords/all", nil, &raw); err != nil {
		return nil, err
	}
	return convert(raw), nil
}

// Keywords returns the filtered keyword list, or the unfiltered sample
// dataset when the API is unavailable.
func (c *Client) Keywords(ctx context.Context, f Filter) []model.Keyword {
	ks, err := c.FetchKeywords(ctx)
	if err != nil {
		fellBack(err)
		return FallbackKeywords()
	}
	return f.Apply(ks)
}

// FetchStats loads the aggregate counters without any fallback.
func (c *Client) FetchStats(ctx context.Context) (model.Stats, error) {
	var s model.Stats
	err := c.do(ctx, "keyword stats", http.MethodGet, "/keywords/stats", nil, &s)
	return s, err
}

// Stats returns the aggregate counters, or zero counts with cache status
// "error" when the API is unavailable.
func (c *Client) Stats(ctx context.Context) model.Stats {
	s, err := c.FetchStats(ctx)
	if err != nil {
		fellBack(err)
		return FallbackStats()
	}
	if s.CategoryDistribution == nil {
		s.CategoryDistribution = map[string]int{}
	}
	return s
}

// FetchMatrix loads stats and keywords concurrently and combines them.
// Either request failing fails the whole fetch.
func (c *Client) FetchMatrix(ctx context.Context) (model.Matrix, error) {
	var (
		stats model.Stats
		ks    []model.Keyword
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = c.FetchStats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		ks, err = c.FetchKeywords(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Matrix{}, err
	}
	return model.Matrix{
		TotalKeywords:    stats.TotalKeywords,
		ActiveKeywords:   stats.ActiveKeywords,
		TotalConnections: stats.TotalDependencies,
		NetworkDensity:   NetworkDensity(ks),
		Keywords:         ks,
		LastUpdated:      time.Now(),
		Source:           model.SourceAPI,
	}, nil
}

// Matrix returns the keyword matrix, or the fallback matrix when the API is
// unavailable.
func (c *Client) Matrix(ctx context.Context) model.Matrix {
	m, err := c.FetchMatrix(ctx)
	if err != nil {
		fellBack(err)
		return FallbackMatrix(time.Now())
	}
	return m
}

// Dependencies returns the dependency edges of one keyword, or an empty
// report when the API is unavailable.
func (c *Client) Dependencies(ctx context.Context, id int) model.DependencyReport {
	var r model.DependencyReport
	path := fmt.Sprintf("/keywords/dependencies/%d", id)
	if err := c.do(ctx, "keyword dependencies", http.MethodGet, path, nil, &r); err != nil {
		fellBack(err)
		return model.DependencyReport{KeywordID: id, Dependencies: []model.Dependency{}}
	}
	if r.Dependencies == nil {
		r.Dependencies = []model.Dependency{}
	}
	return r
}

// Health returns the backend health, or a degraded report when unreachable.
func (c *Client) Health(ctx context.Context) model.Health {
	var h model.Health
	if err := c.do(ctx, "health", http.MethodGet, "/keywords/health", nil, &h); err != nil {
		fellBack(err)
		return FallbackHealth(time.Now())
	}
	return h
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Keywords []apiKeyword `json:"keywords"`
}

// Search runs a server-side keyword search. Failures yield no results.
func (c *Client) Search(ctx context.Context, query string) []model.Keyword {
	var resp searchResponse
	if err := c.do(ctx, "search", http.MethodPost, "/keywords/search", searchRequest{Query: query}, &resp); err != nil {
		fellBack(err)
		return []model.Keyword{}
	}
	return convert(resp.Keywords)
}

// Subcategories lists the known subcategory codes. It never hits the network.
func (c *Client) Subcategories() []palette.SubcategoryInfo {
	return palette.Subcategories()
}

// Get loads one keyword.
func (c *Client) Get(ctx context.Context, id int) (model.Keyword, error) {
	var a apiKeyword
	if err := c.do(ctx, "get keyword", http.MethodGet, fmt.Sprintf("/keywords/%d", id), nil, &a); err != nil {
		return model.Keyword{}, err
	}
	return toKeyword(a), nil
}

// Create adds a keyword. Name and Subcategory are required.
func (c *Client) Create(ctx context.Context, in model.KeywordInput) (model.Keyword, error) {
	if in.Name == nil || *in.Name == "" || in.Subcategory == nil || *in.Subcategory == "" {
		return model.Keyword{}, fmt.Errorf("keywordapi: create keyword: name and subcategory are required")
	}
	var a apiKeyword
	if err := c.do(ctx, "create keyword", http.MethodPost, "/keywords/", in, &a); err != nil {
		return model.Keyword{}, err
	}
	return toKeyword(a), nil
}

// Update changes the non-nil fields of keyword id.
func (c *Client) Update(ctx context.Context, id int, in model.KeywordInput) (model.Keyword, error) {
	var a apiKeyword
	if err := c.do(ctx, "update keyword", http.MethodPut, fmt.Sprintf("/keywords/%d", id), in, &a); err != nil {
		return model.Keyword{}, err
	}
	return toKeyword(a), nil
}

type deleteResponse struct {
	Message string `json:"message"`
}

// Delete removes keyword id and returns the server's message.
func (c *Client) Delete(ctx context.Context, id int) (string, error) {
	var r deleteResponse
	if err := c.do(ctx, "delete keyword", http.MethodDelete, fmt.Sprintf("/keywords/%d", id), nil, &r); err != nil {
		return "", err
	}
	return r.Message, nil
}
