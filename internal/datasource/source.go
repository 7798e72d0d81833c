// Package datasource resolves the keyword set the viewer starts from. It
// tries a local data file, then the admin API, then the SQLite cache, and
// finally the built-in sample set, so Load always yields something to draw.
package datasource

import (
	"context"
	"fmt"
	"time"

	"github.com/vanderheijden86/keymatrix/pkg/debug"
	"github.com/vanderheijden86/keymatrix/pkg/keywordapi"
	"github.com/vanderheijden86/keymatrix/pkg/metrics"
	"github.com/vanderheijden86/keymatrix/pkg/model"
)

// Fetcher is the part of the API client the loader needs.
type Fetcher interface {
	FetchMatrix(ctx context.Context) (model.Matrix, error)
}

// Attempt records one source tried by Load.
type Attempt struct {
	Source   model.Source  `json:"source"`
	Path     string        `json:"path,omitempty"`
	Err      error         `json:"-"`
	Keywords int           `json:"keywords"`
	Took     time.Duration `json:"took"`
}

// OK reports whether the attempt produced data.
func (a Attempt) OK() bool { return a.Err == nil }

// String returns a human-readable description of the attempt.
func (a Attempt) String() string {
	status := fmt.Sprintf("ok, keywords=%d", a.Keywords)
	if a.Err != nil {
		status = fmt.Sprintf("failed: %v", a.Err)
	}
	if a.Path != "" {
		return fmt.Sprintf("%s %s (%s, %s)", a.Source, a.Path, status, a.Took.Round(time.Millisecond))
	}
	return fmt.Sprintf("%s (%s, %s)", a.Source, status, a.Took.Round(time.Millisecond))
}

// Options configures a Loader. Empty fields disable the matching source.
type Options struct {
	File  string
	API   Fetcher
	Cache string
	Now   func() time.Time
}

// Loader walks the configured sources in priority order.
type Loader struct {
	opts Options
}

// NewLoader returns a loader over opts.
func NewLoader(opts Options) *Loader {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Loader{opts: opts}
}

// Load returns the first keyword set that can be read, along with the
// attempts made. A successful API fetch refreshes the cache; failing to
// write the cache is logged and otherwise ignored.
func (l *Loader) Load(ctx context.Context) (model.Matrix, []Attempt) {
	var attempts []Attempt
	try := func(src model.Source, path string, fn func() (model.Matrix, error)) (model.Matrix, bool) {
		start := time.Now()
		m, err := fn()
		a := Attempt{Source: src, Path: path, Err: err, Keywords: len(m.Keywords), Took: time.Since(start)}
		attempts = append(attempts, a)
		debug.Log("datasource: %s", a)
		return m, err == nil
	}

	if l.opts.File != "" {
		if m, ok := try(model.SourceFile, l.opts.File, func() (model.Matrix, error) {
			return LoadFile(l.opts.File, l.opts.Now())
		}); ok {
			return m, attempts
		}
	}

	if l.opts.API != nil {
		if m, ok := try(model.SourceAPI, "", func() (model.Matrix, error) {
			m, err := l.opts.API.FetchMatrix(ctx)
			if err != nil {
				return m, err
			}
			if err := ValidateKeywords(m.Keywords); err != nil {
				return model.Matrix{}, fmt.Errorf("api payload: %w", err)
			}
			return m, nil
		}); ok {
			l.refreshCache(ctx, m)
			return m, attempts
		}
	}

	if l.opts.Cache != "" {
		if m, ok := try(model.SourceCache, l.opts.Cache, func() (model.Matrix, error) {
			m, err := l.readCache(ctx)
			if err != nil {
				return m, err
			}
			if err := ValidateKeywords(m.Keywords); err != nil {
				return model.Matrix{}, fmt.Errorf("cache: %w", err)
			}
			return m, nil
		}); ok {
			metrics.CacheHits.Inc()
			return m, attempts
		}
	}

	metrics.FetchFallbacks.Inc()
	m := keywordapi.FallbackMatrix(l.opts.Now())
	attempts = append(attempts, Attempt{Source: model.SourceFallback, Keywords: len(m.Keywords)})
	return m, attempts
}

func (l *Loader) readCache(ctx context.Context) (model.Matrix, error) {
	c, err := OpenCache(l.opts.Cache)
	if err != nil {
		return model.Matrix{}, err
	}
	defer c.Close()
	return c.Load(ctx)
}

func (l *Loader) refreshCache(ctx context.Context, m model.Matrix) {
	if l.opts.Cache == "" {
		return
	}
	c, err := OpenCache(l.opts.Cache)
	if err != nil {
		debug.Log("datasource: cache open failed: %v", err)
		return
	}
	defer c.Close()
	if err := c.Store(ctx, m); err != nil {
		debug.Log("datasource: cache write failed: %v", err)
	}
}
