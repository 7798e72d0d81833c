package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/keymatrix/pkg/model"
)

// ErrCacheEmpty is returned by Load when nothing has been stored yet.
var ErrCacheEmpty = errors.New("keyword cache is empty")

const schema = `
CREATE TABLE IF NOT EXISTS keywords (
	id           INTEGER PRIMARY KEY,
	name         TEXT NOT NULL,
	category     TEXT NOT NULL DEFAULT '',
	subcategory  TEXT NOT NULL DEFAULT '',
	weight       REAL NOT NULL DEFAULT 0,
	connections  INTEGER NOT NULL DEFAULT 0,
	status       TEXT NOT NULL DEFAULT 'active',
	dependencies TEXT,
	color        TEXT,
	pos_x        REAL,
	pos_y        REAL,
	pos_z        REAL
);
CREATE TABLE IF NOT EXISTS matrix_meta (
	id                INTEGER PRIMARY KEY CHECK (id = 1),
	total_keywords    INTEGER NOT NULL,
	active_keywords   INTEGER NOT NULL,
	total_connections INTEGER NOT NULL,
	network_density   REAL NOT NULL,
	last_updated      TEXT NOT NULL
);
`

// Cache persists the last keyword matrix fetched from the API so the viewer
// can start offline.
type Cache struct {
	db   *sql.DB
	path string
}

// OpenCache opens or creates the cache database at path.
func OpenCache(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open cache: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return &Cache{db: db, path: path}, nil
}

// Path returns the database path.
func (c *Cache) Path() string { return c.path }

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Store replaces the cached matrix with m in one transaction.
func (c *Cache) Store(ctx context.Context, m model.Matrix) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cache write: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM keywords`); err != nil {
		return fmt.Errorf("clearing keywords: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO keywords
			(id, name, category, subcategory, weight, connections, status,
			 dependencies, color, pos_x, pos_y, pos_z)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, k := range m.Keywords {
		deps, err := json.Marshal(k.Dependencies)
		if err != nil {
			return fmt.Errorf("encoding dependencies of %d: %w", k.ID, err)
		}
		var x, y, z sql.NullFloat64
		if k.Position != nil {
			x = sql.NullFloat64{Float64: k.Position[0], Valid: true}
			y = sql.NullFloat64{Float64: k.Position[1], Valid: true}
			z = sql.NullFloat64{Float64: k.Position[2], Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			k.ID, k.Name, k.Category, k.Subcategory, k.Weight, k.Connections, string(k.Status),
			string(deps), k.Color, x, y, z,
		); err != nil {
			return fmt.Errorf("inserting keyword %d: %w", k.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO matrix_meta
			(id, total_keywords, active_keywords, total_connections, network_density, last_updated)
		VALUES (1, ?, ?, ?, ?, ?)`,
		m.TotalKeywords, m.ActiveKeywords, m.TotalConnections, m.NetworkDensity,
		m.LastUpdated.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("writing matrix meta: %w", err)
	}

	return tx.Commit()
}

// Load reads the cached matrix. Keywords come back ordered by id.
func (c *Cache) Load(ctx context.Context) (model.Matrix, error) {
	var (
		m       model.Matrix
		updated string
	)
	err := c.db.QueryRowContext(ctx, `
		SELECT total_keywords, active_keywords, total_connections, network_density, last_updated
		FROM matrix_meta WHERE id = 1`,
	).Scan(&m.TotalKeywords, &m.ActiveKeywords, &m.TotalConnections, &m.NetworkDensity, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Matrix{}, ErrCacheEmpty
	}
	if err != nil {
		return model.Matrix{}, fmt.Errorf("reading matrix meta: %w", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
		m.LastUpdated = t
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT id, name, category, subcategory, weight, connections, status,
		       dependencies, color, pos_x, pos_y, pos_z
		FROM keywords ORDER BY id`)
	if err != nil {
		return model.Matrix{}, fmt.Errorf("reading keywords: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			k       model.Keyword
			status  string
			deps    sql.NullString
			color   sql.NullString
			x, y, z sql.NullFloat64
		)
		if err := rows.Scan(
			&k.ID, &k.Name, &k.Category, &k.Subcategory, &k.Weight, &k.Connections, &status,
			&deps, &color, &x, &y, &z,
		); err != nil {
			return model.Matrix{}, fmt.Errorf("scanning keyword: %w", err)
		}
		k.Status = model.Status(status)
		if deps.Valid && deps.String != "" {
			if err := json.Unmarshal([]byte(deps.String), &k.Dependencies); err != nil {
				return model.Matrix{}, fmt.Errorf("decoding dependencies of %d: %w", k.ID, err)
			}
		}
		if color.Valid {
			k.Color = color.String
		}
		if x.Valid && y.Valid && z.Valid {
			k.Position = &model.Vec3{x.Float64, y.Float64, z.Float64}
		}
		m.Keywords = append(m.Keywords, k)
	}
	if err := rows.Err(); err != nil {
		return model.Matrix{}, fmt.Errorf("iterating keywords: %w", err)
	}

	m.Source = model.SourceCache
	return m, nil
}
