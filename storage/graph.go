package storage

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"propsync/models"
)

// SQLiteGraph is the graph store: broker and property nodes plus directed
// listed-by edges, all merged with create-or-update semantics. Attributes
// set only on create are never clobbered on match, so graph-only derived
// fields survive re-syncs.
type SQLiteGraph struct {
	db *sql.DB
}

func NewSQLiteGraph(dbPath string) (*SQLiteGraph, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteGraph{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteGraph) Close() error {
	return s.db.Close()
}

func (s *SQLiteGraph) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteGraph) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS broker_nodes (
		id TEXT PRIMARY KEY,
		name TEXT,
		website TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS property_nodes (
		id TEXT PRIMARY KEY,
		title TEXT,
		location_raw TEXT,
		city TEXT,
		state TEXT,
		zip TEXT,
		units INTEGER DEFAULT 0,
		year_built INTEGER DEFAULT 0,
		price_raw TEXT,
		price_cents INTEGER DEFAULT 0,
		square_feet INTEGER DEFAULT 0,
		status TEXT,
		detail_url TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS listed_by_edges (
		property_id TEXT NOT NULL,
		broker_id TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_seen_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (property_id, broker_id)
	);

	CREATE INDEX IF NOT EXISTS idx_edges_broker ON listed_by_edges(broker_id);
	CREATE INDEX IF NOT EXISTS idx_property_nodes_city ON property_nodes(city, state);
	`
	_, err := s.db.Exec(schema)
	return err
}

// MergeBrokerNode creates the broker node or, on match, updates only its
// volatile attributes (name, website).
func (s *SQLiteGraph) MergeBrokerNode(ctx context.Context, id uuid.UUID, meta models.BrokerMeta) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO broker_nodes (id, name, website)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			website = excluded.website,
			updated_at = CURRENT_TIMESTAMP`,
		id.String(), meta.Name, meta.Website)
	return err
}

// MergePropertyNode creates the property node with all attributes, or on
// match updates only the listing-volatile ones.
func (s *SQLiteGraph) MergePropertyNode(ctx context.Context, p *models.Property) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO property_nodes (
			id, title, location_raw, city, state, zip, units, year_built,
			price_raw, price_cents, square_feet, status, detail_url
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			price_raw = excluded.price_raw,
			price_cents = excluded.price_cents,
			status = excluded.status,
			detail_url = COALESCE(NULLIF(excluded.detail_url, ''), detail_url),
			updated_at = CURRENT_TIMESTAMP`,
		p.ID, p.Title, p.Location.Raw, p.Location.City, p.Location.State, p.Location.Zip,
		p.Units, p.YearBuilt, p.PriceRaw, p.PriceCents, p.SquareFeet, p.Status, p.DetailURL)
	return err
}

// MergeListedByEdge merges the single directed listed-by relationship
// between a property node and a broker node. Repeated calls refresh
// last_seen_at and never create a second edge.
func (s *SQLiteGraph) MergeListedByEdge(ctx context.Context, propertyID string, brokerID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO listed_by_edges (property_id, broker_id)
		VALUES (?, ?)
		ON CONFLICT(property_id, broker_id) DO UPDATE SET
			last_seen_at = CURRENT_TIMESTAMP`,
		propertyID, brokerID.String())
	return err
}

func (s *SQLiteGraph) HasPropertyNode(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM property_nodes WHERE id = ?`, id).Scan(&n)
	return n > 0, err
}

func (s *SQLiteGraph) HasListedByEdge(ctx context.Context, propertyID string, brokerID uuid.UUID) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM listed_by_edges WHERE property_id = ? AND broker_id = ?`,
		propertyID, brokerID.String()).Scan(&n)
	return n > 0, err
}
