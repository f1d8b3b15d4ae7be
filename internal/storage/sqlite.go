// Package storage persists fetched pokemon to a local SQLite database so
// a later process start can browse previously imported data offline.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nordgaard/pokefetch/pkg/pokedex"
)

// Store handles all database operations
type Store struct {
	db *sql.DB
}

// New creates a new Store with SQLite
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs database migrations
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS pokemon (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			height INTEGER,
			weight INTEGER,
			base_experience INTEGER,
			primary_type TEXT,
			data TEXT NOT NULL,
			fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_pokemon_name ON pokemon(name)`,
		`CREATE INDEX IF NOT EXISTS idx_pokemon_type ON pokemon(primary_type)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// SavePokemon inserts or replaces a pokemon row keyed by id.
func (s *Store) SavePokemon(ctx context.Context, p *pokedex.Pokemon) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode pokemon %d: %w", p.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pokemon (id, name, height, weight, base_experience, primary_type, data, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			height = excluded.height,
			weight = excluded.weight,
			base_experience = excluded.base_experience,
			primary_type = excluded.primary_type,
			data = excluded.data,
			fetched_at = excluded.fetched_at
	`, p.ID, pokedex.NormalizeName(p.Name), p.Height, p.Weight, p.BaseExperience,
		p.PrimaryType(), string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save pokemon %d: %w", p.ID, err)
	}
	return nil
}

// GetPokemon returns a pokemon by id, or nil when not stored.
func (s *Store) GetPokemon(ctx context.Context, id int) (*pokedex.Pokemon, error) {
	return s.queryOne(ctx, `SELECT data FROM pokemon WHERE id = ?`, id)
}

// GetPokemonByName returns a pokemon by normalized name, or nil when not stored.
func (s *Store) GetPokemonByName(ctx context.Context, name string) (*pokedex.Pokemon, error) {
	return s.queryOne(ctx, `SELECT data FROM pokemon WHERE name = ?`, pokedex.NormalizeName(name))
}

func (s *Store) queryOne(ctx context.Context, query string, arg any) (*pokedex.Pokemon, error) {
	var data string
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var p pokedex.Pokemon
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("failed to decode stored pokemon: %w", err)
	}
	return &p, nil
}

// ListNames returns the stored pokemon names in id order.
func (s *Store) ListNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM pokemon ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Count returns the number of stored pokemon.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pokemon`).Scan(&n)
	return n, err
}
