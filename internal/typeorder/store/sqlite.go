package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Snapshot persistence: a frozen table set can be written to a SQLite
// database and read back into memory tables. The typical lifecycle is
// build, freeze, Save; a later process Opens the file and Loads.

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS annotations (
	idx        INTEGER PRIMARY KEY,
	annotation TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS indices (
	key TEXT PRIMARY KEY,
	idx INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS edges (
	source     INTEGER NOT NULL,
	ord        INTEGER NOT NULL,
	target     INTEGER NOT NULL,
	parameters TEXT NOT NULL,
	PRIMARY KEY (source, ord)
);
CREATE TABLE IF NOT EXISTS backedges (
	source     INTEGER NOT NULL,
	ord        INTEGER NOT NULL,
	target     INTEGER NOT NULL,
	parameters TEXT NOT NULL,
	PRIMARY KEY (source, ord)
);
`

// Open opens (creating if needed) a snapshot database.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("snapshot open: %w", err)
	}
	return db, nil
}

// Save writes the table set into db, replacing any previous snapshot.
func Save(ctx context.Context, db *sql.DB, tables Tables) error {
	if _, err := db.ExecContext(ctx, snapshotSchema); err != nil {
		return fmt.Errorf("snapshot schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("snapshot save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"annotations", "indices", "edges", "backedges"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("snapshot save: clear %s: %w", table, err)
		}
	}

	for _, index := range tables.Annotations().Keys() {
		annotation, _ := tables.Annotations().Get(index)
		encoded, err := MarshalType(annotation)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO annotations (idx, annotation) VALUES (?, ?)", index, string(encoded)); err != nil {
			return fmt.Errorf("snapshot save: annotation %d: %w", index, err)
		}
	}

	for _, key := range tables.Indices().Keys() {
		index, _ := tables.Indices().Get(key)
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO indices (key, idx) VALUES (?, ?)", key, index); err != nil {
			return fmt.Errorf("snapshot save: index %q: %w", key, err)
		}
	}

	if err := saveAdjacency(ctx, tx, "edges", tables.Edges()); err != nil {
		return err
	}
	if err := saveAdjacency(ctx, tx, "backedges", tables.Backedges()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("snapshot save: %w", err)
	}
	return nil
}

func saveAdjacency(ctx context.Context, tx *sql.Tx, table string, adjacency Table[int, []Target]) error {
	for _, source := range adjacency.Keys() {
		targets, _ := adjacency.Get(source)
		for ord, target := range targets {
			parameters, err := marshalTypes(target.Parameters)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO "+table+" (source, ord, target, parameters) VALUES (?, ?, ?, ?)",
				source, ord, target.Target, string(parameters)); err != nil {
				return fmt.Errorf("snapshot save: %s %d: %w", table, source, err)
			}
		}
	}
	return nil
}

// Load reads a snapshot back into fresh memory tables.
func Load(ctx context.Context, db *sql.DB) (Tables, error) {
	tables := Memory()

	rows, err := db.QueryContext(ctx, "SELECT idx, annotation FROM annotations")
	if err != nil {
		return nil, fmt.Errorf("snapshot load: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var index int
		var encoded string
		if err := rows.Scan(&index, &encoded); err != nil {
			return nil, fmt.Errorf("snapshot load: %w", err)
		}
		annotation, err := UnmarshalType([]byte(encoded))
		if err != nil {
			return nil, err
		}
		tables.Annotations().Set(index, annotation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshot load: %w", err)
	}

	indexRows, err := db.QueryContext(ctx, "SELECT key, idx FROM indices")
	if err != nil {
		return nil, fmt.Errorf("snapshot load: %w", err)
	}
	defer indexRows.Close()
	for indexRows.Next() {
		var key string
		var index int
		if err := indexRows.Scan(&key, &index); err != nil {
			return nil, fmt.Errorf("snapshot load: %w", err)
		}
		tables.Indices().Set(key, index)
	}
	if err := indexRows.Err(); err != nil {
		return nil, fmt.Errorf("snapshot load: %w", err)
	}

	if err := loadAdjacency(ctx, db, "edges", tables.Edges()); err != nil {
		return nil, err
	}
	if err := loadAdjacency(ctx, db, "backedges", tables.Backedges()); err != nil {
		return nil, err
	}

	// Vertices with no outgoing or incoming edges still need empty rows so
	// integrity checking sees every key in all four tables.
	for _, index := range tables.Annotations().Keys() {
		if _, ok := tables.Edges().Get(index); !ok {
			tables.Edges().Set(index, nil)
		}
		if _, ok := tables.Backedges().Get(index); !ok {
			tables.Backedges().Set(index, nil)
		}
	}
	return tables, nil
}

func loadAdjacency(ctx context.Context, db *sql.DB, table string, adjacency Table[int, []Target]) error {
	rows, err := db.QueryContext(ctx,
		"SELECT source, ord, target, parameters FROM "+table+" ORDER BY source, ord")
	if err != nil {
		return fmt.Errorf("snapshot load: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var source, ord, target int
		var encoded string
		if err := rows.Scan(&source, &ord, &target, &encoded); err != nil {
			return fmt.Errorf("snapshot load: %w", err)
		}
		parameters, err := unmarshalTypes([]byte(encoded))
		if err != nil {
			return err
		}
		if len(parameters) == 0 {
			parameters = nil
		}
		existing, _ := adjacency.Get(source)
		adjacency.Set(source, append(existing, Target{Target: target, Parameters: parameters}))
	}
	return rows.Err()
}
