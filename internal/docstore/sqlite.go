package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is a Store backed by a local SQLite database. Change
// notifications are in-process: every mutation made through this handle is
// fanned out to this handle's subscribers.
type SQLiteStore struct {
	db   *sql.DB
	subs *subscriberSet
}

// NewSQLiteStore creates a new SQLite-backed document store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{
		db:   db,
		subs: newSubscriberSet(),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		path TEXT PRIMARY KEY,
		collection TEXT NOT NULL,
		doc_id TEXT NOT NULL,
		data TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, path Path) (Document, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM documents WHERE path = ?", path.String()).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return decodeDocument(data)
}

// Set implements Store.
func (s *SQLiteStore) Set(ctx context.Context, path Path, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	collection := parentOf(path)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (path, collection, doc_id, data, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(path) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		path.String(), collection, path[len(path)-1], string(data))
	if err != nil {
		return fmt.Errorf("failed to set document: %w", err)
	}

	s.notifyCollection(ctx, collection)
	return nil
}

// Update implements Store.
func (s *SQLiteStore) Update(ctx context.Context, path Path, fields Document) error {
	existing, err := s.Get(ctx, path)
	if err != nil {
		return err
	}

	merged := existing.Clone()
	for k, v := range fields {
		merged[k] = v
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE documents SET data = ?, updated_at = CURRENT_TIMESTAMP WHERE path = ?",
		string(data), path.String())
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	s.notifyCollection(ctx, parentOf(path))
	return nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, path Path) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE path = ?", path.String())
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if n, _ := res.RowsAffected(); n > 0 {
		s.notifyCollection(ctx, parentOf(path))
	}
	return nil
}

// Subscribe implements Store.
func (s *SQLiteStore) Subscribe(ctx context.Context, collection Path) (Subscription, error) {
	snap, err := s.snapshot(ctx, collection.String())
	if err != nil {
		return nil, err
	}
	return s.subs.add(collection.String(), snap), nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.subs.closeAll()
	return s.db.Close()
}

func (s *SQLiteStore) notifyCollection(ctx context.Context, collection string) {
	if !s.subs.hasSubscribers(collection) {
		return
	}
	snap, err := s.snapshot(ctx, collection)
	if err != nil {
		return
	}
	s.subs.notify(collection, snap)
}

func (s *SQLiteStore) snapshot(ctx context.Context, collection string) (Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT doc_id, data FROM documents WHERE collection = ? ORDER BY doc_id", collection)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to query collection: %w", err)
	}
	defer rows.Close()

	var snap Snapshot
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return Snapshot{}, err
		}
		doc, err := decodeDocument(data)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Docs = append(snap.Docs, SnapshotDoc{ID: id, Data: doc})
	}

	return snap, rows.Err()
}

func decodeDocument(data string) (Document, error) {
	var doc Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}
