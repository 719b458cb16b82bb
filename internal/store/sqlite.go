package store

import (
	"bytes"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tabgrove/tabgrove/pkg/watcher"
)

// SQLiteStore is a Store backed by a single-file SQLite database. Every
// document lives in one row of the documents table; Set is an upsert.
//
// Subscribers are notified of this process's own writes directly. Writes
// by other processes reach them through StartWatcher, which observes the
// database file and re-reads documents on change.
type SQLiteStore struct {
	db   *sql.DB
	path string

	mu   sync.Mutex
	subs []chan Change
	seen map[string][]byte
	fw   *watcher.Watcher
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// OpenSQLite opens (creating if needed) a document store at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Set pragmas for write throughput; failures are non-fatal.
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			// Non-fatal, the defaults still work
			continue
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot create schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path, seen: make(map[string][]byte)}, nil
}

// Path returns the database file path (what the file watcher observes for
// cross-process change notification).
func (s *SQLiteStore) Path() string {
	return s.path
}

// Get returns the document for key, or ErrNotFound.
func (s *SQLiteStore) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM documents WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return value, nil
}

// Set replaces the document for key and notifies subscribers.
func (s *SQLiteStore) Set(key string, value []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO documents (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	s.mu.Lock()
	s.seen[key] = append([]byte(nil), value...)
	s.mu.Unlock()
	s.notify(Change{Key: key, NewValue: value})
	return nil
}

// Subscribe returns a buffered channel receiving subsequent changes.
func (s *SQLiteStore) Subscribe() <-chan Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Change, 16)
	s.subs = append(s.subs, ch)
	return ch
}

// StartWatcher begins observing the database file so flushes from other
// processes reach this process's subscribers. A file change triggers a
// re-read; only documents whose stored bytes differ from what this process
// last saw are reported, so a process never re-hears its own writes.
func (s *SQLiteStore) StartWatcher(opts ...watcher.Option) error {
	s.mu.Lock()
	if s.fw != nil {
		s.mu.Unlock()
		return watcher.ErrAlreadyStarted
	}
	s.mu.Unlock()

	// Prime the seen map so documents written before the watch began do
	// not fire a spurious change.
	docs, err := s.snapshotDocs()
	if err != nil {
		return err
	}
	s.mu.Lock()
	for k, v := range docs {
		if _, ok := s.seen[k]; !ok {
			s.seen[k] = v
		}
	}
	s.mu.Unlock()

	opts = append(opts, watcher.WithOnChange(s.refresh))
	fw, err := watcher.New(s.path, opts...)
	if err != nil {
		return err
	}
	if err := fw.Start(); err != nil {
		return err
	}
	s.mu.Lock()
	s.fw = fw
	s.mu.Unlock()
	return nil
}

// refresh re-reads every document after a file change and notifies
// subscribers of the ones that differ from their last seen bytes.
func (s *SQLiteStore) refresh() {
	docs, err := s.snapshotDocs()
	if err != nil {
		return
	}

	s.mu.Lock()
	var changes []Change
	for k, v := range docs {
		if bytes.Equal(s.seen[k], v) {
			continue
		}
		s.seen[k] = v
		changes = append(changes, Change{Key: k, NewValue: v})
	}
	subs := append([]chan Change(nil), s.subs...)
	s.mu.Unlock()

	for _, c := range changes {
		for _, ch := range subs {
			select {
			case ch <- c:
			default:
			}
		}
	}
}

// snapshotDocs reads every document row. The whole table is one or a few
// whole-document rows, so a full read per change is cheap.
func (s *SQLiteStore) snapshotDocs() (map[string][]byte, error) {
	rows, err := s.db.Query("SELECT key, value FROM documents")
	if err != nil {
		return nil, fmt.Errorf("reading documents: %w", err)
	}
	defer rows.Close()

	docs := make(map[string][]byte)
	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs[key] = value
	}
	return docs, rows.Err()
}

func (s *SQLiteStore) notify(c Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- c:
		default:
			// Subscriber is behind; it will re-read on its next change.
		}
	}
}

// Close stops the file watcher, if any, and closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	fw := s.fw
	s.fw = nil
	s.mu.Unlock()
	if fw != nil {
		fw.Stop()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
