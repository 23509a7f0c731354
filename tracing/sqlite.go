package tracing

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// ErrTraceExists is returned when the trace file is already on disk.
var ErrTraceExists = errors.New("tracing: trace file already exists")

// SQLiteTraceWriter writes records into a SQLite database in batches.
type SQLiteTraceWriter struct {
	*sql.DB

	mu        sync.Mutex
	statement *sql.Stmt
	dbName    string
	pending   []Record
	batchSize int
	err       error
}

// NewSQLiteTraceWriter creates a writer for path + ".sqlite3". With an empty
// path a unique name is chosen on Init. Buffered records are flushed when the
// program exits through atexit.
func NewSQLiteTraceWriter(path string) *SQLiteTraceWriter {
	w := &SQLiteTraceWriter{
		dbName:    path,
		batchSize: 1000,
	}

	atexit.Register(func() { _ = w.Flush() })

	return w
}

// FileName returns the database file name.
func (w *SQLiteTraceWriter) FileName() string {
	return w.dbName + ".sqlite3"
}

// Init creates the database, the trace table and its indexes.
func (w *SQLiteTraceWriter) Init() error {
	if w.dbName == "" {
		w.dbName = "roboeyes_trace_" + xid.New().String()
	}

	filename := w.FileName()
	if _, err := os.Stat(filename); err == nil {
		return fmt.Errorf("%w: %s", ErrTraceExists, filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return fmt.Errorf("tracing: opening %s: %w", filename, err)
	}

	db.SetMaxOpenConns(1)
	w.DB = db

	if err := w.createTable(); err != nil {
		return err
	}

	stmt, err := w.Prepare(`INSERT INTO trace VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("tracing: preparing insert: %w", err)
	}
	w.statement = stmt

	fmt.Fprintf(os.Stderr, "Trace is collected in database: %s\n", filename)

	return nil
}

func (w *SQLiteTraceWriter) createTable() error {
	stmts := []string{
		`create table trace
		(
			id      varchar(32) not null,
			session varchar(32) not null,
			kind    varchar(32) not null,
			source  varchar(64),
			eyes    varchar(32),
			detail  text,
			time_ms integer not null
		);`,
		`create index trace_session_index on trace (session);`,
		`create index trace_kind_index on trace (kind);`,
		`create index trace_time_index on trace (time_ms);`,
	}

	for _, s := range stmts {
		if _, err := w.Exec(s); err != nil {
			return fmt.Errorf("tracing: creating trace table: %w", err)
		}
	}

	return nil
}

// Write buffers a record and flushes when the batch is full.
func (w *SQLiteTraceWriter) Write(r Record) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = append(w.pending, r)
	if len(w.pending) >= w.batchSize {
		w.err = errors.Join(w.err, w.flushLocked())
	}
}

// Flush writes the buffered records in one transaction. It also reports
// errors from earlier automatic flushes.
func (w *SQLiteTraceWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	err := errors.Join(w.err, w.flushLocked())
	w.err = nil

	return err
}

func (w *SQLiteTraceWriter) flushLocked() error {
	if len(w.pending) == 0 || w.statement == nil {
		return nil
	}

	tx, err := w.Begin()
	if err != nil {
		return fmt.Errorf("tracing: begin: %w", err)
	}

	stmt := tx.Stmt(w.statement)
	for _, r := range w.pending {
		_, err := stmt.Exec(
			r.ID, r.Session, r.Kind, r.Source, r.Eyes, r.Detail, uint64(r.Time))
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("tracing: inserting record %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tracing: commit: %w", err)
	}

	w.pending = nil

	return nil
}

// Close flushes and closes the database.
func (w *SQLiteTraceWriter) Close() error {
	err := w.Flush()

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.statement != nil {
		err = errors.Join(err, w.statement.Close())
		w.statement = nil
	}

	if w.DB != nil {
		err = errors.Join(err, w.DB.Close())
	}

	return err
}
