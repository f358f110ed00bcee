package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/studyrag-labs/studyrag-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/studyrag-labs/studyrag-cli/internal/core/domain"
	"github.com/studyrag-labs/studyrag-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.studyrag/data/studyrag.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".studyrag", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "studyrag.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// IndexStore returns an IndexStore interface backed by this store.
func (s *Store) IndexStore() driven.IndexStore {
	return &indexStore{store: s}
}

// MockTestStore returns a MockTestStore interface backed by this store.
func (s *Store) MockTestStore() driven.MockTestStore {
	return &mockTestStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// SaveDocument stores or updates a document.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, state, fail_reason, passage_count, embedding_model, index_location, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			state = excluded.state,
			fail_reason = excluded.fail_reason,
			passage_count = excluded.passage_count,
			embedding_model = excluded.embedding_model,
			index_location = excluded.index_location,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Title, string(doc.State), doc.FailReason, doc.PassageCount,
		doc.EmbeddingModel, doc.IndexLocation, doc.CreatedAt, doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, title, state, fail_reason, passage_count, embedding_model, index_location, created_at, updated_at
		FROM documents WHERE id = ?
	`, id)

	var doc domain.Document
	var state string
	if err := row.Scan(&doc.ID, &doc.Title, &state, &doc.FailReason, &doc.PassageCount,
		&doc.EmbeddingModel, &doc.IndexLocation, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	doc.State = domain.IngestState(state)
	return &doc, nil
}

// ListDocuments returns all document records, oldest first.
func (s *documentStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, title, state, fail_reason, passage_count, embedding_model, index_location, created_at, updated_at
		FROM documents ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc domain.Document
		var state string
		if err := rows.Scan(&doc.ID, &doc.Title, &state, &doc.FailReason, &doc.PassageCount,
			&doc.EmbeddingModel, &doc.IndexLocation, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		doc.State = domain.IngestState(state)
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// MarkIndexed transitions a document to StateIndexed.
func (s *documentStore) MarkIndexed(ctx context.Context, id, indexLocation string, passageCount int, embeddingModel string) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE documents SET
			state = ?,
			fail_reason = '',
			index_location = ?,
			passage_count = ?,
			embedding_model = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, string(domain.StateIndexed), indexLocation, passageCount, embeddingModel, id)
	if err != nil {
		return fmt.Errorf("marking document indexed: %w", err)
	}
	return requireRow(res)
}

// MarkFailed transitions a document to StateFailed.
func (s *documentStore) MarkFailed(ctx context.Context, id, reason string) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE documents SET
			state = ?,
			fail_reason = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, string(domain.StateFailed), reason, id)
	if err != nil {
		return fmt.Errorf("marking document failed: %w", err)
	}
	return requireRow(res)
}

// DeleteDocument removes a document record.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return requireRow(res)
}

// ==================== Index Store ====================

// indexStore implements driven.IndexStore.
// A save replaces the whole index in one transaction, so a load never
// observes a partially written index.
type indexStore struct {
	store *Store
}

var _ driven.IndexStore = (*indexStore)(nil)

// SaveIndex persists an index at the given location.
func (s *indexStore) SaveIndex(ctx context.Context, location string, index *domain.DocumentIndex) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Replace any previous index at this location. Passages cascade.
	if _, err := tx.ExecContext(ctx, "DELETE FROM indexes WHERE location = ?", location); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO indexes (location, document_id, embedding_model, created_at)
		VALUES (?, ?, ?, ?)
	`, location, index.DocumentID, index.EmbeddingModel, index.CreatedAt); err != nil {
		return fmt.Errorf("saving index: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO passages (location, position, text, embedding)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, passage := range index.Passages {
		var blob []byte
		if i < len(index.Vectors) {
			blob = float32SliceToBytes(index.Vectors[i])
		}
		if _, err := stmt.ExecContext(ctx, location, passage.Index, passage.Text, blob); err != nil {
			return fmt.Errorf("saving passage: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// LoadIndex reads an index from the given location.
func (s *indexStore) LoadIndex(ctx context.Context, location string) (*domain.DocumentIndex, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT location, document_id, embedding_model, created_at
		FROM indexes WHERE location = ?
	`, location)

	var loc string
	index := &domain.DocumentIndex{}
	if err := row.Scan(&loc, &index.DocumentID, &index.EmbeddingModel, &index.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning index: %w", err)
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT position, text, embedding
		FROM passages WHERE location = ?
		ORDER BY position
	`, location)
	if err != nil {
		return nil, fmt.Errorf("querying passages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var passage domain.Passage
		var blob []byte
		if err := rows.Scan(&passage.Index, &passage.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning passage: %w", err)
		}
		passage.DocumentID = index.DocumentID
		index.Passages = append(index.Passages, passage)
		index.Vectors = append(index.Vectors, bytesToFloat32Slice(blob))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating passages: %w", err)
	}

	return index, nil
}

// DeleteIndex removes a persisted index.
func (s *indexStore) DeleteIndex(ctx context.Context, location string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM indexes WHERE location = ?", location)
	if err != nil {
		return fmt.Errorf("deleting index: %w", err)
	}
	return nil
}

// ==================== Mock Test Store ====================

// mockTestStore implements driven.MockTestStore.
// Questions and reports are stored as JSON documents; they are written
// and read whole, never queried by field.
type mockTestStore struct {
	store *Store
}

var _ driven.MockTestStore = (*mockTestStore)(nil)

// SaveTest stores a generated mock test.
func (s *mockTestStore) SaveTest(ctx context.Context, test *domain.MockTest) error {
	questionsJSON, err := json.Marshal(test.Questions)
	if err != nil {
		return fmt.Errorf("marshalling questions: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO mock_tests (test_id, title, questions, total_marks, time_limit, difficulty, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(test_id) DO UPDATE SET
			title = excluded.title,
			questions = excluded.questions,
			total_marks = excluded.total_marks,
			time_limit = excluded.time_limit,
			difficulty = excluded.difficulty,
			confidence = excluded.confidence
	`, test.TestID, test.Title, string(questionsJSON), test.TotalMarks,
		test.TimeLimit, test.Difficulty, string(test.Confidence), test.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving mock test: %w", err)
	}
	return nil
}

// GetTest retrieves a mock test by ID.
func (s *mockTestStore) GetTest(ctx context.Context, testID string) (*domain.MockTest, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT test_id, title, questions, total_marks, time_limit, difficulty, confidence, created_at
		FROM mock_tests WHERE test_id = ?
	`, testID)

	return scanMockTest(row.Scan)
}

// ListTests returns all stored mock tests, newest first.
func (s *mockTestStore) ListTests(ctx context.Context) ([]domain.MockTest, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT test_id, title, questions, total_marks, time_limit, difficulty, confidence, created_at
		FROM mock_tests ORDER BY created_at DESC, test_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying mock tests: %w", err)
	}
	defer rows.Close()

	var tests []domain.MockTest //nolint:prealloc // size unknown from query
	for rows.Next() {
		test, err := scanMockTest(rows.Scan)
		if err != nil {
			return nil, err
		}
		tests = append(tests, *test)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mock tests: %w", err)
	}

	return tests, nil
}

// SaveReport stores a graded submission report.
func (s *mockTestStore) SaveReport(ctx context.Context, report *domain.TestReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshalling report: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO test_reports (submission_id, test_id, report, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(submission_id) DO UPDATE SET
			report = excluded.report
	`, report.SubmissionID, report.TestID, string(reportJSON), report.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	return nil
}

// ListReports returns all reports for a test, newest first.
func (s *mockTestStore) ListReports(ctx context.Context, testID string) ([]domain.TestReport, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT report FROM test_reports
		WHERE test_id = ?
		ORDER BY created_at DESC, submission_id
	`, testID)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	var reports []domain.TestReport //nolint:prealloc // size unknown from query
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		var report domain.TestReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			return nil, fmt.Errorf("unmarshaling report: %w", err)
		}
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reports: %w", err)
	}

	return reports, nil
}

// ==================== Helpers ====================

// requireRow converts a zero-row update into domain.ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanMockTest scans one mock test row through the given scan function.
func scanMockTest(scan func(dest ...any) error) (*domain.MockTest, error) {
	var test domain.MockTest
	var questionsJSON, confidence string
	if err := scan(&test.TestID, &test.Title, &questionsJSON, &test.TotalMarks,
		&test.TimeLimit, &test.Difficulty, &confidence, &test.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning mock test: %w", err)
	}
	if err := json.Unmarshal([]byte(questionsJSON), &test.Questions); err != nil {
		return nil, fmt.Errorf("unmarshaling questions: %w", err)
	}
	test.Confidence = domain.Confidence(confidence)
	return &test, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
