package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/codebuildervaibhav/video-analyzer/internal/types"
)

// MetadataDB keeps the analysis history in SQLite
type MetadataDB struct {
	db *sql.DB
}

// NewMetadataDB opens (or creates) the history database. ":memory:" keeps it in process.
func NewMetadataDB(dbPath string) (*MetadataDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS analyses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		video_id TEXT NOT NULL,
		source TEXT,
		status TEXT NOT NULL,
		segment_count INTEGER,
		chapter_count INTEGER,
		note_count INTEGER,
		has_summary INTEGER,
		error TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_created_at ON analyses(created_at);
	CREATE INDEX IF NOT EXISTS idx_video_id ON analyses(video_id);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MetadataDB{db: db}, nil
}

// RecordAnalysis appends one history entry
func (mdb *MetadataDB) RecordAnalysis(ctx context.Context, rec types.AnalysisRecord) error {
	query := `
	INSERT INTO analyses (session_id, video_id, source, status, segment_count, chapter_count, note_count, has_summary, error, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := mdb.db.ExecContext(ctx, query, rec.ID, rec.VideoID, string(rec.Source), rec.Status,
		rec.SegmentCount, rec.ChapterCount, rec.NoteCount, rec.HasSummary, rec.Error, rec.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save analysis record: %w", err)
	}

	return nil
}

// ListAnalyses returns the most recent history entries, newest first
func (mdb *MetadataDB) ListAnalyses(ctx context.Context, limit int) ([]types.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
	SELECT session_id, video_id, source, status, segment_count, chapter_count, note_count, has_summary, error, created_at
	FROM analyses ORDER BY created_at DESC, id DESC LIMIT ?
	`

	rows, err := mdb.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	records := []types.AnalysisRecord{}
	for rows.Next() {
		var (
			rec    types.AnalysisRecord
			source string
			errMsg sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.VideoID, &source, &rec.Status, &rec.SegmentCount,
			&rec.ChapterCount, &rec.NoteCount, &rec.HasSummary, &errMsg, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis record: %w", err)
		}
		rec.Source = types.Source(source)
		rec.Error = errMsg.String
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Close closes the database connection
func (mdb *MetadataDB) Close() error {
	return mdb.db.Close()
}
