package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/wflores9/StudioBot.ai/internal/ports"
	"github.com/wflores9/StudioBot.ai/internal/types"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Store struct {
	db     *sql.DB
	logger zerolog.Logger
	now    func() time.Time
}

func Open(dbPath string, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	s := &Store{db: db, logger: logger, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if s.migrationApplied(name) {
			continue
		}
		content, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("execute migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO _migrations (name) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		s.logger.Info().Str("name", name).Msg("applied migration")
	}
	return nil
}

func (s *Store) migrationApplied(name string) bool {
	var applied int
	err := s.db.QueryRow("SELECT 1 FROM _migrations WHERE name = ?", name).Scan(&applied)
	return err == nil && applied == 1
}

// SaveClips stores clips in one transaction, keeping their slice order as
// rank. Every video present in the batch loses its previously stored clips,
// so a rerun replaces the earlier ranking instead of interleaving with it.
func (s *Store) SaveClips(ctx context.Context, clips []types.Clip) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	cleared := make(map[string]bool)
	for _, c := range clips {
		if cleared[c.VideoID] {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM clips WHERE video_id = ?`, c.VideoID); err != nil {
			return fmt.Errorf("clear clips of %s: %w", c.VideoID, err)
		}
		cleared[c.VideoID] = true
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO clips (
			id, video_id, rank, title, description, start_time, end_time, duration,
			score, sentiment, reason, output_path, thumbnail_path, status, approved,
			approval_notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range clips {
		if !c.Sentiment.Valid() {
			return fmt.Errorf("clip %s: invalid sentiment", c.ID)
		}
		_, err := stmt.ExecContext(ctx,
			c.ID, c.VideoID, i, c.Title, c.Description, c.StartTime, c.EndTime, c.Duration,
			c.Score, c.Sentiment.String(), c.Reason, nullString(c.OutputPath), nullString(c.ThumbnailPath),
			c.Status, boolToInt(c.Approved), nullString(c.ApprovalNotes),
			c.CreatedAt.UTC().Format(time.RFC3339), c.UpdatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("insert clip %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

const clipColumns = `id, video_id, title, description, start_time, end_time, duration, score,
	sentiment, reason, output_path, thumbnail_path, status, approved, approval_notes,
	created_at, updated_at`

func (s *Store) ListClips(ctx context.Context, videoID string) ([]types.Clip, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+clipColumns+` FROM clips WHERE video_id = ? ORDER BY rank, created_at`, videoID)
	if err != nil {
		return nil, fmt.Errorf("list clips: %w", err)
	}
	defer rows.Close()

	out := []types.Clip{}
	for rows.Next() {
		c, err := scanClip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetClip(ctx context.Context, id string) (types.Clip, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+clipColumns+` FROM clips WHERE id = ?`, id)
	c, err := scanClip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Clip{}, fmt.Errorf("clip %s: %w", id, ports.ErrNotFound)
	}
	return c, err
}

func (s *Store) SetApproved(ctx context.Context, id string, approved bool, notes string) (types.Clip, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE clips SET approved = ?, approval_notes = ?, updated_at = ? WHERE id = ?`,
		boolToInt(approved), nullString(notes), s.now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return types.Clip{}, fmt.Errorf("update clip %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.Clip{}, fmt.Errorf("clip %s: %w", id, ports.ErrNotFound)
	}
	return s.GetClip(ctx, id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClip(row scanner) (types.Clip, error) {
	var (
		c                             types.Clip
		sentiment, createdAt, updated string
		outputPath, thumbPath, notes  sql.NullString
		approved                      int
	)
	err := row.Scan(&c.ID, &c.VideoID, &c.Title, &c.Description, &c.StartTime, &c.EndTime, &c.Duration, &c.Score,
		&sentiment, &c.Reason, &outputPath, &thumbPath, &c.Status, &approved, &notes, &createdAt, &updated)
	if err != nil {
		return types.Clip{}, err
	}
	if c.Sentiment, err = types.ParseSentiment(sentiment); err != nil {
		return types.Clip{}, fmt.Errorf("clip %s: %w", c.ID, err)
	}
	c.OutputPath = outputPath.String
	c.ThumbnailPath = thumbPath.String
	c.ApprovalNotes = notes.String
	c.Approved = approved == 1
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return c, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ports.ClipStore = (*Store)(nil)
