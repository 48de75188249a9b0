package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/migrate"

	"quizdesk/internal/domain"
	"quizdesk/internal/infra/sqlite/migrations"
)

// collectionKey is the fixed storage key the serialized quiz collection lives
// under. There is exactly one collection per database.
const collectionKey = "quizdesk:quizzes"

// DefaultDSN opens (or creates) the database file in the working directory.
const DefaultDSN = "file:quizdesk.db?cache=shared&mode=rwc"

// CollectionRow holds one serialized quiz collection.
type CollectionRow struct {
	bun.BaseModel `bun:"table:collections,alias:c"`

	Key       string `bun:"key,pk"`
	Data      []byte `bun:"data,notnull"`
	UpdatedAt int64  `bun:"updated_at,notnull"`
}

// ResultRow is one finished session in the history table.
type ResultRow struct {
	bun.BaseModel `bun:"table:results,alias:r"`

	ID          string `bun:"id,pk"`
	QuizID      string `bun:"quiz_id,notnull"`
	Correct     int    `bun:"correct,notnull"`
	Total       int    `bun:"total,notnull"`
	Data        []byte `bun:"data,notnull"`
	CompletedAt int64  `bun:"completed_at,notnull"`
}

// Open opens the local database behind the persister.
func Open(dsn string) (*bun.DB, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Migrate brings the schema up to date.
func Migrate(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return err
	}
	_, err := migrator.Migrate(ctx)
	return err
}

// Persister stores the quiz collection as one JSON document under a fixed key
// and appends finished session results to a history table.
type Persister struct {
	db  *bun.DB
	now func() time.Time
}

func NewPersister(db *bun.DB) *Persister {
	return &Persister{db: db, now: time.Now}
}

// LoadCollection reads the stored collection. domain.ErrNoCollection means
// nothing has been stored yet; decode errors bubble up so the caller can fall
// back to its defaults.
func (p *Persister) LoadCollection(ctx context.Context) ([]domain.Quiz, error) {
	row := new(CollectionRow)
	err := p.db.NewSelect().Model(row).Where("key = ?", collectionKey).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoCollection
	}
	if err != nil {
		return nil, fmt.Errorf("load collection: %w", err)
	}

	var quizzes []domain.Quiz
	if err := json.Unmarshal(row.Data, &quizzes); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	return quizzes, nil
}

// SaveCollection replaces the stored collection wholesale.
func (p *Persister) SaveCollection(ctx context.Context, quizzes []domain.Quiz) error {
	data, err := json.Marshal(quizzes)
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	row := &CollectionRow{
		Key:       collectionKey,
		Data:      data,
		UpdatedAt: p.now().Unix(),
	}
	_, err = p.db.NewInsert().
		Model(row).
		On("CONFLICT (key) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save collection: %w", err)
	}
	return nil
}

// AppendResult adds one finished session to the history.
func (p *Persister) AppendResult(ctx context.Context, result domain.SessionResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	row := &ResultRow{
		ID:          uuid.NewString(),
		QuizID:      result.QuizID,
		Correct:     result.Correct,
		Total:       result.Total,
		Data:        data,
		CompletedAt: result.CompletedAt.Unix(),
	}
	if _, err := p.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("append result: %w", err)
	}
	return nil
}

// RecentResults returns up to limit results, newest first.
func (p *Persister) RecentResults(ctx context.Context, limit int) ([]domain.SessionResult, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []ResultRow
	err := p.db.NewSelect().
		Model(&rows).
		Order("completed_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}

	results := make([]domain.SessionResult, 0, len(rows))
	for _, row := range rows {
		var result domain.SessionResult
		if err := json.Unmarshal(row.Data, &result); err != nil {
			return nil, fmt.Errorf("decode result %s: %w", row.ID, err)
		}
		results = append(results, result)
	}
	return results, nil
}
