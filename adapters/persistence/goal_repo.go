package persistence

import (
	"context"
	"encoding/json"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/skillora/internal/domain/goal"
	"github.com/khoahotran/skillora/pkg/apperror"
	"github.com/khoahotran/skillora/pkg/logger"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type postgresGoalRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresGoalRepo(db *pgxpool.Pool, logger logger.Logger) goal.Repository {
	return &postgresGoalRepo{db: db, logger: logger}
}

func (r *postgresGoalRepo) scanDocument(row pgx.Row) (*goal.Document, error) {
	d := &goal.Document{}
	var careersBytes []byte
	if err := row.Scan(&d.UserKey, &careersBytes, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(careersBytes, &d.Careers); err != nil {
		r.logger.Warn("Failed to unmarshal careers", zap.String("user_key", d.UserKey), zap.Error(err))
		return nil, err
	}
	if d.Careers == nil {
		d.Careers = []goal.CareerGoal{}
	}
	return d, nil
}

func (r *postgresGoalRepo) Get(ctx context.Context, userKey string) (*goal.Document, error) {
	query, args, err := psql.Select("user_key", "careers", "created_at", "updated_at").
		From("goal_documents").
		Where(sq.Eq{"user_key": userKey}).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build goals query", err)
	}

	d, err := r.scanDocument(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, goal.ErrDocumentNotFound
		}
		return nil, apperror.NewStorageFailure("goals.get", userKey, err)
	}
	return d, nil
}

func (r *postgresGoalRepo) Put(ctx context.Context, doc *goal.Document) error {
	careersBytes, err := json.Marshal(doc.Careers)
	if err != nil {
		return apperror.NewInternal("failed to marshal careers", err)
	}

	query := `
		INSERT INTO goal_documents (user_key, careers, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_key) DO UPDATE SET
			careers = EXCLUDED.careers,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.Exec(ctx, query, doc.UserKey, careersBytes, doc.CreatedAt, doc.UpdatedAt); err != nil {
		return apperror.NewStorageFailure("goals.put", doc.UserKey, err)
	}
	return nil
}

// PullByTitle filters the careers array inside Postgres, so the removal is
// one statement against the row.
func (r *postgresGoalRepo) PullByTitle(ctx context.Context, userKey, title string) (*goal.Document, error) {
	query := `
		UPDATE goal_documents SET
			careers = COALESCE(
				(SELECT jsonb_agg(t.e ORDER BY t.i) FROM jsonb_array_elements(careers) WITH ORDINALITY AS t(e, i) WHERE t.e->>'title' IS DISTINCT FROM $2),
				'[]'::jsonb
			),
			updated_at = NOW()
		WHERE user_key = $1
		RETURNING user_key, careers, created_at, updated_at
	`
	d, err := r.scanDocument(r.db.QueryRow(ctx, query, userKey, title))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, goal.ErrDocumentNotFound
		}
		return nil, apperror.NewStorageFailure("goals.pull", userKey, err)
	}
	return d, nil
}
