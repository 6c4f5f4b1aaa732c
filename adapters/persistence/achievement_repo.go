package persistence

import (
	"context"
	"encoding/json"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/skillora/internal/domain/achievement"
	"github.com/khoahotran/skillora/pkg/apperror"
	"github.com/khoahotran/skillora/pkg/logger"
)

type postgresAchievementRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresAchievementRepo(db *pgxpool.Pool, logger logger.Logger) achievement.Repository {
	return &postgresAchievementRepo{db: db, logger: logger}
}

func (r *postgresAchievementRepo) scanDocument(row pgx.Row) (*achievement.Document, error) {
	d := &achievement.Document{}
	var achievementsBytes []byte
	if err := row.Scan(&d.UserKey, &achievementsBytes, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(achievementsBytes, &d.Achievements); err != nil {
		r.logger.Warn("Failed to unmarshal achievements", zap.String("user_key", d.UserKey), zap.Error(err))
		return nil, err
	}
	if d.Achievements == nil {
		d.Achievements = []achievement.Record{}
	}
	return d, nil
}

func (r *postgresAchievementRepo) Get(ctx context.Context, userKey string) (*achievement.Document, error) {
	query, args, err := psql.Select("user_key", "achievements", "created_at", "updated_at").
		From("achievement_documents").
		Where(sq.Eq{"user_key": userKey}).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build achievements query", err)
	}

	d, err := r.scanDocument(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, achievement.ErrDocumentNotFound
		}
		return nil, apperror.NewStorageFailure("achievements.get", userKey, err)
	}
	return d, nil
}

func (r *postgresAchievementRepo) Put(ctx context.Context, doc *achievement.Document) error {
	achievementsBytes, err := json.Marshal(doc.Achievements)
	if err != nil {
		return apperror.NewInternal("failed to marshal achievements", err)
	}

	query := `
		INSERT INTO achievement_documents (user_key, achievements, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_key) DO UPDATE SET
			achievements = EXCLUDED.achievements,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.Exec(ctx, query, doc.UserKey, achievementsBytes, doc.CreatedAt, doc.UpdatedAt); err != nil {
		return apperror.NewStorageFailure("achievements.put", doc.UserKey, err)
	}
	return nil
}

// AppendMany concatenates records onto the stored array in one upsert,
// creating the document when the user has none.
func (r *postgresAchievementRepo) AppendMany(ctx context.Context, userKey string, records []achievement.Record) error {
	if len(records) == 0 {
		return nil
	}
	recordsBytes, err := json.Marshal(records)
	if err != nil {
		return apperror.NewInternal("failed to marshal achievements", err)
	}

	query := `
		INSERT INTO achievement_documents (user_key, achievements, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (user_key) DO UPDATE SET
			achievements = achievement_documents.achievements || EXCLUDED.achievements,
			updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, userKey, recordsBytes); err != nil {
		return apperror.NewStorageFailure("achievements.append", userKey, err)
	}
	return nil
}

func (r *postgresAchievementRepo) PullByTitle(ctx context.Context, userKey, title string) (*achievement.Document, error) {
	query := `
		UPDATE achievement_documents SET
			achievements = COALESCE(
				(SELECT jsonb_agg(t.e ORDER BY t.i) FROM jsonb_array_elements(achievements) WITH ORDINALITY AS t(e, i) WHERE t.e->>'title' IS DISTINCT FROM $2),
				'[]'::jsonb
			),
			updated_at = NOW()
		WHERE user_key = $1
		RETURNING user_key, achievements, created_at, updated_at
	`
	d, err := r.scanDocument(r.db.QueryRow(ctx, query, userKey, title))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, achievement.ErrDocumentNotFound
		}
		return nil, apperror.NewStorageFailure("achievements.pull", userKey, err)
	}
	return d, nil
}
