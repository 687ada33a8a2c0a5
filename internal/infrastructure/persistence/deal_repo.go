package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"

	"imhungri/internal/domain"
	"imhungri/internal/domain/entity"
	"imhungri/pkg/errcodes"
	"imhungri/pkg/lox"
)

// dealColumns is the joined projection every deal read uses: the row itself
// plus the viewer's vote and favorite.
const dealColumns = `
	d.id, d.title, d.description, d.restaurant_id, r.name AS restaurant,
	d.image_url, d.author_id, p.display_name AS author, d.votes,
	v.value AS viewer_vote,
	(f.user_id IS NOT NULL) AS favorited,
	d.created_at, d.updated_at`

const dealJoins = `
	FROM deals d
	JOIN restaurants r ON r.id = d.restaurant_id
	JOIN profiles p ON p.id = d.author_id
	LEFT JOIN deal_votes v ON v.deal_id = d.id AND v.user_id = $1
	LEFT JOIN deal_favorites f ON f.deal_id = d.id AND f.user_id = $1`

type DealRepository struct {
	db *sqlx.DB
}

func NewDealRepository(db *sqlx.DB) *DealRepository {
	return &DealRepository{db: db}
}

func (r *DealRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return domain.WrapError(
				fmt.Errorf("%w; rollback: %v", err, rbErr),
				errcodes.InternalServerError,
				"transaction failed",
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to commit")
	}

	return nil
}

// Feed returns the newest deals with the viewer's vote state attached. Deals
// authored by users the viewer blocked are filtered out.
func (r *DealRepository) Feed(ctx context.Context, viewerID string, limit, offset int) ([]entity.Deal, error) {
	query := `
		SELECT ` + dealColumns + dealJoins + `
		WHERE NOT EXISTS (
			SELECT 1 FROM user_blocks b
			WHERE b.user_id = $1 AND b.blocked_id = d.author_id
		)
		ORDER BY d.created_at DESC
		LIMIT $2 OFFSET $3`

	var schemas []dealSchema
	if err := r.db.SelectContext(ctx, &schemas, query, viewerID, limit, offset); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list deals")
	}

	return lox.Map(schemas, dealSchema.toDomain), nil
}

func (r *DealRepository) GetByID(ctx context.Context, viewerID, dealID string) (entity.Deal, error) {
	query := `
		SELECT ` + dealColumns + dealJoins + `
		WHERE d.id = $2`

	var schema dealSchema
	if err := r.db.GetContext(ctx, &schema, query, viewerID, dealID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Deal{}, domain.NewError(errcodes.DealNotFound, "deal not found")
		}
		return entity.Deal{}, domain.WrapError(err, errcodes.InternalServerError, "failed to get deal")
	}

	return schema.toDomain(), nil
}

// Create inserts a new deal and returns it with the generated id.
func (r *DealRepository) Create(ctx context.Context, authorID string, deal entity.Deal) (entity.Deal, error) {
	deal.ID = xid.New().String()
	deal.AuthorID = authorID
	now := time.Now()
	deal.CreatedAt = now
	deal.UpdatedAt = now

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO deals (id, title, description, restaurant_id, image_url, author_id, votes, created_at, updated_at)
			VALUES (:id, :title, :description, :restaurant_id, :image_url, :author_id, 0, :created_at, :updated_at)`

		if _, err := tx.NamedExecContext(ctx, query, deal); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to insert deal")
		}
		return nil
	})
	if err != nil {
		return entity.Deal{}, err
	}

	return r.GetByID(ctx, authorID, deal.ID)
}

// SetVote upserts the viewer's vote (up=true → +1, up=false → -1) and
// recomputes the tally in the same transaction.
func (r *DealRepository) SetVote(ctx context.Context, viewerID, dealID string, up bool) error {
	value := -1
	if up {
		value = 1
	}

	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO deal_votes (deal_id, user_id, value, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (deal_id, user_id) DO UPDATE SET value = EXCLUDED.value`

		if _, err := tx.ExecContext(ctx, query, dealID, viewerID, value, time.Now()); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to upsert vote")
		}

		return r.recountTx(ctx, tx, dealID)
	})
}

// ClearVote removes the viewer's vote, if any.
func (r *DealRepository) ClearVote(ctx context.Context, viewerID, dealID string) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `DELETE FROM deal_votes WHERE deal_id = $1 AND user_id = $2`

		if _, err := tx.ExecContext(ctx, query, dealID, viewerID); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to delete vote")
		}

		return r.recountTx(ctx, tx, dealID)
	})
}

func (r *DealRepository) SetFavorite(ctx context.Context, viewerID, dealID string, favorited bool) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		var (
			query string
			err   error
		)

		if favorited {
			query = `
				INSERT INTO deal_favorites (deal_id, user_id, created_at)
				VALUES ($1, $2, $3)
				ON CONFLICT (deal_id, user_id) DO NOTHING`
			_, err = tx.ExecContext(ctx, query, dealID, viewerID, time.Now())
		} else {
			query = `DELETE FROM deal_favorites WHERE deal_id = $1 AND user_id = $2`
			_, err = tx.ExecContext(ctx, query, dealID, viewerID)
		}

		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to set favorite")
		}
		return nil
	})
}

// InsertReport records one report per (deal, reporter).
func (r *DealRepository) InsertReport(ctx context.Context, report entity.Report) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO deal_reports (id, deal_id, reporter_id, reason, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (deal_id, reporter_id) DO NOTHING`

		res, err := tx.ExecContext(ctx, query,
			xid.New().String(), report.DealID, report.ReporterID, report.Reason, time.Now())
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to insert report")
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to check affected rows")
		}

		if rows == 0 {
			return domain.NewError(errcodes.AlreadyReported, "deal already reported by this user")
		}
		return nil
	})
}

// recountTx rewrites the denormalized tally from the votes table. The tally
// is authoritative; client-side arithmetic only predicts it.
func (r *DealRepository) recountTx(ctx context.Context, tx *sqlx.Tx, dealID string) error {
	query := `
		UPDATE deals
		SET votes = (SELECT COALESCE(SUM(value), 0) FROM deal_votes WHERE deal_id = $1),
		    updated_at = $2
		WHERE id = $1`

	res, err := tx.ExecContext(ctx, query, dealID, time.Now())
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to recount votes")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to check affected rows")
	}

	if rows == 0 {
		return domain.NewError(errcodes.DealNotFound, "deal not found")
	}
	return nil
}
