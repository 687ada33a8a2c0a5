package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"imhungri/internal/domain"
	"imhungri/internal/domain/entity"
	"imhungri/pkg/errcodes"
)

type ProfileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (entity.Profile, error) {
	query := `
		SELECT id, display_name, avatar_url, bio, created_at, updated_at
		FROM profiles
		WHERE id = $1`

	var schema profileSchema
	if err := r.db.GetContext(ctx, &schema, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Profile{}, domain.NewError(errcodes.ProfileNotFound, "profile not found")
		}
		return entity.Profile{}, domain.WrapError(err, errcodes.InternalServerError, "failed to get profile")
	}

	return schema.toDomain(), nil
}

func (r *ProfileRepository) Update(ctx context.Context, profile entity.Profile) error {
	query := `
		UPDATE profiles
		SET display_name = $1, avatar_url = $2, bio = $3, updated_at = $4
		WHERE id = $5`

	res, err := r.db.ExecContext(ctx, query,
		profile.DisplayName, profile.AvatarURL, profile.Bio, time.Now(), profile.ID)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to update profile")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to check affected rows")
	}

	if rows == 0 {
		return domain.NewError(errcodes.ProfileNotFound, "profile not found")
	}
	return nil
}

// Block hides blockedID's deals from userID's feed from the next fetch on.
func (r *ProfileRepository) Block(ctx context.Context, userID, blockedID string) error {
	query := `
		INSERT INTO user_blocks (user_id, blocked_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, blocked_id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, userID, blockedID, time.Now())
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to block user")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to check affected rows")
	}

	if rows == 0 {
		return domain.NewError(errcodes.UserAlreadyBlocked, "user already blocked")
	}
	return nil
}
