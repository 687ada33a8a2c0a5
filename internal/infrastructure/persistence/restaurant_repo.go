package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"imhungri/internal/domain"
	"imhungri/internal/domain/entity"
	"imhungri/internal/domain/value"
	"imhungri/pkg/errcodes"
	"imhungri/pkg/lox"
)

type RestaurantRepository struct {
	db *sqlx.DB
}

func NewRestaurantRepository(db *sqlx.DB) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

func (r *RestaurantRepository) GetByID(ctx context.Context, id string) (entity.Restaurant, error) {
	query := `
		SELECT id, name, address, lat, lng, image_url, created_at
		FROM restaurants
		WHERE id = $1`

	var schema restaurantSchema
	if err := r.db.GetContext(ctx, &schema, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Restaurant{}, domain.NewError(errcodes.RestaurantNotFound, "restaurant not found")
		}
		return entity.Restaurant{}, domain.WrapError(err, errcodes.InternalServerError, "failed to get restaurant")
	}

	return schema.toDomain(), nil
}

// ListNearby returns restaurants ordered by distance from the point. Squared
// euclidean distance on raw degrees is enough at city scale.
func (r *RestaurantRepository) ListNearby(ctx context.Context, at value.Coordinates, limit int) ([]entity.Restaurant, error) {
	query := `
		SELECT id, name, address, lat, lng, image_url, created_at
		FROM restaurants
		ORDER BY (lat - $1) * (lat - $1) + (lng - $2) * (lng - $2) ASC
		LIMIT $3`

	var schemas []restaurantSchema
	if err := r.db.SelectContext(ctx, &schemas, query, at.Lat, at.Lng, limit); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list restaurants")
	}

	return lox.Map(schemas, restaurantSchema.toDomain), nil
}
