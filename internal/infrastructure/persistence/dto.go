package persistence

import (
	"database/sql"
	"time"

	"imhungri/internal/domain/entity"
)

// dealSchema maps one feed row: the deal joined with the viewer's vote and
// favorite. viewer_vote is +1, -1 or NULL.
type dealSchema struct {
	ID           string        `db:"id"`
	Title        string        `db:"title"`
	Description  string        `db:"description"`
	RestaurantID string        `db:"restaurant_id"`
	Restaurant   string        `db:"restaurant"`
	ImageURL     string        `db:"image_url"`
	AuthorID     string        `db:"author_id"`
	Author       string        `db:"author"`
	Votes        int           `db:"votes"`
	ViewerVote   sql.NullInt64 `db:"viewer_vote"`
	Favorited    bool          `db:"favorited"`
	CreatedAt    time.Time     `db:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at"`
}

func (s dealSchema) toDomain() entity.Deal {
	return entity.Deal{
		ID:           s.ID,
		Title:        s.Title,
		Description:  s.Description,
		RestaurantID: s.RestaurantID,
		Restaurant:   s.Restaurant,
		ImageURL:     s.ImageURL,
		AuthorID:     s.AuthorID,
		Author:       s.Author,
		Votes:        s.Votes,
		Upvoted:      s.ViewerVote.Valid && s.ViewerVote.Int64 > 0,
		Downvoted:    s.ViewerVote.Valid && s.ViewerVote.Int64 < 0,
		Favorited:    s.Favorited,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

type profileSchema struct {
	ID          string    `db:"id"`
	DisplayName string    `db:"display_name"`
	AvatarURL   string    `db:"avatar_url"`
	Bio         string    `db:"bio"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (s profileSchema) toDomain() entity.Profile {
	return entity.Profile{
		ID:          s.ID,
		DisplayName: s.DisplayName,
		AvatarURL:   s.AvatarURL,
		Bio:         s.Bio,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

type restaurantSchema struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Address   string    `db:"address"`
	Lat       float64   `db:"lat"`
	Lng       float64   `db:"lng"`
	ImageURL  string    `db:"image_url"`
	CreatedAt time.Time `db:"created_at"`
}

func (s restaurantSchema) toDomain() entity.Restaurant {
	return entity.Restaurant{
		ID:        s.ID,
		Name:      s.Name,
		Address:   s.Address,
		Lat:       s.Lat,
		Lng:       s.Lng,
		ImageURL:  s.ImageURL,
		CreatedAt: s.CreatedAt,
	}
}
