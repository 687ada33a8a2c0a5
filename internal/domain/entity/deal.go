package entity

import (
	"time"

	"imhungri/internal/domain/value"
)

// Deal is the view model a screen renders: one restaurant promotion together
// with the viewer-specific vote/favorite slice. Feed and detail screens hold
// independent copies of the same deal, never a shared pointer.
type Deal struct {
	ID           string    `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description,omitempty" db:"description"`
	RestaurantID string    `json:"restaurant_id" db:"restaurant_id"`
	Restaurant   string    `json:"restaurant" db:"restaurant"`
	ImageURL     string    `json:"image_url,omitempty" db:"image_url"`
	AuthorID     string    `json:"author_id" db:"author_id"`
	Author       string    `json:"author" db:"author"`
	Votes        int       `json:"votes" db:"votes"`
	Upvoted      bool      `json:"is_upvoted"`
	Downvoted    bool      `json:"is_downvoted"`
	Favorited    bool      `json:"is_favorited"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

func (d Deal) VoteState() value.VoteState {
	return value.VoteState{
		Votes:     d.Votes,
		Upvoted:   d.Upvoted,
		Downvoted: d.Downvoted,
		Favorited: d.Favorited,
	}
}

func (d Deal) WithVoteState(s value.VoteState) Deal {
	d.Votes = s.Votes
	d.Upvoted = s.Upvoted
	d.Downvoted = s.Downvoted
	d.Favorited = s.Favorited

	return d
}
