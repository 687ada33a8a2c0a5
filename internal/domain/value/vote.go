package value

import (
	"fmt"

	"imhungri/pkg/errcodes"

	"imhungri/internal/domain"
)

// VoteKind is the user-initiated toggle applied to a deal card.
type VoteKind string

const (
	VoteKindUpvote   VoteKind = "upvote"
	VoteKindDownvote VoteKind = "downvote"
	VoteKindFavorite VoteKind = "favorite"
)

func ParseVoteKind(s string) (VoteKind, error) {
	switch VoteKind(s) {
	case VoteKindUpvote, VoteKindDownvote, VoteKindFavorite:
		return VoteKind(s), nil
	default:
		return "", domain.NewError(errcodes.InvalidVoteKind, fmt.Sprintf("unknown vote kind %q", s))
	}
}

func (k VoteKind) String() string {
	return string(k)
}

// VoteState is the voting-related slice of a deal as one viewer sees it.
type VoteState struct {
	Votes     int
	Upvoted   bool
	Downvoted bool
	Favorited bool
}

// Apply returns the state after one tap of the given toggle.
//
// Each tap moves the counter by the viewer's delta: entering a vote is ±1,
// switching sides swings by 2, tapping the active side again retracts it.
// Favorite is a plain flag flip and never touches the counter. Upvoted and
// Downvoted are mutually exclusive after any sequence of taps.
func (s VoteState) Apply(kind VoteKind) VoteState {
	next := s

	switch kind {
	case VoteKindUpvote:
		switch {
		case s.Upvoted:
			next.Votes--
			next.Upvoted = false
		case s.Downvoted:
			next.Votes += 2
			next.Upvoted = true
			next.Downvoted = false
		default:
			next.Votes++
			next.Upvoted = true
		}
	case VoteKindDownvote:
		switch {
		case s.Downvoted:
			next.Votes++
			next.Downvoted = false
		case s.Upvoted:
			next.Votes -= 2
			next.Downvoted = true
			next.Upvoted = false
		default:
			next.Votes--
			next.Downvoted = true
		}
	case VoteKindFavorite:
		next.Favorited = !s.Favorited
	}

	return next
}
