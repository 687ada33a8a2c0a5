package server

import (
	"errors"
	"time"

	"git.appkode.ru/pub/go/failure"

	"imhungri/pkg/errcodes"
	"imhungri/pkg/lox"
	"imhungri/pkg/rest"

	"imhungri/internal/domain"
	"imhungri/internal/domain/entity"
)

func toRestDeal(d entity.Deal) rest.Deal {
	return rest.Deal{
		ID:           d.ID,
		Title:        d.Title,
		Description:  d.Description,
		RestaurantID: d.RestaurantID,
		Restaurant:   d.Restaurant,
		ImageURL:     d.ImageURL,
		AuthorID:     d.AuthorID,
		Author:       d.Author,
		Votes:        d.Votes,
		IsUpvoted:    d.Upvoted,
		IsDownvoted:  d.Downvoted,
		IsFavorited:  d.Favorited,
		CreatedAt:    d.CreatedAt.Format(time.RFC3339),
	}
}

func toRestDeals(deals []entity.Deal) []rest.Deal {
	return lox.Map(deals, toRestDeal)
}

func toRestRestaurant(r entity.Restaurant) rest.Restaurant {
	return rest.Restaurant{
		ID:       r.ID,
		Name:     r.Name,
		Address:  r.Address,
		Lat:      r.Lat,
		Lng:      r.Lng,
		ImageURL: r.ImageURL,
	}
}

func toRestRestaurants(restaurants []entity.Restaurant) []rest.Restaurant {
	return lox.Map(restaurants, toRestRestaurant)
}

func toRestProfile(p entity.Profile) rest.Profile {
	return rest.Profile{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
		Bio:         p.Bio,
	}
}

// toFailure lifts a domain AppError into the failure kind reply.Error maps to
// an HTTP status. Unknown errors pass through and render as 500.
func toFailure(err error) error {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		return err
	}

	withCode := failure.WithCode(appErr.Code)
	withDescription := failure.WithDescription(appErr.Message)

	switch appErr.Code {
	case errcodes.DealNotFound, errcodes.ProfileNotFound, errcodes.RestaurantNotFound, errcodes.NotFound:
		return failure.NewNotFoundError(appErr.Error(), withCode, withDescription)
	case errcodes.NotAuthenticated, errcodes.AccessTokenExpired, errcodes.AccessTokenInvalid:
		return failure.NewUnauthorizedError(appErr.Error(), withCode, withDescription)
	case errcodes.Forbidden:
		return failure.NewForbiddenError(appErr.Error(), withCode, withDescription)
	case errcodes.AlreadyReported, errcodes.UserAlreadyBlocked:
		return failure.NewConflictError(appErr.Error(), withCode, withDescription)
	case errcodes.ValidationError, errcodes.InvalidDeal, errcodes.InvalidVoteKind,
		errcodes.InvalidDealID, errcodes.InvalidCoordinates, errcodes.InvalidReport,
		errcodes.InvalidProfileID, errcodes.InvalidPhotoURL, errcodes.InvalidPaging:
		return failure.NewInvalidArgumentError(appErr.Error(), withCode, withDescription)
	default:
		return err
	}
}
