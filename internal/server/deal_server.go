package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"imhungri/pkg/httpx/reply"
	"imhungri/pkg/httpx/req"
	"imhungri/pkg/rest"

	"imhungri/internal/domain/entity"
	"imhungri/internal/domain/value"
	"imhungri/internal/store"
)

type dealService interface {
	Feed(ctx context.Context) ([]entity.Deal, error)
	Deal(ctx context.Context, dealID string) (entity.Deal, error)
	Vote(ctx context.Context, dealID string, kind value.VoteKind) (entity.Deal, error)
	Submit(ctx context.Context, deal entity.Deal) (entity.Deal, error)
	Report(ctx context.Context, dealID, reason string) error
	Profile(ctx context.Context, profileID string) (entity.Profile, error)
	UpdateProfile(ctx context.Context, profile entity.Profile) error
	BlockUser(ctx context.Context, blockedID string) error
	NearbyRestaurants(ctx context.Context) ([]entity.Restaurant, error)
}

// DealServer exposes the app-side API over HTTP.
type DealServer struct {
	service  dealService
	session  *store.Session
	location *store.Location
}

func NewDealServer(service dealService, session *store.Session, location *store.Location) *DealServer {
	return &DealServer{
		service:  service,
		session:  session,
		location: location,
	}
}

func (s *DealServer) handlerFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deals, err := s.service.Feed(ctx)
	if err != nil {
		reply.Error(ctx, w, toFailure(err))
		return
	}

	reply.JSON(ctx, w, http.StatusOK, toRestDeals(deals))
}

func (s *DealServer) handlerDeal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deal, err := s.service.Deal(ctx, chi.URLParam(r, "dealID"))
	if err != nil {
		reply.Error(ctx, w, toFailure(err))
		return
	}

	reply.JSON(ctx, w, http.StatusOK, toRestDeal(deal))
}

func (s *DealServer) handlerSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var request rest.NewDeal
	if err := req.Read(r, &request); err != nil {
		reply.Error(ctx, w, err)
		return
	}

	created, err := s.service.Submit(ctx, entity.Deal{
		Title:        request.Title,
		Description:  request.Description,
		RestaurantID: request.RestaurantID,
		ImageURL:     request.ImageURL,
	})
	if err != nil {
		reply.Error(ctx, w, toFailure(err))
		return
	}

	reply.JSON(ctx, w, http.StatusCreated, toRestDeal(created))
}

func (s *DealServer) handlerVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var request rest.VoteRequest
	if err := req.Read(r, &request); err != nil {
		reply.Error(ctx, w, err)
		return
	}

	kind, err := value.ParseVoteKind(request.Kind)
	if err != nil {
		reply.Error(ctx, w, toFailure(err))
		return
	}

	next, err := s.service.Vote(ctx, chi.URLParam(r, "dealID"), kind)
	if err != nil {
		reply.Error(ctx, w, toFailure(err))
		return
	}

	reply.JSON(ctx, w, http.StatusOK, toRestDeal(next))
}

func (s *DealServer) handlerFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	next, err := s.service.Vote(ctx, chi.URLParam(r, "dealID"), value.VoteKindFavorite)
	if err != nil {
		reply.Error(ctx, w, toFailure(err))
		return
	}

	reply.JSON(ctx, w, http.StatusOK, toRestDeal(next))
}

func (s *DealServer) handlerReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var request rest.ReportRequest
	if err := req.Read(r, &request); err != nil {
		reply.Error(ctx, w, err)
		return
	}

	if err := s.service.Report(ctx, chi.URLParam(r, "dealID"), request.Reason); err != nil {
		reply.Error(ctx, w, toFailure(err))
		return
	}

	reply.OK(w)
}

func (s *DealServer) handlerProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, err := s.service.Profile(ctx, chi.URLParam(r, "profileID"))
	if err != nil {
		reply.Error(ctx, w, toFailure(err))
		return
	}

	reply.JSON(ctx, w, http.StatusOK, toRestProfile(profile))
}

func (s *DealServer) handlerUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var request rest.UpdateProfileRequest
	if err := req.Read(r, &request); err != nil {
		reply.Error(ctx, w, err)
		return
	}

	err := s.service.UpdateProfile(ctx, entity.Profile{
		ID:          chi.URLParam(r, "profileID"),
		DisplayName: request.DisplayName,
		AvatarURL:   request.AvatarURL,
		Bio:         request.Bio,
	})
	if err != nil {
		reply.Error(ctx, w, toFailure(err))
		return
	}

	reply.OK(w)
}

func (s *DealServer) handlerBlockUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.service.BlockUser(ctx, chi.URLParam(r, "profileID")); err != nil {
		reply.Error(ctx, w, toFailure(err))
		return
	}

	reply.OK(w)
}

func (s *DealServer) handlerNearbyRestaurants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	restaurants, err := s.service.NearbyRestaurants(ctx)
	if err != nil {
		reply.Error(ctx, w, toFailure(err))
		return
	}

	reply.JSON(ctx, w, http.StatusOK, toRestRestaurants(restaurants))
}

func (s *DealServer) handlerSignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var request rest.SessionRequest
	if err := req.Read(r, &request); err != nil {
		reply.Error(ctx, w, err)
		return
	}

	s.session.SignIn(request.UserID, request.AccessToken)

	reply.OK(w)
}

func (s *DealServer) handlerSignOut(w http.ResponseWriter, _ *http.Request) {
	s.session.SignOut()

	reply.OK(w)
}

func (s *DealServer) handlerSetLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var request rest.LocationRequest
	if err := req.Read(r, &request); err != nil {
		reply.Error(ctx, w, err)
		return
	}

	coords, err := value.NewCoordinates(request.Lat, request.Lng)
	if err != nil {
		reply.Error(ctx, w, toFailure(err))
		return
	}

	s.location.Set(coords)

	reply.OK(w)
}
