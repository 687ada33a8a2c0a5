package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"

	"imhungri/internal/domain"
	"imhungri/internal/domain/entity"
	"imhungri/internal/domain/value"
	"imhungri/internal/server"
	"imhungri/internal/store"
	"imhungri/pkg/errcodes"
	"imhungri/pkg/rest"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

type fakeService struct {
	deals     []entity.Deal
	voteCalls []value.VoteKind
	reported  map[string]bool
	feedErr   error
}

func newFakeService(deals ...entity.Deal) *fakeService {
	return &fakeService{deals: deals, reported: make(map[string]bool)}
}

func (s *fakeService) Feed(context.Context) ([]entity.Deal, error) {
	if s.feedErr != nil {
		return nil, s.feedErr
	}

	return s.deals, nil
}

func (s *fakeService) Deal(_ context.Context, dealID string) (entity.Deal, error) {
	for _, d := range s.deals {
		if d.ID == dealID {
			return d, nil
		}
	}

	return entity.Deal{}, domain.NewError(errcodes.DealNotFound, "deal not found")
}

func (s *fakeService) Vote(_ context.Context, dealID string, kind value.VoteKind) (entity.Deal, error) {
	s.voteCalls = append(s.voteCalls, kind)

	for _, d := range s.deals {
		if d.ID == dealID {
			return d.WithVoteState(d.VoteState().Apply(kind)), nil
		}
	}

	return entity.Deal{}, domain.NewError(errcodes.DealNotFound, "deal not found")
}

func (s *fakeService) Submit(_ context.Context, deal entity.Deal) (entity.Deal, error) {
	deal.ID = "created"
	return deal, nil
}

func (s *fakeService) Report(_ context.Context, dealID, _ string) error {
	if s.reported[dealID] {
		return domain.NewError(errcodes.AlreadyReported, "deal already reported by this user")
	}

	s.reported[dealID] = true

	return nil
}

func (s *fakeService) Profile(_ context.Context, profileID string) (entity.Profile, error) {
	return entity.Profile{ID: profileID, DisplayName: "someone"}, nil
}

func (s *fakeService) UpdateProfile(context.Context, entity.Profile) error { return nil }
func (s *fakeService) BlockUser(context.Context, string) error             { return nil }

func (s *fakeService) NearbyRestaurants(context.Context) ([]entity.Restaurant, error) {
	return nil, nil
}

func newTestRouter(svc *fakeService) http.Handler {
	return server.NewRouter(
		server.NewDealServer(svc, store.NewSession(), store.NewLocation()),
		2048,
	)
}

func TestHandlerFeed(t *testing.T) {
	rq := require.New(t)

	router := newTestRouter(newFakeService(entity.Deal{ID: "d1", Title: "Tacos", Votes: 10, Upvoted: true}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/deals/", nil))

	rq.Equal(http.StatusOK, rec.Code)

	var deals []rest.Deal
	rq.NoError(json.Unmarshal(rec.Body.Bytes(), &deals))
	rq.Len(deals, 1)
	rq.Equal("d1", deals[0].ID)
	rq.Equal(10, deals[0].Votes)
	rq.True(deals[0].IsUpvoted)
}

func TestHandlerFeedUnauthorized(t *testing.T) {
	rq := require.New(t)

	svc := newFakeService()
	svc.feedErr = domain.NewError(errcodes.NotAuthenticated, "sign in required")

	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/deals/", nil))

	rq.Equal(http.StatusUnauthorized, rec.Code)
	rq.Contains(rec.Body.String(), errcodes.NotAuthenticated.String())
}

func TestHandlerVote(t *testing.T) {
	rq := require.New(t)

	svc := newFakeService(entity.Deal{ID: "d1", Votes: 10})
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(
		http.MethodPost, "/v1/deals/d1/vote", strings.NewReader(`{"kind":"upvote"}`)))

	rq.Equal(http.StatusOK, rec.Code)
	rq.Equal([]value.VoteKind{value.VoteKindUpvote}, svc.voteCalls)

	var deal rest.Deal
	rq.NoError(json.Unmarshal(rec.Body.Bytes(), &deal))
	rq.Equal(11, deal.Votes)
	rq.True(deal.IsUpvoted)
}

func TestHandlerVoteRejectsUnknownKind(t *testing.T) {
	rq := require.New(t)

	router := newTestRouter(newFakeService(entity.Deal{ID: "d1"}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(
		http.MethodPost, "/v1/deals/d1/vote", strings.NewReader(`{"kind":"sideways"}`)))

	rq.Equal(http.StatusBadRequest, rec.Code)
}

func TestHandlerVoteUnknownDeal(t *testing.T) {
	rq := require.New(t)

	router := newTestRouter(newFakeService())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(
		http.MethodPost, "/v1/deals/ghost/vote", strings.NewReader(`{"kind":"upvote"}`)))

	rq.Equal(http.StatusNotFound, rec.Code)
	rq.Contains(rec.Body.String(), errcodes.DealNotFound.String())
}

func TestHandlerFavorite(t *testing.T) {
	rq := require.New(t)

	svc := newFakeService(entity.Deal{ID: "d1", Votes: 10})

	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(
		http.MethodPost, "/v1/deals/d1/favorite", nil))

	rq.Equal(http.StatusOK, rec.Code)
	rq.Equal([]value.VoteKind{value.VoteKindFavorite}, svc.voteCalls)

	var deal rest.Deal
	rq.NoError(json.Unmarshal(rec.Body.Bytes(), &deal))
	rq.True(deal.IsFavorited)
	rq.Equal(10, deal.Votes)
}

func TestHandlerReportConflict(t *testing.T) {
	rq := require.New(t)

	svc := newFakeService(entity.Deal{ID: "d1"})
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(
		http.MethodPost, "/v1/deals/d1/report", strings.NewReader(`{"reason":"spam listing"}`)))
	rq.Equal(http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(
		http.MethodPost, "/v1/deals/d1/report", strings.NewReader(`{"reason":"spam again"}`)))
	rq.Equal(http.StatusConflict, rec.Code)
}

func TestHandlerSubmitValidation(t *testing.T) {
	rq := require.New(t)

	router := newTestRouter(newFakeService())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(
		http.MethodPost, "/v1/deals/", strings.NewReader(`{"title":"ab"}`)))

	rq.Equal(http.StatusBadRequest, rec.Code)
	rq.Contains(rec.Body.String(), errcodes.ValidationError.String())
}

func TestHandlerSessionAndLocation(t *testing.T) {
	rq := require.New(t)

	session := store.NewSession()
	location := store.NewLocation()
	router := server.NewRouter(server.NewDealServer(newFakeService(), session, location), 2048)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(
		http.MethodPut, "/v1/session", strings.NewReader(`{"userId":"u1","accessToken":"t1"}`)))
	rq.Equal(http.StatusOK, rec.Code)

	userID, ok := session.UserID()
	rq.True(ok)
	rq.Equal("u1", userID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(
		http.MethodPut, "/v1/location", strings.NewReader(`{"lat":40.71,"lng":-74.0}`)))
	rq.Equal(http.StatusOK, rec.Code)

	coords, known := location.Get()
	rq.True(known)
	rq.InDelta(40.71, coords.Lat, 0.001)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/session", nil))
	rq.Equal(http.StatusOK, rec.Code)

	_, ok = session.UserID()
	rq.False(ok)
}
