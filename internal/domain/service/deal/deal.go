package service

import (
	"context"
	"log/slog"
	"strings"

	"imhungri/pkg/contextx"
	"imhungri/pkg/errcodes"
	"imhungri/pkg/logx"

	"imhungri/internal/config"
	"imhungri/internal/domain"
	"imhungri/internal/domain/entity"
	"imhungri/internal/domain/value"
	"imhungri/internal/optimistic"
	"imhungri/internal/querycache"
	"imhungri/internal/store"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const (
	feedPageSize      = 50
	nearbyLimit       = 20
	dealImageWidth    = 1080
	maxTitleLen       = 120
	maxDescriptionLen = 2000
)

type DealRepository interface {
	Feed(ctx context.Context, viewerID string, limit, offset int) ([]entity.Deal, error)
	GetByID(ctx context.Context, viewerID, dealID string) (entity.Deal, error)
	Create(ctx context.Context, authorID string, deal entity.Deal) (entity.Deal, error)
	SetVote(ctx context.Context, viewerID, dealID string, up bool) error
	ClearVote(ctx context.Context, viewerID, dealID string) error
	SetFavorite(ctx context.Context, viewerID, dealID string, favorited bool) error
	InsertReport(ctx context.Context, report entity.Report) error
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (entity.Profile, error)
	Update(ctx context.Context, profile entity.Profile) error
	Block(ctx context.Context, userID, blockedID string) error
}

type RestaurantRepository interface {
	ListNearby(ctx context.Context, at value.Coordinates, limit int) ([]entity.Restaurant, error)
}

type FunctionsClient interface {
	ResizeImage(ctx context.Context, imageURL string, width int) (string, error)
	EscalateReport(ctx context.Context, dealID, reason string) error
}

// DealService is the app-side API: every read goes through the query cache,
// every vote toggle through the optimistic mutator.
type DealService struct {
	dealRepo       DealRepository
	profileRepo    ProfileRepository
	restaurantRepo RestaurantRepository
	functions      FunctionsClient

	cache    *querycache.Cache
	policies config.Cache
	mutator  *optimistic.Mutator

	session      *store.Session
	location     *store.Location
	profileHints *store.ProfileHints
}

func NewDealService(
	dealRepo DealRepository,
	profileRepo ProfileRepository,
	restaurantRepo RestaurantRepository,
	functions FunctionsClient,
	cache *querycache.Cache,
	policies config.Cache,
	mutator *optimistic.Mutator,
	pending *store.PendingUpdates,
	session *store.Session,
	location *store.Location,
	profileHints *store.ProfileHints,
) *DealService {
	// Settled outcomes, including reverts, are mirrored into the pending
	// buffer so screens consuming patches on focus converge on what actually
	// persisted rather than an optimistic state that may later be rejected.
	mutator.OnSettle(func(dealID string, d entity.Deal) {
		pending.Publish(dealID, entity.VotePatch(d))
	})

	return &DealService{
		dealRepo:       dealRepo,
		profileRepo:    profileRepo,
		restaurantRepo: restaurantRepo,
		functions:      functions,
		cache:          cache,
		policies:       policies,
		mutator:        mutator,
		session:        session,
		location:       location,
		profileHints:   profileHints,
	}
}

// Feed returns the deal feed, serving cached data within the stale window.
func (s *DealService) Feed(ctx context.Context) ([]entity.Deal, error) {
	viewerID, err := s.session.RequireUserID()
	if err != nil {
		return nil, err
	}

	return querycache.Fetch(ctx, s.cache, querycache.KeyFeed, s.policies.FeedPolicy(),
		func(ctx context.Context) ([]entity.Deal, error) {
			return s.dealRepo.Feed(ctx, viewerID, feedPageSize, 0)
		})
}

func (s *DealService) Deal(ctx context.Context, dealID string) (entity.Deal, error) {
	viewerID, err := s.session.RequireUserID()
	if err != nil {
		return entity.Deal{}, err
	}

	return querycache.Fetch(ctx, s.cache, querycache.KeyDeal(dealID), s.policies.DealPolicy(),
		func(ctx context.Context) (entity.Deal, error) {
			return s.dealRepo.GetByID(ctx, viewerID, dealID)
		})
}

func (s *DealService) Profile(ctx context.Context, profileID string) (entity.Profile, error) {
	profile, err := querycache.Fetch(ctx, s.cache, querycache.KeyProfile(profileID), s.policies.ProfilePolicy(),
		func(ctx context.Context) (entity.Profile, error) {
			return s.profileRepo.GetByID(ctx, profileID)
		})
	if err != nil {
		return entity.Profile{}, err
	}

	s.profileHints.Put(profile)

	return profile, nil
}

// ProfileHint returns the last cached profile without any fetch, for
// rendering a placeholder while Profile loads.
func (s *DealService) ProfileHint(profileID string) (entity.Profile, bool) {
	return s.profileHints.Get(profileID)
}

// NearbyRestaurants lists restaurants around the last known device location.
func (s *DealService) NearbyRestaurants(ctx context.Context) ([]entity.Restaurant, error) {
	at, known := s.location.Get()
	if !known {
		return nil, domain.NewError(errcodes.InvalidCoordinates, "device location unknown")
	}

	return querycache.Fetch(ctx, s.cache, querycache.KeyRestaurants(at.Lat, at.Lng), s.policies.PlacesPolicy(),
		func(ctx context.Context) ([]entity.Restaurant, error) {
			return s.restaurantRepo.ListNearby(ctx, at, nearbyLimit)
		})
}

// Vote applies one toggle to every cached copy of the deal and persists it in
// the background. The returned deal is the optimistic next state.
func (s *DealService) Vote(ctx context.Context, dealID string, kind value.VoteKind) (entity.Deal, error) {
	viewerID, err := s.session.RequireUserID()
	if err != nil {
		return entity.Deal{}, err
	}

	keys := []querycache.Key{querycache.KeyFeed, querycache.KeyDeal(dealID)}

	return s.mutator.Do(ctx, dealID, kind, keys,
		func(d entity.Deal) entity.Deal {
			return d.WithVoteState(d.VoteState().Apply(kind))
		},
		func(ctx context.Context) error {
			return s.persistVote(ctx, viewerID, dealID, kind)
		},
	)
}

// persistVote translates the optimistic next state into the repository call.
// The state is re-read from the cache rather than captured at tap time, so a
// rapid second tap persists the combined outcome.
func (s *DealService) persistVote(ctx context.Context, viewerID, dealID string, kind value.VoteKind) error {
	next, ok := s.cachedDeal(dealID)
	if !ok {
		return domain.NewError(errcodes.DealNotFound, "deal evicted before persist")
	}

	if kind == value.VoteKindFavorite {
		return s.dealRepo.SetFavorite(ctx, viewerID, dealID, next.Favorited)
	}

	switch {
	case next.Upvoted:
		return s.dealRepo.SetVote(ctx, viewerID, dealID, true)
	case next.Downvoted:
		return s.dealRepo.SetVote(ctx, viewerID, dealID, false)
	default:
		return s.dealRepo.ClearVote(ctx, viewerID, dealID)
	}
}

// cachedDeal finds the deal's current cached copy, preferring the detail
// entry over the feed.
func (s *DealService) cachedDeal(dealID string) (entity.Deal, bool) {
	if v, ok := s.cache.Peek(querycache.KeyDeal(dealID)); ok {
		if d, ok := v.(entity.Deal); ok && d.ID == dealID {
			return d, true
		}
	}

	if v, ok := s.cache.Peek(querycache.KeyFeed); ok {
		if deals, ok := v.([]entity.Deal); ok {
			for _, d := range deals {
				if d.ID == dealID {
					return d, true
				}
			}
		}
	}

	return entity.Deal{}, false
}

// Submit validates and creates a new deal, resizing its image first. The feed
// entry is evicted so the next read includes the new deal.
func (s *DealService) Submit(ctx context.Context, deal entity.Deal) (entity.Deal, error) {
	authorID, err := s.session.RequireUserID()
	if err != nil {
		return entity.Deal{}, err
	}

	if err := validateDeal(deal); err != nil {
		return entity.Deal{}, err
	}

	if deal.ImageURL != "" {
		resized, err := s.functions.ResizeImage(ctx, deal.ImageURL, dealImageWidth)
		if err != nil {
			// A missing rendition is cosmetic; keep the original URL.
			logger(ctx).Warn("image resize failed, keeping original",
				slog.String(logx.FieldDealID, deal.ID), logx.Error(err))
		} else {
			deal.ImageURL = resized
		}
	}

	created, err := s.dealRepo.Create(ctx, authorID, deal)
	if err != nil {
		return entity.Deal{}, err
	}

	s.cache.Remove(querycache.KeyFeed)

	return created, nil
}

// Report records the report and escalates it to moderation. Escalation
// failures are logged, not surfaced: the report row is already durable.
func (s *DealService) Report(ctx context.Context, dealID, reason string) error {
	reporterID, err := s.session.RequireUserID()
	if err != nil {
		return err
	}

	if strings.TrimSpace(reason) == "" {
		return domain.NewError(errcodes.InvalidReport, "report reason is required")
	}

	err = s.dealRepo.InsertReport(ctx, entity.Report{
		DealID:     dealID,
		ReporterID: reporterID,
		Reason:     reason,
	})
	if err != nil {
		return err
	}

	if err := s.functions.EscalateReport(ctx, dealID, reason); err != nil {
		logger(ctx).Warn("report escalation failed",
			slog.String(logx.FieldDealID, dealID), logx.Error(err))
	}

	return nil
}

// BlockUser hides the blocked user's content. The cached feed still holds
// their deals, so it is evicted for an immediate refetch.
func (s *DealService) BlockUser(ctx context.Context, blockedID string) error {
	userID, err := s.session.RequireUserID()
	if err != nil {
		return err
	}

	if err := s.profileRepo.Block(ctx, userID, blockedID); err != nil {
		return err
	}

	s.cache.Remove(querycache.KeyFeed)

	return nil
}

func (s *DealService) UpdateProfile(ctx context.Context, profile entity.Profile) error {
	userID, err := s.session.RequireUserID()
	if err != nil {
		return err
	}

	if profile.ID != userID {
		return domain.NewError(errcodes.Forbidden, "can only update own profile")
	}

	if strings.TrimSpace(profile.DisplayName) == "" {
		return domain.NewError(errcodes.ValidationError, "display name is required")
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return err
	}

	s.cache.Write(querycache.KeyProfile(profile.ID), s.policies.ProfilePolicy(), profile)
	s.profileHints.Put(profile)

	return nil
}

func validateDeal(deal entity.Deal) error {
	switch {
	case strings.TrimSpace(deal.Title) == "":
		return domain.NewError(errcodes.InvalidDeal, "title is required")
	case len(deal.Title) > maxTitleLen:
		return domain.NewError(errcodes.InvalidDeal, "title too long")
	case len(deal.Description) > maxDescriptionLen:
		return domain.NewError(errcodes.InvalidDeal, "description too long")
	case deal.RestaurantID == "":
		return domain.NewError(errcodes.InvalidDeal, "restaurant is required")
	default:
		return nil
	}
}
