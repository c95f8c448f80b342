package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/djakk/covoiturage-libre/internal/models"
	"github.com/djakk/covoiturage-libre/internal/notifier"
	"github.com/djakk/covoiturage-libre/internal/repository"
	"github.com/djakk/covoiturage-libre/internal/validation"
	"github.com/djakk/covoiturage-libre/pkg/cache"
)

var (
	ErrTripNotFound = errors.New("trip not found")
	ErrTripDeleted  = errors.New("trip is deleted")
)

const minPriceTTL = 10 * time.Minute

func minPriceKey(confirmationToken string) string {
	return "trip:minprice:" + confirmationToken
}

type TripService interface {
	Create(ctx context.Context, trip *models.Trip) (*models.Trip, error)
	Update(ctx context.Context, editionToken string, trip *models.Trip) (*models.Trip, error)
	Confirm(ctx context.Context, confirmationToken string) (*models.Trip, error)
	SoftDelete(ctx context.Context, deletionToken string) (*models.Trip, error)
	GetByConfirmationToken(ctx context.Context, confirmationToken string) (*models.Trip, error)
	GetByEditionToken(ctx context.Context, editionToken string) (*models.Trip, error)
	SegmentQuote(ctx context.Context, confirmationToken string, start, end int) (price, seats int, err error)
	Duplicate(ctx context.Context, confirmationToken string) (*models.Trip, error)
	ReverseAsReturnTrip(ctx context.Context, confirmationToken string) (*models.Trip, error)
	MinimumPrice(ctx context.Context, trip *models.Trip) int
}

type tripService struct {
	repo       repository.TripRepository
	dispatcher notifier.Dispatcher
	cache      *cache.Redis // nil runs without caching
	logger     *zap.Logger
}

func NewTripService(repo repository.TripRepository, dispatcher notifier.Dispatcher, c *cache.Redis, logger *zap.Logger) TripService {
	return &tripService{repo: repo, dispatcher: dispatcher, cache: c, logger: logger}
}

// prepare runs the shared pre-validation pipeline: drop empty step rows, trim
// contact fields, force ranks and resolve dates, then collect every rule
// failure at once.
func prepare(trip *models.Trip) validation.Errors {
	trip.Points = models.RejectBlankStepPoints(trip.Points)
	trip.StripWhitespace()
	if trip.State == "" {
		trip.State = models.StatePending
	}
	for i := range trip.Points {
		trip.Points[i].Normalize()
	}
	return validation.ValidateTrip(trip)
}

// Create validates and persists a new trip with its points, then dispatches
// the confirmation notification exactly once. On rule failures the returned
// error is the full validation.Errors collection and nothing is saved.
func (s *tripService) Create(ctx context.Context, trip *models.Trip) (*models.Trip, error) {
	if errs := prepare(trip); errs.Any() {
		return nil, errs
	}
	trip.SortPoints()

	if err := s.repo.Create(ctx, trip); err != nil {
		return nil, fmt.Errorf("create trip: %w", err)
	}

	s.dispatcher.SendConfirmation(trip)
	s.logger.Info("trip created",
		zap.String("confirmation_token", trip.ConfirmationToken),
		zap.Int("points", len(trip.Points)))
	return trip, nil
}

// Update replaces the trip addressed by its edition token. Identity, state
// and tokens are carried over from the stored trip; the itinerary swap is
// atomic, a failed validation leaves the stored trip untouched.
func (s *tripService) Update(ctx context.Context, editionToken string, trip *models.Trip) (*models.Trip, error) {
	existing, err := s.find(func() (*models.Trip, error) {
		return s.repo.FindByEditionToken(ctx, editionToken)
	})
	if err != nil {
		return nil, err
	}
	if existing.Deleted() {
		return nil, ErrTripDeleted
	}

	trip.ID = existing.ID
	trip.State = existing.State
	trip.ConfirmationToken = existing.ConfirmationToken
	trip.EditionToken = existing.EditionToken
	trip.DeletionToken = existing.DeletionToken
	trip.TermsOfService = true // accepted at creation

	if errs := prepare(trip); errs.Any() {
		return nil, errs
	}
	trip.SortPoints()

	if err := s.repo.Update(ctx, trip); err != nil {
		return nil, fmt.Errorf("update trip: %w", err)
	}
	s.invalidateMinPrice(ctx, trip.ConfirmationToken)
	return trip, nil
}

// Confirm transitions pending → confirmed and dispatches the information
// notification. Confirming an already confirmed trip keeps the state and
// re-dispatches; a deleted trip admits no transition.
func (s *tripService) Confirm(ctx context.Context, confirmationToken string) (*models.Trip, error) {
	trip, err := s.find(func() (*models.Trip, error) {
		return s.repo.FindByConfirmationToken(ctx, confirmationToken)
	})
	if err != nil {
		return nil, err
	}
	if trip.Deleted() {
		return nil, ErrTripDeleted
	}

	if err := s.repo.UpdateState(ctx, trip.ID, models.StateConfirmed); err != nil {
		return nil, fmt.Errorf("confirm trip: %w", err)
	}
	trip.State = models.StateConfirmed

	s.dispatcher.SendInformation(trip)
	s.logger.Info("trip confirmed", zap.String("confirmation_token", trip.ConfirmationToken))
	return trip, nil
}

// SoftDelete transitions the trip addressed by its deletion token to deleted,
// from any state. The record is retained; calling it again is a no-op.
func (s *tripService) SoftDelete(ctx context.Context, deletionToken string) (*models.Trip, error) {
	trip, err := s.find(func() (*models.Trip, error) {
		return s.repo.FindByDeletionToken(ctx, deletionToken)
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateState(ctx, trip.ID, models.StateDeleted); err != nil {
		return nil, fmt.Errorf("delete trip: %w", err)
	}
	trip.State = models.StateDeleted

	s.invalidateMinPrice(ctx, trip.ConfirmationToken)
	s.logger.Info("trip deleted", zap.String("confirmation_token", trip.ConfirmationToken))
	return trip, nil
}

func (s *tripService) GetByConfirmationToken(ctx context.Context, confirmationToken string) (*models.Trip, error) {
	return s.find(func() (*models.Trip, error) {
		return s.repo.FindByConfirmationToken(ctx, confirmationToken)
	})
}

func (s *tripService) GetByEditionToken(ctx context.Context, editionToken string) (*models.Trip, error) {
	return s.find(func() (*models.Trip, error) {
		return s.repo.FindByEditionToken(ctx, editionToken)
	})
}

// SegmentQuote computes price and seat availability between two point
// positions of the stored itinerary. An out-of-range pair surfaces
// models.ErrPointIndex, distinct from any user-input validation error.
func (s *tripService) SegmentQuote(ctx context.Context, confirmationToken string, start, end int) (int, int, error) {
	trip, err := s.find(func() (*models.Trip, error) {
		return s.repo.FindByConfirmationToken(ctx, confirmationToken)
	})
	if err != nil {
		return 0, 0, err
	}
	price, err := trip.PriceBetween(start, end)
	if err != nil {
		return 0, 0, err
	}
	seats, err := trip.SeatsBetween(start, end)
	if err != nil {
		return 0, 0, err
	}
	return price, seats, nil
}

// Duplicate returns an unsaved copy of the stored trip, ready to prefill a
// new trip form; saving it goes through Create and a fresh lifecycle.
func (s *tripService) Duplicate(ctx context.Context, confirmationToken string) (*models.Trip, error) {
	trip, err := s.find(func() (*models.Trip, error) {
		return s.repo.FindByConfirmationToken(ctx, confirmationToken)
	})
	if err != nil {
		return nil, err
	}
	return trip.Duplicate(), nil
}

// ReverseAsReturnTrip returns the unsaved return trip of the stored trip.
func (s *tripService) ReverseAsReturnTrip(ctx context.Context, confirmationToken string) (*models.Trip, error) {
	trip, err := s.find(func() (*models.Trip, error) {
		return s.repo.FindByConfirmationToken(ctx, confirmationToken)
	})
	if err != nil {
		return nil, err
	}
	return trip.ReverseAsReturnTrip(), nil
}

// MinimumPrice resolves the trip's lowest segment price, preferring the
// precomputed value, then the cache, then a scan of the loaded points. The
// result is folded to 0 when no point carries a price.
func (s *tripService) MinimumPrice(ctx context.Context, trip *models.Trip) int {
	if trip.MinimumPrice != nil {
		return trip.MinimumPriceOrZero()
	}

	key := minPriceKey(trip.ConfirmationToken)
	if s.cache != nil && trip.ConfirmationToken != "" {
		v, err := s.cache.GetInt(ctx, key)
		switch {
		case err == nil:
			trip.MinimumPrice = &v
			return v
		case !errors.Is(err, cache.ErrMiss):
			s.logger.Debug("minimum price cache read failed", zap.Error(err))
		}
	}

	trip.MinimumPrice = trip.LowestSegmentPrice()
	v := trip.MinimumPriceOrZero()

	if s.cache != nil && trip.ConfirmationToken != "" {
		if err := s.cache.SetInt(ctx, key, v, minPriceTTL); err != nil {
			s.logger.Debug("minimum price cache write failed", zap.Error(err))
		}
	}
	return v
}

func (s *tripService) invalidateMinPrice(ctx context.Context, confirmationToken string) {
	if s.cache == nil || confirmationToken == "" {
		return
	}
	if err := s.cache.Del(ctx, minPriceKey(confirmationToken)); err != nil {
		s.logger.Debug("minimum price cache invalidation failed", zap.Error(err))
	}
}

// find maps the repository's not-found error to the service sentinel.
func (s *tripService) find(load func() (*models.Trip, error)) (*models.Trip, error) {
	trip, err := load()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	return trip, nil
}
