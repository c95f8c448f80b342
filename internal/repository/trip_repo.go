package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/djakk/covoiturage-libre/internal/models"
	"github.com/djakk/covoiturage-libre/pkg/token"
)

// tokenAttempts bounds the retry loop on token collisions. A collision is
// astronomically unlikely but still handled, not assumed away.
const tokenAttempts = 5

type TripRepository interface {
	Create(ctx context.Context, trip *models.Trip) error
	Update(ctx context.Context, trip *models.Trip) error
	UpdateState(ctx context.Context, tripID uint, state models.TripState) error
	FindByConfirmationToken(ctx context.Context, tok string) (*models.Trip, error)
	FindByEditionToken(ctx context.Context, tok string) (*models.Trip, error)
	FindByDeletionToken(ctx context.Context, tok string) (*models.Trip, error)
}

type tripRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewTripRepository(db *gorm.DB, logger *zap.Logger) TripRepository {
	return &tripRepository{db: db, logger: logger}
}

// Create persists the trip and its points in one transaction. The three
// capability tokens are generated here, retrying with fresh tokens when the
// unique indexes report a collision.
func (r *tripRepository) Create(ctx context.Context, trip *models.Trip) error {
	var lastErr error
	for attempt := 1; attempt <= tokenAttempts; attempt++ {
		if err := assignTokens(trip); err != nil {
			return err
		}
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Create(trip).Error
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		lastErr = err
		resetIdentity(trip)
		r.logger.Warn("token collision on trip create, regenerating",
			zap.Int("attempt", attempt))
	}
	return fmt.Errorf("trip create: token collision after %d attempts: %w", tokenAttempts, lastErr)
}

func assignTokens(trip *models.Trip) error {
	for _, dst := range []*string{&trip.ConfirmationToken, &trip.EditionToken, &trip.DeletionToken} {
		if *dst != "" {
			continue
		}
		tok, err := token.New()
		if err != nil {
			return err
		}
		*dst = tok
	}
	return nil
}

func resetIdentity(trip *models.Trip) {
	trip.ID = 0
	trip.ConfirmationToken = ""
	trip.EditionToken = ""
	trip.DeletionToken = ""
	for i := range trip.Points {
		trip.Points[i].ID = 0
		trip.Points[i].TripID = 0
	}
}

// Update rewrites the trip's metadata and replaces its whole point collection
// inside one transaction, so no reader ever observes a half-applied
// itinerary.
func (r *tripRepository) Update(ctx context.Context, trip *models.Trip) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"title":       trip.Title,
			"name":        trip.Name,
			"email":       trip.Email,
			"phone":       trip.Phone,
			"description": trip.Description,
			"comfort":     trip.Comfort,
			"smoking":     trip.Smoking,
			"age":         trip.Age,
		}
		if err := tx.Model(&models.Trip{}).Where("id = ?", trip.ID).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("trip_id = ?", trip.ID).Delete(&models.Point{}).Error; err != nil {
			return err
		}
		for i := range trip.Points {
			trip.Points[i].ID = 0
			trip.Points[i].TripID = trip.ID
		}
		if len(trip.Points) == 0 {
			return nil
		}
		return tx.Create(&trip.Points).Error
	})
}

func (r *tripRepository) UpdateState(ctx context.Context, tripID uint, state models.TripState) error {
	return r.db.WithContext(ctx).
		Model(&models.Trip{}).
		Where("id = ?", tripID).
		Update("state", state).Error
}

func (r *tripRepository) FindByConfirmationToken(ctx context.Context, tok string) (*models.Trip, error) {
	return r.findBy(ctx, "confirmation_token", tok)
}

func (r *tripRepository) FindByEditionToken(ctx context.Context, tok string) (*models.Trip, error) {
	return r.findBy(ctx, "edition_token", tok)
}

func (r *tripRepository) FindByDeletionToken(ctx context.Context, tok string) (*models.Trip, error) {
	return r.findBy(ctx, "deletion_token", tok)
}

// findBy loads a trip with its points eager-loaded and pre-sorted by rank;
// every caller may rely on that ordering.
func (r *tripRepository) findBy(ctx context.Context, column, tok string) (*models.Trip, error) {
	var trip models.Trip
	err := r.db.WithContext(ctx).
		Preload("Points", func(db *gorm.DB) *gorm.DB {
			return db.Order("rank ASC, id ASC")
		}).
		Where(column+" = ?", tok).
		First(&trip).Error
	if err != nil {
		return nil, err
	}
	return &trip, nil
}
