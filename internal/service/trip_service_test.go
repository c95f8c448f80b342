package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/djakk/covoiturage-libre/internal/locale"
	"github.com/djakk/covoiturage-libre/internal/models"
	"github.com/djakk/covoiturage-libre/internal/validation"
)

func intp(v int) *int { return &v }
func floatp(v float64) *float64 { return &v }
func boolp(v bool) *bool { return &v }

// --- Mock TripRepository ---

type mockTripRepo struct {
	createFn      func(ctx context.Context, trip *models.Trip) error
	updateFn      func(ctx context.Context, trip *models.Trip) error
	updateStateFn func(ctx context.Context, tripID uint, state models.TripState) error
	findConfFn    func(ctx context.Context, tok string) (*models.Trip, error)
	findEditFn    func(ctx context.Context, tok string) (*models.Trip, error)
	findDelFn     func(ctx context.Context, tok string) (*models.Trip, error)
}

func (m *mockTripRepo) Create(ctx context.Context, trip *models.Trip) error {
	if m.createFn != nil {
		return m.createFn(ctx, trip)
	}
	trip.ID = 1
	trip.ConfirmationToken = "conf-token"
	trip.EditionToken = "edit-token"
	trip.DeletionToken = "del-token"
	return nil
}

func (m *mockTripRepo) Update(ctx context.Context, trip *models.Trip) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, trip)
	}
	return nil
}

func (m *mockTripRepo) UpdateState(ctx context.Context, tripID uint, state models.TripState) error {
	if m.updateStateFn != nil {
		return m.updateStateFn(ctx, tripID, state)
	}
	return nil
}

func (m *mockTripRepo) FindByConfirmationToken(ctx context.Context, tok string) (*models.Trip, error) {
	return m.findConfFn(ctx, tok)
}

func (m *mockTripRepo) FindByEditionToken(ctx context.Context, tok string) (*models.Trip, error) {
	return m.findEditFn(ctx, tok)
}

func (m *mockTripRepo) FindByDeletionToken(ctx context.Context, tok string) (*models.Trip, error) {
	return m.findDelFn(ctx, tok)
}

// --- Mock Dispatcher ---

type mockDispatcher struct {
	confirmations []*models.Trip
	informations  []*models.Trip
}

func (m *mockDispatcher) SendConfirmation(trip *models.Trip) {
	m.confirmations = append(m.confirmations, trip)
}

func (m *mockDispatcher) SendInformation(trip *models.Trip) {
	m.informations = append(m.informations, trip)
}

// --- Fixtures ---

func frDateText(d time.Time) string {
	return fmt.Sprintf("dimanche %d %s %d", d.Day(), locale.MonthNames[int(d.Month())-1], d.Year())
}

func point(kind models.PointKind, rank int, city, at string) models.Point {
	return models.Point{
		Kind:              kind,
		Rank:              rank,
		City:              city,
		Lat:               floatp(48.85),
		Lon:               floatp(2.35),
		Price:             intp(12),
		Seats:             intp(2),
		DepartureDateText: frDateText(time.Now().AddDate(0, 0, 15)),
		DepartureTime:     at,
	}
}

func draftTrip() *models.Trip {
	return &models.Trip{
		Title:          "Paris → Rennes",
		Name:           "Marc",
		Email:          "marc@example.com",
		Comfort:        models.ComfortComfort,
		Smoking:        boolp(false),
		TermsOfService: true,
		Points: []models.Point{
			point(models.KindTo, models.StepsMaxRank, "Rennes", "12:00"),
			point(models.KindFrom, 0, "Paris", "08:00"),
			point(models.KindStep, 1, "Le Mans", "10:00"),
		},
	}
}

func storedTrip(state models.TripState) *models.Trip {
	trip := draftTrip()
	trip.ID = 7
	trip.State = state
	trip.ConfirmationToken = "conf-token"
	trip.EditionToken = "edit-token"
	trip.DeletionToken = "del-token"
	for i := range trip.Points {
		trip.Points[i].Normalize()
	}
	trip.SortPoints()
	return trip
}

func newService(repo *mockTripRepo, dispatcher *mockDispatcher) TripService {
	return NewTripService(repo, dispatcher, nil, zap.NewNop())
}

// --- Tests ---

func TestCreate_Success(t *testing.T) {
	repo := &mockTripRepo{}
	dispatcher := &mockDispatcher{}
	svc := newService(repo, dispatcher)

	trip, err := svc.Create(context.Background(), draftTrip())

	assert.NoError(t, err)
	assert.Equal(t, models.StatePending, trip.State)
	assert.Equal(t, "conf-token", trip.ConfirmationToken)

	// points come out sorted by rank with the destination forced to max
	assert.Equal(t, "Paris", trip.Points[0].City)
	assert.Equal(t, "Le Mans", trip.Points[1].City)
	assert.Equal(t, "Rennes", trip.Points[2].City)
	assert.Equal(t, models.StepsMaxRank, trip.Points[2].Rank)

	// confirmation notification dispatched exactly once
	assert.Len(t, dispatcher.confirmations, 1)
	assert.Empty(t, dispatcher.informations)
}

func TestCreate_ValidationFailure(t *testing.T) {
	created := false
	repo := &mockTripRepo{createFn: func(ctx context.Context, trip *models.Trip) error {
		created = true
		return nil
	}}
	dispatcher := &mockDispatcher{}
	svc := newService(repo, dispatcher)

	draft := draftTrip()
	draft.Points = draft.Points[1:2] // keep only the departure point
	draft.Title = ""

	_, err := svc.Create(context.Background(), draft)

	var verrs validation.Errors
	assert.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.On("title"), locale.MsgBlank)
	assert.Contains(t, verrs.On("base"), locale.MsgFromAndToRequired)

	// nothing saved, nothing dispatched
	assert.False(t, created)
	assert.Empty(t, dispatcher.confirmations)
}

func TestCreate_DropsBlankStepRows(t *testing.T) {
	repo := &mockTripRepo{}
	svc := newService(repo, &mockDispatcher{})

	draft := draftTrip()
	draft.Points = append(draft.Points, models.Point{Kind: models.KindStep, City: "  "})

	trip, err := svc.Create(context.Background(), draft)

	assert.NoError(t, err)
	assert.Len(t, trip.Points, 3)
}

func TestConfirm_Pending(t *testing.T) {
	var savedState models.TripState
	repo := &mockTripRepo{
		findConfFn: func(ctx context.Context, tok string) (*models.Trip, error) {
			assert.Equal(t, "conf-token", tok)
			return storedTrip(models.StatePending), nil
		},
		updateStateFn: func(ctx context.Context, tripID uint, state models.TripState) error {
			savedState = state
			return nil
		},
	}
	dispatcher := &mockDispatcher{}
	svc := newService(repo, dispatcher)

	trip, err := svc.Confirm(context.Background(), "conf-token")

	assert.NoError(t, err)
	assert.Equal(t, models.StateConfirmed, trip.State)
	assert.Equal(t, models.StateConfirmed, savedState)
	assert.Len(t, dispatcher.informations, 1)
}

func TestConfirm_AgainRedispatches(t *testing.T) {
	repo := &mockTripRepo{
		findConfFn: func(ctx context.Context, tok string) (*models.Trip, error) {
			return storedTrip(models.StateConfirmed), nil
		},
	}
	dispatcher := &mockDispatcher{}
	svc := newService(repo, dispatcher)

	trip, err := svc.Confirm(context.Background(), "conf-token")

	assert.NoError(t, err)
	assert.Equal(t, models.StateConfirmed, trip.State)
	assert.Len(t, dispatcher.informations, 1)
}

func TestConfirm_DeletedIsTerminal(t *testing.T) {
	repo := &mockTripRepo{
		findConfFn: func(ctx context.Context, tok string) (*models.Trip, error) {
			return storedTrip(models.StateDeleted), nil
		},
	}
	dispatcher := &mockDispatcher{}
	svc := newService(repo, dispatcher)

	_, err := svc.Confirm(context.Background(), "conf-token")

	assert.ErrorIs(t, err, ErrTripDeleted)
	assert.Empty(t, dispatcher.informations)
}

func TestConfirm_NotFound(t *testing.T) {
	repo := &mockTripRepo{
		findConfFn: func(ctx context.Context, tok string) (*models.Trip, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := newService(repo, &mockDispatcher{})

	_, err := svc.Confirm(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrTripNotFound)
}

func TestSoftDelete_Idempotent(t *testing.T) {
	for _, state := range []models.TripState{models.StatePending, models.StateConfirmed, models.StateDeleted} {
		repo := &mockTripRepo{
			findDelFn: func(ctx context.Context, tok string) (*models.Trip, error) {
				return storedTrip(state), nil
			},
		}
		dispatcher := &mockDispatcher{}
		svc := newService(repo, dispatcher)

		trip, err := svc.SoftDelete(context.Background(), "del-token")

		assert.NoError(t, err, string(state))
		assert.Equal(t, models.StateDeleted, trip.State)
		assert.Empty(t, dispatcher.confirmations)
		assert.Empty(t, dispatcher.informations)
	}
}

func TestUpdate_CarriesIdentityAndState(t *testing.T) {
	var saved *models.Trip
	repo := &mockTripRepo{
		findEditFn: func(ctx context.Context, tok string) (*models.Trip, error) {
			assert.Equal(t, "edit-token", tok)
			return storedTrip(models.StateConfirmed), nil
		},
		updateFn: func(ctx context.Context, trip *models.Trip) error {
			saved = trip
			return nil
		},
	}
	svc := newService(repo, &mockDispatcher{})

	incoming := draftTrip()
	incoming.Title = "Paris → Rennes (direct)"
	trip, err := svc.Update(context.Background(), "edit-token", incoming)

	assert.NoError(t, err)
	assert.NotNil(t, saved)
	assert.Equal(t, uint(7), trip.ID)
	assert.Equal(t, models.StateConfirmed, trip.State)
	assert.Equal(t, "conf-token", trip.ConfirmationToken)
	assert.Equal(t, "Paris → Rennes (direct)", trip.Title)
}

func TestUpdate_DeletedRefused(t *testing.T) {
	repo := &mockTripRepo{
		findEditFn: func(ctx context.Context, tok string) (*models.Trip, error) {
			return storedTrip(models.StateDeleted), nil
		},
	}
	svc := newService(repo, &mockDispatcher{})

	_, err := svc.Update(context.Background(), "edit-token", draftTrip())

	assert.ErrorIs(t, err, ErrTripDeleted)
}

func TestSegmentQuote(t *testing.T) {
	stored := storedTrip(models.StateConfirmed)
	stored.Points[1].Price = intp(10)
	stored.Points[1].Seats = intp(3)
	stored.Points[2].Price = intp(15)
	stored.Points[2].Seats = intp(2)
	repo := &mockTripRepo{
		findConfFn: func(ctx context.Context, tok string) (*models.Trip, error) {
			return stored, nil
		},
	}
	svc := newService(repo, &mockDispatcher{})

	price, seats, err := svc.SegmentQuote(context.Background(), "conf-token", 0, 2)

	assert.NoError(t, err)
	assert.Equal(t, 25, price)
	assert.Equal(t, 2, seats)
}

func TestSegmentQuote_UnpricedEndpoints(t *testing.T) {
	// From and To without a price are valid; quotes over them must not fault
	stored := storedTrip(models.StateConfirmed)
	stored.Points[0].Price = nil
	stored.Points[2].Price = nil
	repo := &mockTripRepo{
		findConfFn: func(ctx context.Context, tok string) (*models.Trip, error) {
			return stored, nil
		},
	}
	svc := newService(repo, &mockDispatcher{})

	price, seats, err := svc.SegmentQuote(context.Background(), "conf-token", 0, 0)
	assert.NoError(t, err)
	assert.Equal(t, 0, price)
	assert.Equal(t, 2, seats)

	price, seats, err = svc.SegmentQuote(context.Background(), "conf-token", 0, 2)
	assert.NoError(t, err)
	assert.Equal(t, 12, price)
	assert.Equal(t, 2, seats)
}

func TestSegmentQuote_OutOfRange(t *testing.T) {
	repo := &mockTripRepo{
		findConfFn: func(ctx context.Context, tok string) (*models.Trip, error) {
			return storedTrip(models.StateConfirmed), nil
		},
	}
	svc := newService(repo, &mockDispatcher{})

	_, _, err := svc.SegmentQuote(context.Background(), "conf-token", 2, 1)

	assert.ErrorIs(t, err, models.ErrPointIndex)
}

func TestDuplicate_Unsaved(t *testing.T) {
	repo := &mockTripRepo{
		findConfFn: func(ctx context.Context, tok string) (*models.Trip, error) {
			return storedTrip(models.StateConfirmed), nil
		},
	}
	svc := newService(repo, &mockDispatcher{})

	dup, err := svc.Duplicate(context.Background(), "conf-token")

	assert.NoError(t, err)
	assert.Zero(t, dup.ID)
	assert.Empty(t, dup.ConfirmationToken)
	assert.Equal(t, models.StatePending, dup.State)
	assert.Len(t, dup.Points, 3)
}

func TestReverseAsReturnTrip_Service(t *testing.T) {
	repo := &mockTripRepo{
		findConfFn: func(ctx context.Context, tok string) (*models.Trip, error) {
			return storedTrip(models.StateConfirmed), nil
		},
	}
	svc := newService(repo, &mockDispatcher{})

	back, err := svc.ReverseAsReturnTrip(context.Background(), "conf-token")

	assert.NoError(t, err)
	assert.Equal(t, "Rennes", back.Points[0].City)
	assert.Equal(t, models.KindFrom, back.Points[0].Kind)
	assert.Equal(t, "Paris", back.Points[2].City)
	assert.Equal(t, models.KindTo, back.Points[2].Kind)
	assert.Equal(t, models.StepsMaxRank, back.Points[2].Rank)
}

func TestMinimumPrice_WithoutCache(t *testing.T) {
	svc := newService(&mockTripRepo{}, &mockDispatcher{})

	trip := storedTrip(models.StateConfirmed)
	trip.Points[1].Price = intp(10)
	trip.Points[2].Price = intp(5)
	assert.Equal(t, 5, svc.MinimumPrice(context.Background(), trip))

	empty := &models.Trip{ConfirmationToken: "x"}
	assert.Equal(t, 0, svc.MinimumPrice(context.Background(), empty))
}
