// Package notifier dispatches trip notifications to the mailer collaborator
// over the message broker. Dispatch is fire-and-forget: the caller never
// blocks on delivery, and a broker failure never affects a state transition.
package notifier

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/djakk/covoiturage-libre/internal/models"
)

const (
	RoutingKeyConfirmation = "trip.confirmation"
	RoutingKeyInformation  = "trip.information"
)

type Dispatcher interface {
	// SendConfirmation announces a freshly created trip; the mail built from
	// it carries the edit and delete capability links.
	SendConfirmation(trip *models.Trip)
	// SendInformation announces a confirmed trip going live.
	SendInformation(trip *models.Trip)
}

// Publisher is the broker surface the notifier needs; satisfied by
// rabbitmq.Publisher.
type Publisher interface {
	Publish(routingKey string, payload any) error
}

type tripMessage struct {
	MessageID         string `json:"message_id"`
	Title             string `json:"title"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	State             string `json:"state"`
	ConfirmationToken string `json:"confirmation_token"`
	EditionToken      string `json:"edition_token"`
	DeletionToken     string `json:"deletion_token"`
	SentAt            string `json:"sent_at"`
}

type TripNotifier struct {
	pub    Publisher
	logger *zap.Logger
}

func NewTripNotifier(pub Publisher, logger *zap.Logger) *TripNotifier {
	return &TripNotifier{pub: pub, logger: logger}
}

func (n *TripNotifier) SendConfirmation(trip *models.Trip) {
	n.dispatch(RoutingKeyConfirmation, trip)
}

func (n *TripNotifier) SendInformation(trip *models.Trip) {
	n.dispatch(RoutingKeyInformation, trip)
}

func (n *TripNotifier) dispatch(routingKey string, trip *models.Trip) {
	msg := tripMessage{
		MessageID:         uuid.NewString(),
		Title:             trip.Title,
		Name:              trip.Name,
		Email:             trip.Email,
		State:             string(trip.State),
		ConfirmationToken: trip.ConfirmationToken,
		EditionToken:      trip.EditionToken,
		DeletionToken:     trip.DeletionToken,
		SentAt:            time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		if err := n.pub.Publish(routingKey, msg); err != nil {
			n.logger.Warn("notification dispatch failed",
				zap.String("routing_key", routingKey),
				zap.String("message_id", msg.MessageID),
				zap.Error(err))
		}
	}()
}
