package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/casaguide/concierge/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// NopBus satisfies EventBus without a broker; used in tests and when
// NATS_URL is intentionally unset in local development.
type NopBus struct{}

func (NopBus) Publish(context.Context, string, interface{}) error         { return nil }
func (NopBus) Subscribe(string, func(msg *Message)) error                 { return nil }
func (NopBus) QueueSubscribe(string, string, func(msg *Message)) error    { return nil }
func (NopBus) Close() error                                               { return nil }

// Subjects
const (
	ReservationCreated     = "reservation.created"
	ReservationUpdated     = "reservation.updated"
	ReservationDeleted     = "reservation.deleted"
	ReservationDeactivated = "reservation.deactivated"
	ReservationReactivated = "reservation.reactivated"
	AccessRevealed         = "access.revealed"
	FeedbackSubmitted      = "feedback.submitted"
)

// Event payloads
type ReservationCreatedEvent struct {
	ReservationID int64     `json:"reservation_id"`
	PropertyID    string    `json:"property_id"`
	GuestName     string    `json:"guest_name"`
	CheckInDate   string    `json:"check_in_date"`
	CheckoutDate  string    `json:"checkout_date"`
	CreatedAt     time.Time `json:"created_at"`
}

type ReservationUpdatedEvent struct {
	ReservationID int64     `json:"reservation_id"`
	Changes       []string  `json:"changes"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ReservationDeletedEvent struct {
	ReservationID int64     `json:"reservation_id"`
	DeletedAt     time.Time `json:"deleted_at"`
}

type ReservationDeactivatedEvent struct {
	ReservationID int64     `json:"reservation_id"`
	Deactivated   bool      `json:"deactivated"`
	At            time.Time `json:"at"`
}

type AccessRevealedEvent struct {
	PropertyID string    `json:"property_id"`
	RevealedAt time.Time `json:"revealed_at"`
}

type FeedbackSubmittedEvent struct {
	ReservationID int64     `json:"reservation_id"`
	Rating        int       `json:"rating"`
	SubmittedAt   time.Time `json:"submitted_at"`
}
