package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"carpool/internal/domain/models"
	"carpool/internal/utils"
)

// AMQPNotifier publishes lifecycle events to a topic exchange. Publish
// failures are logged, never returned: a broker outage must not fail the
// booking or trip operation that triggered the event.
type AMQPNotifier struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewAMQPNotifier(url, exchange string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPNotifier{conn: conn, ch: ch, exchange: exchange}, nil
}

type bookingEvent struct {
	BookingID   int64  `json:"booking_id"`
	TripID      int64  `json:"trip_id"`
	PassengerID int64  `json:"passenger_id"`
	Seats       int    `json:"seats"`
	Status      string `json:"status"`
	Previous    string `json:"previous,omitempty"`
	OccurredAt  string `json:"occurred_at"`
}

type tripEvent struct {
	TripID     int64  `json:"trip_id"`
	DriverID   int64  `json:"driver_id"`
	Status     string `json:"status"`
	Previous   string `json:"previous,omitempty"`
	Reason     string `json:"reason,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

func (n *AMQPNotifier) BookingStatusChanged(b models.BookingRequest, previous models.BookingStatus) {
	n.publish("booking.status_changed", bookingEvent{
		BookingID:   b.ID,
		TripID:      b.TripID,
		PassengerID: b.PassengerID,
		Seats:       b.Seats,
		Status:      string(b.Status),
		Previous:    string(previous),
		OccurredAt:  utils.NowUTC().Format(time.RFC3339),
	})
}

func (n *AMQPNotifier) TripStatusChanged(t models.TripOffer, previous models.TripStatus) {
	n.publish("trip.status_changed", tripEvent{
		TripID:     t.ID,
		DriverID:   t.DriverID,
		Status:     string(t.Status),
		Previous:   string(previous),
		Reason:     t.CancellationReason,
		OccurredAt: utils.NowUTC().Format(time.RFC3339),
	})
}

func (n *AMQPNotifier) RefundRequested(b models.BookingRequest) {
	n.publish("refund.requested", bookingEvent{
		BookingID:   b.ID,
		TripID:      b.TripID,
		PassengerID: b.PassengerID,
		Seats:       b.Seats,
		Status:      string(b.Status),
		OccurredAt:  utils.NowUTC().Format(time.RFC3339),
	})
}

func (n *AMQPNotifier) publish(key string, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		utils.LogEvent("", "notify", "marshal_failed", err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = n.ch.PublishWithContext(ctx, n.exchange, key, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		utils.LogEvent("", "notify", "publish_failed", fmt.Sprintf("key=%s err=%v", key, err))
	}
}

func (n *AMQPNotifier) Close() error {
	if n.ch != nil {
		_ = n.ch.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
