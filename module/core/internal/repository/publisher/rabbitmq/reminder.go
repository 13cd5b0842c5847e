package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shyamkumar703/parky/module/core/internal/repository/publisher"
)

var _ publisher.ReminderScheduler = (*ReminderPublisher)(nil)

const (
	exchangeName = "parky.events"
	queueName    = "cleaning_reminders"

	actionSchedule  = "schedule"
	actionCancelAll = "cancel_all"
)

type ReminderPublisher struct {
	ch *amqp.Channel
}

func NewReminderPublisher(conn *amqp.Connection) (*ReminderPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchangeName, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(queueName, "", exchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return &ReminderPublisher{ch: ch}, nil
}

type reminderMessage struct {
	Action string `json:"action"`
	Title  string `json:"title,omitempty"`
	Body   string `json:"body,omitempty"`
	FireAt int64  `json:"fire_at,omitempty"`
}

func (p *ReminderPublisher) ScheduleOneShot(ctx context.Context, title, body string, fireAt time.Time) error {
	return p.publish(ctx, reminderMessage{
		Action: actionSchedule,
		Title:  title,
		Body:   body,
		FireAt: fireAt.Unix(),
	})
}

func (p *ReminderPublisher) CancelAll(ctx context.Context) error {
	return p.publish(ctx, reminderMessage{Action: actionCancelAll})
}

func (p *ReminderPublisher) publish(ctx context.Context, msg reminderMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal reminder: %w", err)
	}

	return p.ch.PublishWithContext(ctx, exchangeName, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        payload,
	})
}
