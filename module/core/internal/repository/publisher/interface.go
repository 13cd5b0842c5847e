package publisher

import (
	"context"
	"time"
)

// ReminderScheduler hands reminder intents to the delivery side. The core
// only decides when a reminder should fire; delivery is someone else's job.
type ReminderScheduler interface {
	ScheduleOneShot(ctx context.Context, title, body string, fireAt time.Time) error
	CancelAll(ctx context.Context) error
}
