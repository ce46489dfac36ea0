package notify

import (
	"context"
	"fmt"

	"github.com/rigdev/seqtest/internal/config"
)

// Event is the outcome a notification reports.
type Event string

const (
	EventPass Event = "pass"
	EventFail Event = "fail"
)

// Notifier defines the interface for sending notifications.
type Notifier interface {
	// Notify sends msg if the notifier subscribes to ev.
	Notify(ctx context.Context, ev Event, msg string) error
}

// FromConfig builds one notifier per configured channel.
func FromConfig(cfgs []config.NotifyConfig) ([]Notifier, error) {
	notifiers := make([]Notifier, 0, len(cfgs))
	for i, c := range cfgs {
		switch c.Type {
		case "slack", "discord":
			notifiers = append(notifiers, NewWebhookNotifier(c.Type, c.Webhook, c.On))
		default:
			return nil, fmt.Errorf("notify[%d]: unsupported type %q", i, c.Type)
		}
	}
	return notifiers, nil
}

// Summary renders the one-line message for a suite run.
func Summary(suite string, passed bool, steps int, errMsg string) string {
	if passed {
		return fmt.Sprintf("seqtest: suite %s passed (%d steps)", suite, steps)
	}
	return fmt.Sprintf("seqtest: suite %s failed after %d steps: %s", suite, steps, errMsg)
}
