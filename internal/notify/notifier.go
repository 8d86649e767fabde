package notify

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Notifier broadcasts notices to external observers. Delivery is
// fire-and-forget: there is no guarantee back into the core, and callers log
// failures instead of propagating them.
type Notifier interface {
	Publish(ctx context.Context, n Notice) error
}

// LogNotifier writes notices to the structured log. It stands in when no
// broker is configured.
type LogNotifier struct{}

func (LogNotifier) Publish(_ context.Context, n Notice) error {
	fields := log.Fields{
		"notice_id":  n.ID,
		"kind":       n.Kind,
		"event_id":   n.EventID,
		"event_name": n.EventName,
	}
	if n.TicketID != "" {
		fields["ticket_id"] = n.TicketID
		fields["buyer"] = n.Buyer
	}
	log.WithFields(fields).Info("notice")
	return nil
}
