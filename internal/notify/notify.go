package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// Message is one outbound alert. Recipients is consulted only by transports
// that address individuals (email); broadcast transports ignore it.
type Message struct {
	Subject    string
	Body       string
	Recipients []string
}

// Transport delivers a message over a single channel.
type Transport interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Dispatcher fans a message out to every configured transport. Delivery is
// fire-and-forget from the evaluation cycle's perspective: failures are
// logged and joined into the returned error, but a dead transport never
// blocks the others.
type Dispatcher struct {
	transports []Transport
}

func NewDispatcher(transports ...Transport) *Dispatcher {
	return &Dispatcher{transports: transports}
}

// Send delivers msg through all transports.
func (d *Dispatcher) Send(ctx context.Context, msg Message) error {
	var errs []error
	for _, t := range d.transports {
		if err := t.Send(ctx, msg); err != nil {
			log.Printf("notify: %s send failed: %v", t.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", t.Name(), err))
		}
	}
	return errors.Join(errs...)
}
