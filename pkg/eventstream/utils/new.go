// Package eventstreamutils selects the turn event publisher from
// configuration.
package eventstreamutils

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/papercomputeco/relay/pkg/eventstream"
	"github.com/papercomputeco/relay/pkg/eventstream/kafka"
	"github.com/papercomputeco/relay/pkg/eventstream/nop"
)

const (
	ProviderNone  = "none"
	ProviderKafka = "kafka"
)

// NewPublisherOpts configures NewPublisher.
type NewPublisherOpts struct {
	// Provider is "none" (or empty) or "kafka".
	Provider string

	// Brokers is a comma-separated broker list.
	Brokers string
	Topic   string
	Logger  *slog.Logger
}

// NewPublisher returns the publisher for opts.Provider.
func NewPublisher(opts *NewPublisherOpts) (eventstream.Publisher, error) {
	switch strings.ToLower(opts.Provider) {
	case "", ProviderNone:
		return nop.NewPublisher(), nil
	case ProviderKafka:
		p, err := kafka.NewPublisher(kafka.Config{
			Brokers: strings.Split(opts.Brokers, ","),
			Topic:   opts.Topic,
			Logger:  opts.Logger,
		})
		if err != nil {
			return nil, err
		}
		if opts.Logger != nil {
			opts.Logger.Info("publishing turn events to kafka", "brokers", opts.Brokers, "topic", opts.Topic)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown events provider: %q (supported: none, kafka)", opts.Provider)
	}
}
