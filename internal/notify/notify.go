// Package notify propagates service-area invalidations between API replicas over Redis pub/sub.
//
// Each replica invalidates its own registry directly and publishes its instance id on the
// channel. Other replicas receive the message and invalidate theirs; a replica ignores its
// own messages.
package notify

import (
	"context"
	"time"

	"service-area-api/internal/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const publishTimeout = 2 * time.Second

// Invalidator is the local registry hook.
type Invalidator interface {
	Invalidate()
}

// Publisher is the subset of a Redis client used to announce invalidations.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// NewInstanceID returns a random id identifying this process on the channel.
func NewInstanceID() string {
	return uuid.NewString()
}

// Broadcaster invalidates the local registry and tells the other replicas to do the same.
type Broadcaster struct {
	local    Invalidator
	client   Publisher
	channel  string
	instance string
	logger   zerolog.Logger
}

// NewBroadcaster creates a broadcaster publishing on channel as instance.
func NewBroadcaster(local Invalidator, client Publisher, channel, instance string, logger zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		local:    local,
		client:   client,
		channel:  channel,
		instance: instance,
		logger:   logger.With().Str("component", "notify").Logger(),
	}
}

// Invalidate marks the local snapshot stale, then publishes. A failed publish is logged;
// other replicas still converge through their registry max age.
func (b *Broadcaster) Invalidate() {
	b.local.Invalidate()
	metrics.RegistryInvalidationsTotal.WithLabelValues("local").Inc()

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := b.client.Publish(ctx, b.channel, b.instance).Err(); err != nil {
		b.logger.Error().Err(err).Str("channel", b.channel).Msg("failed to publish service area invalidation")
	}
}

// Subscriber invalidates the local registry when another replica publishes a change.
type Subscriber struct {
	target   Invalidator
	instance string
	logger   zerolog.Logger
}

// NewSubscriber creates a subscriber that ignores messages published by instance.
func NewSubscriber(target Invalidator, instance string, logger zerolog.Logger) *Subscriber {
	return &Subscriber{
		target:   target,
		instance: instance,
		logger:   logger.With().Str("component", "notify").Logger(),
	}
}

// Listen subscribes to channel and blocks until ctx is done.
func (s *Subscriber) Listen(ctx context.Context, client *redis.Client, channel string) error {
	pubsub := client.Subscribe(ctx, channel)
	defer pubsub.Close()

	// Wait for the subscription confirmation so a failure is reported to the caller.
	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	s.logger.Info().Str("channel", channel).Msg("listening for service area invalidations")

	s.consume(ctx, pubsub.Channel())
	return ctx.Err()
}

func (s *Subscriber) consume(ctx context.Context, messages <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if msg.Payload == s.instance {
				continue
			}
			s.target.Invalidate()
			metrics.RegistryInvalidationsTotal.WithLabelValues("remote").Inc()
			s.logger.Debug().Str("from", msg.Payload).Msg("service areas invalidated by another instance")
		}
	}
}
