package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/fluxboard/internal/config"
	"github.com/spec-kit/fluxboard/internal/events"
)

// ChangeNotifier tells other dashboards that a flux changed so they re-fetch.
type ChangeNotifier struct {
	dispatcher events.Dispatcher
	forwarder  *events.ChannelForwarder
	logger     *zap.Logger
	cfg        config.EventsConfig
}

// NewChangeNotifier creates the notifier. A nil publisher only logs.
func NewChangeNotifier(dispatcher events.Dispatcher, publisher events.Publisher, logger *zap.Logger, cfg config.EventsConfig) *ChangeNotifier {
	n := &ChangeNotifier{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
	if publisher != nil && cfg.Publish && cfg.RedisChannel != "" {
		n.forwarder = events.NewChannelForwarder(publisher, cfg.RedisChannel)
	}
	return n
}

// RegisterHandlers subscribes to events.
func (n *ChangeNotifier) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventFluxStateChanged, n.handleFluxStateChanged)
	n.dispatcher.Subscribe(events.EventFluxAssigned, n.handleFluxAssigned)
}

func (n *ChangeNotifier) handleFluxStateChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("FluxStateChanged", zap.String("flux_id", event.FluxID), zap.String("actor", event.Actor.UserID), zap.Any("payload", event.Payload))
	return n.forward(ctx, event)
}

func (n *ChangeNotifier) handleFluxAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("FluxAssigned", zap.String("flux_id", event.FluxID), zap.String("actor", event.Actor.UserID), zap.Any("payload", event.Payload))
	return n.forward(ctx, event)
}

func (n *ChangeNotifier) forward(ctx context.Context, event events.Event) error {
	if n.forwarder == nil {
		return nil
	}
	if err := n.forwarder.Handle(ctx, event); err != nil {
		n.logger.Warn("change notification not delivered",
			zap.String("channel", n.cfg.RedisChannel),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		return err
	}
	return nil
}
