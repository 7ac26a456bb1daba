package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/fluxboard/internal/config"
	"github.com/spec-kit/fluxboard/internal/domain"
	"github.com/spec-kit/fluxboard/internal/events"
)

type memoryPublisher struct {
	channels []string
	payloads [][]byte
	err      error
}

func (p *memoryPublisher) Publish(_ context.Context, channel string, payload []byte) (int64, error) {
	if p.err != nil {
		return 0, p.err
	}
	p.channels = append(p.channels, channel)
	p.payloads = append(p.payloads, payload)
	return 1, nil
}

func TestChangeNotifier_ForwardsConfirmedMutations(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	pub := &memoryPublisher{}
	notifier := NewChangeNotifier(dispatcher, pub, zap.NewNop(), config.EventsConfig{RedisChannel: "flux", Publish: true})
	notifier.RegisterHandlers()

	repo := &fakeFluxRepo{flux: sampleFlux()}
	gw := NewMutationGateway(MutationDependencies{FluxRepo: repo, Dispatcher: dispatcher})
	actor := ActorFromSession(session("u-admin", domain.RoleSuperAdmin))

	_, err := gw.ChangeState(context.Background(), actor, "f2", domain.StateTransmitted)
	require.NoError(t, err)
	_, err = gw.Assign(context.Background(), actor, "f2", "u-tech", "tech@shop.fr")
	require.NoError(t, err)

	require.Len(t, pub.payloads, 2)
	assert.Equal(t, []string{"flux", "flux"}, pub.channels)

	var evt map[string]any
	require.NoError(t, json.Unmarshal(pub.payloads[1], &evt))
	assert.Equal(t, string(events.EventFluxAssigned), evt["type"])
	assert.Equal(t, "u-admin", evt["actor"].(map[string]any)["user_id"])
}

func TestChangeNotifier_PublishFailureDoesNotFailMutation(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	notifier := NewChangeNotifier(dispatcher, &memoryPublisher{err: errors.New("redis down")}, zap.NewNop(), config.EventsConfig{RedisChannel: "flux", Publish: true})
	notifier.RegisterHandlers()

	gw := NewMutationGateway(MutationDependencies{FluxRepo: &fakeFluxRepo{flux: sampleFlux()}, Dispatcher: dispatcher})
	conf, err := gw.ChangeState(context.Background(), events.Actor{}, "f1", domain.StateNotDone)
	require.NoError(t, err)
	assert.NotEmpty(t, conf.Message)
}

func TestChangeNotifier_DisabledPublishing(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	pub := &memoryPublisher{}
	NewChangeNotifier(dispatcher, pub, zap.NewNop(), config.EventsConfig{RedisChannel: "flux", Publish: false}).RegisterHandlers()

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventFluxStateChanged}))
	assert.Empty(t, pub.payloads)
}
