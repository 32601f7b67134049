package streaming

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"healthwatch-cloud/internal/observability/metrics"
)

// Channel is one live connection the registry can send envelopes to. The
// adapter behind it must preserve FIFO order per channel; Send returning an
// error means the channel is dead and gets removed from the registry.
type Channel interface {
	ID() string
	Send(msg Message) error
}

const (
	audienceDevices = "devices"
	audienceViewers = "viewers"
)

// Registry tracks live device and viewer channels and routes envelopes to
// them. It owns no message content.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]Channel
	viewers map[string]Channel
	logger  *zap.Logger
}

// NewRegistry constructs an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		devices: make(map[string]Channel),
		viewers: make(map[string]Channel),
		logger:  logger,
	}
}

// RegisterDevice adds a device channel and returns its deregistration func.
func (r *Registry) RegisterDevice(ch Channel) (func(), error) {
	return r.register(ch, r.devices, audienceDevices)
}

// RegisterViewer adds a viewer channel and returns its deregistration func.
func (r *Registry) RegisterViewer(ch Channel) (func(), error) {
	return r.register(ch, r.viewers, audienceViewers)
}

func (r *Registry) register(ch Channel, set map[string]Channel, audience string) (func(), error) {
	if ch == nil || ch.ID() == "" {
		return nil, errors.New("streaming: nil or unidentified channel")
	}
	r.mu.Lock()
	set[ch.ID()] = ch
	count := len(set)
	r.mu.Unlock()

	metrics.SetConnectedChannels(audience, count)
	r.logger.Info("channel connected",
		zap.String("audience", audience),
		zap.String("channel_id", ch.ID()),
		zap.Int("total", count),
	)

	id := ch.ID()
	return func() { r.remove(set, audience, id) }, nil
}

func (r *Registry) remove(set map[string]Channel, audience, id string) {
	r.mu.Lock()
	_, present := set[id]
	delete(set, id)
	count := len(set)
	r.mu.Unlock()

	if !present {
		return
	}
	metrics.SetConnectedChannels(audience, count)
	r.logger.Info("channel disconnected",
		zap.String("audience", audience),
		zap.String("channel_id", id),
		zap.Int("total", count),
	)
}

// BroadcastToViewers delivers the envelope to every live viewer channel.
// A failed send removes that channel; delivery to the rest proceeds.
func (r *Registry) BroadcastToViewers(msg Message) {
	r.broadcast(r.viewers, audienceViewers, msg)
}

// BroadcastToDevices delivers the envelope to every live device channel.
func (r *Registry) BroadcastToDevices(msg Message) {
	r.broadcast(r.devices, audienceDevices, msg)
}

func (r *Registry) broadcast(set map[string]Channel, audience string, msg Message) {
	r.mu.RLock()
	channels := make([]Channel, 0, len(set))
	for _, ch := range set {
		channels = append(channels, ch)
	}
	r.mu.RUnlock()

	for _, ch := range channels {
		if err := ch.Send(msg); err != nil {
			metrics.IncBroadcast(audience, metrics.ResultError)
			r.logger.Warn("channel send failed, removing",
				zap.String("audience", audience),
				zap.String("channel_id", ch.ID()),
				zap.Error(err),
			)
			r.remove(set, audience, ch.ID())
			continue
		}
		metrics.IncBroadcast(audience, metrics.ResultSuccess)
	}
}

// Counts returns the number of live device and viewer channels.
func (r *Registry) Counts() (devices, viewers int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices), len(r.viewers)
}
