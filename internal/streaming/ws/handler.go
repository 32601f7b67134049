package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"healthwatch-cloud/internal/streaming"
	vitals "healthwatch-cloud/internal/vitals/domain"
)

// Client roles accepted on the socket endpoint.
const (
	ClientDevice = "device"
	ClientViewer = "viewer"
)

// ReadingSink receives raw readings streamed by device connections.
type ReadingSink interface {
	Ingest(ctx context.Context, raw vitals.RawReading) (vitals.VitalReading, error)
}

// Handler upgrades HTTP requests to websocket channels and registers them
// with the streaming registry. Device connections additionally stream raw
// readings into the sink.
type Handler struct {
	registry *streaming.Registry
	sink     ReadingSink
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHandler constructs a websocket handler. sink may be nil when no ingest
// path is attached; device payloads are then discarded.
func NewHandler(registry *streaming.Registry, sink ReadingSink, logger *zap.Logger) (*Handler, error) {
	if registry == nil {
		return nil, errors.New("ws: nil registry")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		registry: registry,
		sink:     sink,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}, nil
}

// ServeHTTP handles GET /ws/{client}.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	client := mux.Vars(r)["client"]
	if client != ClientDevice && client != ClientViewer {
		http.Error(w, "unknown client role", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	ch := newChannel(conn)
	var deregister func()
	if client == ClientDevice {
		deregister, err = h.registry.RegisterDevice(ch)
	} else {
		deregister, err = h.registry.RegisterViewer(ch)
	}
	if err != nil {
		h.logger.Warn("channel registration failed", zap.Error(err))
		ch.close()
		return
	}

	go ch.writePump()
	// The request context is cancelled as soon as ServeHTTP returns, which
	// is before the hijacked connection is done. The pump carries its own.
	go h.readPump(context.Background(), ch, client, deregister)
}

// readPump consumes inbound frames until the peer goes away. Device frames
// are raw readings; viewer frames are ignored but must be read so close and
// ping frames get processed.
func (h *Handler) readPump(ctx context.Context, ch *channel, client string, deregister func()) {
	defer func() {
		deregister()
		ch.close()
	}()
	for {
		_, data, err := ch.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("websocket closed unexpectedly",
					zap.String("client", client),
					zap.String("channel_id", ch.ID()),
					zap.Error(err),
				)
			}
			return
		}
		if client != ClientDevice || h.sink == nil {
			continue
		}

		var raw vitals.RawReading
		if err := json.Unmarshal(data, &raw); err != nil {
			h.logger.Warn("unparseable device frame",
				zap.String("channel_id", ch.ID()),
				zap.Error(err),
			)
			continue
		}
		// Validation failures are already counted and logged by the sink.
		_, _ = h.sink.Ingest(ctx, raw)
	}
}
