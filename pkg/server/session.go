package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vireo-dev/vireo/pkg/metrics"
	"github.com/vireo-dev/vireo/pkg/protocol"
	"github.com/vireo-dev/vireo/pkg/remote"
	"github.com/vireo-dev/vireo/pkg/vdom"
)

const tracerName = "vireo"

// wsConn is the subset of *websocket.Conn a session uses. Tests
// substitute an in-memory implementation.
type wsConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Session drives one App over one WebSocket connection.
type Session struct {
	id     string
	conn   wsConn
	app    App
	tree   *remote.Tree
	rec    *vdom.Reconciler
	prev   *vdom.VNode
	logger *slog.Logger
	obs    *metrics.Observer
	tracer trace.Tracer

	readTimeout  time.Duration
	writeTimeout time.Duration

	events chan *protocol.Event

	// pending collects messages emitted by listeners during dispatch.
	// Listeners bound in earlier passes close over the same sink, so
	// it must outlive any single pass. Only the run goroutine touches
	// it.
	pending []any

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

// newSession wires a session for the given connection. obs may be nil.
func newSession(id string, conn wsConn, app App, logger *slog.Logger, obs *metrics.Observer, cfg *Config) *Session {
	tree := remote.NewTree()

	recOpts := []vdom.ReconcilerOption{vdom.WithLogger(logger)}
	if obs != nil {
		recOpts = append(recOpts, vdom.WithObserver(obs))
	}

	return &Session{
		id:           id,
		conn:         conn,
		app:          app,
		tree:         tree,
		rec:          vdom.New(tree, recOpts...),
		logger:       logger.With("session", id),
		obs:          obs,
		tracer:       otel.Tracer(tracerName),
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
		events:       make(chan *protocol.Event, cfg.EventQueueSize),
		done:         make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// sink is the message sink handed to every reconciliation pass.
func (s *Session) sink(msg any) {
	s.pending = append(s.pending, msg)
}

// Close tears down the connection and stops both loops. Safe to call
// more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// Done is closed when the session has shut down.
func (s *Session) Done() <-chan struct{} { return s.done }

// readLoop reads frames off the wire until the connection closes.
// Events are queued for the run loop; pings are answered inline.
func (s *Session) readLoop() {
	defer s.Close()

	for {
		if s.readTimeout > 0 {
			s.conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		}
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			s.logger.Error("frame decode error", "error", err)
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			s.handleEventFrame(frame.Payload)

		case protocol.FrameControl:
			s.handleControlFrame(frame.Payload)

		default:
			s.logger.Warn("unknown frame type", "type", frame.Type)
		}
	}
}

func (s *Session) handleEventFrame(payload []byte) {
	ev, err := protocol.DecodeEvent(payload)
	if err != nil {
		s.logger.Error("event decode error", "error", err)
		return
	}

	select {
	case s.events <- ev:
	default:
		s.logger.Warn("event queue full, dropping event",
			"node", ev.Node, "event", ev.Name)
	}
}

func (s *Session) handleControlFrame(payload []byte) {
	ct, ts, err := protocol.DecodeControl(payload)
	if err != nil {
		s.logger.Error("control decode error", "error", err)
		return
	}

	switch ct {
	case protocol.ControlPing:
		s.writeFrame(protocol.NewFrame(protocol.FrameControl,
			protocol.EncodeControl(protocol.ControlPong, ts)))

	case protocol.ControlPong:
		s.logger.Debug("received pong")

	default:
		s.logger.Warn("unknown control type", "type", ct)
	}
}

// run is the session's main loop. It mounts the initial view, then
// processes one client event per iteration: dispatch, update, render.
func (s *Session) run(ctx context.Context) {
	defer s.Close()

	if err := s.render(ctx); err != nil {
		s.logger.Error("initial render failed", "error", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case ev := <-s.events:
			if err := s.handleEvent(ctx, ev); err != nil {
				s.logger.Error("event handling failed", "error", err)
				return
			}
		}
	}
}

// handleEvent routes one client event through the listener it targets,
// feeds the resulting messages to the app, and re-renders.
func (s *Session) handleEvent(ctx context.Context, ev *protocol.Event) error {
	handled := s.tree.Dispatch(ev)
	if s.obs != nil {
		s.obs.EventDispatched(handled)
	}
	if !handled {
		s.logger.Debug("event had no listener", "node", ev.Node, "event", ev.Name)
		return nil
	}

	msgs := s.pending
	s.pending = nil
	for _, msg := range msgs {
		s.app.Update(msg)
	}
	return s.render(ctx)
}

// render runs one reconciliation pass and flushes the resulting ops.
func (s *Session) render(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "session.render",
		trace.WithAttributes(attribute.String("session.id", s.id)))
	defer span.End()

	start := time.Now()

	next := s.app.View()

	if err := s.rec.Apply(next, s.tree.Root(), s.prev, s.sink); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	s.prev = next

	if s.obs != nil {
		s.obs.ObserveApply(time.Since(start))
	}

	of := s.tree.Flush()
	if of == nil {
		span.SetAttributes(attribute.Int("ops.count", 0))
		return nil
	}
	span.SetAttributes(
		attribute.Int("ops.count", len(of.Ops)),
		attribute.Int64("ops.seq", int64(of.Seq)),
	)
	if s.obs != nil {
		s.obs.AddOpsFlushed(len(of.Ops))
	}

	return s.writeFrame(protocol.NewFrame(protocol.FrameOps, protocol.EncodeOps(of)))
}

func (s *Session) writeFrame(f *protocol.Frame) error {
	data, err := f.Encode()
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.writeTimeout > 0 {
		s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	return s.conn.WriteMessage(websocket.BinaryMessage, data)
}
