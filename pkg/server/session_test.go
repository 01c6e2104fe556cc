package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/vireo-dev/vireo/pkg/protocol"
	"github.com/vireo-dev/vireo/pkg/vdom"
)

// fakeConn is an in-memory wsConn. Inbound messages are fed through a
// channel; outbound messages are recorded.
type fakeConn struct {
	inbound chan []byte

	mu     sync.Mutex
	sent   [][]byte
	closed bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{inbound: make(chan []byte, 16)}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	msg, ok := <-c.inbound
	if !ok {
		return 0, nil, errors.New("connection closed")
	}
	return 2, msg, nil
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("connection closed")
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	c.sent = append(c.sent, buf)
	return nil
}

func (c *fakeConn) SetReadDeadline(time.Time) error  { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.inbound)
	}
	return nil
}

func (c *fakeConn) sentFrames(t *testing.T) []*protocol.Frame {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	frames := make([]*protocol.Frame, 0, len(c.sent))
	for _, msg := range c.sent {
		f, err := protocol.DecodeFrame(msg)
		if err != nil {
			t.Fatalf("sent frame does not decode: %v", err)
		}
		frames = append(frames, f)
	}
	return frames
}

func (c *fakeConn) waitFrames(t *testing.T, n int) []*protocol.Frame {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		frames := c.sentFrames(t)
		if len(frames) >= n {
			return frames
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d frames, have %d", n, len(c.sentFrames(t)))
	return nil
}

type incMsg struct{}

// counterApp renders a button and a count, incrementing on click.
type counterApp struct {
	count int
}

func (a *counterApp) Update(msg any) {
	if _, ok := msg.(incMsg); ok {
		a.count++
	}
}

func (a *counterApp) View() *vdom.VNode {
	return vdom.Div(
		vdom.Button(
			vdom.OnClick(func() any { return incMsg{} }),
			vdom.Text("+"),
		),
		vdom.Span(vdom.Textf("%d", a.count)),
	)
}

func startTestSession(t *testing.T) (*Session, *fakeConn, context.CancelFunc) {
	t.Helper()
	conn := newFakeConn()
	cfg := DefaultConfig()
	sess := newSession("test", conn, &counterApp{}, slog.Default(), nil, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go sess.readLoop()
	go sess.run(ctx)

	t.Cleanup(func() {
		cancel()
		sess.Close()
	})
	return sess, conn, cancel
}

func encodeFrame(t *testing.T, f *protocol.Frame) []byte {
	t.Helper()
	data, err := f.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return data
}

func opsOfType(frames []*protocol.Frame, t *testing.T) []*protocol.OpsFrame {
	t.Helper()
	var out []*protocol.OpsFrame
	for _, f := range frames {
		if f.Type != protocol.FrameOps {
			continue
		}
		of, err := protocol.DecodeOps(f.Payload)
		if err != nil {
			t.Fatalf("ops frame does not decode: %v", err)
		}
		out = append(out, of)
	}
	return out
}

func TestSessionInitialMount(t *testing.T) {
	_, conn, _ := startTestSession(t)

	frames := conn.waitFrames(t, 1)
	ops := opsOfType(frames, t)
	if len(ops) != 1 {
		t.Fatalf("got %d ops frames, want 1", len(ops))
	}
	if ops[0].Seq != 1 {
		t.Errorf("Seq = %d, want 1", ops[0].Seq)
	}

	var sawButton, sawListener, sawCount bool
	for _, op := range ops[0].Ops {
		switch {
		case op.Code == protocol.OpCreateElement && op.Tag == "button":
			sawButton = true
		case op.Code == protocol.OpSetListener && op.Key == "click":
			sawListener = true
		case op.Code == protocol.OpCreateText && op.Value == "0":
			sawCount = true
		}
	}
	if !sawButton || !sawListener || !sawCount {
		t.Errorf("mount ops incomplete: button=%v listener=%v count=%v",
			sawButton, sawListener, sawCount)
	}
}

func TestSessionClickUpdatesText(t *testing.T) {
	_, conn, _ := startTestSession(t)
	mount := opsOfType(conn.waitFrames(t, 1), t)[0]

	var buttonID string
	for _, op := range mount.Ops {
		if op.Code == protocol.OpCreateElement && op.Tag == "button" {
			buttonID = op.Node
		}
	}
	if buttonID == "" {
		t.Fatal("mount did not create a button")
	}

	ev := protocol.EncodeEvent(&protocol.Event{Node: buttonID, Name: "click"})
	conn.inbound <- encodeFrame(t, protocol.NewFrame(protocol.FrameEvent, ev))

	frames := conn.waitFrames(t, 2)
	ops := opsOfType(frames, t)
	if len(ops) < 2 {
		t.Fatalf("got %d ops frames, want 2", len(ops))
	}

	update := ops[1]
	if update.Seq != 2 {
		t.Errorf("update Seq = %d, want 2", update.Seq)
	}
	var sawSetText bool
	for _, op := range update.Ops {
		if op.Code == protocol.OpSetText && op.Value == "1" {
			sawSetText = true
		}
		if op.Code == protocol.OpCreateElement {
			t.Errorf("update pass created element %+v, want reuse", op)
		}
	}
	if !sawSetText {
		t.Errorf("update ops = %+v, want set-text to 1", update.Ops)
	}
}

func TestSessionEventWithoutListenerRendersNothing(t *testing.T) {
	_, conn, _ := startTestSession(t)
	conn.waitFrames(t, 1)

	ev := protocol.EncodeEvent(&protocol.Event{Node: "e999", Name: "click"})
	conn.inbound <- encodeFrame(t, protocol.NewFrame(protocol.FrameEvent, ev))

	time.Sleep(50 * time.Millisecond)
	ops := opsOfType(conn.sentFrames(t), t)
	if len(ops) != 1 {
		t.Errorf("got %d ops frames after stray event, want 1", len(ops))
	}
}

func TestSessionPingAnsweredWithPong(t *testing.T) {
	_, conn, _ := startTestSession(t)
	conn.waitFrames(t, 1)

	ping := protocol.EncodeControl(protocol.ControlPing, 777)
	conn.inbound <- encodeFrame(t, protocol.NewFrame(protocol.FrameControl, ping))

	frames := conn.waitFrames(t, 2)
	var pong bool
	for _, f := range frames {
		if f.Type != protocol.FrameControl {
			continue
		}
		ct, ts, err := protocol.DecodeControl(f.Payload)
		if err != nil {
			t.Fatalf("control decode: %v", err)
		}
		if ct == protocol.ControlPong && ts == 777 {
			pong = true
		}
	}
	if !pong {
		t.Error("ping was not answered with a matching pong")
	}
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	sess, _, _ := startTestSession(t)
	sess.Close()
	sess.Close()

	select {
	case <-sess.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after Close")
	}
}
