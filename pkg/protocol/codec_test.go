package protocol

import (
	"errors"
	"io"
	"testing"
)

func TestVarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 16383, 16384, 1<<32 - 1, 1<<63 - 1}

	for _, v := range values {
		e := NewEncoder()
		e.WriteUvarint(v)
		d := NewDecoder(e.Bytes())
		got, err := d.ReadUvarint()
		if err != nil {
			t.Fatalf("ReadUvarint(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("uvarint round trip: got %d, want %d", got, v)
		}
	}
}

func TestSvarintRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 63, -64, 300, -300, 1<<40 - 1, -(1 << 40)}

	for _, v := range values {
		e := NewEncoder()
		e.WriteSvarint(v)
		d := NewDecoder(e.Bytes())
		got, err := d.ReadSvarint()
		if err != nil {
			t.Fatalf("ReadSvarint(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("svarint round trip: got %d, want %d", got, v)
		}
	}
}

func TestOpsFrameRoundTrip(t *testing.T) {
	of := &OpsFrame{
		Seq: 42,
		Ops: []Op{
			{Code: OpCreateElement, Node: "e1", Tag: "div"},
			{Code: OpCreateText, Node: "t2", Value: "hello"},
			{Code: OpAppendChild, Node: "t2", Parent: "e1"},
			{Code: OpReplaceChild, Node: "e3", Parent: "e1", Old: "t2"},
			{Code: OpRemoveChild, Node: "e3", Parent: "e1"},
			{Code: OpSetText, Node: "t2", Value: "bye"},
			{Code: OpSetAttr, Node: "e1", Key: "class", Value: "card"},
			{Code: OpRemoveAttr, Node: "e1", Key: "class"},
			{Code: OpSetListener, Node: "e1", Key: "click"},
			{Code: OpRemoveListener, Node: "e1", Key: "click"},
		},
	}

	got, err := DecodeOps(EncodeOps(of))
	if err != nil {
		t.Fatalf("DecodeOps failed: %v", err)
	}
	if got.Seq != of.Seq {
		t.Errorf("Seq = %d, want %d", got.Seq, of.Seq)
	}
	if len(got.Ops) != len(of.Ops) {
		t.Fatalf("decoded %d ops, want %d", len(got.Ops), len(of.Ops))
	}
	for i, op := range got.Ops {
		if op != of.Ops[i] {
			t.Errorf("op %d = %+v, want %+v", i, op, of.Ops[i])
		}
	}
}

func TestDecodeOpsRejectsUnknownCode(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(1) // seq
	e.WriteUvarint(1) // count
	e.WriteByte(0xEE) // bogus op code
	e.WriteString("e1")

	if _, err := DecodeOps(e.Bytes()); err == nil {
		t.Fatal("expected error for unknown op code")
	}
}

func TestEventRoundTrip(t *testing.T) {
	ev := &Event{Node: "e7", Name: "keydown", Value: "abc", Key: "Enter", X: -3, Y: 15}

	got, err := DecodeEvent(EncodeEvent(ev))
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	if *got != *ev {
		t.Errorf("event = %+v, want %+v", got, ev)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	f := NewFrame(FrameOps, []byte{1, 2, 3})

	data, err := f.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}
	if got.Type != FrameOps || len(got.Payload) != 3 {
		t.Errorf("frame = %+v", got)
	}
}

func TestEncodeFrameOversizedPayload(t *testing.T) {
	f := NewFrame(FrameOps, make([]byte, MaxPayloadSize+1))
	if _, err := f.Encode(); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("Encode = %v, want ErrFrameTooLarge", err)
	}

	// Exactly at the limit still fits the length field.
	f = NewFrame(FrameOps, make([]byte, MaxPayloadSize))
	data, err := f.Encode()
	if err != nil {
		t.Fatalf("Encode at limit: %v", err)
	}
	got, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame at limit: %v", err)
	}
	if len(got.Payload) != MaxPayloadSize {
		t.Errorf("payload = %d bytes, want %d", len(got.Payload), MaxPayloadSize)
	}
}

func TestDecodeFrameTruncated(t *testing.T) {
	f := NewFrame(FrameEvent, []byte("payload"))
	data, err := f.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if _, err := DecodeFrame(data[:2]); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("truncated header: err = %v, want ErrUnexpectedEOF", err)
	}
	if _, err := DecodeFrame(data[:len(data)-1]); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("truncated payload: err = %v, want ErrUnexpectedEOF", err)
	}
}

func TestControlRoundTrip(t *testing.T) {
	data := EncodeControl(ControlPing, 123456)
	ct, ts, err := DecodeControl(data)
	if err != nil {
		t.Fatalf("DecodeControl failed: %v", err)
	}
	if ct != ControlPing || ts != 123456 {
		t.Errorf("control = %v/%d, want Ping/123456", ct, ts)
	}
}

func TestReadStringBoundsChecked(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(1000) // length prefix far beyond buffer
	d := NewDecoder(e.Bytes())
	if _, err := d.ReadString(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("err = %v, want ErrUnexpectedEOF", err)
	}
}
