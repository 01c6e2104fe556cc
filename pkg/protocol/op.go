package protocol

import "fmt"

// OpCode is the type of live-tree mutation.
type OpCode uint8

// Mutation op constants. Each corresponds to one live-tree primitive
// invoked by the reconciler on the server.
const (
	OpCreateElement  OpCode = 0x01 // Create a detached element node
	OpCreateText     OpCode = 0x02 // Create a detached text node
	OpAppendChild    OpCode = 0x03 // Append node under parent
	OpReplaceChild   OpCode = 0x04 // Replace old node with new under parent
	OpRemoveChild    OpCode = 0x05 // Remove node from parent
	OpSetText        OpCode = 0x06 // Update text node content
	OpSetAttr        OpCode = 0x07 // Set/update attribute
	OpRemoveAttr     OpCode = 0x08 // Remove attribute
	OpSetListener    OpCode = 0x09 // Attach forwarding listener for event type
	OpRemoveListener OpCode = 0x0A // Detach forwarding listener
)

// String returns the string representation of the op code.
func (c OpCode) String() string {
	switch c {
	case OpCreateElement:
		return "CreateElement"
	case OpCreateText:
		return "CreateText"
	case OpAppendChild:
		return "AppendChild"
	case OpReplaceChild:
		return "ReplaceChild"
	case OpRemoveChild:
		return "RemoveChild"
	case OpSetText:
		return "SetText"
	case OpSetAttr:
		return "SetAttr"
	case OpRemoveAttr:
		return "RemoveAttr"
	case OpSetListener:
		return "SetListener"
	case OpRemoveListener:
		return "RemoveListener"
	default:
		return "Unknown"
	}
}

// Op is a single live-tree mutation.
type Op struct {
	Code   OpCode
	Node   string // Target node ID
	Parent string // Parent node ID (append/replace/remove)
	Old    string // Replaced node ID (replace only)
	Tag    string // Element tag (create element only)
	Key    string // Attribute key or event type
	Value  string // Attribute value or text content
}

// OpsFrame is a batch of mutation ops with a sequence number.
type OpsFrame struct {
	Seq uint64
	Ops []Op
}

// EncodeOps encodes an ops frame to bytes.
func EncodeOps(of *OpsFrame) []byte {
	e := NewEncoder()
	e.WriteUvarint(of.Seq)
	e.WriteUvarint(uint64(len(of.Ops)))
	for i := range of.Ops {
		encodeOp(e, &of.Ops[i])
	}
	return e.Bytes()
}

func encodeOp(e *Encoder, op *Op) {
	e.WriteByte(byte(op.Code))
	e.WriteString(op.Node)

	switch op.Code {
	case OpCreateElement:
		e.WriteString(op.Tag)

	case OpCreateText:
		e.WriteString(op.Value)

	case OpAppendChild, OpRemoveChild:
		e.WriteString(op.Parent)

	case OpReplaceChild:
		e.WriteString(op.Parent)
		e.WriteString(op.Old)

	case OpSetText:
		e.WriteString(op.Value)

	case OpSetAttr:
		e.WriteString(op.Key)
		e.WriteString(op.Value)

	case OpRemoveAttr, OpSetListener, OpRemoveListener:
		e.WriteString(op.Key)
	}
}

// DecodeOps decodes an ops frame from bytes.
func DecodeOps(data []byte) (*OpsFrame, error) {
	d := NewDecoder(data)

	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}

	ops := make([]Op, count)
	for i := 0; i < count; i++ {
		if err := decodeOp(d, &ops[i]); err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
	}
	return &OpsFrame{Seq: seq, Ops: ops}, nil
}

func decodeOp(d *Decoder, op *Op) error {
	code, err := d.ReadByte()
	if err != nil {
		return err
	}
	op.Code = OpCode(code)

	op.Node, err = d.ReadString()
	if err != nil {
		return err
	}

	switch op.Code {
	case OpCreateElement:
		op.Tag, err = d.ReadString()

	case OpCreateText:
		op.Value, err = d.ReadString()

	case OpAppendChild, OpRemoveChild:
		op.Parent, err = d.ReadString()

	case OpReplaceChild:
		op.Parent, err = d.ReadString()
		if err != nil {
			return err
		}
		op.Old, err = d.ReadString()

	case OpSetText:
		op.Value, err = d.ReadString()

	case OpSetAttr:
		op.Key, err = d.ReadString()
		if err != nil {
			return err
		}
		op.Value, err = d.ReadString()

	case OpRemoveAttr, OpSetListener, OpRemoveListener:
		op.Key, err = d.ReadString()

	default:
		return fmt.Errorf("protocol: unknown op code 0x%02x", code)
	}
	return err
}
