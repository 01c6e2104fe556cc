package protocol

// Event is a client-side event routed back to the server, targeting
// the listener registered for (Node, Name).
type Event struct {
	Node  string // Target node ID
	Name  string // Event type: "click", "input", etc.
	Value string // Input value, if any
	Key   string // Keyboard key, if any
	X     int    // Pointer position
	Y     int
}

// EncodeEvent encodes an event to bytes.
func EncodeEvent(ev *Event) []byte {
	e := NewEncoder()
	e.WriteString(ev.Node)
	e.WriteString(ev.Name)
	e.WriteString(ev.Value)
	e.WriteString(ev.Key)
	e.WriteSvarint(int64(ev.X))
	e.WriteSvarint(int64(ev.Y))
	return e.Bytes()
}

// DecodeEvent decodes an event from bytes.
func DecodeEvent(data []byte) (*Event, error) {
	d := NewDecoder(data)
	ev := &Event{}
	var err error

	if ev.Node, err = d.ReadString(); err != nil {
		return nil, err
	}
	if ev.Name, err = d.ReadString(); err != nil {
		return nil, err
	}
	if ev.Value, err = d.ReadString(); err != nil {
		return nil, err
	}
	if ev.Key, err = d.ReadString(); err != nil {
		return nil, err
	}
	x, err := d.ReadSvarint()
	if err != nil {
		return nil, err
	}
	y, err := d.ReadSvarint()
	if err != nil {
		return nil, err
	}
	ev.X = int(x)
	ev.Y = int(y)
	return ev, nil
}
