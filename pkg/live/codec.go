package live

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

var (
	errShortFrame   = errors.New("frame too short")
	errWrongFrame   = errors.New("unexpected frame type")
	errUnknownEvent = errors.New("unknown event type")
	errNodeIDRange  = errors.New("node ID out of range")
)

// Encoder handles encoding of live protocol messages
type Encoder struct {
	w io.Writer
}

// NewEncoder creates a new encoder
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// WriteUvarint writes an unsigned varint
func (e *Encoder) WriteUvarint(v uint64) error {
	buf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(buf, v)
	_, err := e.w.Write(buf[:n])
	return err
}

// WriteVarint writes a zigzag-encoded signed varint
func (e *Encoder) WriteVarint(v int64) error {
	buf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutVarint(buf, v)
	_, err := e.w.Write(buf[:n])
	return err
}

// WriteString writes a length-prefixed string
func (e *Encoder) WriteString(s string) error {
	if err := e.WriteUvarint(uint64(len(s))); err != nil {
		return err
	}
	_, err := e.w.Write([]byte(s))
	return err
}

// WriteBytes writes raw bytes
func (e *Encoder) WriteBytes(b []byte) error {
	_, err := e.w.Write(b)
	return err
}

// Decoder handles decoding of live protocol messages
type Decoder struct {
	r   io.Reader
	buf []byte
}

// NewDecoder creates a new decoder
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:   r,
		buf: make([]byte, 256),
	}
}

// ReadUvarint reads an unsigned varint
func (d *Decoder) ReadUvarint() (uint64, error) {
	return binary.ReadUvarint(d)
}

// ReadVarint reads a zigzag-encoded signed varint
func (d *Decoder) ReadVarint() (int64, error) {
	return binary.ReadVarint(d)
}

// ReadByte implements io.ByteReader
func (d *Decoder) ReadByte() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadString reads a length-prefixed string
func (d *Decoder) ReadString() (string, error) {
	length, err := d.ReadUvarint()
	if err != nil {
		return "", err
	}
	if length > 1<<16 {
		return "", fmt.Errorf("string length %d exceeds limit", length)
	}

	if length > uint64(len(d.buf)) {
		d.buf = make([]byte, length)
	}

	n, err := io.ReadFull(d.r, d.buf[:length])
	if err != nil {
		return "", err
	}
	return string(d.buf[:n]), nil
}

// readNodeID reads a node ID, rejecting values that do not fit in 32 bits
func (d *Decoder) readNodeID() (uint32, error) {
	id, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if id > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d", errNodeIDRange, id)
	}
	return uint32(id), nil
}

func (d *Decoder) readPoint() (int, int, error) {
	x, err := d.ReadVarint()
	if err != nil {
		return 0, 0, fmt.Errorf("read x: %w", err)
	}
	y, err := d.ReadVarint()
	if err != nil {
		return 0, 0, fmt.Errorf("read y: %w", err)
	}
	return int(x), int(y), nil
}

// EncodeEvent encodes an event to binary format
func EncodeEvent(evt Event) []byte {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	enc.WriteBytes([]byte{byte(FrameEvent), byte(evt.Type)})

	switch evt.Type {
	case EventPointerDown:
		enc.WriteUvarint(uint64(evt.NodeID))
		enc.WriteVarint(int64(evt.X))
		enc.WriteVarint(int64(evt.Y))
	case EventPointerMove, EventPointerUp:
		enc.WriteVarint(int64(evt.X))
		enc.WriteVarint(int64(evt.Y))
	case EventPointerOver:
		enc.WriteUvarint(uint64(evt.NodeID))
	}

	return buf.Bytes()
}

// DecodeEvent decodes an event from binary format
func DecodeEvent(data []byte) (*Event, error) {
	if len(data) < 2 {
		return nil, errShortFrame
	}
	if data[0] != byte(FrameEvent) {
		return nil, errWrongFrame
	}

	evt := &Event{Type: EventType(data[1])}
	dec := NewDecoder(bytes.NewReader(data[2:]))

	switch evt.Type {
	case EventPointerDown:
		id, err := dec.readNodeID()
		if err != nil {
			return nil, fmt.Errorf("decode %s node ID: %w", evt.Type, err)
		}
		evt.NodeID = id
		if evt.X, evt.Y, err = dec.readPoint(); err != nil {
			return nil, fmt.Errorf("decode %s: %w", evt.Type, err)
		}

	case EventPointerMove, EventPointerUp:
		var err error
		if evt.X, evt.Y, err = dec.readPoint(); err != nil {
			return nil, fmt.Errorf("decode %s: %w", evt.Type, err)
		}

	case EventPointerOver:
		id, err := dec.readNodeID()
		if err != nil {
			return nil, fmt.Errorf("decode %s node ID: %w", evt.Type, err)
		}
		evt.NodeID = id

	case EventPointerCancel:

	default:
		return nil, fmt.Errorf("%w: 0x%02x", errUnknownEvent, data[1])
	}

	return evt, nil
}

// EncodeNodes encodes a node frame
func EncodeNodes(nodes []NodeState) []byte {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	enc.WriteBytes([]byte{byte(FrameNodes)})
	enc.WriteUvarint(uint64(len(nodes)))
	for _, n := range nodes {
		enc.WriteUvarint(uint64(n.ID))
		enc.WriteVarint(int64(n.X))
		enc.WriteVarint(int64(n.Y))
		enc.WriteString(n.Cursor)
	}

	return buf.Bytes()
}

// DecodeNodes decodes a node frame
func DecodeNodes(data []byte) ([]NodeState, error) {
	if len(data) < 2 {
		return nil, errShortFrame
	}
	if data[0] != byte(FrameNodes) {
		return nil, errWrongFrame
	}

	dec := NewDecoder(bytes.NewReader(data[1:]))
	count, err := dec.ReadUvarint()
	if err != nil {
		return nil, fmt.Errorf("decode node count: %w", err)
	}
	if count > uint64(len(data)) {
		return nil, fmt.Errorf("node count %d exceeds frame size", count)
	}

	nodes := make([]NodeState, 0, count)
	for i := uint64(0); i < count; i++ {
		id, err := dec.readNodeID()
		if err != nil {
			return nil, fmt.Errorf("decode node %d: %w", i, err)
		}
		x, y, err := dec.readPoint()
		if err != nil {
			return nil, fmt.Errorf("decode node %d: %w", i, err)
		}
		cursor, err := dec.ReadString()
		if err != nil {
			return nil, fmt.Errorf("decode node %d cursor: %w", i, err)
		}
		nodes = append(nodes, NodeState{ID: id, X: x, Y: y, Cursor: cursor})
	}

	return nodes, nil
}

// EncodeControl encodes a control frame with optional uvarint arguments
func EncodeControl(name string, args ...uint64) []byte {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	enc.WriteBytes([]byte{byte(FrameControl)})
	enc.WriteString(name)
	for _, a := range args {
		enc.WriteUvarint(a)
	}

	return buf.Bytes()
}

// DecodeControl decodes the name of a control frame and returns a decoder
// positioned at its arguments
func DecodeControl(data []byte) (string, *Decoder, error) {
	if len(data) < 2 {
		return "", nil, errShortFrame
	}
	if data[0] != byte(FrameControl) {
		return "", nil, errWrongFrame
	}

	dec := NewDecoder(bytes.NewReader(data[1:]))
	name, err := dec.ReadString()
	if err != nil {
		return "", nil, fmt.Errorf("decode control name: %w", err)
	}
	return name, dec, nil
}
