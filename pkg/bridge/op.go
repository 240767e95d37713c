package bridge

import "errors"

// ErrUnknownOp is returned when decoding encounters an op kind byte this
// version of the bridge does not recognize.
var ErrUnknownOp = errors.New("bridge: unknown op kind")

// OpKind is the mutation operation discriminator. The bridge carries exactly
// these six kinds — there is intentionally no "execute arbitrary code on the
// native side" operation (mirroring the precedent of dropping an eval-style
// op from the wire format entirely: sending executable payloads across the
// bridge is an injection risk the contract rules out by construction).
type OpKind uint8

const (
	OpCreate      OpKind = 0x01
	OpUpdate      OpKind = 0x02
	OpDelete      OpKind = 0x03
	OpAttach      OpKind = 0x04
	OpBindEvent   OpKind = 0x05
	OpUnbindEvent OpKind = 0x06
)

// String returns the human-readable name of the op kind.
func (k OpKind) String() string {
	switch k {
	case OpCreate:
		return "Create"
	case OpUpdate:
		return "Update"
	case OpDelete:
		return "Delete"
	case OpAttach:
		return "Attach"
	case OpBindEvent:
		return "BindEvent"
	case OpUnbindEvent:
		return "UnbindEvent"
	default:
		return "Unknown"
	}
}

// Op is a single mutation operation in the outbound envelope (§6). Only the
// fields relevant to Kind are populated; see the constructors below.
//
//	Create{ViewID, Type, PropsJSON}
//	Update{ViewID, PropsJSONDiff}
//	Delete{ViewID}
//	Attach{ParentID, ChildID, Index}
//	BindEvent{ViewID, Event}
//	UnbindEvent{ViewID, Event}
type Op struct {
	Kind OpKind

	ViewID ViewID // Create, Update, Delete, BindEvent, UnbindEvent
	Type   string // Create: native widget type string

	// PropsJSON carries the full prop set on Create and the changed-keys
	// diff on Update, both pre-serialized UTF-8 JSON. Event-handler props
	// are never present here; their presence is carried by BindEvent /
	// UnbindEvent instead.
	PropsJSON string

	ParentID ViewID // Attach
	ChildID  ViewID // Attach
	Index    int    // Attach

	Event string // BindEvent, UnbindEvent
}

// ViewID mirrors vdom.ViewID without importing pkg/vdom, keeping the wire
// format independent of the in-process node representation.
type ViewID int64

func NewCreateOp(id ViewID, typ, propsJSON string) Op {
	return Op{Kind: OpCreate, ViewID: id, Type: typ, PropsJSON: propsJSON}
}

func NewUpdateOp(id ViewID, propsJSONDiff string) Op {
	return Op{Kind: OpUpdate, ViewID: id, PropsJSON: propsJSONDiff}
}

func NewDeleteOp(id ViewID) Op {
	return Op{Kind: OpDelete, ViewID: id}
}

func NewAttachOp(parent, child ViewID, index int) Op {
	return Op{Kind: OpAttach, ParentID: parent, ChildID: child, Index: index}
}

func NewBindEventOp(id ViewID, event string) Op {
	return Op{Kind: OpBindEvent, ViewID: id, Event: event}
}

func NewUnbindEventOp(id ViewID, event string) Op {
	return Op{Kind: OpUnbindEvent, ViewID: id, Event: event}
}

// Batch is a sequenced group of ops dispatched together over the bridge
// (begin_batch / commit_batch, §4.8).
type Batch struct {
	Seq uint64
	Ops []Op
}

// EncodeBatch encodes a batch to bytes.
func EncodeBatch(b *Batch) []byte {
	e := NewEncoder()
	EncodeBatchTo(e, b)
	return e.Bytes()
}

// EncodeBatchTo encodes a batch using the provided encoder.
func EncodeBatchTo(e *Encoder, b *Batch) {
	e.WriteUvarint(b.Seq)
	e.WriteUvarint(uint64(len(b.Ops)))
	for i := range b.Ops {
		encodeOp(e, &b.Ops[i])
	}
}

func encodeOp(e *Encoder, op *Op) {
	e.WriteByte(byte(op.Kind))

	switch op.Kind {
	case OpCreate:
		e.WriteSvarint(int64(op.ViewID))
		e.WriteString(op.Type)
		e.WriteString(op.PropsJSON)

	case OpUpdate:
		e.WriteSvarint(int64(op.ViewID))
		e.WriteString(op.PropsJSON)

	case OpDelete:
		e.WriteSvarint(int64(op.ViewID))

	case OpAttach:
		e.WriteSvarint(int64(op.ParentID))
		e.WriteSvarint(int64(op.ChildID))
		e.WriteUvarint(uint64(op.Index))

	case OpBindEvent, OpUnbindEvent:
		e.WriteSvarint(int64(op.ViewID))
		e.WriteString(op.Event)
	}
}

// DecodeBatch decodes a batch from bytes.
// SECURITY: Enforces a collection-count bound via ReadCollectionCount,
// preventing a hostile or buggy peer from forcing unbounded allocation.
func DecodeBatch(data []byte) (*Batch, error) {
	d := NewDecoder(data)
	return DecodeBatchFrom(d)
}

// DecodeBatchFrom decodes a batch from a decoder.
func DecodeBatchFrom(d *Decoder) (*Batch, error) {
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
			return nil, err
		}
	}

	return &Batch{Seq: seq, Ops: ops}, nil
}

func decodeOp(d *Decoder, op *Op) error {
	kindByte, err := d.ReadByte()
	if err != nil {
		return err
	}
	op.Kind = OpKind(kindByte)

	switch op.Kind {
	case OpCreate:
		v, err := d.ReadSvarint()
		if err != nil {
			return err
		}
		op.ViewID = ViewID(v)
		if op.Type, err = d.ReadString(); err != nil {
			return err
		}
		op.PropsJSON, err = d.ReadString()
		return err

	case OpUpdate:
		v, err := d.ReadSvarint()
		if err != nil {
			return err
		}
		op.ViewID = ViewID(v)
		op.PropsJSON, err = d.ReadString()
		return err

	case OpDelete:
		v, err := d.ReadSvarint()
		if err != nil {
			return err
		}
		op.ViewID = ViewID(v)
		return nil

	case OpAttach:
		p, err := d.ReadSvarint()
		if err != nil {
			return err
		}
		c, err := d.ReadSvarint()
		if err != nil {
			return err
		}
		idx, err := d.ReadUvarint()
		if err != nil {
			return err
		}
		op.ParentID = ViewID(p)
		op.ChildID = ViewID(c)
		op.Index = int(idx)
		return nil

	case OpBindEvent, OpUnbindEvent:
		v, err := d.ReadSvarint()
		if err != nil {
			return err
		}
		op.ViewID = ViewID(v)
		op.Event, err = d.ReadString()
		return err

	default:
		return ErrUnknownOp
	}
}
