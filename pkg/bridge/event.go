package bridge

import (
	"io"
)

// ValueType identifies the wire type of a single payload value. Event and
// system-change payloads are open-ended maps (native event taxonomy is
// host-defined, not enumerated by the bridge), so values are self-describing
// on the wire rather than keyed to a fixed per-event-type struct.
type ValueType uint8

const (
	ValueNull   ValueType = 0x00
	ValueBool   ValueType = 0x01
	ValueInt    ValueType = 0x02
	ValueFloat  ValueType = 0x03
	ValueString ValueType = 0x04
	ValueArray  ValueType = 0x05
	ValueObject ValueType = 0x06
)

// Event is the inbound event envelope (§6): a view, an opaque event name
// (e.g. "press", "longPress", "scroll", "textChange" — defined by the host
// widget, not this package), and an arbitrary payload map. The engine looks
// up the handler registered for (ViewID, Name) and invokes it synchronously
// on the render thread.
type Event struct {
	Seq    uint64
	ViewID ViewID
	Name   string
	Payload map[string]any
}

// SystemChangeKind identifies a process-wide system change delivered
// independent of any single view (§4.8 deliver_system_change).
type SystemChangeKind uint8

const (
	SystemFontScale     SystemChangeKind = 0x01
	SystemLanguage      SystemChangeKind = 0x02
	SystemTheme         SystemChangeKind = 0x03
	SystemAccessibility SystemChangeKind = 0x04
)

// String returns the human-readable name of the system change kind.
func (k SystemChangeKind) String() string {
	switch k {
	case SystemFontScale:
		return "FontScale"
	case SystemLanguage:
		return "Language"
	case SystemTheme:
		return "Theme"
	case SystemAccessibility:
		return "Accessibility"
	default:
		return "Unknown"
	}
}

// SystemChange carries a process-wide system change and the new value of
// the monotonic version counter it increments (§4.8); components read the
// counter via context to know when to re-derive system-dependent state.
type SystemChange struct {
	Kind    SystemChangeKind
	Version uint64
	Payload map[string]any
}

// EncodeEvent encodes an event to bytes.
func EncodeEvent(e *Event) []byte {
	enc := NewEncoder()
	EncodeEventTo(enc, e)
	return enc.Bytes()
}

// EncodeEventTo encodes an event using the provided encoder.
func EncodeEventTo(enc *Encoder, e *Event) {
	enc.WriteUvarint(e.Seq)
	enc.WriteSvarint(int64(e.ViewID))
	enc.WriteString(e.Name)
	encodeValue(enc, e.Payload)
}

// DecodeEvent decodes an event from bytes.
func DecodeEvent(data []byte) (*Event, error) {
	d := NewDecoder(data)
	return DecodeEventFrom(d)
}

// DecodeEventFrom decodes an event from a decoder.
func DecodeEventFrom(d *Decoder) (*Event, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	viewID, err := d.ReadSvarint()
	if err != nil {
		return nil, err
	}
	name, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	payload, err := decodeValue(d, newDepthContext(MaxPayloadDepth))
	if err != nil {
		return nil, err
	}
	obj, _ := payload.(map[string]any)
	return &Event{Seq: seq, ViewID: ViewID(viewID), Name: name, Payload: obj}, nil
}

// EncodeSystemChange encodes a system change to bytes.
func EncodeSystemChange(sc *SystemChange) []byte {
	enc := NewEncoder()
	enc.WriteByte(byte(sc.Kind))
	enc.WriteUvarint(sc.Version)
	encodeValue(enc, sc.Payload)
	return enc.Bytes()
}

// DecodeSystemChange decodes a system change from bytes.
func DecodeSystemChange(data []byte) (*SystemChange, error) {
	d := NewDecoder(data)
	kind, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	version, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	payload, err := decodeValue(d, newDepthContext(MaxPayloadDepth))
	if err != nil {
		return nil, err
	}
	obj, _ := payload.(map[string]any)
	return &SystemChange{Kind: SystemChangeKind(kind), Version: version, Payload: obj}, nil
}

// encodeValue writes a self-describing value: nil, bool, int, float64,
// string, []any, or map[string]any. Anything else encodes as null.
func encodeValue(enc *Encoder, v any) {
	switch val := v.(type) {
	case nil:
		enc.WriteByte(byte(ValueNull))
	case bool:
		enc.WriteByte(byte(ValueBool))
		enc.WriteBool(val)
	case int:
		enc.WriteByte(byte(ValueInt))
		enc.WriteSvarint(int64(val))
	case int64:
		enc.WriteByte(byte(ValueInt))
		enc.WriteSvarint(val)
	case float64:
		enc.WriteByte(byte(ValueFloat))
		enc.WriteFloat64(val)
	case string:
		enc.WriteByte(byte(ValueString))
		enc.WriteString(val)
	case []any:
		enc.WriteByte(byte(ValueArray))
		enc.WriteUvarint(uint64(len(val)))
		for _, item := range val {
			encodeValue(enc, item)
		}
	case map[string]any:
		if val == nil {
			enc.WriteByte(byte(ValueNull))
			break
		}
		enc.WriteByte(byte(ValueObject))
		enc.WriteUvarint(uint64(len(val)))
		for k, item := range val {
			enc.WriteString(k)
			encodeValue(enc, item)
		}
	default:
		enc.WriteByte(byte(ValueNull))
	}
}

// decodeValue reads a value written by encodeValue. dc bounds recursion
// depth for ValueArray/ValueObject against a hostile or buggy peer sending
// deeply nested payloads.
func decodeValue(d *Decoder, dc *depthContext) (any, error) {
	typeByte, err := d.ReadByte()
	if err != nil {
		return nil, err
	}

	switch ValueType(typeByte) {
	case ValueNull:
		return nil, nil

	case ValueBool:
		return d.ReadBool()

	case ValueInt:
		return d.ReadSvarint()

	case ValueFloat:
		return d.ReadFloat64()

	case ValueString:
		return d.ReadString()

	case ValueArray:
		if err := dc.enter(); err != nil {
			return nil, err
		}
		defer dc.leave()
		count, err := d.ReadCollectionCount()
		if err != nil {
			return nil, err
		}
		arr := make([]any, count)
		for i := 0; i < count; i++ {
			val, err := decodeValue(d, dc)
			if err != nil {
				return nil, err
			}
			arr[i] = val
		}
		return arr, nil

	case ValueObject:
		if err := dc.enter(); err != nil {
			return nil, err
		}
		defer dc.leave()
		count, err := d.ReadCollectionCount()
		if err != nil {
			return nil, err
		}
		obj := make(map[string]any, count)
		for i := 0; i < count; i++ {
			key, err := d.ReadString()
			if err != nil {
				return nil, err
			}
			val, err := decodeValue(d, dc)
			if err != nil {
				return nil, err
			}
			obj[key] = val
		}
		return obj, nil

	default:
		return nil, io.ErrUnexpectedEOF
	}
}
