package bridge

import (
	"reflect"
	"testing"
)

func TestEventEncodeDecode(t *testing.T) {
	tests := []struct {
		name  string
		event *Event
	}{
		{
			name:  "no payload",
			event: &Event{Seq: 1, ViewID: 1, Name: "press"},
		},
		{
			name: "text change",
			event: &Event{
				Seq:    2,
				ViewID: 5,
				Name:   "textChange",
				Payload: map[string]any{
					"text": "hello world",
				},
			},
		},
		{
			name: "scroll",
			event: &Event{
				Seq:    3,
				ViewID: 7,
				Name:   "scroll",
				Payload: map[string]any{
					"offsetY": int64(120),
					"offsetX": int64(0),
				},
			},
		},
		{
			name: "nested payload",
			event: &Event{
				Seq:    4,
				ViewID: 9,
				Name:   "submit",
				Payload: map[string]any{
					"fields": map[string]any{
						"name":  "John",
						"email": "john@example.com",
					},
					"touches": []any{
						map[string]any{"x": int64(1), "y": int64(2)},
					},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := EncodeEvent(tt.event)
			got, err := DecodeEvent(data)
			if err != nil {
				t.Fatalf("DecodeEvent failed: %v", err)
			}
			if got.Seq != tt.event.Seq || got.ViewID != tt.event.ViewID || got.Name != tt.event.Name {
				t.Errorf("got %+v, want %+v", got, tt.event)
			}
			if !reflect.DeepEqual(got.Payload, tt.event.Payload) {
				t.Errorf("Payload = %#v, want %#v", got.Payload, tt.event.Payload)
			}
		})
	}
}

func TestEventNilPayloadRoundTrips(t *testing.T) {
	e := &Event{Seq: 1, ViewID: 1, Name: "press", Payload: nil}
	data := EncodeEvent(e)
	got, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	if got.Payload != nil {
		t.Errorf("Payload = %#v, want nil", got.Payload)
	}
}

func TestSystemChangeEncodeDecode(t *testing.T) {
	tests := []struct {
		name string
		sc   *SystemChange
	}{
		{
			name: "font scale",
			sc: &SystemChange{
				Kind:    SystemFontScale,
				Version: 3,
				Payload: map[string]any{"scale": 1.25},
			},
		},
		{
			name: "theme",
			sc: &SystemChange{
				Kind:    SystemTheme,
				Version: 4,
				Payload: map[string]any{"dark": true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := EncodeSystemChange(tt.sc)
			got, err := DecodeSystemChange(data)
			if err != nil {
				t.Fatalf("DecodeSystemChange failed: %v", err)
			}
			if got.Kind != tt.sc.Kind || got.Version != tt.sc.Version {
				t.Errorf("got %+v, want %+v", got, tt.sc)
			}
			if !reflect.DeepEqual(got.Payload, tt.sc.Payload) {
				t.Errorf("Payload = %#v, want %#v", got.Payload, tt.sc.Payload)
			}
		})
	}
}

func TestSystemChangeKindString(t *testing.T) {
	tests := []struct {
		kind SystemChangeKind
		want string
	}{
		{SystemFontScale, "FontScale"},
		{SystemLanguage, "Language"},
		{SystemTheme, "Theme"},
		{SystemAccessibility, "Accessibility"},
		{SystemChangeKind(0xFF), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("SystemChangeKind(%d).String() = %v, want %v", tt.kind, got, tt.want)
		}
	}
}
