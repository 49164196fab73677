package decode

import "testing"

type samplePayload struct {
	ReceiverID string `json:"receiverId"`
	IsTyping   bool   `json:"isTyping"`
	Count      int    `json:"count"`
}

func TestDecodeMapMatchesJSONTags(t *testing.T) {
	got, err := DecodeMap[samplePayload](map[string]any{
		"receiverId": "u-1",
		"isTyping":   true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.ReceiverID != "u-1" || !got.IsTyping {
		t.Fatalf("decoded = %+v", got)
	}
}

func TestDecodeMapFloatToInt(t *testing.T) {
	// JSON numbers arrive as float64; integer targets still decode.
	got, err := DecodeMap[samplePayload](map[string]any{"count": float64(42)})
	if err != nil {
		t.Fatal(err)
	}
	if got.Count != 42 {
		t.Fatalf("count = %d, want 42", got.Count)
	}
}

func TestDecodeMapWeakTyping(t *testing.T) {
	got, err := DecodeMap[samplePayload](map[string]any{"count": "7"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Count != 7 {
		t.Fatalf("count = %d, want 7", got.Count)
	}
}

func TestDecodeMapIgnoresUnknownFields(t *testing.T) {
	got, err := DecodeMap[samplePayload](map[string]any{
		"receiverId": "u-1",
		"extra":      "ignored",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.ReceiverID != "u-1" {
		t.Fatalf("decoded = %+v", got)
	}
}

func TestDecodeMapNilPayload(t *testing.T) {
	if _, err := DecodeMap[samplePayload](nil); err == nil {
		t.Fatal("nil payload should fail")
	}
}

type nestedPayload struct {
	Meta map[string]any `json:"meta"`
}

func TestDecodeMapStringifiedObject(t *testing.T) {
	got, err := DecodeMap[nestedPayload](map[string]any{
		"meta": `{"k":"v"}`,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.Meta["k"] != "v" {
		t.Fatalf("meta = %v", got.Meta)
	}
}
