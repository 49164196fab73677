package model

import "testing"

func TestHasContent(t *testing.T) {
	cases := []struct {
		name string
		msg  Message
		want bool
	}{
		{"empty", Message{}, false},
		{"text", Message{Text: "hi"}, true},
		{"image", Message{Image: "data:image/png;base64,AA=="}, true},
		{"voice", Message{VoiceMessage: "data:audio/webm;base64,AA==", IsVoice: true}, true},
		{"flag without payload", Message{IsVoice: true}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.msg.HasContent(); got != tc.want {
				t.Fatalf("HasContent() = %v, want %v", got, tc.want)
			}
		})
	}
}
