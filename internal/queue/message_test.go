package queue

import "testing"

func TestMessageRoundTrip(t *testing.T) {
	msg := Message{
		DocumentID: "doc-1",
		SubjectID:  "subject-1",
		UserID:     "user-1",
		RequestID:  "req-1",
		EnqueuedAt: "2026-01-01T00:00:00Z",
		Version:    1,
	}

	payload, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}

	decoded, err := DecodeMessage(payload)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if decoded != msg {
		t.Fatalf("round trip mismatch: got %+v want %+v", decoded, msg)
	}
}

func TestDecodeMessageRejectsGarbage(t *testing.T) {
	if _, err := DecodeMessage([]byte("not json")); err == nil {
		t.Fatal("expected decode error")
	}
}
