package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestPlayerStateMarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		state PlayerState
		want  string
	}{
		{name: "playing", state: Playing(), want: `"playing"`},
		{name: "paused", state: Paused(), want: `"paused"`},
		{name: "error carries message", state: ErrorState("socket refused"), want: `"socket refused"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.state)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(got) != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPlayerStateUnmarshalJSON(t *testing.T) {
	var s PlayerState
	if err := json.Unmarshal([]byte(`"paused"`), &s); err != nil {
		t.Fatalf("unmarshal paused: %v", err)
	}
	if !s.IsPaused() {
		t.Fatalf("expected paused, got %v", s)
	}

	if err := json.Unmarshal([]byte(`"playing"`), &s); err != nil {
		t.Fatalf("unmarshal playing: %v", err)
	}
	if s.Kind != StatePlaying {
		t.Fatalf("expected playing, got %v", s)
	}

	if err := json.Unmarshal([]byte(`"error"`), &s); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if !s.IsError() || s.Message != "error" {
		t.Fatalf("expected generic error state, got %+v", s)
	}
}

func TestPlayerStateUnmarshalRejectsUnknown(t *testing.T) {
	for _, raw := range []string{`"stopped"`, `"Paused"`, `""`, `1`, `true`, `{"kind":"paused"}`} {
		var s PlayerState
		err := json.Unmarshal([]byte(raw), &s)
		if err == nil {
			t.Fatalf("%s: expected error", raw)
		}
		if !errors.Is(err, ErrInvalidPlayerState) {
			t.Fatalf("%s: expected ErrInvalidPlayerState, got %v", raw, err)
		}
	}
}

func TestStateFromPauseFlag(t *testing.T) {
	if got := StateFromPauseFlag(true); !got.IsPaused() {
		t.Fatalf("expected paused, got %v", got)
	}
	if got := StateFromPauseFlag(false); got.Kind != StatePlaying {
		t.Fatalf("expected playing, got %v", got)
	}
}

func TestResponseEnvelope(t *testing.T) {
	body, err := json.Marshal(Success(MessagePlaybackStarted))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(body) != `{"status":"success","data":"Playback started."}` {
		t.Fatalf("unexpected success body: %s", body)
	}

	body, err = json.Marshal(Failure(Paused()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(body) != `{"status":"error","data":"paused"}` {
		t.Fatalf("unexpected conflict body: %s", body)
	}

	body, err = json.Marshal(Failure(ErrorState("player error: boom")))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(body) != `{"status":"error","data":"player error: boom"}` {
		t.Fatalf("unexpected error body: %s", body)
	}
}

func TestPlayRequestValidate(t *testing.T) {
	if err := (PlayRequest{URL: "https://example.com/a.mkv"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := (PlayRequest{URL: "   "}).Validate()
	if !errors.Is(err, ErrInvalidPlayRequest) {
		t.Fatalf("expected ErrInvalidPlayRequest, got %v", err)
	}
	if !(PlayRequest{State: Paused()}).StartPaused() {
		t.Fatal("expected StartPaused for paused state")
	}
	if (PlayRequest{State: ErrorState("error")}).StartPaused() {
		t.Fatal("error state must not start paused")
	}
}
