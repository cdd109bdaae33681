package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := NewBus()
	var got []Toast
	unsubscribe := bus.Subscribe(func(toast Toast) { got = append(got, toast) })

	if err := bus.Send(context.Background(), Toast{Level: LevelSuccess, Text: "OTP Verified!"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	unsubscribe()
	if err := bus.Send(context.Background(), Toast{Level: LevelInfo, Text: "ignored"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 toast, got %d", len(got))
	}
	if got[0].Text != "OTP Verified!" {
		t.Fatalf("unexpected toast %+v", got[0])
	}
}

func TestLoggerNotifierNilSafe(t *testing.T) {
	var n *LoggerNotifier
	if err := n.Send(context.Background(), Toast{Text: "x"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestLoggerNotifierAddressedMessage(t *testing.T) {
	var buf bytes.Buffer
	n := NewLoggerNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	if err := n.Send(context.Background(), Toast{Level: LevelInfo, Text: "Your OTP is 123456", To: "9876543210"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line["msg"] != "message sent" || line["to"] != "9876543210" || line["text"] != "Your OTP is 123456" {
		t.Fatalf("unexpected log line %v", line)
	}
}
