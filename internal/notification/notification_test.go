package notification

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerNotifierWritesMessage(t *testing.T) {
	var buf bytes.Buffer
	n := NewLoggerNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := n.Send(context.Background(), Message{Kind: KindPayment, Destination: "08031234567", Body: "Payment received"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	for _, want := range []string{`"kind":"payment_recorded"`, `"destination":"08031234567"`} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("expected %s in %s", want, buf.String())
		}
	}
}

func TestNilLoggerNotifierIsNoop(t *testing.T) {
	var n *LoggerNotifier
	if err := n.Send(context.Background(), Message{Kind: KindRegistration}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
