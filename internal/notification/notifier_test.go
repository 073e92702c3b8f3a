package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// ────────────────────────────────────────────────────────────
// Webhook
// ────────────────────────────────────────────────────────────

func TestWebhook_PostsJSONPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	err := n.Send(context.Background(), Alert{
		Level:   AlertInfo,
		Title:   "Price alert triggered",
		Message: "AAPL crossed above 150.00 (now 151.25)",
		Symbol:  "AAPL",
		Price:   151.25,
	})
	if err != nil {
		t.Fatal(err)
	}

	if got["level"] != "INFO" || got["symbol"] != "AAPL" {
		t.Errorf("payload = %v", got)
	}
	if got["price"] != 151.25 {
		t.Errorf("price = %v", got["price"])
	}
	if got["ts"] == nil {
		t.Error("payload missing timestamp")
	}
}

func TestWebhook_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	if err := n.Send(context.Background(), Alert{Title: "t"}); err == nil {
		t.Error("502 response should be a delivery error")
	}
}

// ────────────────────────────────────────────────────────────
// Multi fan-out
// ────────────────────────────────────────────────────────────

type stubNotifier struct {
	sent int
	err  error
}

func (s *stubNotifier) Send(ctx context.Context, alert Alert) error {
	s.sent++
	return s.err
}

func TestMulti_DeliversToAllBackends(t *testing.T) {
	a, b := &stubNotifier{}, &stubNotifier{}
	m := Multi{a, b}

	if err := m.Send(context.Background(), Alert{Title: "t"}); err != nil {
		t.Fatal(err)
	}
	if a.sent != 1 || b.sent != 1 {
		t.Errorf("sent = %d, %d", a.sent, b.sent)
	}
}

func TestMulti_FailureDoesNotStopFanOut(t *testing.T) {
	boom := errors.New("boom")
	a := &stubNotifier{err: boom}
	b := &stubNotifier{}
	m := Multi{a, b}

	err := m.Send(context.Background(), Alert{Title: "t"})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want first delivery error", err)
	}
	// The failing backend must not shadow the healthy one.
	if b.sent != 1 {
		t.Errorf("second backend sent = %d, want 1", b.sent)
	}
}

// ────────────────────────────────────────────────────────────
// Telegram markdown escaping
// ────────────────────────────────────────────────────────────

func TestEscapeMarkdown(t *testing.T) {
	got := escapeMarkdown("BRK-B crossed 100.50!")
	want := `BRK\-B crossed 100\.50\!`
	if got != want {
		t.Errorf("escaped = %q, want %q", got, want)
	}
	if got := escapeMarkdown("plain words"); got != "plain words" {
		t.Errorf("plain text must pass through, got %q", got)
	}
}
