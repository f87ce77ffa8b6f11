package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type stubLineEventWriter struct {
	upserted []string
	deleted  []string
}

func (s *stubLineEventWriter) UpsertFollow(_ context.Context, lineUserID, _ string, _ *string) error {
	s.upserted = append(s.upserted, lineUserID)
	return nil
}

func (s *stubLineEventWriter) DeleteFollow(_ context.Context, lineUserID string) error {
	s.deleted = append(s.deleted, lineUserID)
	return nil
}

type stubProfileFetcher struct {
	displayName string
	fetched     []string
}

func (s *stubProfileFetcher) GetProfile(_ context.Context, lineUserID string) (string, *string, error) {
	s.fetched = append(s.fetched, lineUserID)
	return s.displayName, nil, nil
}

const webhookTestSecret = "test-channel-secret"

func signWebhookBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(webhookTestSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func newWebhookTestApp(writer *stubLineEventWriter, profiles *stubProfileFetcher) *fiber.App {
	handler := NewLineWebhookHandler(
		webhookTestSecret,
		writer,
		nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	if profiles != nil {
		handler.profiles = profiles
	}

	app := fiber.New()
	app.Post("/api/line/webhook", handler.HandleWebhook)
	return app
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	writer := &stubLineEventWriter{}
	app := newWebhookTestApp(writer, nil)

	body := []byte(`{"events":[{"type":"follow","source":{"type":"user","userId":"U-abc"}}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/line/webhook", bytes.NewReader(body))
	req.Header.Set("X-Line-Signature", base64.StdEncoding.EncodeToString([]byte("wrong")))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if len(writer.upserted) != 0 {
		t.Fatalf("unverified payload reached the event store: %v", writer.upserted)
	}
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	app := newWebhookTestApp(&stubLineEventWriter{}, nil)

	body := []byte(`{"events":[]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/line/webhook", bytes.NewReader(body))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestWebhookRecordsFollowWithProfile(t *testing.T) {
	writer := &stubLineEventWriter{}
	profiles := &stubProfileFetcher{displayName: "Taro"}
	app := newWebhookTestApp(writer, profiles)

	body := []byte(`{"events":[{"type":"follow","source":{"type":"user","userId":"U-abc"}}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/line/webhook", bytes.NewReader(body))
	req.Header.Set("X-Line-Signature", signWebhookBody(body))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(writer.upserted) != 1 || writer.upserted[0] != "U-abc" {
		t.Fatalf("expected follow recorded for U-abc, got %v", writer.upserted)
	}
	if len(profiles.fetched) != 1 || profiles.fetched[0] != "U-abc" {
		t.Fatalf("expected profile fetched for U-abc, got %v", profiles.fetched)
	}
}

func TestWebhookDeletesFollowOnUnfollow(t *testing.T) {
	writer := &stubLineEventWriter{}
	app := newWebhookTestApp(writer, nil)

	body := []byte(`{"events":[{"type":"unfollow","source":{"type":"user","userId":"U-abc"}}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/line/webhook", bytes.NewReader(body))
	req.Header.Set("X-Line-Signature", signWebhookBody(body))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(writer.deleted) != 1 || writer.deleted[0] != "U-abc" {
		t.Fatalf("expected unfollow deletion for U-abc, got %v", writer.deleted)
	}
}

func TestWebhookIgnoresNonUserSources(t *testing.T) {
	writer := &stubLineEventWriter{}
	app := newWebhookTestApp(writer, nil)

	body := []byte(`{"events":[{"type":"follow","source":{"type":"group","userId":""}},{"type":"message","source":{"type":"user","userId":"U-abc"}}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/line/webhook", bytes.NewReader(body))
	req.Header.Set("X-Line-Signature", signWebhookBody(body))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(writer.upserted) != 0 || len(writer.deleted) != 0 {
		t.Fatalf("unexpected writes: upserted=%v deleted=%v", writer.upserted, writer.deleted)
	}
}
