package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/h-ogasawara/GolfSchoolBack/internal/services"
)

type lineProfileFetcher interface {
	GetProfile(ctx context.Context, lineUserID string) (displayName string, pictureURL *string, err error)
}

type lineEventWriter interface {
	UpsertFollow(ctx context.Context, lineUserID, displayName string, pictureURL *string) error
	DeleteFollow(ctx context.Context, lineUserID string) error
}

// LineWebhookHandler receives follow/unfollow events from the LINE
// platform. The payload is only trusted after the signature check against
// the channel secret.
type LineWebhookHandler struct {
	channelSecret []byte
	lineEvents    lineEventWriter
	profiles      lineProfileFetcher
	log           *slog.Logger
}

func NewLineWebhookHandler(
	channelSecret string,
	lineEvents lineEventWriter,
	notifier *services.LineBotNotifier,
	log *slog.Logger,
) *LineWebhookHandler {
	h := &LineWebhookHandler{
		channelSecret: []byte(channelSecret),
		lineEvents:    lineEvents,
		log:           log,
	}
	if notifier != nil {
		h.profiles = notifier
	}
	return h
}

type lineWebhookPayload struct {
	Events []struct {
		Type   string `json:"type"`
		Source struct {
			Type   string `json:"type"`
			UserID string `json:"userId"`
		} `json:"source"`
	} `json:"events"`
}

func (h *LineWebhookHandler) HandleWebhook(c *fiber.Ctx) error {
	body := c.Body()
	if !h.validSignature(body, c.Get("X-Line-Signature")) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid signature"})
	}

	var payload lineWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payload"})
	}

	for _, event := range payload.Events {
		if event.Source.Type != "user" || event.Source.UserID == "" {
			continue
		}
		switch event.Type {
		case "follow":
			h.recordFollow(c.Context(), event.Source.UserID)
		case "unfollow":
			if err := h.lineEvents.DeleteFollow(c.Context(), event.Source.UserID); err != nil {
				h.log.Warn("delete follow failed", "line_user_id", event.Source.UserID, "err", err)
			}
		}
	}

	// LINE retries on non-2xx; a verified payload is always acknowledged.
	return c.SendStatus(fiber.StatusOK)
}

func (h *LineWebhookHandler) validSignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	decoded, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, h.channelSecret)
	mac.Write(body)
	return hmac.Equal(decoded, mac.Sum(nil))
}

func (h *LineWebhookHandler) recordFollow(ctx context.Context, lineUserID string) {
	displayName := ""
	var pictureURL *string
	if h.profiles != nil {
		name, picture, err := h.profiles.GetProfile(ctx, lineUserID)
		if err != nil {
			h.log.Warn("fetch line profile failed", "line_user_id", lineUserID, "err", err)
		} else {
			displayName = name
			pictureURL = picture
		}
	}
	if err := h.lineEvents.UpsertFollow(ctx, lineUserID, displayName, pictureURL); err != nil {
		h.log.Warn("record follow failed", "line_user_id", lineUserID, "err", err)
	}
}
