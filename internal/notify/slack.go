package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Slack posts alerts to an incoming-webhook URL.
type Slack struct {
	Webhook string
	Client  *http.Client
}

func NewSlack(webhook string) *Slack {
	if webhook == "" {
		return nil
	}
	return &Slack{
		Webhook: webhook,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// slackPayload renders the title as the message line and the alert body as
// a preformatted attachment, which keeps the "Key: value" lines aligned.
type slackPayload struct {
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments,omitempty"`
}

type slackAttachment struct {
	Fallback string `json:"fallback"`
	Text     string `json:"text"`
	Footer   string `json:"footer"`
	TS       int64  `json:"ts"`
}

func buildSlackPayload(title, text string, at time.Time) slackPayload {
	p := slackPayload{Text: "*" + title + "*"}
	if text != "" {
		p.Attachments = []slackAttachment{{
			Fallback: title + "\n" + text,
			Text:     "```" + text + "```",
			Footer:   "uptimeboard",
			TS:       at.Unix(),
		}}
	}
	return p
}

func (s *Slack) Send(ctx context.Context, title, text string) error {
	if s == nil || s.Webhook == "" {
		return errors.New("slack disabled")
	}
	body, err := json.Marshal(buildSlackPayload(title, text, time.Now()))
	if err != nil {
		return fmt.Errorf("slack encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Webhook, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("slack non-2xx: %d %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}
