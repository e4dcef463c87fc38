package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	colorGreen = 0x2ECC71 // success
	colorRed   = 0xE74C3C // error
	colorBlue  = 0x3498DB // info
)

// DiscordNotifier mirrors notifications to a Discord channel via webhook so
// the marketplace team sees quote requests and storefront errors.
type DiscordNotifier struct {
	webhookURL string
	username   string
	client     *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		username:   "storefront",
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = c
	}
}

// WithUsername overrides the webhook display name.
func WithUsername(name string) DiscordOption {
	return func(d *DiscordNotifier) {
		d.username = name
	}
}

type discordWebhookPayload struct {
	Username string         `json:"username,omitempty"`
	Embeds   []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string `json:"title"`
	Color       int    `json:"color"`
	Description string `json:"description,omitempty"`
}

// Notify posts n as a single embed.
func (d *DiscordNotifier) Notify(ctx context.Context, n Notification) error {
	payload := discordWebhookPayload{
		Username: d.username,
		Embeds:   []discordEmbed{buildEmbed(n)},
	}
	return d.post(ctx, payload)
}

func buildEmbed(n Notification) discordEmbed {
	title := n.Title
	if title == "" {
		title = fmt.Sprintf("Storefront %s", n.Level)
	}
	return discordEmbed{
		Title:       title,
		Color:       levelColor(n.Level),
		Description: n.Message,
	}
}

func levelColor(l Level) int {
	switch l {
	case LevelSuccess:
		return colorGreen
	case LevelError:
		return colorRed
	default:
		return colorBlue
	}
}

func (d *DiscordNotifier) post(ctx context.Context, payload discordWebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		d.webhookURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("discord rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("discord returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
