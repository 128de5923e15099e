package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/macrat/statwatch/internal/classify"
	api "github.com/macrat/statwatch/lib-statwatch"
	"golang.org/x/time/rate"
)

const (
	// maxEmbeds is the limit of embeds in a message of Discord.
	maxEmbeds = 10

	// maxFieldValue is the limit of a field value of Discord.
	maxFieldValue = 1024
)

// EmbedField is a field of an Embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// EmbedFooter is a footer of an Embed.
type EmbedFooter struct {
	Text string `json:"text"`
}

// Embed is a rich message that compatible with Discord.
type Embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

// WebhookMessage is the body of a webhook request.
type WebhookMessage struct {
	Username string  `json:"username,omitempty"`
	Content  string  `json:"content,omitempty"`
	Embeds   []Embed `json:"embeds"`
}

// Webhook posts updates to a Discord compatible webhook.
type Webhook struct {
	URL      *url.URL
	Username string
	Title    string
	Client   *http.Client
	Limiter  *rate.Limiter
}

// NewWebhook creates a new Webhook for the URL.
func NewWebhook(rawURL string) (*Webhook, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("webhook URL must be http or https: %s", u.Redacted())
	}
	if u.Host == "" {
		return nil, fmt.Errorf("webhook URL has no host: %s", u.Redacted())
	}

	return &Webhook{
		URL:      u,
		Username: "statwatch",
		Title:    DefaultTitle,
		Client:   &http.Client{Timeout: 30 * time.Second},
		Limiter:  rate.NewLimiter(rate.Every(time.Second), 5),
	}, nil
}

func (w *Webhook) String() string {
	return w.URL.Redacted()
}

// truncate cuts s to at most n bytes without breaking a multibyte character.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	limit := n - len("…")
	end := 0
	for end < len(s) {
		_, size := utf8.DecodeRuneInString(s[end:])
		if end+size > limit {
			break
		}
		end += size
	}
	return s[:end] + "…"
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// StatusEmbed makes an Embed of the whole status.
func (w *Webhook) StatusEmbed(s api.Snapshot) Embed {
	e := Embed{
		Title:       "🌟 " + w.Title,
		Description: fmt.Sprintf("%s **%s**", classify.Emoji(s.Overall.Level), s.Overall.Description),
		Color:       Color(s.Overall.Level),
		Timestamp:   timestamp(s.Timestamp),
		Footer:      &EmbedFooter{Text: "Last Updated"},
	}

	if cs := FormatComponents(s.Components); cs != "" {
		e.Fields = append(e.Fields, EmbedField{Name: "components", Value: truncate(cs, maxFieldValue)})
	}
	if is := FormatActiveIncidents(s); is != "" {
		e.Fields = append(e.Fields, EmbedField{Name: "🚨 Active Incidents", Value: truncate(is, maxFieldValue)})
	}

	return e
}

// IncidentEmbed makes an Embed of an incident and its timeline.
func IncidentEmbed(x api.Incident) Embed {
	e := Embed{
		Title: "🚨 " + x.Name,
		Description: fmt.Sprintf(
			"**Impact**: %s\n%s **Status**: %s",
			capitalize(x.Impact.String()),
			classify.StatusEmoji(x.Status),
			capitalize(x.Status),
		),
		Color:     Color(x.Impact),
		Timestamp: timestamp(x.LatestTime()),
	}

	if len(x.Updates) > 0 {
		e.Fields = append(e.Fields, EmbedField{
			Name:  "📝 Updates",
			Value: truncate(FormatTimeline(x), maxFieldValue),
		})
	}

	return e
}

// Embed makes an Embed for an update.
func (w *Webhook) Embed(s api.Snapshot, u api.Update) Embed {
	info := api.Info(u)

	switch e := u.(type) {
	case api.InitialEvent, api.StatusChangeEvent:
		x := w.StatusEmbed(s)
		x.Title = Title(u)
		return x
	case api.ComponentUpdateEvent:
		return Embed{
			Title:       Title(u),
			Description: "┗━ " + capitalize(e.Component.DisplayStatus()),
			Color:       Color(e.Component.Status),
			Timestamp:   timestamp(info.Timestamp),
		}
	case api.NewIncidentEvent:
		return IncidentEmbed(e.Incident)
	case api.IncidentUpdateEvent:
		return IncidentEmbed(e.Incident)
	case api.IncidentResolvedEvent:
		x := IncidentEmbed(e.Incident)
		x.Color = Color(api.SeverityOperational)
		return x
	default:
		return Embed{
			Title:       Title(u),
			Description: info.Message,
			Color:       Color(api.SeverityUnknown),
			Timestamp:   timestamp(info.Timestamp),
		}
	}
}

// Messages makes webhook messages for updates.
// An update becomes an embed, and a message has 10 embeds at most.
func (w *Webhook) Messages(s api.Snapshot, updates []api.Update) []WebhookMessage {
	var ms []WebhookMessage

	for i := 0; i < len(updates); i += maxEmbeds {
		end := i + maxEmbeds
		if end > len(updates) {
			end = len(updates)
		}

		m := WebhookMessage{Username: w.Username}
		for _, u := range updates[i:end] {
			m.Embeds = append(m.Embeds, w.Embed(s, u))
		}
		ms = append(ms, m)
	}

	return ms
}

func (w *Webhook) Notify(ctx context.Context, s api.Snapshot, updates []api.Update) error {
	for _, m := range w.Messages(s, updates) {
		if w.Limiter != nil {
			if err := w.Limiter.Wait(ctx); err != nil {
				return fmt.Errorf("%s: %w", w, err)
			}
		}

		if err := w.post(ctx, m); err != nil {
			return fmt.Errorf("%s: %w", w, err)
		}
	}
	return nil
}

func (w *Webhook) post(ctx context.Context, m WebhookMessage) error {
	body, err := json.Marshal(m)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || 299 < resp.StatusCode {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	return nil
}
