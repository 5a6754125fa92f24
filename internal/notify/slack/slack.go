// Package slack sends build notifications to Slack via incoming webhooks.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/preslist/internal/build"
)

const (
	maxDetailLen = 3000
	maxWarnings  = 20
	httpTimeout  = 10 * time.Second
)

// Notifier sends finished build runs to a Slack webhook.
type Notifier struct {
	webhookURL string
	client     *http.Client
	logger     log.Logger
}

// New creates a new Slack notifier. If webhookURL is empty, Send is a no-op.
func New(webhookURL string, logger log.Logger) *Notifier {
	if logger == nil {
		logger = log.Nop()
	}
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
		logger:     logger,
	}
}

// Send posts a build summary to the configured Slack webhook.
// If no webhook URL is configured, it returns nil immediately.
func (n *Notifier) Send(ctx context.Context, run *build.Run) error {
	if n.webhookURL == "" {
		return nil
	}

	body, err := json.Marshal(buildMessage(run))
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	n.logger.Info(ctx, "slack notification sent", "build_id", run.ID, "status", run.Status)
	return nil
}

func buildMessage(r *build.Run) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			headerBlock(r),
			{"type": "divider"},
			fieldsBlock(r),
			{"type": "divider"},
			detailBlock(r),
			{"type": "divider"},
			contextBlock(r),
		},
	}
}

func headerBlock(r *build.Run) map[string]any {
	title := "Build Complete"
	if r.Status == build.StatusFailed {
		title = "Build Failed"
	}
	text := fmt.Sprintf("%s %s: %s", statusEmoji(r), title, scope(r.Request))

	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": text,
		},
	}
}

func fieldsBlock(r *build.Run) map[string]any {
	field := func(format string, args ...any) map[string]any {
		return map[string]any{"type": "mrkdwn", "text": fmt.Sprintf(format, args...)}
	}
	return map[string]any{
		"type": "section",
		"fields": []map[string]any{
			field("*Status:* %s", r.Status),
			field("*Duration:* %.1fs", r.Duration),
			field("*Members:* %d", len(r.Outputs)),
			field("*Documents:* %d", r.Documents()),
			field("*Skipped:* %d", r.Skipped),
			field("*Warnings:* %d", len(r.Warnings)),
		},
	}
}

// detailBlock shows the failure reason, or the unresolved references of a
// successful run.
func detailBlock(r *build.Run) map[string]any {
	var text string
	switch {
	case r.Status == build.StatusFailed:
		text = "*Error*\n\n" + truncate(r.Error, maxDetailLen)
	case len(r.Warnings) == 0:
		text = "_No unresolved references._"
	default:
		var b strings.Builder
		b.WriteString("*Warnings*\n")
		for i, w := range r.Warnings {
			if i == maxWarnings {
				fmt.Fprintf(&b, "\n_and %d more_", len(r.Warnings)-maxWarnings)
				break
			}
			fmt.Fprintf(&b, "\n• `%s` %s: %s", w.Presentation, w.Kind, w.Ref)
		}
		text = truncate(b.String(), maxDetailLen)
	}

	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": text,
		},
	}
}

func contextBlock(r *build.Run) map[string]any {
	ts := r.CompletedAt
	if ts.IsZero() {
		ts = r.CreatedAt
	}

	elements := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("preslist • build %s • %s", r.ID, ts.UTC().Format("2006-01-02 15:04 UTC")),
		},
	}

	return map[string]any{
		"type":     "context",
		"elements": elements,
	}
}

func statusEmoji(r *build.Run) string {
	switch {
	case r.Status == build.StatusFailed:
		return "\U0001f534" // red circle
	case len(r.Warnings) > 0:
		return "\U0001f7e1" // yellow circle
	default:
		return "\U0001f7e2" // green circle
	}
}

// scope names what a request built, e.g. "people jdoe, bsmith".
func scope(req build.Request) string {
	var parts []string
	if len(req.Groups) > 0 {
		parts = append(parts, "groups "+strings.Join(req.Groups, ", "))
	}
	if len(req.People) > 0 {
		parts = append(parts, "people "+strings.Join(req.People, ", "))
	}
	if len(parts) == 0 {
		return "all groups"
	}
	return strings.Join(parts, "; ")
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
