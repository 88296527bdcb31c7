package commands

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/ccollicutt/logseek/pkg/bench"
	"github.com/ccollicutt/logseek/pkg/config"
	"github.com/ccollicutt/logseek/pkg/reader"
	"github.com/ccollicutt/logseek/pkg/webhook"
)

// addCLIWebhook appends the webhook given by --webhook-url, if any.
func addCLIWebhook(cfg *config.Config, url, token string, trigger config.WebhookTrigger) {
	if url == "" {
		return
	}
	cfg.Webhooks = append(cfg.Webhooks, config.WebhookConfig{
		Name:    "cli",
		URL:     url,
		Token:   token,
		Trigger: trigger,
		Timeout: config.DefaultWebhookTimeout,
	})
}

// addWebhookListeners registers a notifier on rd for every lines webhook.
func addWebhookListeners(rd *reader.Reader, cfg *config.Config, logger *zap.Logger) []*webhook.LineNotifier {
	hooks := cfg.WebhooksFor(config.WebhookTriggerLines)
	if len(hooks) == 0 {
		return nil
	}

	client := webhook.NewClient()
	notifiers := make([]*webhook.LineNotifier, 0, len(hooks))
	for _, wh := range hooks {
		n := webhook.NewLineNotifier(client, wh.DisplayName(), webhook.SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		}, webhook.WithFilter(wh.CompiledFilter()), webhook.WithLogger(logger))
		rd.AddListener(n)
		notifiers = append(notifiers, n)
	}
	return notifiers
}

// sendBenchWebhooks posts the report to every bench webhook.
// Errors are written to w but don't fail the benchmark.
func sendBenchWebhooks(ctx context.Context, cfg *config.Config, report *bench.Report, w io.Writer) {
	hooks := cfg.WebhooksFor(config.WebhookTriggerBench)
	if len(hooks) == 0 {
		return
	}

	client := webhook.NewClient()
	for _, wh := range hooks {
		resp := client.Send(ctx, report, webhook.SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		})
		if resp.Success() {
			fmt.Fprintf(w, "Webhook %s: sent (%d, %s)\n", wh.DisplayName(), resp.StatusCode, resp.Duration)
		} else {
			fmt.Fprintf(w, "Webhook %s: failed (%v)\n", wh.DisplayName(), resp.Error)
		}
	}
}
