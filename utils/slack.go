package utils

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// SlackWebhookEnv names the env var holding the incoming webhook URL.
const SlackWebhookEnv = "SLACK_WEBHOOK_URL"

// SendSlackNotification posts msg to the configured Slack webhook. It is a
// no-op when no webhook is configured; delivery failures are only logged.
func SendSlackNotification(msg string) {
	webhook := os.Getenv(SlackWebhookEnv)
	if webhook == "" {
		return
	}
	if err := postSlackMessage(context.Background(), webhook, msg); err != nil {
		logrus.Warnf("Could not send slack notification: %v", err)
	}
}

func postSlackMessage(ctx context.Context, webhook string, msg string) error {
	body, err := json.Marshal(map[string]string{"text": msg})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err = NewRestfulClient(webhook, "").Post(ctx, "", body)
	return err
}
