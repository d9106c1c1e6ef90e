package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Skotchmaster/ecommerce/internal/logging"
	"github.com/Skotchmaster/ecommerce/internal/mykafka"
)

// publish sends an event without failing the caller; delivery errors are
// only logged.
func publish(ctx context.Context, p mykafka.Publisher, topic string, key any, event map[string]any) {
	if p == nil {
		return
	}
	event["at"] = time.Now().UTC().Format(time.RFC3339)

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(pctx, topic, fmt.Sprint(key), event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_failed", "topic", topic, "type", event["type"], "error", err)
	}
}
