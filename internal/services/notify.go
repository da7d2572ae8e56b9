package services

import (
	"context"
	"fmt"
	"log/slog"

	pubnub "github.com/pubnub/go/v7"
)

// PubNubNotifier pushes lifecycle events to per-purchaser channels.
type PubNubNotifier struct {
	pn *pubnub.PubNub
}

func NewPubNubNotifier(pn *pubnub.PubNub) *PubNubNotifier {
	return &PubNubNotifier{pn: pn}
}

// Publish sends the payload to the purchaser's channel. Delivery failure
// is logged and swallowed; the triggering operation must not fail because
// a notification did.
func (n *PubNubNotifier) Publish(_ context.Context, purchaserID string, payload map[string]any) {
	channel := fmt.Sprintf("user-%s", purchaserID)

	_, _, err := n.pn.Publish().
		Channel(channel).
		Message(payload).
		Execute()
	if err != nil {
		slog.Error("publish lifecycle notification", "channel", channel, "error", err)
	}
}

// NoopNotifier is used in tests and when PubNub is not configured.
type NoopNotifier struct{}

func (NoopNotifier) Publish(context.Context, string, map[string]any) {}
