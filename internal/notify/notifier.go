// Package notify delivers the "you are a leader" direct message with
// a per-recipient panel link.
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/matchlobby/voicebridge/internal/domain"
	"github.com/matchlobby/voicebridge/internal/metrics"
	"github.com/matchlobby/voicebridge/internal/platform"
)

// Result is the per-recipient delivery outcome.
type Result struct {
	UserID domain.UserID `json:"userId"`
	OK     bool          `json:"ok"`
	Error  string        `json:"error,omitempty"`
}

type Notifier struct {
	client platform.Messenger
}

func NewNotifier(client platform.Messenger) *Notifier {
	return &Notifier{client: client}
}

// Notify messages each recipient in turn, best effort: a failed
// delivery is recorded and the rest still go out. No pacing and no
// presence check here, unlike the batch mover.
func (n *Notifier) Notify(ctx context.Context, recipients []domain.UserID, link string) []Result {
	if link == "" {
		link = "link unavailable"
	}

	results := make([]Result, 0, len(recipients))
	for _, user := range recipients {
		unique := fmt.Sprintf("%s?leaderId=%s", link, user)
		if err := n.client.DirectMessage(ctx, user, leaderMessage(unique)); err != nil {
			metrics.LeaderNotices.WithLabelValues("error").Inc()
			log.Warn().Err(err).Str("module", "notify").Str("user", string(user)).Msg("direct message failed")
			results = append(results, Result{UserID: user, Error: err.Error()})
			continue
		}
		metrics.LeaderNotices.WithLabelValues("ok").Inc()
		log.Info().Str("module", "notify").Str("user", string(user)).Msg("leader notified")
		results = append(results, Result{UserID: user, OK: true})
	}
	return results
}

func leaderMessage(link string) string {
	return "👑 **You are a team leader!**\n\n" +
		"Open the panel to pick your team:\n🔗 " + link + "\n\n" +
		"⚠️ **Heads up:** leaders are meant to pick **one at a time**.\n" +
		"Don't use the panel while the other leader is picking."
}
