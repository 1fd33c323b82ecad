// Package mover applies bulk member reassignments against the
// platform's rate-limited move API.
package mover

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/matchlobby/voicebridge/internal/domain"
	"github.com/matchlobby/voicebridge/internal/metrics"
	"github.com/matchlobby/voicebridge/internal/platform"
)

type Executor struct {
	client platform.Mover
	delay  time.Duration
}

func NewExecutor(client platform.Mover, delay time.Duration) *Executor {
	return &Executor{client: client, delay: delay}
}

// Execute runs the commands strictly one at a time with a fixed pause
// after each, so the platform's per-action rate limit is never
// contended. Per-command failures become result entries; only a
// failed group resolution aborts the batch, and it does so before any
// command runs. Results come back in command order.
func (e *Executor) Execute(ctx context.Context, group domain.GroupID, cmds []domain.ReassignmentCommand) ([]domain.ReassignmentResult, error) {
	if _, err := e.client.ResolveGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("resolve group %s: %w", group, err)
	}

	results := make([]domain.ReassignmentResult, 0, len(cmds))
	for _, cmd := range cmds {
		results = append(results, e.apply(ctx, group, cmd))
		// Fixed spacing after every command, pass or fail. A started
		// batch always runs to the end; there is no cancellation path.
		time.Sleep(e.delay)
	}
	return results, nil
}

func (e *Executor) apply(ctx context.Context, group domain.GroupID, cmd domain.ReassignmentCommand) domain.ReassignmentResult {
	_, present, err := e.client.VoicePresence(ctx, group, cmd.UserID)
	if err != nil {
		metrics.MemberMoves.WithLabelValues("error").Inc()
		return domain.ReassignmentResult{UserID: cmd.UserID, Reason: err.Error()}
	}
	if !present {
		metrics.MemberMoves.WithLabelValues("not_in_voice").Inc()
		return domain.ReassignmentResult{UserID: cmd.UserID, Reason: domain.ReasonNotInVoice}
	}

	if err := e.client.MoveMember(ctx, group, cmd.UserID, cmd.RoomID); err != nil {
		metrics.MemberMoves.WithLabelValues("error").Inc()
		log.Warn().Err(err).Str("module", "mover").Str("user", string(cmd.UserID)).Str("room", string(cmd.RoomID)).Msg("move rejected")
		return domain.ReassignmentResult{UserID: cmd.UserID, Reason: err.Error()}
	}

	metrics.MemberMoves.WithLabelValues("ok").Inc()
	log.Info().Str("module", "mover").Str("user", string(cmd.UserID)).Str("room", string(cmd.RoomID)).Msg("member moved")
	return domain.ReassignmentResult{UserID: cmd.UserID, OK: true}
}
