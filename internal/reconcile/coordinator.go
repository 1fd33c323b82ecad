// Package reconcile owns the debounce timers, the publish decision
// and the process-wide roster snapshot. All mutable state lives in
// the Coordinator; event producers only get its methods.
package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/matchlobby/voicebridge/internal/domain"
	"github.com/matchlobby/voicebridge/internal/metrics"
	"github.com/matchlobby/voicebridge/internal/platform"
	"github.com/matchlobby/voicebridge/internal/roster"
)

// Update is the payload delivered downstream on every publish.
type Update struct {
	EventID   string           `json:"eventId"`
	GroupID   domain.GroupID   `json:"groupId"`
	GroupName domain.GroupName `json:"groupName"`
	RoomID    domain.RoomID    `json:"roomId"`
	RoomName  domain.RoomName  `json:"roomName"`
	Roster    domain.Roster    `json:"roster"`
}

// Publisher delivers one Update to the downstream sink.
type Publisher interface {
	Publish(ctx context.Context, u Update) error
}

type Coordinator struct {
	fetcher     platform.MemberFetcher
	lister      platform.RoomLister
	pub         Publisher
	cache       *roster.Cache
	window      time.Duration
	callTimeout time.Duration

	mu      sync.Mutex
	pending map[domain.RoomID]*time.Timer
	current domain.Roster
}

func NewCoordinator(
	fetcher platform.MemberFetcher,
	lister platform.RoomLister,
	pub Publisher,
	cache *roster.Cache,
	window time.Duration,
	callTimeout time.Duration,
) *Coordinator {
	return &Coordinator{
		fetcher:     fetcher,
		lister:      lister,
		pub:         pub,
		cache:       cache,
		window:      window,
		callTimeout: callTimeout,
		pending:     make(map[domain.RoomID]*time.Timer),
	}
}

// Notify coalesces a burst of membership events into one delayed scan
// per room. A newer event for the same room supersedes the pending
// timer; rooms never affect each other. Returns immediately.
func (c *Coordinator) Notify(room domain.Room) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.pending[room.ID]; ok {
		t.Stop()
		metrics.DebounceResets.Inc()
	}
	c.pending[room.ID] = time.AfterFunc(c.window, func() {
		c.mu.Lock()
		delete(c.pending, room.ID)
		c.mu.Unlock()
		c.scan(room)
	})
}

// scan runs when a debounce window elapses: fetch authoritative
// membership and reconcile. A fetch failure is logged and dropped;
// the next real membership event retriggers the room.
func (c *Coordinator) scan(room domain.Room) {
	ctx, cancel := context.WithTimeout(context.Background(), c.callTimeout)
	defer cancel()

	raw, err := c.fetcher.RoomMembers(ctx, room)
	if err != nil {
		metrics.ReconcileErrors.Inc()
		log.Error().Err(err).Str("module", "reconcile").Str("room", string(room.ID)).Msg("member fetch failed, scan dropped")
		return
	}
	c.Reconcile(ctx, room, raw)
}

// Reconcile normalizes raw members and decides whether the room's
// roster changed since the last publish. Unchanged rosters are
// suppressed; anything else updates the cache and goes downstream.
func (c *Coordinator) Reconcile(ctx context.Context, room domain.Room, raw []platform.RawMember) {
	c.reconcileRoster(ctx, room, roster.Normalize(raw))
}

func (c *Coordinator) reconcileRoster(ctx context.Context, room domain.Room, cand domain.Roster) {
	if len(cand) > 0 {
		c.mu.Lock()
		c.current = cand
		c.mu.Unlock()
	}

	if last, ok := c.cache.Get(room.ID); ok && last.Equal(cand) {
		metrics.RosterSuppressed.Inc()
		log.Debug().Str("module", "reconcile").Str("room", string(room.ID)).Msg("roster unchanged, publish suppressed")
		return
	}

	c.cache.Put(room.ID, cand)
	metrics.RosterPublishes.Inc()

	u := Update{
		EventID:   uuid.NewString(),
		GroupID:   room.GroupID,
		GroupName: room.GroupName,
		RoomID:    room.ID,
		RoomName:  room.Name,
		Roster:    cand,
	}
	if err := c.pub.Publish(ctx, u); err != nil {
		metrics.ReconcileErrors.Inc()
		log.Error().Err(err).Str("module", "reconcile").Str("room", string(room.ID)).Msg("publish failed")
		return
	}
	log.Info().Str("module", "reconcile").Str("room", string(room.ID)).Int("roster", len(cand)).Msg("roster published")
}

// SweepAll seeds the cache and the snapshot at startup by reconciling
// every currently occupied voice room of every known group. Errors
// skip the group or room and move on.
func (c *Coordinator) SweepAll(ctx context.Context) {
	groups, err := c.lister.Groups(ctx)
	if err != nil {
		log.Error().Err(err).Str("module", "reconcile").Msg("group listing failed, sweep aborted")
		return
	}
	for _, g := range groups {
		rooms, err := c.lister.VoiceRooms(ctx, g.ID)
		if err != nil {
			log.Error().Err(err).Str("module", "reconcile").Str("group", string(g.ID)).Msg("room listing failed, group skipped")
			continue
		}
		for _, room := range rooms {
			raw, err := c.fetcher.RoomMembers(ctx, room)
			if err != nil {
				metrics.ReconcileErrors.Inc()
				log.Error().Err(err).Str("module", "reconcile").Str("room", string(room.ID)).Msg("member fetch failed, room skipped")
				continue
			}
			cand := roster.Normalize(raw)
			if len(cand) == 0 {
				continue
			}
			c.reconcileRoster(ctx, room, cand)
		}
	}
	log.Info().Str("module", "reconcile").Int("groups", len(groups)).Msg("startup sweep done")
}

// Snapshot returns the most recent non-empty roster seen by any
// reconciliation. It answers ad-hoc "who is around" queries and is
// not tied to one room.
func (c *Coordinator) Snapshot() domain.Roster {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(domain.Roster, len(c.current))
	copy(out, c.current)
	return out
}

// Stop cancels all pending debounce timers. Called on shutdown;
// already-running scans finish on their own.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, t := range c.pending {
		t.Stop()
		delete(c.pending, id)
	}
}
