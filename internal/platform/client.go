// Package platform defines the chat-platform boundary. The rest of
// the service depends on these interfaces only; the discord
// subpackage is the one real implementation.
package platform

import (
	"context"

	"github.com/matchlobby/voicebridge/internal/domain"
)

// RawMember is a platform member record before normalization.
// Nick may be empty; Username never is.
type RawMember struct {
	UserID    domain.UserID
	Username  string
	Nick      string
	AvatarURL string
	Bot       bool
}

// Group is the minimal view of a guild-like container of voice rooms.
type Group struct {
	ID   domain.GroupID
	Name domain.GroupName
}

// RoomLister enumerates groups and their voice rooms. Used by the
// startup sweep.
type RoomLister interface {
	Groups(ctx context.Context) ([]Group, error)
	VoiceRooms(ctx context.Context, group domain.GroupID) ([]domain.Room, error)
}

// MemberFetcher reads authoritative voice-room membership.
type MemberFetcher interface {
	RoomMembers(ctx context.Context, room domain.Room) ([]RawMember, error)
}

// Mover resolves and relocates a single member's voice presence.
// VoicePresence returns ok=false when the user is not in any voice
// room of the group.
type Mover interface {
	ResolveGroup(ctx context.Context, group domain.GroupID) (Group, error)
	VoicePresence(ctx context.Context, group domain.GroupID, user domain.UserID) (domain.RoomID, bool, error)
	MoveMember(ctx context.Context, group domain.GroupID, user domain.UserID, room domain.RoomID) error
}

// Messenger delivers a direct message to one user.
type Messenger interface {
	DirectMessage(ctx context.Context, user domain.UserID, content string) error
}
