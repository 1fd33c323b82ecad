// Package roster turns raw platform member records into canonical
// rosters and remembers the last-published roster per room.
package roster

import (
	"github.com/matchlobby/voicebridge/internal/domain"
	"github.com/matchlobby/voicebridge/internal/platform"
)

// Normalize maps raw members onto a roster: bots are dropped, the
// display name prefers the room-specific nick over the account
// username, and the avatar reference is carried as-is (the platform
// adapter already requests the fixed 512px rendition). Input order is
// preserved. Deterministic, no side effects.
func Normalize(raw []platform.RawMember) domain.Roster {
	out := make(domain.Roster, 0, len(raw))
	for _, m := range raw {
		if m.Bot {
			continue
		}
		name := m.Nick
		if name == "" {
			name = m.Username
		}
		out = append(out, domain.Participant{
			UserID:    m.UserID,
			Name:      name,
			AvatarURL: m.AvatarURL,
		})
	}
	return out
}
