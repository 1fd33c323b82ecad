package domain

// Participant is one human member of a voice room. Immutable once
// produced by the normalizer.
type Participant struct {
	UserID    UserID `json:"userId"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

// Roster is the ordered set of participants of a single room.
type Roster []Participant

// Equal reports whether two rosters contain the same users in the
// same order. Name and avatar changes do not count: publish
// suppression keys on identity only.
func (r Roster) Equal(other Roster) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if r[i].UserID != other[i].UserID {
			return false
		}
	}
	return true
}
