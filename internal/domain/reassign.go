package domain

// ReasonNotInVoice marks a reassignment skipped because the target
// user had no voice presence at execution time.
const ReasonNotInVoice = "not in voice"

// ReassignmentCommand asks for one user to be moved into one room.
type ReassignmentCommand struct {
	UserID UserID
	RoomID RoomID
}

// ReassignmentResult is the per-command outcome. The executor returns
// one per command, in command order, regardless of failures.
type ReassignmentResult struct {
	UserID UserID `json:"userId"`
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}
