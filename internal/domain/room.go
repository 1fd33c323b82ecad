// Package domain contains entity without logic, just meta-data
package domain

type (
	RoomID    string
	GroupID   string
	UserID    string
	RoomName  string
	GroupName string
)

// Room identifies one voice room and the group it belongs to.
// It is the unit of reconciliation: one debounce timer, one cache
// entry, one publish at a time.
type Room struct {
	ID        RoomID
	Name      RoomName
	GroupID   GroupID
	GroupName GroupName
}
