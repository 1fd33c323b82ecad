package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matchlobby/voicebridge/internal/domain"
	"github.com/matchlobby/voicebridge/internal/notify"
	"github.com/matchlobby/voicebridge/internal/stream"
)

// RosterSource answers the ad-hoc "who is around" query.
type RosterSource interface {
	Snapshot() domain.Roster
}

// BatchExecutor runs a reassignment batch to completion.
type BatchExecutor interface {
	Execute(ctx context.Context, group domain.GroupID, cmds []domain.ReassignmentCommand) ([]domain.ReassignmentResult, error)
}

// LeaderNotifier fans the panel link out to the chosen leaders.
type LeaderNotifier interface {
	Notify(ctx context.Context, recipients []domain.UserID, link string) []notify.Result
}

type Handlers struct {
	Roster   RosterSource
	Mover    BatchExecutor
	Notifier LeaderNotifier
	Stream   *stream.Hub
}

func (h *Handlers) CurrentUsers(c *gin.Context) {
	c.JSON(http.StatusOK, h.Roster.Snapshot())
}

type assignment struct {
	UserID string `json:"userId" binding:"required"`
	RoomID string `json:"roomId" binding:"required"`
}

type moveUsersRequest struct {
	GroupID     string       `json:"groupId" binding:"required"`
	Assignments []assignment `json:"assignments" binding:"required"`
}

func (h *Handlers) MoveUsers(c *gin.Context) {
	var req moveUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "groupId and assignments are required"})
		return
	}

	cmds := make([]domain.ReassignmentCommand, 0, len(req.Assignments))
	for _, a := range req.Assignments {
		cmds = append(cmds, domain.ReassignmentCommand{
			UserID: domain.UserID(a.UserID),
			RoomID: domain.RoomID(a.RoomID),
		})
	}

	results, err := h.Mover.Execute(c.Request.Context(), domain.GroupID(req.GroupID), cmds)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "results": results})
}

type leaderRef struct {
	UserID string `json:"userId" binding:"required"`
}

type notifyLeadersRequest struct {
	Leaders []leaderRef `json:"leaders" binding:"required"`
	Link    string      `json:"link"`
}

func (h *Handlers) NotifyLeaders(c *gin.Context) {
	var req notifyLeadersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "leaders list is required"})
		return
	}

	recipients := make([]domain.UserID, 0, len(req.Leaders))
	for _, l := range req.Leaders {
		recipients = append(recipients, domain.UserID(l.UserID))
	}

	results := h.Notifier.Notify(c.Request.Context(), recipients, req.Link)
	c.JSON(http.StatusOK, gin.H{"ok": true, "results": results})
}
