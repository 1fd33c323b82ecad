package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matchlobby/voicebridge/internal/domain"
)

type fakeMessenger struct {
	sent map[domain.UserID]string
	fail map[domain.UserID]error
}

func (f *fakeMessenger) DirectMessage(ctx context.Context, user domain.UserID, content string) error {
	if err := f.fail[user]; err != nil {
		return err
	}
	if f.sent == nil {
		f.sent = make(map[domain.UserID]string)
	}
	f.sent[user] = content
	return nil
}

func TestNotifyBuildsUniqueLinks(t *testing.T) {
	f := &fakeMessenger{}
	n := NewNotifier(f)

	results := n.Notify(context.Background(), []domain.UserID{"u1", "u2"}, "https://panel.example/draft")

	require.Len(t, results, 2)
	require.True(t, results[0].OK)
	require.True(t, results[1].OK)
	require.Contains(t, f.sent["u1"], "https://panel.example/draft?leaderId=u1")
	require.Contains(t, f.sent["u2"], "https://panel.example/draft?leaderId=u2")
	require.NotEqual(t, f.sent["u1"], f.sent["u2"])
}

func TestNotifyFailureDoesNotBlockOthers(t *testing.T) {
	f := &fakeMessenger{fail: map[domain.UserID]error{
		"u1": errors.New("cannot DM this user"),
	}}
	n := NewNotifier(f)

	results := n.Notify(context.Background(), []domain.UserID{"u1", "u2"}, "https://panel.example")

	require.Equal(t, []Result{
		{UserID: "u1", Error: "cannot DM this user"},
		{UserID: "u2", OK: true},
	}, results)
	require.Contains(t, f.sent, domain.UserID("u2"))
}

func TestNotifyMissingLinkFallsBack(t *testing.T) {
	f := &fakeMessenger{}
	n := NewNotifier(f)

	results := n.Notify(context.Background(), []domain.UserID{"u1"}, "")
	require.True(t, results[0].OK)
	require.True(t, strings.Contains(f.sent["u1"], "link unavailable"))
}
