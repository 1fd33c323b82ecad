package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/matchlobby/voicebridge/internal/config"
	"github.com/matchlobby/voicebridge/internal/domain"
	"github.com/matchlobby/voicebridge/internal/notify"
	"github.com/matchlobby/voicebridge/internal/stream"
)

type fakeRoster struct{ roster domain.Roster }

func (f *fakeRoster) Snapshot() domain.Roster { return f.roster }

type fakeExecutor struct {
	group   domain.GroupID
	cmds    []domain.ReassignmentCommand
	results []domain.ReassignmentResult
	err     error
}

func (f *fakeExecutor) Execute(ctx context.Context, group domain.GroupID, cmds []domain.ReassignmentCommand) ([]domain.ReassignmentResult, error) {
	f.group = group
	f.cmds = cmds
	return f.results, f.err
}

type fakeNotifier struct {
	recipients []domain.UserID
	link       string
}

func (f *fakeNotifier) Notify(ctx context.Context, recipients []domain.UserID, link string) []notify.Result {
	f.recipients = recipients
	f.link = link
	out := make([]notify.Result, 0, len(recipients))
	for _, r := range recipients {
		out = append(out, notify.Result{UserID: r, OK: true})
	}
	return out
}

func newTestRouter(t *testing.T, h *Handlers) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if h.Stream == nil {
		h.Stream = stream.NewHub()
	}
	cfg := &config.Config{
		Mode:           "test",
		StaticPath:     t.TempDir(),
		AllowedOrigins: []string{"http://localhost:5173"},
	}
	return SetupRouter(context.Background(), cfg, h)
}

func TestCurrentUsers(t *testing.T) {
	h := &Handlers{
		Roster: &fakeRoster{roster: domain.Roster{
			{UserID: "1", Name: "alice", AvatarURL: "a.png"},
		}},
		Mover:    &fakeExecutor{},
		Notifier: &fakeNotifier{},
	}
	r := newTestRouter(t, h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[{"userId":"1","name":"alice","avatarUrl":"a.png"}]`, w.Body.String())
}

func TestMoveUsers(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		exec := &fakeExecutor{results: []domain.ReassignmentResult{
			{UserID: "u1", OK: true},
			{UserID: "u2", Reason: domain.ReasonNotInVoice},
		}}
		h := &Handlers{Roster: &fakeRoster{}, Mover: exec, Notifier: &fakeNotifier{}}
		r := newTestRouter(t, h)

		body := `{"groupId":"g1","assignments":[{"userId":"u1","roomId":"x"},{"userId":"u2","roomId":"y"}]}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/move-users", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, domain.GroupID("g1"), exec.group)
		require.Len(t, exec.cmds, 2)
		require.JSONEq(t, `{"ok":true,"results":[{"userId":"u1","ok":true},{"userId":"u2","ok":false,"reason":"not in voice"}]}`, w.Body.String())
	})

	t.Run("missing fields", func(t *testing.T) {
		h := &Handlers{Roster: &fakeRoster{}, Mover: &fakeExecutor{}, Notifier: &fakeNotifier{}}
		r := newTestRouter(t, h)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/move-users", strings.NewReader(`{"assignments":[]}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unresolvable group", func(t *testing.T) {
		exec := &fakeExecutor{err: errors.New("resolve group g9: unknown guild")}
		h := &Handlers{Roster: &fakeRoster{}, Mover: exec, Notifier: &fakeNotifier{}}
		r := newTestRouter(t, h)

		body := `{"groupId":"g9","assignments":[{"userId":"u1","roomId":"x"}]}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/move-users", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.Contains(t, w.Body.String(), `"ok":false`)
	})
}

func TestNotifyLeaders(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		n := &fakeNotifier{}
		h := &Handlers{Roster: &fakeRoster{}, Mover: &fakeExecutor{}, Notifier: n}
		r := newTestRouter(t, h)

		body := `{"leaders":[{"userId":"u1"},{"userId":"u2"}],"link":"https://panel.example"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/notify-leaders", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, []domain.UserID{"u1", "u2"}, n.recipients)
		require.Equal(t, "https://panel.example", n.link)
	})

	t.Run("missing leaders", func(t *testing.T) {
		h := &Handlers{Roster: &fakeRoster{}, Mover: &fakeExecutor{}, Notifier: &fakeNotifier{}}
		r := newTestRouter(t, h)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/notify-leaders", strings.NewReader(`{"link":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCORSMiddleware(t *testing.T) {
	h := &Handlers{Roster: &fakeRoster{}, Mover: &fakeExecutor{}, Notifier: &fakeNotifier{}}
	r := newTestRouter(t, h)

	t.Run("allowed origin echoed", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		r.ServeHTTP(w, req)

		require.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin not echoed", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.Header.Set("Origin", "https://evil.example")
		r.ServeHTTP(w, req)

		require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/move-users", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
	})
}
