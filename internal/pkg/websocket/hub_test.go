package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/tutorledger/internal/app/models"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := strconv.ParseInt(r.URL.Query().Get("user"), 10, 64)
		role := models.RoleType(r.URL.Query().Get("role"))
		_ = hub.ServeWS(w, r, userID, role)
	}))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, userID int64, role models.RoleType) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + strconv.FormatInt(userID, 10) + "&role=" + string(role)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) (map[string]interface{}, error) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	var ev map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev, nil
}

func TestHub_DeliversByAudience(t *testing.T) {
	hub, srv := startHub(t)

	teacher := dial(t, srv, 1, models.RoleTeacher)
	parentA := dial(t, srv, 2, models.RoleParent)
	parentB := dial(t, srv, 3, models.RoleParent)
	require.Eventually(t, func() bool { return hub.ClientsCount() == 3 }, time.Second, 10*time.Millisecond)

	hub.Publish(Event{Type: EventSessionPaidChanged, StudentID: 10, ParentID: 2})

	ev, err := readEvent(t, teacher)
	require.NoError(t, err)
	assert.Equal(t, EventSessionPaidChanged, ev["type"])
	assert.Equal(t, float64(10), ev["studentId"])
	assert.NotContains(t, ev, "ParentID")

	ev, err = readEvent(t, parentA)
	require.NoError(t, err)
	assert.Equal(t, EventSessionPaidChanged, ev["type"])

	_, err = readEvent(t, parentB)
	assert.Error(t, err, "another family must not see the event")
}

func TestHub_UnregistersOnClose(t *testing.T) {
	hub, srv := startHub(t)

	conn := dial(t, srv, 1, models.RoleTeacher)
	require.Eventually(t, func() bool { return hub.ClientsCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientsCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			hub.Publish(Event{Type: EventSessionCreated, StudentID: int64(i)})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked without a running hub")
	}
}

func TestEventAudience(t *testing.T) {
	e := Event{StudentID: 1, ParentID: 5}
	assert.True(t, e.audience(99, models.RoleTeacher))
	assert.True(t, e.audience(5, models.RoleParent))
	assert.False(t, e.audience(6, models.RoleParent))
	assert.False(t, e.audience(5, models.RoleType("ADMIN")))
}
