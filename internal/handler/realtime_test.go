package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/app/realtime"
	"taskhub/internal/app/task"
)

func TestRealtime_EmptyTaskList(t *testing.T) {
	srv := newTestServer(t)
	_, token := srv.signup(t, "alice_01")

	conn := srv.dial(t, token)

	tasks := getTasks(t, conn)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestRealtime_TaskCreatedReachesOwnerOnly(t *testing.T) {
	srv := newTestServer(t)
	_, aliceToken := srv.signup(t, "alice_01")
	_, bobToken := srv.signup(t, "bob_0001")

	alice := srv.dial(t, aliceToken)
	bob := srv.dial(t, bobToken)
	getTasks(t, alice)
	getTasks(t, bob)

	status, env := srv.do(t, http.MethodPost, "/api/v1/tasks", aliceToken, map[string]string{
		"title":       "buy milk",
		"description": "two litres, semi-skimmed",
	})
	require.Equal(t, http.StatusCreated, status)

	var created task.Serialized
	require.NoError(t, json.Unmarshal(env.Data, &created))

	f := readFrame(t, alice)
	assert.Equal(t, string(task.EventCreated), f.Event)

	var pushed task.Serialized
	require.NoError(t, json.Unmarshal(f.Data, &pushed))
	assert.Equal(t, created, pushed)

	expectSilence(t, bob)
}

func TestRealtime_InvalidTokenIsRejected(t *testing.T) {
	srv := newTestServer(t)

	conn := srv.dial(t, "definitely-not-a-jwt")

	f := readFrame(t, conn)
	assert.Equal(t, realtime.EventUnauthorized, f.Event)
	assert.JSONEq(t, `{"message":"Invalid token"}`, string(f.Data))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)

	assert.Zero(t, srv.hub.Registry().Users())
}

func TestRealtime_MissingTokenIsRejected(t *testing.T) {
	srv := newTestServer(t)

	conn := srv.dial(t, "")

	f := readFrame(t, conn)
	assert.Equal(t, realtime.EventUnauthorized, f.Event)
	assert.Zero(t, srv.hub.Registry().Users())
}

func TestRealtime_DisconnectedUserMissesEvents(t *testing.T) {
	srv := newTestServer(t)
	uid, token := srv.signup(t, "alice_01")

	conn := srv.dial(t, token)
	getTasks(t, conn)
	require.Equal(t, 1, srv.hub.Registry().Users())

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		return len(srv.hub.Registry().Lookup(uid)) == 0
	}, 3*time.Second, 10*time.Millisecond)
	assert.Empty(t, srv.hub.Rooms().Members(realtime.RoomID(uid)))

	status, _ := srv.do(t, http.MethodPost, "/api/v1/tasks", token, map[string]string{
		"title":       "offline task",
		"description": "created while nobody listens",
	})
	assert.Equal(t, http.StatusCreated, status)
}

func TestRealtime_MultipleTabsAllReceive(t *testing.T) {
	srv := newTestServer(t)
	uid, token := srv.signup(t, "alice_01")

	tab1 := srv.dial(t, token)
	tab2 := srv.dial(t, token)

	require.Eventually(t, func() bool {
		return len(srv.hub.Registry().Lookup(uid)) == 2
	}, 3*time.Second, 10*time.Millisecond)

	status, env := srv.do(t, http.MethodPost, "/api/v1/tasks", token, map[string]string{
		"title":       "shared",
		"description": "visible in every tab",
	})
	require.Equal(t, http.StatusCreated, status)

	var created task.Serialized
	require.NoError(t, json.Unmarshal(env.Data, &created))

	for _, tab := range []*websocket.Conn{tab1, tab2} {
		f := readFrame(t, tab)
		assert.Equal(t, string(task.EventCreated), f.Event)
	}

	// update and delete follow in order
	status, _ = srv.do(t, http.MethodPut, fmt.Sprintf("/api/v1/tasks/%d", created.ID), token, map[string]string{
		"title":       "shared v2",
		"description": "visible in every tab",
	})
	require.Equal(t, http.StatusOK, status)
	status, _ = srv.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/tasks/%d", created.ID), token, nil)
	require.Equal(t, http.StatusNoContent, status)

	assert.Equal(t, string(task.EventUpdated), readFrame(t, tab1).Event)
	assert.Equal(t, string(task.EventRemoved), readFrame(t, tab1).Event)
}

func TestRealtime_GetTasksReturnsFirstFour(t *testing.T) {
	srv := newTestServer(t)
	_, token := srv.signup(t, "alice_01")

	for i := 0; i < 6; i++ {
		status, _ := srv.do(t, http.MethodPost, "/api/v1/tasks", token, map[string]string{
			"title":       fmt.Sprintf("task %d", i),
			"description": "some longer description",
		})
		require.Equal(t, http.StatusCreated, status)
	}

	conn := srv.dial(t, token)
	tasks := getTasks(t, conn)
	require.Len(t, tasks, task.RealtimePageSize)
	assert.Equal(t, "task 0", tasks[0].Title)
}

func TestRealtime_GetTasksWithBadTokenKeepsConnection(t *testing.T) {
	srv := newTestServer(t)
	_, token := srv.signup(t, "alice_01")

	conn := srv.dial(t, token)
	getTasks(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]string{"event": realtime.EventGetTasks, "token": "garbage"}))
	f := readFrame(t, conn)
	assert.Equal(t, realtime.EventUnauthorized, f.Event)

	assert.Empty(t, getTasks(t, conn), "connection still serves requests")
}

func TestRealtime_ShutdownClosesConnections(t *testing.T) {
	srv := newTestServer(t)
	_, token := srv.signup(t, "alice_01")

	conn := srv.dial(t, token)
	getTasks(t, conn)

	srv.hub.Shutdown()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Zero(t, srv.hub.Registry().Users())
}
