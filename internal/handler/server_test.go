package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"taskhub/internal/app/memstore"
	"taskhub/internal/app/realtime"
	"taskhub/internal/app/task"
	"taskhub/internal/app/user"
	"taskhub/internal/configs"
	"taskhub/internal/pkg/auth/jwt"
	"taskhub/internal/pkg/logx"
)

const testSecret = "handler-test-secret-long-enough-for-hs256"

func TestMain(m *testing.M) {
	logx.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type testServer struct {
	*httptest.Server
	hub *realtime.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &configs.AppConfig{
		Environment:   configs.EnvTest,
		Port:          8080,
		JWTSecret:     testSecret,
		TokenLifetime: time.Hour,
		StorageDriver: configs.StorageDriverMemory,
	}

	verifier := jwt.NewVerifier(cfg.JWTSecret)
	taskStore := memstore.NewTaskStore()
	users := user.NewService(memstore.NewUserStore()).WithHashCost(bcrypt.MinCost)
	hub := realtime.NewHub(verifier, users, taskStore)

	deps := &AppDeps{
		Config:   cfg,
		Verifier: verifier,
		Users:    users,
		Tasks:    task.NewService(taskStore, hub.Emitter()),
		Hub:      hub,
	}

	router, stop := Router(deps)
	srv := httptest.NewServer(router)

	t.Cleanup(func() {
		hub.Shutdown()
		srv.Close()
		stop()
	})

	return &testServer{Server: srv, hub: hub}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var env envelope
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}

	return res.StatusCode, env
}

// signup registers username and returns its id and an access token.
func (s *testServer) signup(t *testing.T, username string) (user.ID, string) {
	t.Helper()

	status, env := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)

	var created user.Serialized
	require.NoError(t, json.Unmarshal(env.Data, &created))

	status, env = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, status, env.Message)

	var out LoginOutput
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.AccessToken)

	return created.ID, out.AccessToken
}

func (s *testServer) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(s.URL, "http") + "/ws?token=" + token
	conn, res, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if res != nil && res.Body != nil {
		res.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) realtime.Frame {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var f realtime.Frame
	require.NoError(t, json.Unmarshal(raw, &f))
	return f
}

// expectSilence asserts nothing arrives within a short window. conn is unusable afterwards.
func expectSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, raw, err := conn.ReadMessage()
	require.Error(t, err, "unexpected frame: %s", raw)
}

// getTasks requests the task list and returns it. A reply also proves the
// connection is authenticated and joined.
func getTasks(t *testing.T, conn *websocket.Conn) []task.Serialized {
	t.Helper()

	require.NoError(t, conn.WriteJSON(map[string]string{"event": realtime.EventGetTasks}))

	f := readFrame(t, conn)
	require.Equal(t, realtime.EventTasks, f.Event)

	var tasks []task.Serialized
	require.NoError(t, json.Unmarshal(f.Data, &tasks))
	return tasks
}
