package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-chat/internal/config"
	"portfolio-chat/internal/db"
	"portfolio-chat/internal/models"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	database, err := db.Connect(ctx, config.DatabaseConfig{Driver: db.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	_, err = db.Seed(ctx, database)
	require.NoError(t, err)

	cfg := &config.Config{
		Auth:      config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour, Issuer: "portfolio-chat", LoginPerMinute: 100},
		Chat:      config.ChatConfig{DefaultRoomName: "General", PollInterval: time.Second},
		AMQP:      config.AMQPConfig{RoutingKey: "audit.chat"},
		Telemetry: config.TelemetryConfig{ServiceName: "portfolio-chat", Environment: "test"},
	}

	srv, err := New(ctx, Options{DB: database, Config: cfg, Logger: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *Server, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Engine.ServeHTTP(rec, req)
	return rec
}

func TestChatRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	rec := call(t, srv, http.MethodGet, "/rooms", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rooms []models.RoomSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rooms))
	require.Len(t, rooms, 4)
	assert.Equal(t, "General", rooms[0].Name)

	rec = call(t, srv, http.MethodPost, "/chat", `{"action":"sendMessage","data":{"content":"hi","username":"A"}}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var sent models.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sent))
	assert.Equal(t, rooms[0].ID, sent.RoomID)

	rec = call(t, srv, http.MethodPost, "/chat", `{"action":"getMessages","data":{"roomId":"`+rooms[0].ID+`"}}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var msgs []models.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi", msgs[0].Content)

	since := sent.CreatedAt.UTC().Format(time.RFC3339Nano)
	rec = call(t, srv, http.MethodGet, "/messages?roomId="+rooms[0].ID+"&since="+since, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestAdminFlow(t *testing.T) {
	srv := newTestServer(t)

	rec := call(t, srv, http.MethodPost, "/admin/setup", `{"username":"root","password":"secret"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = call(t, srv, http.MethodPost, "/admin/setup", `{"username":"again","password":"secret"}`, "")
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = call(t, srv, http.MethodPost, "/admin/auth", `{"action":"login","data":{"username":"root","password":"secret"}}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	rec = call(t, srv, http.MethodPost, "/admin/manage", `{"action":"createRoom","data":{"name":"Lobby"}}`, login.Token)
	require.Equal(t, http.StatusCreated, rec.Code)
	var room models.Room
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &room))

	rec = call(t, srv, http.MethodPost, "/messages", `{"content":"bye","username":"A","roomId":"`+room.ID+`"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = call(t, srv, http.MethodPost, "/admin/manage", `{"action":"deleteRoom","data":{"roomId":"`+room.ID+`"}}`, login.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, srv, http.MethodGet, "/messages?roomId="+room.ID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = call(t, srv, http.MethodPost, "/admin/manage", `{"action":"getRoomStats"}`, login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats models.RoomStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Len(t, stats.Rooms, 4)
	assert.Zero(t, stats.TotalMessages)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	rec := call(t, srv, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, srv, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
