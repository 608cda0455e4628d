package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"portfolio-chat/internal/middleware"
	"portfolio-chat/internal/mocks"
	"portfolio-chat/internal/models"
	"portfolio-chat/internal/service"
	"portfolio-chat/internal/telemetry"
)

const testPassword = "correct horse"

type testEnv struct {
	rooms     *mocks.RoomRepositoryMock
	messages  *mocks.MessageRepositoryMock
	admins    *mocks.AdminRepositoryMock
	contacts  *mocks.ContactRepositoryMock
	publisher *mocks.PublisherMock
	auth      *service.AuthService
	router    *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		rooms:     new(mocks.RoomRepositoryMock),
		messages:  new(mocks.MessageRepositoryMock),
		admins:    new(mocks.AdminRepositoryMock),
		contacts:  new(mocks.ContactRepositoryMock),
		publisher: new(mocks.PublisherMock),
	}

	auth, err := service.NewAuthService(env.admins, service.AuthConfig{Secret: "test-secret", TTL: time.Hour, Issuer: "portfolio-chat"})
	require.NoError(t, err)
	env.auth = auth

	emitter := telemetry.NewAuditEmitter(env.publisher, "audit.chat", "portfolio-chat", "test")
	chat := service.NewChatService(env.rooms, env.messages, nil, "general")
	admin := service.NewAdminService(env.rooms, env.messages, chat, nil)

	chatHandler := NewChatHandler(chat)
	adminHandler := NewAdminHandler(auth, admin, emitter)
	contactHandler := NewContactHandler(service.NewContactService(env.contacts), emitter)

	r := gin.New()
	r.GET("/rooms", chatHandler.ListRooms)
	r.GET("/messages", chatHandler.GetMessages)
	r.POST("/messages", chatHandler.PostMessage)
	r.POST("/chat", chatHandler.Chat)
	r.POST("/admin/auth", adminHandler.Auth)
	r.POST("/admin/setup", adminHandler.Setup)
	r.POST("/admin/manage", middleware.AdminAuth(auth), adminHandler.Manage)
	r.POST("/contact", contactHandler.Submit)
	env.router = r
	return env
}

func (e *testEnv) do(method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) expectAudit() {
	e.publisher.On("Publish", mock.Anything, "audit.chat", mock.AnythingOfType("telemetry.AuditEnvelope")).Return(nil)
}

// adminToken registers an active admin with the repository mock and returns
// a token issued for it.
func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	admin := models.Admin{ID: "admin-1", Username: "root", Email: "root@admin.local", PasswordHash: string(hash), IsActive: true}
	e.admins.On("GetAdminByUsername", mock.Anything, "root").Return(admin, nil)
	e.admins.On("GetAdmin", mock.Anything, "admin-1").Return(admin, nil)

	res, err := e.auth.Login(context.Background(), "root", testPassword)
	require.NoError(t, err)
	return res.Token
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
