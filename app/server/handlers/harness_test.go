package handlers

import (
	"bytes"
	"encoding/json"
	"github.com/alexedwards/argon2id"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"io"
	"net/http/httptest"
	"portfolio-backend/app/server/apperr"
	"portfolio-backend/app/server/auth"
	"portfolio-backend/app/server/jwt"
	"portfolio-backend/app/server/models"
	"testing"
	"time"
)

const testPassword = "Secret123"

type harness struct {
	e        *echo.Echo
	users    *fakeUsers
	projects *fakeProjects
	contacts *fakeContacts
	notifier *recordingNotifier
	health   map[string]HealthCheck
	hasher   *auth.Argon2idHasher
	tokens   *jwt.JWT
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	tokens, err := jwt.New("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)

	hasher := auth.NewArgon2idHasher(&argon2id.Params{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})

	h := &harness{
		users:    newFakeUsers(),
		projects: newFakeProjects(),
		contacts: newFakeContacts(),
		notifier: &recordingNotifier{},
		health:   map[string]HealthCheck{},
		hasher:   hasher,
		tokens:   tokens,
	}

	svc, err := auth.NewService(zap.NewNop(), h.users, hasher, tokens, time.Hour)
	require.NoError(t, err)

	app := NewApp(zap.NewNop(), Deps{
		Auth:     svc,
		Users:    h.users,
		Projects: h.projects,
		Contacts: h.contacts,
		Reporter: fakeReporter{},
		Notifier: h.notifier,
		Health:   h.health,
	})

	h.e = echo.New()
	h.e.Validator = NewValidator()
	app.Register(h.e)

	return h
}

// seedUser 创建用户并返回其令牌
func (h *harness) seedUser(t *testing.T, username string, role models.Role, active bool) (*models.User, string) {
	t.Helper()

	hash, err := h.hasher.Hash(testPassword)
	require.NoError(t, err)

	user := h.users.put(models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
		IsActive: active,
		Password: hash,
	})

	token, _, err := h.tokens.Sign(user.ID, time.Hour)
	require.NoError(t, err)
	return user, token
}

func (h *harness) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) apperr.ErrorBody {
	t.Helper()
	return decode[apperr.ErrorBody](t, rec)
}
