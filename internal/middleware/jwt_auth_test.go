package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anonto42/yatube/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(testSecret, &models.User{ID: 7, Username: "leo"})
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.EqualValues(t, 7, claims.UserID)
	assert.Equal(t, "leo", claims.Username)

	_, err = ParseToken("other-secret", token)
	assert.Error(t, err)
}

func newServer() *echo.Echo {
	log, _ := test.NewNullLogger()
	return newServerWithLogger(log)
}

func newServerWithLogger(log *logrus.Logger) *echo.Echo {
	e := echo.New()
	e.Use(LoadUser(testSecret, log))
	e.GET("/whoami", func(c echo.Context) error {
		if claims := CurrentClaims(c); claims != nil {
			return c.String(http.StatusOK, claims.Username)
		}
		return c.String(http.StatusOK, "anonymous")
	})
	e.GET("/create/", func(c echo.Context) error {
		return c.String(http.StatusOK, "form")
	}, RequireLogin("/auth/login/"))
	return e
}

func TestLoadUser(t *testing.T) {
	e := newServer()
	token, err := GenerateToken(testSecret, &models.User{ID: 1, Username: "leo"})
	require.NoError(t, err)

	cases := []struct {
		name  string
		setup func(r *http.Request)
		want  string
	}{
		{"anonymous", func(*http.Request) {}, "anonymous"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookie, Value: token}) }, "leo"},
		{"bearer", func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+token) }, "leo"},
		{"garbage", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookie, Value: "garbage"}) }, "anonymous"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Body.String())
		})
	}
}

func TestRequireLoginRedirects(t *testing.T) {
	e := newServer()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/create/", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/login/?next=%2Fcreate%2F", rec.Header().Get(echo.HeaderLocation))

	token, err := GenerateToken(testSecret, &models.User{ID: 1, Username: "leo"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/create/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoadUserLogsRejectedToken(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	e := newServerWithLogger(log)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "garbage"})
	e.ServeHTTP(httptest.NewRecorder(), req)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, "Ignoring invalid session token", entry.Message)
}
