package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anonto42/yatube/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	// TokenCookie carries the signed session token.
	TokenCookie = "yatube_token"
	// TokenTTL is how long a login lasts.
	TokenTTL = 72 * time.Hour

	userContextKey = "user"
)

var errUnexpectedSigningMethod = errors.New("unexpected signing method")

// GenerateToken signs an HS256 token identifying user.
func GenerateToken(secret string, user *models.User) (string, error) {
	now := time.Now()
	claims := &models.JwtCustomClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken verifies the signature and expiry of tokenString.
func ParseToken(secret, tokenString string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnexpectedSigningMethod
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	return claims, nil
}

// LoadUser identifies the viewer from the token cookie (or a Bearer header)
// and stores the claims in the context. Requests without a valid token
// continue anonymously.
func LoadUser(secret string, log *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := tokenFromRequest(c)
			if tokenString == "" {
				return next(c)
			}

			claims, err := ParseToken(secret, tokenString)
			if err != nil {
				log.WithError(err).Debug("Ignoring invalid session token")
				return next(c)
			}

			c.Set(userContextKey, claims)
			return next(c)
		}
	}
}

func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	parts := strings.Split(c.Request().Header.Get(echo.HeaderAuthorization), " ")
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		return parts[1]
	}
	return ""
}

// RequireLogin redirects anonymous viewers to loginURL with the requested
// URI in the next parameter.
func RequireLogin(loginURL string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentClaims(c) == nil {
				return c.Redirect(http.StatusFound, LoginRedirectURL(loginURL, c.Request().URL.RequestURI()))
			}
			return next(c)
		}
	}
}

// LoginRedirectURL builds "<loginURL>?next=<escaped next>".
func LoginRedirectURL(loginURL, next string) string {
	return loginURL + "?next=" + url.QueryEscape(next)
}

// CurrentClaims returns the viewer's claims, or nil for anonymous requests.
func CurrentClaims(c echo.Context) *models.JwtCustomClaims {
	claims, _ := c.Get(userContextKey).(*models.JwtCustomClaims)
	return claims
}

// CurrentUserID returns 0 for anonymous requests.
func CurrentUserID(c echo.Context) uint {
	if claims := CurrentClaims(c); claims != nil {
		return claims.UserID
	}
	return 0
}

// SetTokenCookie stores token in an HttpOnly cookie.
func SetTokenCookie(c echo.Context, token string, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(TokenTTL),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearTokenCookie expires the token cookie.
func ClearTokenCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
