package handlers

import (
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const flashSession = "yatube_flash"

// FlashStore keeps one-shot messages in a signed cookie between a redirect
// and the page it lands on.
type FlashStore struct {
	store sessions.Store
	log   *logrus.Logger
}

func NewFlashStore(key string, secure bool, log *logrus.Logger) *FlashStore {
	store := sessions.NewCookieStore([]byte(key))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		Secure:   secure,
	}
	return &FlashStore{store: store, log: log}
}

// Add queues msg for the next rendered page. Failures only lose the message.
func (f *FlashStore) Add(c echo.Context, msg string) {
	session, err := f.store.Get(c.Request(), flashSession)
	if err != nil && session == nil {
		f.log.WithError(err).Warn("Flash session unavailable")
		return
	}
	session.AddFlash(msg)
	if err := session.Save(c.Request(), c.Response()); err != nil {
		f.log.WithError(err).Warn("Failed to save flash session")
	}
}

// Pop returns and clears queued messages.
func (f *FlashStore) Pop(c echo.Context) []string {
	session, err := f.store.Get(c.Request(), flashSession)
	if err != nil && session == nil {
		return nil
	}
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := session.Save(c.Request(), c.Response()); err != nil {
		f.log.WithError(err).Warn("Failed to save flash session")
	}
	messages := make([]string, 0, len(raw))
	for _, m := range raw {
		if s, ok := m.(string); ok {
			messages = append(messages, s)
		}
	}
	return messages
}
