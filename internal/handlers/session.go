package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"alfredoptarigan/resume-ats/internal/config"
	"alfredoptarigan/resume-ats/internal/services"
)

const localsSession = "assistant_session"

// SessionMiddleware binds every request to a session. The fiber session
// cookie carries the id; the assistant state lives in the SessionStore.
type SessionMiddleware struct {
	store    *session.Store
	sessions services.SessionStore
}

func NewSessionMiddleware(cfg config.SessionConfig, sessions services.SessionStore) *SessionMiddleware {
	return &SessionMiddleware{
		store: session.New(session.Config{
			Expiration:     cfg.TTL,
			KeyLookup:      "cookie:" + cfg.CookieName,
			CookieHTTPOnly: true,
			CookieSameSite: "Lax",
		}),
		sessions: sessions,
	}
}

func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	id := sess.ID()
	sess.Set("seen", time.Now().Unix())
	if err := sess.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	c.Locals(localsSession, m.sessions.Get(id))
	return c.Next()
}

// Destroy drops the session from both stores and expires the cookie.
func (m *SessionMiddleware) Destroy(c *fiber.Ctx) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	m.sessions.Delete(sess.ID())
	return sess.Destroy()
}

func currentSession(c *fiber.Ctx) *services.Session {
	sess, _ := c.Locals(localsSession).(*services.Session)
	return sess
}
