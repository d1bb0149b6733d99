package handler

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kursadbilgin/failedemails-report/internal/domain"
	"github.com/kursadbilgin/failedemails-report/internal/observability"
)

const (
	localViewer    = "viewer"
	localSessionID = "sessionid"
	sessionCookie  = "failedemails_session"
)

// Authenticator resolves the user named by the trusted auth header.
type Authenticator interface {
	Authenticate(ctx context.Context, username string) (domain.Viewer, error)
}

// RequestContext copies the request id into the user context so services
// can log it.
func RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id := requestCorrelationID(c); id != "" {
			c.SetUserContext(observability.WithRequestID(c.UserContext(), id))
		}
		return c.Next()
	}
}

// ViewerMiddleware rejects requests without a known, active user.
func ViewerMiddleware(auth Authenticator, header string) fiber.Handler {
	if strings.TrimSpace(header) == "" {
		header = "X-Remote-User"
	}
	return func(c *fiber.Ctx) error {
		viewer, err := auth.Authenticate(c.UserContext(), c.Get(header))
		if err != nil {
			return toHTTPError(err)
		}
		c.Locals(localViewer, viewer)
		c.SetUserContext(observability.WithViewerID(c.UserContext(), viewer.User.ID))
		return c.Next()
	}
}

// SessionMiddleware issues a session cookie used to key table state.
func SessionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Cookies(sessionCookie)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     sessionCookie,
				Value:    id,
				Path:     "/",
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		c.Locals(localSessionID, id)
		return c.Next()
	}
}

func viewerFromCtx(c *fiber.Ctx) (domain.Viewer, bool) {
	viewer, ok := c.Locals(localViewer).(domain.Viewer)
	return viewer, ok
}

func sessionFromCtx(c *fiber.Ctx) string {
	id, _ := c.Locals(localSessionID).(string)
	return id
}

func requestCorrelationID(c *fiber.Ctx) string {
	if value, ok := c.Locals("requestid").(string); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return strings.TrimSpace(c.Get(fiber.HeaderXRequestID))
}
