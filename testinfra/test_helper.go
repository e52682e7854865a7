package testinfra

import (
	"context"
	"net/http"
	"net/http/httptest"

	"marketflow/authority"
	"marketflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BuildSecCtx builds a session carrying the given global perms.
func BuildSecCtx(uid types.ID, perms ...string) *session.Session {
	return &session.Session{
		Token:    uuid.New().String(),
		Identity: session.Identity{ID: uid},
		Perms:    perms,
		Context:  context.Background(),
	}
}

// WithAreaRole attaches an area membership to a session.
func WithAreaRole(s *session.Session, areaId types.ID, slug string, position authority.Position) *session.Session {
	s.AreaRoles = append(s.AreaRoles, authority.AreaRole{AreaID: areaId, AreaSlug: slug, Position: position})
	return s
}

// SessionFilter injects the given session into every request, standing in
// for the cookie-based auth filter in tests.
func SessionFilter(s *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.Context == nil {
			s.Context = c.Request.Context()
		}
		session.InjectSessionIntoGinContext(c, s)
	}
}

func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code, w.Body.String(), w
}
