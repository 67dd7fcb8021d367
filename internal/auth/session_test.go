package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"threadvote/internal/models"
	"threadvote/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

type fakeUsers map[uint]models.User

func (f fakeUsers) Identity(_ context.Context, id uint) (models.User, error) {
	u, ok := f[id]
	if !ok {
		return models.User{}, services.ErrNotFound
	}
	return u, nil
}

func newTestManager(t *testing.T) (*Manager, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	revoked := NewMemoryRevocations(7 * 24 * time.Hour)
	users := fakeUsers{1: {ID: 1, Username: "alice"}}
	m := NewManager(revoked, users, 7*24*time.Hour, false)

	store := cookie.NewStore([]byte("test-secret"))
	store.Options(m.Options())

	r := gin.New()
	r.Use(sessions.Sessions(CookieName, store))
	r.POST("/issue/:id", func(c *gin.Context) {
		id := uint(1)
		if c.Param("id") == "2" {
			id = 2
		}
		if err := m.Issue(c, id); err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		c.Status(http.StatusOK)
	})
	r.GET("/whoami", func(c *gin.Context) {
		sc, err := m.Resolve(c)
		if err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		user, err := sc.RequireIdentity()
		if err != nil {
			c.String(http.StatusUnauthorized, "anonymous")
			return
		}
		c.String(http.StatusOK, user.Username)
	})
	r.POST("/logout", func(c *gin.Context) {
		if err := m.Clear(c); err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		c.Status(http.StatusOK)
	})
	return m, r
}

func do(r http.Handler, method, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range w.Result().Cookies() {
		if ck.Name == CookieName {
			return ck
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestIssueSetsHardenedCookie(t *testing.T) {
	_, r := newTestManager(t)
	w := do(r, http.MethodPost, "/issue/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("issue: status %d", w.Code)
	}
	ck := sessionCookie(t, w)
	if !ck.HttpOnly {
		t.Error("cookie not HttpOnly")
	}
	if ck.Path != "/" {
		t.Errorf("path = %q", ck.Path)
	}
	if ck.MaxAge != int((7 * 24 * time.Hour).Seconds()) {
		t.Errorf("max age = %d", ck.MaxAge)
	}
	if ck.SameSite != http.SameSiteLaxMode {
		t.Errorf("same site = %v", ck.SameSite)
	}
}

func TestResolveLifecycle(t *testing.T) {
	_, r := newTestManager(t)

	if w := do(r, http.MethodGet, "/whoami", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("no cookie: status %d", w.Code)
	}

	ck := sessionCookie(t, do(r, http.MethodPost, "/issue/1", nil))
	w := do(r, http.MethodGet, "/whoami", []*http.Cookie{ck})
	if w.Code != http.StatusOK || w.Body.String() != "alice" {
		t.Fatalf("whoami = %d %q", w.Code, w.Body.String())
	}

	out := do(r, http.MethodPost, "/logout", []*http.Cookie{ck})
	if out.Code != http.StatusOK {
		t.Fatalf("logout: status %d", out.Code)
	}
	if cleared := sessionCookie(t, out); cleared.MaxAge >= 0 {
		t.Errorf("logout cookie max age = %d, want negative", cleared.MaxAge)
	}

	// replaying the old cookie after logout stays anonymous
	if w := do(r, http.MethodGet, "/whoami", []*http.Cookie{ck}); w.Code != http.StatusUnauthorized {
		t.Errorf("revoked cookie: status %d", w.Code)
	}
}

func TestResolveTreatsBadSessionsAsAnonymous(t *testing.T) {
	m, r := newTestManager(t)

	tampered := &http.Cookie{Name: CookieName, Value: "not-a-valid-cookie"}
	if w := do(r, http.MethodGet, "/whoami", []*http.Cookie{tampered}); w.Code != http.StatusUnauthorized {
		t.Errorf("tampered cookie: status %d", w.Code)
	}

	// session for a user that does not exist
	orphan := sessionCookie(t, do(r, http.MethodPost, "/issue/2", nil))
	if w := do(r, http.MethodGet, "/whoami", []*http.Cookie{orphan}); w.Code != http.StatusUnauthorized {
		t.Errorf("orphaned session: status %d", w.Code)
	}

	ck := sessionCookie(t, do(r, http.MethodPost, "/issue/1", nil))
	m.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	if w := do(r, http.MethodGet, "/whoami", []*http.Cookie{ck}); w.Code != http.StatusUnauthorized {
		t.Errorf("expired session: status %d", w.Code)
	}
}

func TestSessionContext(t *testing.T) {
	anon := Anonymous()
	if anon.ViewerID() != 0 || anon.Identity() != nil {
		t.Error("anonymous context carries an identity")
	}
	if _, err := anon.RequireIdentity(); err != services.ErrAuthRequired {
		t.Errorf("err = %v, want ErrAuthRequired", err)
	}

	sc := Authenticated(models.User{ID: 7, Username: "bob"}, "sid")
	u, err := sc.RequireIdentity()
	if err != nil || u.ID != 7 || sc.ViewerID() != 7 {
		t.Errorf("RequireIdentity = %+v, %v", u, err)
	}
}
