package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"upcheck/internal/model"
)

type fakeAuth struct {
	tokens map[string]string // token id -> phone
}

func (f *fakeAuth) Resolve(ctx context.Context, id string) (model.Token, bool) {
	phone, ok := f.tokens[id]
	if !ok {
		return model.Token{}, false
	}
	return model.Token{ID: id, Phone: phone}, true
}

func authRouter(auth Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", RequireAuth(auth), func(c *gin.Context) {
		phone, _ := PhoneFromContext(c)
		c.JSON(http.StatusOK, gin.H{"phone": phone})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	r := authRouter(&fakeAuth{tokens: map[string]string{"tok1": "5551234567"}})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer tok1", http.StatusOK},
		{"unknown token", "Bearer nope", http.StatusForbidden},
		{"missing header", "", http.StatusForbidden},
		{"wrong scheme", "Basic tok1", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Unix(0, 0)
	rl := NewRateLimiterWithNow(2, time.Minute, func() time.Time { return now })

	if !rl.Allow("k") || !rl.Allow("k") {
		t.Fatalf("expected first two requests allowed")
	}
	if rl.Allow("k") {
		t.Fatalf("expected third request rejected")
	}
	if !rl.Allow("other") {
		t.Fatalf("expected distinct keys to be independent")
	}

	now = now.Add(2 * time.Minute)
	if !rl.Allow("k") {
		t.Fatalf("expected window to reset")
	}
}
