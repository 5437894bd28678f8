package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/auth"
)

// The driver connects lazily, so a client pointed at nowhere is enough for
// the gate paths that reject before any lookup.
func testDB(t *testing.T) *mongo.Database {
	t.Helper()
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://localhost:27017"))
	if err != nil {
		t.Fatalf("mongo client setup failed: %v", err)
	}
	return client.Database("protect_test")
}

func performRequest(handler gin.HandlerFunc, authorization string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", handler, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeFailBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not JSON: %v", err)
	}
	return body
}

func TestProtectMissingToken(t *testing.T) {
	protect := Protect(testDB(t), "secret")

	w := performRequest(protect, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	body := decodeFailBody(t, w)
	if body["status"] != "fail" {
		t.Fatalf("expected status fail, got %q", body["status"])
	}
}

func TestProtectMalformedHeader(t *testing.T) {
	protect := Protect(testDB(t), "secret")

	w := performRequest(protect, "Token abc")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestProtectInvalidToken(t *testing.T) {
	protect := Protect(testDB(t), "secret")

	w := performRequest(protect, "Bearer not.a.token")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestProtectExpiredToken(t *testing.T) {
	token, err := auth.IssueToken("64a1f0c2b3d4e5f601234567", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}

	protect := Protect(testDB(t), "secret")
	w := performRequest(protect, "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for an expired token, got %d", w.Code)
	}
}

func TestProtectTokenSignedWithOtherSecret(t *testing.T) {
	token, err := auth.IssueToken("64a1f0c2b3d4e5f601234567", "other-secret", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}

	protect := Protect(testDB(t), "secret")
	w := performRequest(protect, "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a foreign signature, got %d", w.Code)
	}
}

func TestProtectNonHexUserIDClaim(t *testing.T) {
	token, err := auth.IssueToken("not-an-object-id", "secret", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}

	protect := Protect(testDB(t), "secret")
	w := performRequest(protect, "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a malformed id claim, got %d", w.Code)
	}
}

func TestRestrictToWithoutProtect(t *testing.T) {
	restrict := RestrictTo("admin")

	w := performRequest(restrict, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 when no user is attached, got %d", w.Code)
	}
}
