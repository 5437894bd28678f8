package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/config"
)

// The driver connects lazily, so a client pointed at nowhere is enough for
// the request paths that reject before any lookup.
func testDB(t *testing.T) *mongo.Database {
	t.Helper()
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://localhost:27017"))
	if err != nil {
		t.Fatalf("mongo client setup failed: %v", err)
	}
	return client.Database("handlers_test")
}

func postJSON(handler gin.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST(path, handler)

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSignupRejectsInvalidEmail(t *testing.T) {
	cfg := config.Config{JWTSecret: "secret"}
	handler := Signup(testDB(t), cfg)

	w := postJSON(handler, "/signup", `{"name":"Ann","email":"not-an-email","password":"secret123","passwordConfirm":"secret123"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["status"] != "fail" {
		t.Fatalf("expected status fail, got %v", body["status"])
	}
}

func TestSignupRejectsShortPassword(t *testing.T) {
	cfg := config.Config{JWTSecret: "secret"}
	handler := Signup(testDB(t), cfg)

	w := postJSON(handler, "/signup", `{"name":"Ann","email":"ann@x.com","password":"short","passwordConfirm":"short"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSignupRejectsMismatchedConfirm(t *testing.T) {
	cfg := config.Config{JWTSecret: "secret"}
	handler := Signup(testDB(t), cfg)

	w := postJSON(handler, "/signup", `{"name":"Ann","email":"ann@x.com","password":"secret123","passwordConfirm":"secret124"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["message"] != "Passwords do not match" {
		t.Fatalf("unexpected message: %v", body["message"])
	}
}

func TestSignupRejectsUnknownRole(t *testing.T) {
	cfg := config.Config{JWTSecret: "secret"}
	handler := Signup(testDB(t), cfg)

	w := postJSON(handler, "/signup", `{"name":"Ann","email":"ann@x.com","password":"secret123","passwordConfirm":"secret123","role":"superadmin"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown role, got %d", w.Code)
	}
}

func TestLoginRejectsMissingFields(t *testing.T) {
	cfg := config.Config{JWTSecret: "secret"}
	handler := Login(testDB(t), cfg)

	w := postJSON(handler, "/login", `{"email":"ann@x.com"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["message"] != "Please provide email and password" {
		t.Fatalf("unexpected message: %v", body["message"])
	}
}

func TestForgotPasswordRejectsInvalidEmail(t *testing.T) {
	cfg := config.Config{JWTSecret: "secret"}
	handler := ForgotPassword(testDB(t), cfg, nil)

	w := postJSON(handler, "/forgotPassword", `{"email":"nope"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
