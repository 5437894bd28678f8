package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func patchJSON(handler gin.HandlerFunc, route, path, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.PATCH(route, handler)

	req := httptest.NewRequest(http.MethodPatch, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// A mistyped value must never reach the update document: a string price
// would persist a tour no later read can decode.
func TestUpdateTourRejectsMistypedPrice(t *testing.T) {
	handler := UpdateTour(testDB(t))

	w := patchJSON(handler, "/tours/:id", "/tours/507f1f77bcf86cd799439011", `{"price":"free"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a string price, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["status"] != "fail" {
		t.Fatalf("expected status fail, got %v", body["status"])
	}
}

func TestUpdateTourRejectsMistypedName(t *testing.T) {
	handler := UpdateTour(testDB(t))

	w := patchJSON(handler, "/tours/:id", "/tours/507f1f77bcf86cd799439011", `{"name":5,"price":"free","duration":5}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a numeric name, got %d", w.Code)
	}
}

func TestUpdateTourRejectsUnknownDifficulty(t *testing.T) {
	handler := UpdateTour(testDB(t))

	w := patchJSON(handler, "/tours/:id", "/tours/507f1f77bcf86cd799439011", `{"difficulty":"impossible"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown difficulty, got %d", w.Code)
	}
}

func TestUpdateTourIgnoresSlugKey(t *testing.T) {
	handler := UpdateTour(testDB(t))

	w := patchJSON(handler, "/tours/:id", "/tours/507f1f77bcf86cd799439011", `{"slug":"forced-slug"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 when only non-updatable keys are sent, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["message"] != "no updatable fields in request body" {
		t.Fatalf("unexpected message: %v", body["message"])
	}
}

func TestTourUpdateRequestSetFields(t *testing.T) {
	name := "  The Forest Hiker  "
	price := 497.0
	secret := false
	req := TourUpdateRequest{Name: &name, Price: &price, SecretTour: &secret}

	fields := req.setFields()
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %v", fields)
	}
	if fields["name"] != "The Forest Hiker" {
		t.Fatalf("expected the name to be trimmed, got %q", fields["name"])
	}
	if fields["price"] != 497.0 {
		t.Fatalf("unexpected price: %v", fields["price"])
	}
	if fields["secretTour"] != false {
		t.Fatal("an explicit secretTour false must be written")
	}
	if _, ok := fields["duration"]; ok {
		t.Fatal("absent fields must not appear in the update")
	}
}
