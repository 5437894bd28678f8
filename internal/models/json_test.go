package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserJSONHidesSensitiveFields(t *testing.T) {
	user := User{
		ID:                   primitive.NewObjectID(),
		Name:                 "Ann",
		Email:                "ann@x.com",
		Role:                 RoleUser,
		Password:             "$2a$12$abcdefghijklmnopqrstuv",
		PasswordChangedAt:    time.Now(),
		PasswordResetToken:   "deadbeef",
		PasswordResetExpires: time.Now().Add(10 * time.Minute),
		Active:               true,
	}

	body, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("json marshal failed: %v", err)
	}

	jsonBody := string(body)
	for _, forbidden := range []string{"password", "Password", "passwordResetToken", "deadbeef", "$2a$12$", "active"} {
		if strings.Contains(jsonBody, forbidden) {
			t.Fatalf("expected %q to be absent from user JSON, got %s", forbidden, jsonBody)
		}
	}
	if !strings.Contains(jsonBody, `"email":"ann@x.com"`) {
		t.Fatalf("expected public fields in user JSON, got %s", jsonBody)
	}
}

func TestTourJSONHidesInternalFields(t *testing.T) {
	tour := Tour{
		ID:            primitive.NewObjectID(),
		Name:          "The Forest Hiker",
		Slug:          "the-forest-hiker",
		Duration:      7,
		DurationWeeks: 1,
		Difficulty:    DifficultyEasy,
		PriceDiscount: 50,
		SecretTour:    true,
		GuideIDs:      []primitive.ObjectID{primitive.NewObjectID()},
	}

	body, err := json.Marshal(tour)
	if err != nil {
		t.Fatalf("json marshal failed: %v", err)
	}

	jsonBody := string(body)
	if strings.Contains(jsonBody, "priceDiscount") {
		t.Fatalf("priceDiscount must be hidden from responses, got %s", jsonBody)
	}
	if strings.Contains(jsonBody, "secretTour") {
		t.Fatalf("secretTour must be hidden from responses, got %s", jsonBody)
	}
	if !strings.Contains(jsonBody, `"durationWeeks":1`) {
		t.Fatalf("expected the derived durationWeeks in responses, got %s", jsonBody)
	}
}
