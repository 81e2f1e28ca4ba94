package middleware

import (
	"testing"
	"time"

	"github.com/anjiri1684/fitness_marketplace/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func TestActorFromClaims(t *testing.T) {
	id := uuid.New()
	actor, err := ActorFromClaims(jwt.MapClaims{"user_id": id.String(), "role": "freelance_pt"})
	if err != nil {
		t.Fatal(err)
	}
	if actor.UserID != id || actor.Role != models.RoleFreelancePT || !actor.IsMerchant() {
		t.Fatalf("actor = %+v", actor)
	}

	for name, claims := range map[string]jwt.MapClaims{
		"missing user":  {"role": "customer"},
		"bad user":      {"user_id": "42", "role": "customer"},
		"missing role":  {"user_id": id.String()},
		"unknown role":  {"user_id": id.String(), "role": "superuser"},
		"non-string id": {"user_id": 42, "role": "customer"},
	} {
		if _, err := ActorFromClaims(claims); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestParseToken(t *testing.T) {
	id := uuid.New()
	sign := func(method jwt.SigningMethod, key interface{}, exp time.Time) string {
		s, err := jwt.NewWithClaims(method, jwt.MapClaims{
			"user_id": id.String(),
			"role":    "admin",
			"exp":     exp.Unix(),
		}).SignedString(key)
		if err != nil {
			t.Fatal(err)
		}
		return s
	}

	actor, err := ParseToken("secret", sign(jwt.SigningMethodHS256, []byte("secret"), time.Now().Add(time.Hour)))
	if err != nil || actor.UserID != id || !actor.IsAdmin() {
		t.Fatalf("ParseToken = %+v, %v", actor, err)
	}
	if _, err := ParseToken("secret", sign(jwt.SigningMethodHS256, []byte("other"), time.Now().Add(time.Hour))); err == nil {
		t.Fatal("token signed with another secret accepted")
	}
	if _, err := ParseToken("secret", sign(jwt.SigningMethodHS256, []byte("secret"), time.Now().Add(-time.Minute))); err == nil {
		t.Fatal("expired token accepted")
	}
	if _, err := ParseToken("secret", sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, time.Now().Add(time.Hour))); err == nil {
		t.Fatal("unsigned token accepted")
	}
}
