package auth

import (
	"stadtwache/models"
	"testing"
	"time"
)

func TestAuthorizeExactMatch(t *testing.T) {
	tests := []struct {
		name    string
		role    models.UserRole
		allowed []models.UserRole
		want    bool
	}{
		{"admin allowed", models.RoleAdmin, []models.UserRole{models.RoleAdmin}, true},
		{"police not admin", models.RolePolice, []models.UserRole{models.RoleAdmin}, false},
		{"allow-list match", models.RoleTrainee, []models.UserRole{models.RolePolice, models.RoleTrainee}, true},
		{"no hierarchy", models.RoleAdmin, []models.UserRole{models.RolePolice}, false},
		{"empty allow-list", models.RolePolice, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &models.User{ID: "u1", Role: tt.role}
			if got := Authorize(u, tt.allowed...); got != tt.want {
				t.Errorf("Authorize(%s, %v) = %v, want %v", tt.role, tt.allowed, got, tt.want)
			}
		})
	}
}

func TestAuthorizeNilUser(t *testing.T) {
	if Authorize(nil, models.RoleAdmin) {
		t.Error("nil user must never be authorized")
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("einsatz2024")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := CheckPassword("einsatz2024", hash); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := CheckPassword("wrong-password", hash); err == nil {
		t.Error("wrong password accepted")
	}
}

func TestPasswordTooShort(t *testing.T) {
	if _, err := HashPassword("kurz"); err == nil {
		t.Error("short password accepted")
	}
}

func TestJWTGenerateValidate(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := &models.User{ID: "user-1", Email: "wache@schwelm.de", Role: models.RolePolice}

	token, err := m.GenerateToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "wache@schwelm.de" || claims.Role != models.RolePolice {
		t.Errorf("claims = %+v", claims)
	}
}

func TestJWTExpired(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute)
	token, err := m.GenerateToken(&models.User{ID: "user-1"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := m.ValidateToken(token); err == nil {
		t.Error("expired token accepted")
	}
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret-a", time.Hour).GenerateToken(&models.User{ID: "user-1"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewJWTManager("secret-b", time.Hour).ValidateToken(token); err == nil {
		t.Error("token signed with different secret accepted")
	}
}

func TestExtractToken(t *testing.T) {
	if _, err := ExtractToken(""); err == nil {
		t.Error("empty header accepted")
	}
	if _, err := ExtractToken("Basic abc"); err == nil {
		t.Error("non-bearer header accepted")
	}
	tok, err := ExtractToken("Bearer abc.def.ghi")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if tok != "abc.def.ghi" {
		t.Errorf("token = %q", tok)
	}
}
