package jwtutil

import (
	"errors"
	"testing"

	"supplier-kpi-service/pkg/config"
)

func TestNotInitialized(t *testing.T) {
	jwtConfig = nil
	if _, err := GenerateToken("a@b.c", 1, ""); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("GenerateToken error = %v", err)
	}
	if _, err := ValidateToken("x"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("ValidateToken error = %v", err)
	}
}

func TestGenerateAndValidate(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	token, err := GenerateToken("buyer@example.com", 42, "analyst")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Email != "buyer@example.com" || claims.UserID != 42 || claims.Role != "analyst" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestValidateRejectsWrongKey(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "key-one", ExpirationHours: 1})
	token, err := GenerateToken("buyer@example.com", 1, "")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	Initialize(&config.JWTConfig{SigningKey: "key-two", ExpirationHours: 1})
	if _, err := ValidateToken(token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: -1})
	token, err := GenerateToken("buyer@example.com", 1, "")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := ValidateToken(token); err == nil {
		t.Fatal("expected expiry error")
	}
}
