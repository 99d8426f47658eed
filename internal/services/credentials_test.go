package services

import (
	"context"
	"errors"
	"testing"
)

func TestStaticCredentials_Validate(t *testing.T) {
	creds := StaticCredentials{"admin": "spark-admin-pw"}
	ctx := context.Background()

	identity, err := creds.Validate(ctx, "admin", "spark-admin-pw")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if identity.Username != "admin" {
		t.Errorf("username = %q", identity.Username)
	}
	if identity.UserID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("user id is nil")
	}

	// Same username resolves to the same derived id across calls.
	again, err := creds.Validate(ctx, "ADMIN", "spark-admin-pw")
	if err != nil {
		t.Fatalf("Validate (uppercase): %v", err)
	}
	if again.UserID != identity.UserID {
		t.Errorf("derived id changed: %s vs %s", again.UserID, identity.UserID)
	}
}

func TestStaticCredentials_WrongPassword(t *testing.T) {
	creds := StaticCredentials{"admin": "spark-admin-pw"}

	_, err := creds.Validate(context.Background(), "admin", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestStaticCredentials_UnknownUser(t *testing.T) {
	creds := StaticCredentials{"admin": "spark-admin-pw"}

	_, err := creds.Validate(context.Background(), "nobody", "spark-admin-pw")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}
