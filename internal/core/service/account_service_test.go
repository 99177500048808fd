package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/zentale/story-system/internal/core/domain"
	"github.com/zentale/story-system/internal/core/ports"
)

func TestAccountService_Provision_Defaults(t *testing.T) {
	repo := newStubAccountRepo()
	svc := NewAccountService(repo, zerolog.Nop())

	provisioned, err := svc.Provision(context.Background(), ports.ProvisionAccountInput{
		UserID: "u1",
		Email:  "kid@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if provisioned.Account.Subscription != domain.NewDefaultSubscription() {
		t.Errorf("unexpected default subscription: %+v", provisioned.Account.Subscription)
	}
	if len(provisioned.APIKey) != apiKeyBytes*2 {
		t.Errorf("expected %d-char hex key, got %d chars", apiKeyBytes*2, len(provisioned.APIKey))
	}

	// Only the hash is stored, and it verifies against the plaintext key.
	stored, err := repo.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected account persisted: %v", err)
	}
	if stored.APIKeyHash == provisioned.APIKey {
		t.Error("plaintext key must not be stored")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.APIKeyHash), []byte(provisioned.APIKey)) != nil {
		t.Error("stored hash does not match issued key")
	}
}

func TestAccountService_Provision_Duplicate(t *testing.T) {
	repo := newStubAccountRepo()
	svc := NewAccountService(repo, zerolog.Nop())

	if _, err := svc.Provision(context.Background(), ports.ProvisionAccountInput{UserID: "u1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := repo.subscription("u1")

	_, err := svc.Provision(context.Background(), ports.ProvisionAccountInput{UserID: "u1"})
	if !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got: %v", err)
	}
	if repo.subscription("u1") != first {
		t.Error("second provision must not overwrite the record")
	}
}

func TestAccountService_Snapshot_Missing(t *testing.T) {
	svc := NewAccountService(newStubAccountRepo(), zerolog.Nop())

	_, err := svc.Snapshot(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got: %v", err)
	}
}
