package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/zentale/story-system/internal/core/domain"
	"github.com/zentale/story-system/internal/core/ports"
)

const apiKeyBytes = 20

type accountService struct {
	repo ports.AccountRepository
	log  zerolog.Logger
}

// NewAccountService returns an AccountService implementation.
func NewAccountService(repo ports.AccountRepository, log zerolog.Logger) ports.AccountService {
	return &accountService{repo: repo, log: log}
}

// Provision creates the default account record for a newly signed-in user.
// The plaintext API key is returned exactly once; only its bcrypt hash is
// persisted.
func (s *accountService) Provision(ctx context.Context, in ports.ProvisionAccountInput) (*ports.ProvisionedAccount, error) {
	apiKey, err := generateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("provision account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("provision account: %w", err)
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:           in.UserID,
		Email:        in.Email,
		DisplayName:  in.DisplayName,
		APIKeyHash:   string(hash),
		Subscription: domain.NewDefaultSubscription(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, domain.ErrAccountExists) {
			s.log.Debug().Str("user_id", in.UserID).Msg("account already provisioned")
		}
		return nil, err
	}

	s.log.Info().Str("user_id", in.UserID).Msg("account provisioned")

	return &ports.ProvisionedAccount{Account: account, APIKey: apiKey}, nil
}

// Snapshot returns the latest committed account state.
func (s *accountService) Snapshot(ctx context.Context, userID string) (*domain.Account, error) {
	return s.repo.Get(ctx, userID)
}

// generateAPIKey returns a hex-encoded random API key.
func generateAPIKey() (string, error) {
	b := make([]byte, apiKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
