package service

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/zentale/story-system/internal/core/domain"
	"github.com/zentale/story-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

// stubAccountRepo is an in-memory entitlement store. A mutex makes every
// mutation atomic, mirroring the real store's conditional-write guarantee.
type stubAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account

	debitErr error
	applyErr error
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func (r *stubAccountRepo) seed(userID string, sub domain.Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[userID] = &domain.Account{ID: userID, Subscription: sub}
}

func (r *stubAccountRepo) subscription(userID string) domain.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accounts[userID].Subscription
}

func (r *stubAccountRepo) Get(_ context.Context, userID string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[userID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *stubAccountRepo) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[account.ID]; ok {
		return domain.ErrAccountExists
	}
	copied := *account
	r.accounts[account.ID] = &copied
	return nil
}

func (r *stubAccountRepo) TryDebit(_ context.Context, userID string, pool domain.CreditPool, amount int) (*domain.DebitOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.debitErr != nil {
		return nil, r.debitErr
	}
	a, ok := r.accounts[userID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	outcome, err := a.Subscription.Debit(pool, amount)
	if err != nil {
		return nil, err
	}
	return &outcome, nil
}

func (r *stubAccountRepo) AddCredits(_ context.Context, userID string, textDelta, audioDelta int) (*domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[userID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	a.Subscription.AddCredits(textDelta, audioDelta)
	sub := a.Subscription
	return &sub, nil
}

func (r *stubAccountRepo) ApplyTransition(_ context.Context, userID string, t domain.Transition) (*domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.applyErr != nil {
		return nil, r.applyErr
	}
	a, ok := r.accounts[userID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	a.Subscription.Apply(t)
	sub := a.Subscription
	return &sub, nil
}

func (r *stubAccountRepo) FloorTextCredits(_ context.Context, userID string, threshold, floor int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[userID]
	if !ok {
		return false, domain.ErrAccountNotFound
	}
	return a.Subscription.FloorText(threshold, floor), nil
}

func (r *stubAccountRepo) GrantPeriodBonus(_ context.Context, userID, planType string, textBonus, audioBonus int, period string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[userID]
	if !ok {
		return false, domain.ErrAccountNotFound
	}
	return a.Subscription.GrantPeriodBonus(planType, textBonus, audioBonus, period), nil
}

func (r *stubAccountRepo) ListTextCreditsBelow(_ context.Context, threshold int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, a := range r.accounts {
		if a.Subscription.TextCredits < threshold {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *stubAccountRepo) ListBonusCandidates(_ context.Context, planType, period string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, a := range r.accounts {
		s := a.Subscription
		if s.Status == domain.StatusActive && s.Type == planType && s.BonusPeriod != period {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type stubStoryRepo struct {
	mu      sync.Mutex
	stories map[string]*domain.Story
	saveErr error
}

func newStubStoryRepo() *stubStoryRepo {
	return &stubStoryRepo{stories: make(map[string]*domain.Story)}
}

func (r *stubStoryRepo) Save(_ context.Context, story *domain.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	copied := *story
	r.stories[story.ID] = &copied
	return nil
}

func (r *stubStoryRepo) GetByID(_ context.Context, storyID string) (*domain.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stories[storyID]
	if !ok {
		return nil, domain.ErrStoryNotFound
	}
	copied := *s
	return &copied, nil
}

type stubGenerator struct {
	err       error
	maxTokens int // records the budget of the last call
}

func (g *stubGenerator) ComposeStory(_ context.Context, language string, _ []string, maxTokens int) (*ports.ComposedStory, error) {
	g.maxTokens = maxTokens
	if g.err != nil {
		return nil, g.err
	}
	return &ports.ComposedStory{
		Title:    "The Brave Teapot",
		Content:  "Once upon a time in " + language + "...",
		ImageURL: "https://img.example/teapot.png",
	}, nil
}

type stubSpeech struct {
	err error
}

func (s *stubSpeech) Synthesize(_ context.Context, _ string, _ string) (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader("mp3-bytes")), nil
}

type stubMedia struct {
	err  error
	keys []string
}

func (m *stubMedia) StoreAudio(_ context.Context, userID, storyID string, audio io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	_, _ = io.ReadAll(audio)
	m.keys = append(m.keys, userID+"/"+storyID)
	return "https://media.example/" + userID + "/" + storyID + ".mp3", nil
}

type stubLedger struct {
	mu      sync.Mutex
	seen    map[string]bool
	seenErr error
	markErr error
}

func newStubLedger() *stubLedger {
	return &stubLedger{seen: make(map[string]bool)}
}

func (l *stubLedger) Seen(_ context.Context, eventID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seenErr != nil {
		return false, l.seenErr
	}
	return l.seen[eventID], nil
}

func (l *stubLedger) Record(_ context.Context, eventID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.markErr != nil {
		return l.markErr
	}
	l.seen[eventID] = true
	return nil
}

// serialRunner executes tasks inline, one at a time.
type serialRunner struct{}

func (serialRunner) Run(ctx context.Context, ids []string, task func(ctx context.Context, id string) error) int {
	failed := 0
	for _, id := range ids {
		if err := task(ctx, id); err != nil {
			failed++
		}
	}
	return failed
}
