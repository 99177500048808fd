package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/zentale/story-system/internal/core/domain"
)

const collectionAccounts = "accounts"

// maxTxnAttempts bounds the optimistic-concurrency retry loop before a
// mutation gives up with domain.ErrTransactionConflict.
const maxTxnAttempts = 5

// AccountRepository is the MongoDB-backed entitlement store.
//
// Mutations run as compare-and-swap loops on the document's version field:
// read the account, apply the rule in memory, then commit with an UpdateOne
// conditioned on the version still matching. A lost race re-reads and retries,
// so two concurrent debits can never both consume the same credit.
type AccountRepository struct {
	col *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{col: db.Collection(collectionAccounts)}
}

// Get retrieves the latest committed state of an account.
func (r *AccountRepository) Get(ctx context.Context, userID string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var a domain.Account
	err := r.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Create inserts a new account document. The _id unique constraint makes a
// second provision attempt fail with domain.ErrAccountExists.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, account)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAccountExists
		}
		return err
	}
	return nil
}

// TryDebit conditionally decrements one credit pool.
func (r *AccountRepository) TryDebit(ctx context.Context, userID string, pool domain.CreditPool, amount int) (*domain.DebitOutcome, error) {
	var outcome domain.DebitOutcome
	err := r.runTxn(ctx, userID, func(sub *domain.Subscription) (bool, error) {
		o, err := sub.Debit(pool, amount)
		if err != nil {
			return false, err
		}
		outcome = o
		return o.Debited, nil
	})
	if err != nil {
		return nil, err
	}
	return &outcome, nil
}

// AddCredits adds deltas to both pools and returns the updated subscription.
func (r *AccountRepository) AddCredits(ctx context.Context, userID string, textDelta, audioDelta int) (*domain.Subscription, error) {
	var result domain.Subscription
	err := r.runTxn(ctx, userID, func(sub *domain.Subscription) (bool, error) {
		sub.AddCredits(textDelta, audioDelta)
		result = *sub
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ApplyTransition writes a resolved billing transition in one atomic update.
func (r *AccountRepository) ApplyTransition(ctx context.Context, userID string, t domain.Transition) (*domain.Subscription, error) {
	var result domain.Subscription
	err := r.runTxn(ctx, userID, func(sub *domain.Subscription) (bool, error) {
		sub.Apply(t)
		result = *sub
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// FloorTextCredits tops the text pool up to floor when below threshold.
func (r *AccountRepository) FloorTextCredits(ctx context.Context, userID string, threshold, floor int) (bool, error) {
	applied := false
	err := r.runTxn(ctx, userID, func(sub *domain.Subscription) (bool, error) {
		applied = sub.FloorText(threshold, floor)
		return applied, nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// GrantPeriodBonus applies the recurring plan bonus once per period.
func (r *AccountRepository) GrantPeriodBonus(ctx context.Context, userID, planType string, textBonus, audioBonus int, period string) (bool, error) {
	applied := false
	err := r.runTxn(ctx, userID, func(sub *domain.Subscription) (bool, error) {
		applied = sub.GrantPeriodBonus(planType, textBonus, audioBonus, period)
		return applied, nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// ListTextCreditsBelow returns IDs of accounts whose text pool is below
// threshold.
func (r *AccountRepository) ListTextCreditsBelow(ctx context.Context, threshold int) ([]string, error) {
	return r.listIDs(ctx, bson.M{"subscription.text_credits": bson.M{"$lt": threshold}})
}

// ListBonusCandidates returns IDs of active accounts on planType that have
// not yet received the bonus for period.
func (r *AccountRepository) ListBonusCandidates(ctx context.Context, planType, period string) ([]string, error) {
	return r.listIDs(ctx, bson.M{
		"subscription.status":       domain.StatusActive,
		"subscription.type":         planType,
		"subscription.bonus_period": bson.M{"$ne": period},
	})
}

func (r *AccountRepository) listIDs(ctx context.Context, filter bson.M) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cur.Err()
}

// runTxn is the compare-and-swap loop behind every mutation. mutate applies a
// pure rule to the subscription and reports whether a write is needed; rule
// errors (insufficient credits, unknown pool) abort without retrying. A false
// report short-circuits with no write, keeping no-ops cheap and idempotent.
func (r *AccountRepository) runTxn(ctx context.Context, userID string, mutate func(*domain.Subscription) (bool, error)) error {
	for attempt := 0; attempt < maxTxnAttempts; attempt++ {
		account, err := r.Get(ctx, userID)
		if err != nil {
			return err
		}

		sub := account.Subscription
		needsWrite, err := mutate(&sub)
		if err != nil {
			return err
		}
		if !needsWrite {
			return nil
		}

		opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
		res, err := r.col.UpdateOne(opCtx,
			bson.M{"_id": userID, "version": account.Version},
			bson.M{
				"$set": bson.M{
					"subscription": sub,
					"updated_at":   time.Now().UTC(),
				},
				"$inc": bson.M{"version": 1},
			},
		)
		cancel()
		if err != nil {
			return err
		}
		if res.ModifiedCount == 1 {
			return nil
		}
		// Version moved underneath us; re-read and retry.
	}
	return domain.ErrTransactionConflict
}

// EnsureIndexes creates the indexes the sweep queries rely on.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "subscription.text_credits", Value: 1}}},
		{Keys: bson.D{
			{Key: "subscription.status", Value: 1},
			{Key: "subscription.type", Value: 1},
			{Key: "subscription.bonus_period", Value: 1},
		}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
