package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/access-control/internal/core/domain"
)

const (
	collectionAccounts = "accounts"
	collectionMeta     = "meta"
	seededMarkerID     = "accounts_seeded"
)

// AccountRepository implements ports.AccountRepository on a MongoDB
// collection, one document per account.
type AccountRepository struct {
	db   *mongo.Database
	col  *mongo.Collection
	seed []domain.Account
	log  zerolog.Logger
}

func NewAccountRepository(db *mongo.Database, seed []domain.Account, log zerolog.Logger) *AccountRepository {
	return &AccountRepository{
		db:   db,
		col:  db.Collection(collectionAccounts),
		seed: seed,
		log:  log,
	}
}

type mongoAccount struct {
	Username     string `bson:"username"`
	PasswordHash string `bson:"password_hash"`
	Role         string `bson:"role"`
	Position     int    `bson:"position"`
}

func toDocument(a domain.Account, position int) mongoAccount {
	return mongoAccount{
		Username:     a.Username,
		PasswordHash: a.SecretHash,
		Role:         a.Role.String(),
		Position:     position,
	}
}

func fromDocument(d mongoAccount) domain.Account {
	return domain.Account{Username: d.Username, SecretHash: d.PasswordHash, Role: domain.Role(d.Role)}
}

// Get returns every account in registry order.
func (r *AccountRepository) Get(ctx context.Context) ([]domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "position", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("%w: find accounts: %v", domain.ErrStorage, err)
	}
	defer cur.Close(ctx)

	var docs []mongoAccount
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: decode accounts: %v", domain.ErrStorage, err)
	}

	accounts := make([]domain.Account, 0, len(docs))
	for _, d := range docs {
		accounts = append(accounts, fromDocument(d))
	}
	return accounts, nil
}

// Put makes the collection equal to accounts. Every account is upserted in
// order, then documents whose username is no longer present are removed, so a
// concurrent reader never observes an empty registry mid-write.
func (r *AccountRepository) Put(ctx context.Context, accounts []domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	names := make([]string, 0, len(accounts))
	models := make([]mongo.WriteModel, 0, len(accounts)+1)
	for i, a := range accounts {
		names = append(names, a.Username)
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"username": a.Username}).
			SetReplacement(toDocument(a, i)).
			SetUpsert(true))
	}
	models = append(models, mongo.NewDeleteManyModel().
		SetFilter(bson.M{"username": bson.M{"$nin": names}}))

	if _, err := r.col.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
		return fmt.Errorf("%w: write accounts: %v", domain.ErrStorage, err)
	}
	return nil
}

// EnsureIndexes enforces username uniqueness at the storage level too.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "position", Value: 1}}},
	})
	return err
}

// Seed writes the bootstrap accounts the first time this database is used.
// A marker document records that seeding happened, so an emptied registry is
// not reseeded on restart.
func (r *AccountRepository) Seed(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.db.Collection(collectionMeta).InsertOne(ctx, bson.M{"_id": seededMarkerID, "at": time.Now().UTC()})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("%w: mark seeded: %v", domain.ErrStorage, err)
	}

	if err := r.Put(ctx, r.seed); err != nil {
		_, _ = r.db.Collection(collectionMeta).DeleteOne(ctx, bson.M{"_id": seededMarkerID})
		return err
	}
	r.log.Info().Int("accounts", len(r.seed)).Msg("seeded bootstrap accounts")
	return nil
}

func (r *AccountRepository) Name() string { return "mongodb" }

func (r *AccountRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, nil)
}
