package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dropDatabas3/keyward/internal/domain/repository"
)

type clientDoc struct {
	ID             string    `bson:"_id"`
	ClientID       string    `bson:"client_id"`
	ClientName     string    `bson:"client_name"`
	SecretHash     string    `bson:"secret_hash"`
	Scopes         []string  `bson:"scopes"`
	AccessTokenTTL int64     `bson:"access_token_ttl"`
	CreatedAt      time.Time `bson:"created_at"`
}

// ─── ClientRepository ───

type clientRepo struct{ coll *mongo.Collection }

func (r *clientRepo) Create(ctx context.Context, c *repository.Client) error {
	_, err := r.coll.InsertOne(ctx, clientDoc{
		ID:             c.ID,
		ClientID:       c.ClientID,
		ClientName:     c.ClientName,
		SecretHash:     c.SecretHash,
		Scopes:         c.Scopes,
		AccessTokenTTL: c.AccessTokenTTL,
		CreatedAt:      c.CreatedAt.UTC(),
	})
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrConflict
	}
	return err
}

func (r *clientRepo) GetByClientID(ctx context.Context, clientID string) (*repository.Client, error) {
	var d clientDoc
	if err := r.coll.FindOne(ctx, bson.M{"client_id": clientID}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &repository.Client{
		ID:             d.ID,
		ClientID:       d.ClientID,
		ClientName:     d.ClientName,
		SecretHash:     d.SecretHash,
		Scopes:         d.Scopes,
		AccessTokenTTL: d.AccessTokenTTL,
		CreatedAt:      d.CreatedAt.UTC(),
	}, nil
}

func (r *clientRepo) DeleteByClientID(ctx context.Context, clientID string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"client_id": clientID})
	return err
}
