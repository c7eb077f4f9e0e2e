// Package mongo implementa el adapter MongoDB (mongo-driver v2).
// La rotación usa transacciones, por lo que requiere replica set.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/dropDatabas3/keyward/internal/domain/repository"
	store "github.com/dropDatabas3/keyward/internal/store"
)

const (
	keysCollection    = "signing_keys"
	clientsCollection = "oauth_clients"
)

func init() {
	store.RegisterAdapter(&mongoAdapter{})
}

type mongoAdapter struct{}

func (a *mongoAdapter) Name() string { return "mongo" }

func (a *mongoAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.AdapterConnection, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.DSN))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping failed: %w", err)
	}
	dbName := cfg.Database
	if dbName == "" {
		dbName = "keyward"
	}
	return &mongoConnection{client: client, db: client.Database(dbName)}, nil
}

type mongoConnection struct {
	client *mongo.Client
	db     *mongo.Database
}

func (c *mongoConnection) Name() string { return "mongo" }

func (c *mongoConnection) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

func (c *mongoConnection) Close() error {
	return c.client.Disconnect(context.Background())
}

func (c *mongoConnection) Keys() repository.KeyRepository {
	return &keyRepo{client: c.client, coll: c.db.Collection(keysCollection)}
}

func (c *mongoConnection) Clients() repository.ClientRepository {
	return &clientRepo{coll: c.db.Collection(clientsCollection)}
}

// Migrate crea los índices. El índice parcial único sobre is_active garantiza
// una sola clave activa a nivel de almacenamiento.
func (c *mongoConnection) Migrate(ctx context.Context) error {
	keys := c.db.Collection(keysCollection)
	_, err := keys.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "is_active", Value: 1}},
			Options: options.Index().
				SetName("signing_keys_single_active").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"is_active": true}),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("signing_keys_created_at"),
		},
	})
	if err != nil {
		return fmt.Errorf("mongo: signing_keys indexes: %w", err)
	}

	clients := c.db.Collection(clientsCollection)
	_, err = clients.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "client_id", Value: 1}},
		Options: options.Index().SetName("oauth_clients_client_id").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo: oauth_clients indexes: %w", err)
	}
	return nil
}
