package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dropDatabas3/keyward/internal/domain/repository"
)

type keyDoc struct {
	KID           string    `bson:"_id"`
	Algorithm     string    `bson:"algorithm"`
	KeySize       int       `bson:"key_size"`
	PublicKeyPEM  string    `bson:"public_key_pem"`
	PrivateKeyPEM string    `bson:"private_key_pem,omitempty"`
	CreatedAt     time.Time `bson:"created_at"`
	Active        bool      `bson:"is_active"`
}

func toKeyDoc(k *repository.SigningKey) keyDoc {
	return keyDoc{
		KID:           k.KID,
		Algorithm:     k.Algorithm,
		KeySize:       k.KeySize,
		PublicKeyPEM:  k.PublicKeyPEM,
		PrivateKeyPEM: k.PrivateKeyPEM,
		CreatedAt:     k.CreatedAt.UTC(),
		Active:        k.Active,
	}
}

func (d keyDoc) toDomain() repository.SigningKey {
	return repository.SigningKey{
		KID:           d.KID,
		Algorithm:     d.Algorithm,
		KeySize:       d.KeySize,
		PublicKeyPEM:  d.PublicKeyPEM,
		PrivateKeyPEM: d.PrivateKeyPEM,
		CreatedAt:     d.CreatedAt.UTC(),
		Active:        d.Active,
	}
}

// ─── KeyRepository ───

type keyRepo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func (r *keyRepo) findOne(ctx context.Context, filter any) (*repository.SigningKey, error) {
	var d keyDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	k := d.toDomain()
	return &k, nil
}

func (r *keyRepo) GetActive(ctx context.Context) (*repository.SigningKey, error) {
	return r.findOne(ctx, bson.M{"is_active": true})
}

func (r *keyRepo) GetByKID(ctx context.Context, kid string) (*repository.SigningKey, error) {
	return r.findOne(ctx, bson.M{"_id": kid})
}

func (r *keyRepo) List(ctx context.Context) ([]repository.SigningKey, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetProjection(bson.M{"private_key_pem": 0})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []keyDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]repository.SigningKey, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *keyRepo) Insert(ctx context.Context, k *repository.SigningKey) error {
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": k.KID}, toKeyDoc(k), options.Replace().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrConflict
	}
	return err
}

// Rotate desactiva la activa e inserta la nueva dentro de una transacción.
func (r *keyRepo) Rotate(ctx context.Context, k *repository.SigningKey) (string, error) {
	session, err := r.client.StartSession()
	if err != nil {
		return "", err
	}
	defer session.EndSession(ctx)

	res, err := session.WithTransaction(ctx, func(sc context.Context) (any, error) {
		var prev keyDoc
		err := r.coll.FindOneAndUpdate(sc,
			bson.M{"is_active": true},
			bson.M{"$set": bson.M{"is_active": false}},
		).Decode(&prev)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}

		doc := toKeyDoc(k)
		doc.Active = true
		if _, err := r.coll.InsertOne(sc, doc); err != nil {
			return nil, err
		}
		return prev.KID, nil
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", repository.ErrConflict
		}
		return "", err
	}
	k.Active = true
	prev, _ := res.(string)
	return prev, nil
}
