// Package mongo serves package definitions stored in a MongoDB collection.
//
// Each document is one [provider.Definition], keyed by its name field:
//
//	{"name": "jquery", "versions": [{"semver": "2.1.0", "scripts": ["jquery.js"]}]}
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	cerrors "github.com/filearts/corral/pkg/errors"
	"github.com/filearts/corral/pkg/provider"
)

const (
	DefaultDatabase   = "corral"
	DefaultCollection = "packages"

	connectTimeout = 10 * time.Second
)

// Provider looks packages up in a collection.
type Provider struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect opens a client for uri and checks the server is reachable. Empty
// database or collection names use the defaults.
func Connect(ctx context.Context, uri, database, collection string) (*Provider, error) {
	if database == "" {
		database = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}

	opts := options.Client().ApplyURI(uri).SetConnectTimeout(connectTimeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodeInvalidConfig, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, cerrors.Wrap(cerrors.ErrCodeNetwork, err, "ping mongodb")
	}
	return &Provider{client: client, coll: client.Database(database).Collection(collection)}, nil
}

// New serves definitions from an existing collection. Close is a no-op for
// providers created this way.
func New(coll *mongo.Collection) *Provider {
	return &Provider{coll: coll}
}

// Fetch implements provider.Provider.
func (p *Provider) Fetch(ctx context.Context, name string) (*provider.Definition, error) {
	var def provider.Definition
	err := p.coll.FindOne(ctx, bson.M{"name": name}).Decode(&def)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, provider.NotFound(name)
	}
	if err != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodeNetwork, err, "find package %s", name)
	}
	return &def, nil
}

// Put stores def, replacing any document with the same name.
func (p *Provider) Put(ctx context.Context, def *provider.Definition) error {
	if err := cerrors.ValidatePackageName(def.Name); err != nil {
		return err
	}
	_, err := p.coll.ReplaceOne(ctx, bson.M{"name": def.Name}, def, options.Replace().SetUpsert(true))
	if err != nil {
		return cerrors.Wrap(cerrors.ErrCodeNetwork, err, "store package %s", def.Name)
	}
	return nil
}

// EnsureIndex creates the unique index on name.
func (p *Provider) EnsureIndex(ctx context.Context) error {
	_, err := p.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Close disconnects the client opened by Connect.
func (p *Provider) Close(ctx context.Context) error {
	if p.client == nil {
		return nil
	}
	return p.client.Disconnect(ctx)
}

var _ provider.Provider = (*Provider)(nil)
