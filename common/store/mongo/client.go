package mongo

import (
	"context"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

func NewClient(cfg *ClientConfig) (*mongo.Client, error) {
	logOpts := options.
		Logger().
		SetSink(&logger{log: log.With().Str("domain", "mongo").Logger()}).
		SetComponentLevel(options.LogComponentCommand, options.LogLevelDebug).
		SetComponentLevel(options.LogComponentConnection, options.LogLevelDebug)
	bsonOpts := &options.BSONOptions{
		UseJSONStructTags: true,
		NilSliceAsEmpty:   true,
	}
	opts := options.
		Client().
		ApplyURI(cfg.URI).
		SetLoggerOptions(logOpts).
		SetBSONOptions(bsonOpts)
	if cfg.Username != "" {
		opts.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to MongoDB")
	}
	return client, nil
}

// Open connects, pings the primary and returns the configured collection.
func Open(ctx context.Context, cfg *Config) (*mongo.Client, *mongo.Collection, error) {
	client, err := NewClient(&cfg.ClientConfig)
	if err != nil {
		return nil, nil, err
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, errors.Wrap(err, "failed to ping MongoDB")
	}
	coll := client.Database(cfg.databaseName()).Collection(cfg.collectionName())
	return client, coll, nil
}
