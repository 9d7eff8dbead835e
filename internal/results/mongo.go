package results

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Inserter is the part of *mongo.Collection the sink writes through.
type Inserter interface {
	InsertOne(ctx context.Context, document interface{}, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
}

var _ Inserter = (*mongo.Collection)(nil)

// MongoSink stores each run as one document keyed by its id.
type MongoSink struct {
	coll Inserter
	l    zerolog.Logger
}

func NewMongoSink(coll Inserter) *MongoSink {
	return &MongoSink{
		coll: coll,
		l:    log.With().Str("domain", "results").Str("sink", "mongo").Logger(),
	}
}

func (s *MongoSink) Name() string {
	return "mongo"
}

func (s *MongoSink) Save(ctx context.Context, run *Run) error {
	if _, err := s.coll.InsertOne(ctx, run); err != nil {
		return errors.Wrapf(err, "failed to store run %s", run.ID)
	}
	s.l.Info().Str("run-id", run.ID).Msg("run stored")
	return nil
}
