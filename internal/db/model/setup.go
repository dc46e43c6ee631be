package model

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/parallel-finance/staking-agent/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Keys are ordered, compound index field order matters.
type index struct {
	Keys   bson.D
	Unique bool
}

var collections = map[string][]index{
	OperationJournalCollection: {
		{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "event_id", Value: 1}}},
	},
	FailedOperationCollection: {{Keys: bson.D{{Key: "created_at", Value: 1}}}},
}

func Setup(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Db.Address))
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	// Access a database and create collections.
	database := client.Database(cfg.Db.DbName)

	for collection := range collections {
		createCollection(ctx, database, collection)
	}

	for name, idxs := range collections {
		for _, idx := range idxs {
			createIndex(ctx, database, name, idx)
		}
	}

	log.Info().Str("db", cfg.Db.DbName).Msg("journal collections and indexes ready")
	return nil
}

func createCollection(ctx context.Context, database *mongo.Database, collectionName string) {
	if err := database.CreateCollection(ctx, collectionName); err != nil {
		log.Debug().Msg(fmt.Sprintf("Collection maybe already exists: %s, info: %s", collectionName, err))
		return
	}

	log.Debug().Msg("Collection created successfully: " + collectionName)
}

func createIndex(ctx context.Context, database *mongo.Database, collectionName string, idx index) {
	if len(idx.Keys) == 0 {
		return
	}

	index := mongo.IndexModel{
		Keys:    idx.Keys,
		Options: options.Index().SetUnique(idx.Unique),
	}

	if _, err := database.Collection(collectionName).Indexes().CreateOne(ctx, index); err != nil {
		log.Debug().Msg(fmt.Sprintf("Failed to create index on collection '%s': %v", collectionName, err))
		return
	}

	log.Debug().Msg("Index created successfully on collection: " + collectionName)
}
