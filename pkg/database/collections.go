package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createIndexes(ctx context.Context) {
	createServicesIndexes(ctx)
	createAssociationsIndexes(ctx)
}

func createServicesIndexes(ctx context.Context) {
	servicesCollection := GetCollection(ServicesCollection)
	boardIndexName := "BoardCandidates"
	_, err := servicesCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "uid", Value: 1}},
		},
		{
			Options: &options.IndexOptions{
				Name: &boardIndexName,
			},
			Keys: bson.D{
				{Key: "points.location.crscode", Value: 1},
				{Key: "period.from", Value: 1},
				{Key: "period.to", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "rsids", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "importid", Value: 1}},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createAssociationsIndexes(ctx context.Context) {
	associationsCollection := GetCollection(AssociationsCollection)
	_, err := associationsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryuid", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "secondaryuid", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "importid", Value: 1}},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
