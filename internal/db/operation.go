package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/parallel-finance/staking-agent/internal/db/model"
)

func (db *Database) SaveOperationJournal(ctx context.Context, doc *model.OperationJournalDocument) error {
	_, err := db.collection(model.OperationJournalCollection).InsertOne(ctx, doc)
	return duplicateKey(err, doc.Id)
}

// FindOperationJournal pages through the journal, newest first.
func (db *Database) FindOperationJournal(
	ctx context.Context, paginationToken string,
) (*DbResultMap[model.OperationJournalDocument], error) {
	client := db.collection(model.OperationJournalCollection)
	limit := db.cfg.MaxPaginationLimit
	options := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(limit)

	filter := bson.M{}
	if paginationToken != "" {
		decodedToken, err := model.DecodeOperationJournalPaginationToken(paginationToken)
		if err != nil {
			return nil, &InvalidPaginationTokenError{
				Message: "Invalid pagination token",
			}
		}
		filter = bson.M{
			"$or": []bson.M{
				{"created_at": bson.M{"$lt": decodedToken.CreatedAt}},
				{"created_at": decodedToken.CreatedAt, "_id": bson.M{"$gt": decodedToken.Id}},
			},
		}
	}

	cursor, err := client.Find(ctx, filter, options)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var journal []model.OperationJournalDocument
	if err = cursor.All(ctx, &journal); err != nil {
		return nil, err
	}

	return toResultMapWithPaginationToken(limit, journal, model.BuildOperationJournalPaginationToken)
}

func (db *Database) SaveFailedOperation(ctx context.Context, doc *model.FailedOperationDocument) error {
	_, err := db.collection(model.FailedOperationCollection).InsertOne(ctx, doc)
	return duplicateKey(err, doc.Id)
}

func duplicateKey(err error, id string) error {
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return &DuplicateKeyError{
			Key:     id,
			Message: "document already exists",
		}
	}
	return err
}

// FindFailedOperations returns up to limit failed operations, oldest first.
func (db *Database) FindFailedOperations(ctx context.Context, limit int64) ([]model.FailedOperationDocument, error) {
	options := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(limit)

	cursor, err := db.collection(model.FailedOperationCollection).Find(ctx, bson.M{}, options)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var failed []model.FailedOperationDocument
	if err = cursor.All(ctx, &failed); err != nil {
		return nil, err
	}
	return failed, nil
}

func (db *Database) ResolveFailedOperation(
	ctx context.Context, id string, outcome *model.OperationJournalDocument,
) error {
	failedClient := db.collection(model.FailedOperationCollection)
	journalClient := db.collection(model.OperationJournalCollection)

	_, err := TxWithRetries(ctx, db.transactionClient(), func(sessCtx mongo.SessionContext) (interface{}, error) {
		res, err := failedClient.DeleteOne(sessCtx, bson.M{"_id": id})
		if err != nil {
			return nil, err
		}
		if res.DeletedCount == 0 {
			return nil, &NotFoundError{
				Key:     id,
				Message: "Failed operation not found",
			}
		}
		if _, err := journalClient.InsertOne(sessCtx, outcome); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}

func (db *Database) IncrementFailedOperationAttempts(ctx context.Context, id string, errorCode, errMsg string) error {
	update := bson.M{
		"$inc": bson.M{"attempts": 1},
		"$set": bson.M{"error_code": errorCode, "error": errMsg},
	}
	res, err := db.collection(model.FailedOperationCollection).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &NotFoundError{
			Key:     id,
			Message: "Failed operation not found",
		}
	}
	return nil
}
