package db

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/parallel-finance/staking-agent/internal/db/model"
)

type DBClient interface {
	Ping(ctx context.Context) error
	SaveOperationJournal(ctx context.Context, doc *model.OperationJournalDocument) error
	FindOperationJournal(
		ctx context.Context, paginationToken string,
	) (*DbResultMap[model.OperationJournalDocument], error)
	SaveFailedOperation(ctx context.Context, doc *model.FailedOperationDocument) error
	FindFailedOperations(ctx context.Context, limit int64) ([]model.FailedOperationDocument, error)
	// ResolveFailedOperation deletes the failed operation and journals its
	// replay outcome in one transaction.
	ResolveFailedOperation(ctx context.Context, id string, outcome *model.OperationJournalDocument) error
	IncrementFailedOperationAttempts(ctx context.Context, id string, errorCode, errMsg string) error
}

type DBSession interface {
	EndSession(ctx context.Context)
	WithTransaction(
		ctx context.Context,
		fn func(sessCtx mongo.SessionContext) (interface{}, error),
		opts ...*options.TransactionOptions,
	) (interface{}, error)
}

type DBTransactionClient interface {
	StartSession(opts ...*options.SessionOptions) (DBSession, error)
}
