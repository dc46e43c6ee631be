package handlers

import (
	"context"
	"net/http"

	"github.com/parallel-finance/staking-agent/internal/config"
	"github.com/parallel-finance/staking-agent/internal/db/model"
	"github.com/parallel-finance/staking-agent/internal/types"
)

// Service is what the status API reads from. *services.Services implements it.
type Service interface {
	DoHealthCheck(ctx context.Context) error
	State() types.DispatcherState
	GetOperationJournal(ctx context.Context, paginationToken string) ([]model.OperationJournalDocument, string, *types.Error)
}

type Handler struct {
	config  *config.Config
	service Service
}

type paginationResponse struct {
	NextKey string `json:"next_key"`
}

type PublicResponse[T any] struct {
	Data       T                   `json:"data"`
	Pagination *paginationResponse `json:"pagination,omitempty"`
}

type Result struct {
	Data   interface{}
	Status int
}

// NewResultWithPagination returns a successful result with the next page key.
func NewResultWithPagination[T any](data T, pageToken string) *Result {
	res := &PublicResponse[T]{Data: data, Pagination: &paginationResponse{NextKey: pageToken}}
	return &Result{Data: res, Status: http.StatusOK}
}

func NewResult[T any](data T) *Result {
	res := &PublicResponse[T]{Data: data}
	return &Result{Data: res, Status: http.StatusOK}
}

func New(
	ctx context.Context, cfg *config.Config, service Service,
) (*Handler, error) {
	return &Handler{
		config:  cfg,
		service: service,
	}, nil
}

func parsePaginationQuery(r *http.Request) (string, *types.Error) {
	pageKey := r.URL.Query().Get("pagination_key")
	if pageKey == "" {
		return "", nil
	}
	if len(pageKey) > maxPaginationKeyLength {
		return "", types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "invalid pagination key")
	}
	return pageKey, nil
}

const maxPaginationKeyLength = 512
