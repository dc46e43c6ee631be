package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parallel-finance/staking-agent/internal/config"
	"github.com/parallel-finance/staking-agent/internal/db/model"
	"github.com/parallel-finance/staking-agent/internal/types"
)

type stubService struct {
	healthErr error
	state     types.DispatcherState
	journal   map[string][]model.OperationJournalDocument
}

func (s *stubService) DoHealthCheck(ctx context.Context) error { return s.healthErr }

func (s *stubService) State() types.DispatcherState { return s.state }

func (s *stubService) GetOperationJournal(
	ctx context.Context, token string,
) ([]model.OperationJournalDocument, string, *types.Error) {
	docs, ok := s.journal[token]
	if !ok {
		return nil, "", types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "Invalid pagination token")
	}
	next := ""
	if token == "" {
		next = "page-2"
	}
	return docs, next, nil
}

func setupTestServer(t *testing.T, service *stubService) *httptest.Server {
	cfg := &config.Config{Server: config.ServerConfig{AllowedOrigins: []string{"https://ops.example.org"}}}
	server, err := New(context.Background(), cfg, service)
	require.NoError(t, err)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t, &stubService{})

	resp, body := get(t, ts.URL+"/healthcheck")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-Id"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	var responseBody map[string]string
	require.NoError(t, json.Unmarshal(body, &responseBody))
	assert.Equal(t, "Server is up and running", responseBody["data"])
}

func TestHealthCheckHidesInternalError(t *testing.T) {
	ts := setupTestServer(t, &stubService{healthErr: io.EOF})

	resp, body := get(t, ts.URL+"/healthcheck")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, `{"errorCode":"INTERNAL_SERVICE_ERROR","message":"Internal service error"}`, string(body))
}

func TestGetState(t *testing.T) {
	owner := types.MustParseAddress("0x306721211d5404bd9da88e0204360a1a9ab8b87c66c1bc2fcdd37f3c2222cc20")
	ts := setupTestServer(t, &stubService{state: types.DispatcherState{
		PendingUnstakes:  []types.PendingUnstake{{Owner: owner, Amount: types.NewBalance(42)}},
		WithdrawUnbonded: types.NewBalance(7),
		LastEvent:        types.EventUnstakeRequested,
		ProcessedEvents:  3,
	}})

	resp, body := get(t, ts.URL+"/v1/state")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res struct {
		Data types.DispatcherState `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &res))
	require.Len(t, res.Data.PendingUnstakes, 1)
	assert.Equal(t, owner, res.Data.PendingUnstakes[0].Owner)
	assert.Equal(t, "42", res.Data.PendingUnstakes[0].Amount.String())
	assert.Equal(t, "7", res.Data.WithdrawUnbonded.String())
	assert.Equal(t, uint64(3), res.Data.ProcessedEvents)
}

func TestGetOperationsPages(t *testing.T) {
	ts := setupTestServer(t, &stubService{journal: map[string][]model.OperationJournalDocument{
		"":       {{Id: "b", Action: "stake", Stage: "opened", CreatedAt: 2}},
		"page-2": {{Id: "a", Action: "bond", Stage: "failed", ErrorCode: "SUBMISSION_ERROR", CreatedAt: 1}},
	}})

	var res struct {
		Data       []map[string]interface{} `json:"data"`
		Pagination struct {
			NextKey string `json:"next_key"`
		} `json:"pagination"`
	}

	resp, body := get(t, ts.URL+"/v1/operations")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &res))
	require.Len(t, res.Data, 1)
	assert.Equal(t, "stake", res.Data[0]["action"])
	assert.Equal(t, "page-2", res.Pagination.NextKey)

	resp, body = get(t, ts.URL+"/v1/operations?pagination_key=page-2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, "SUBMISSION_ERROR", res.Data[0]["error_code"])
	assert.Empty(t, res.Pagination.NextKey)
}

func TestGetOperationsInvalidToken(t *testing.T) {
	ts := setupTestServer(t, &stubService{journal: map[string][]model.OperationJournalDocument{}})

	resp, body := get(t, ts.URL+"/v1/operations?pagination_key=bogus")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, `{"errorCode":"BAD_REQUEST","message":"Invalid pagination token"}`, string(body))
}

func TestOptionsRequest(t *testing.T) {
	ts := setupTestServer(t, &stubService{})

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/v1/state", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://ops.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "https://ops.example.org", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "300", resp.Header.Get("Access-Control-Max-Age"))
}
