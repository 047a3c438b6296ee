package entities

import (
	"bytes"
	"crm/database"
	"crm/entities/realtime"
	"crm/schemas"
	"crm/services"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap/zaptest"
)

type envelope[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	logger := zaptest.NewLogger(t)
	svc := services.New(database.NewMemoryStore(), logger, services.Config{})
	mux := http.NewServeMux()
	Register(mux, svc, realtime.NewHub(nil, logger), logger)
	return mux
}

func call[T any](t *testing.T, mux http.Handler, method, path string, body any, wantStatus int) T {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}

	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, httptest.NewRequest(method, path, &payload))
	require.Equal(t, wantStatus, recorder.Code, "%s %s: %s", method, path, recorder.Body.String())

	var response envelope[T]
	if recorder.Body.Len() > 0 {
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	}
	return response.Data
}

func TestPipelineAndDealFlow(t *testing.T) {
	mux := newTestMux(t)

	pipeline := call[schemas.Pipeline](t, mux, http.MethodPost, "/v1/pipelines", map[string]any{
		"name":   "Sales",
		"stages": []map[string]string{{"id": "new", "name": "New"}, {"id": "won", "name": "Won"}},
	}, http.StatusCreated)
	base := "/v1/pipelines/" + pipeline.ID.Hex()

	deal := call[schemas.Deal](t, mux, http.MethodPost, base+"/deals", map[string]any{
		"title": "Website", "value": 1000,
	}, http.StatusCreated)
	assert.Equal(t, "new", deal.Stage)

	moved := call[schemas.Deal](t, mux, http.MethodPost, base+"/deals/"+deal.ID.Hex()+"/move", map[string]any{
		"to_stage": "won",
	}, http.StatusOK)
	assert.Equal(t, "won", moved.Stage)

	got := call[schemas.Pipeline](t, mux, http.MethodGet, base, nil, http.StatusOK)
	assert.Equal(t, 1, got.DealCount)
	assert.Equal(t, 1000.0, got.TotalValue)

	call[any](t, mux, http.MethodDelete, base+"/deals/"+deal.ID.Hex(), nil, http.StatusOK)
	deals := call[[]schemas.Deal](t, mux, http.MethodGet, base+"/deals", nil, http.StatusOK)
	assert.Empty(t, deals)

	bin := call[schemas.RecycleBin](t, mux, http.MethodGet, "/v1/recycle-bin", nil, http.StatusOK)
	require.Len(t, bin.Deals, 1)

	call[schemas.Deal](t, mux, http.MethodPost, base+"/deals/"+deal.ID.Hex()+"/restore", nil, http.StatusOK)
	call[schemas.Deal](t, mux, http.MethodPost, base+"/deals/"+deal.ID.Hex()+"/restore", nil, http.StatusBadRequest)

	got = call[schemas.Pipeline](t, mux, http.MethodPost, base+"/recompute", nil, http.StatusOK)
	assert.Equal(t, 1, got.DealCount)
}

func TestRejectsMalformedRequests(t *testing.T) {
	mux := newTestMux(t)

	call[any](t, mux, http.MethodGet, "/v1/pipelines/not-an-id", nil, http.StatusBadRequest)
	call[any](t, mux, http.MethodGet, "/v1/pipelines/"+bson.NewObjectID().Hex(), nil, http.StatusNotFound)
	call[any](t, mux, http.MethodPost, "/v1/pipelines", map[string]any{
		"name": "Too short", "stages": []map[string]string{{"name": "Only"}},
	}, http.StatusBadRequest)
	call[any](t, mux, http.MethodPost, "/v1/members", map[string]any{"name": "Ana"}, http.StatusBadRequest)
	call[any](t, mux, http.MethodDelete, "/v1/leads/"+bson.NewObjectID().Hex(), nil, http.StatusNotFound)
	call[any](t, mux, http.MethodPost, "/v1/recycle-bin/restore", map[string]any{"items": []any{}}, http.StatusBadRequest)
}

func TestLeadPromotionFlow(t *testing.T) {
	mux := newTestMux(t)

	member := call[schemas.Member](t, mux, http.MethodPost, "/v1/members", map[string]any{
		"name": "Ana", "email": "ana@example.com",
	}, http.StatusCreated)
	assert.Equal(t, schemas.MemberColors[0], member.Color)

	lead := call[schemas.Deal](t, mux, http.MethodPost, "/v1/leads", map[string]any{
		"contact_name": "Bia", "email": "bia@example.com", "value": 300, "owner_id": member.ID.Hex(),
	}, http.StatusCreated)

	deal := call[schemas.Deal](t, mux, http.MethodPost, "/v1/leads/"+lead.ID.Hex()+"/promote", nil, http.StatusCreated)
	assert.Equal(t, "new", deal.Stage)
	assert.Equal(t, "Ana", deal.OwnerName)

	pipelines := call[[]schemas.Pipeline](t, mux, http.MethodGet, "/v1/pipelines", nil, http.StatusOK)
	require.Len(t, pipelines, 1)
	assert.Equal(t, services.DEFAULT_PIPELINE_NAME, pipelines[0].Name)

	leads := call[[]schemas.Deal](t, mux, http.MethodGet, "/v1/leads", nil, http.StatusOK)
	assert.Empty(t, leads)

	call[any](t, mux, http.MethodPost, "/v1/leads/"+lead.ID.Hex()+"/promote", nil, http.StatusBadRequest)
}

func TestRecycleBinBulkEndpoints(t *testing.T) {
	mux := newTestMux(t)

	pipeline := call[schemas.Pipeline](t, mux, http.MethodPost, "/v1/pipelines?default=true", nil, http.StatusCreated)
	base := "/v1/pipelines/" + pipeline.ID.Hex()

	deal := call[schemas.Deal](t, mux, http.MethodPost, base+"/deals", map[string]any{"title": "a", "value": 5}, http.StatusCreated)
	lead := call[schemas.Deal](t, mux, http.MethodPost, "/v1/leads", map[string]any{"company": "Acme", "email": "a@acme.com"}, http.StatusCreated)

	call[any](t, mux, http.MethodDelete, "/v1/recycle-bin/deals/"+deal.ID.Hex()+"?pipeline_id="+pipeline.ID.Hex(), nil, http.StatusBadRequest)

	call[any](t, mux, http.MethodDelete, base+"/deals/"+deal.ID.Hex(), nil, http.StatusOK)
	call[any](t, mux, http.MethodDelete, "/v1/leads/"+lead.ID.Hex(), nil, http.StatusOK)

	type report struct {
		Succeeded int                         `json:"succeeded"`
		Failed    int                         `json:"failed"`
		Results   []schemas.RecycleItemResult `json:"results"`
	}

	restored := call[report](t, mux, http.MethodPost, "/v1/recycle-bin/restore", map[string]any{
		"items": []schemas.RecycleItem{
			{Kind: schemas.RECYCLE_ITEM_LEAD, ID: lead.ID.Hex()},
			{Kind: schemas.RECYCLE_ITEM_LEAD, ID: bson.NewObjectID().Hex()},
		},
	}, http.StatusOK)
	assert.Equal(t, 1, restored.Succeeded)
	assert.Equal(t, 1, restored.Failed)
	assert.False(t, restored.Results[1].OK)

	purged := call[report](t, mux, http.MethodPost, "/v1/recycle-bin/purge", map[string]any{
		"items": []schemas.RecycleItem{
			{Kind: schemas.RECYCLE_ITEM_DEAL, ID: deal.ID.Hex(), PipelineID: pipeline.ID.Hex()},
		},
	}, http.StatusOK)
	assert.Equal(t, 1, purged.Succeeded)

	call[any](t, mux, http.MethodDelete, "/v1/recycle-bin/deals/"+deal.ID.Hex()+"?pipeline_id="+pipeline.ID.Hex(), nil, http.StatusNotFound)

	bin := call[schemas.RecycleBin](t, mux, http.MethodGet, "/v1/recycle-bin", nil, http.StatusOK)
	assert.Empty(t, bin.Deals)
	assert.Empty(t, bin.Leads)
}

func TestDeletePipelineWithCascadeAndOrphans(t *testing.T) {
	mux := newTestMux(t)

	kept := call[schemas.Pipeline](t, mux, http.MethodPost, "/v1/pipelines?default=true", nil, http.StatusCreated)
	dropped := call[schemas.Pipeline](t, mux, http.MethodPost, "/v1/pipelines?default=true", nil, http.StatusCreated)

	call[schemas.Deal](t, mux, http.MethodPost, "/v1/pipelines/"+kept.ID.Hex()+"/deals", map[string]any{"title": "keep"}, http.StatusCreated)
	orphan := call[schemas.Deal](t, mux, http.MethodPost, "/v1/pipelines/"+dropped.ID.Hex()+"/deals", map[string]any{"title": "orphan"}, http.StatusCreated)

	type deleted struct {
		DeletedDeals int `json:"deleted_deals"`
	}
	result := call[deleted](t, mux, http.MethodDelete, "/v1/pipelines/"+dropped.ID.Hex(), nil, http.StatusOK)
	assert.Zero(t, result.DeletedDeals)

	orphans := call[[]schemas.Deal](t, mux, http.MethodGet, "/v1/pipelines/orphaned-deals", nil, http.StatusOK)
	require.Len(t, orphans, 1)
	assert.Equal(t, orphan.ID, orphans[0].ID)

	result = call[deleted](t, mux, http.MethodDelete, "/v1/pipelines/"+kept.ID.Hex()+"?cascade=true", nil, http.StatusOK)
	assert.Equal(t, 1, result.DeletedDeals)
}

func TestHealth(t *testing.T) {
	mux := newTestMux(t)

	health := call[Health](t, mux, http.MethodGet, "/v1/health", nil, http.StatusOK)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, string(services.STATS_CONSISTENCY_FRESH), health.Consistency)
}
