package leads

import (
	"context"
	"crm/database"
	"crm/entities/realtime"
	"crm/schemas"
	"crm/services"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newImportHandlers(t *testing.T, legacy LegacySource) (*Handlers, *services.Services) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	svc := services.New(database.NewMemoryStore(), logger, services.Config{})
	handlers := New(svc, realtime.NewHub(nil, logger), logger)
	handlers.Legacy = legacy
	return handlers, svc
}

func TestImportLegacyCreatesImportedLeads(t *testing.T) {
	var gotAfter int64
	var gotLimit int
	handlers, svc := newImportHandlers(t, func(ctx context.Context, afterID int64, limit int) ([]schemas.LegacyLead, error) {
		gotAfter, gotLimit = afterID, limit
		return []schemas.LegacyLead{
			{ID: 41, Name: "Ana", Email: "ana@example.com", Value: 100},
			{ID: 42, Company: "No Email Ltda"},
			{ID: 43, Company: "Acme", Email: "sales@acme.com"},
		}, nil
	})

	recorder := httptest.NewRecorder()
	handlers.ImportLegacy(recorder, httptest.NewRequest(http.MethodPost, "/v1/leads/import/legacy?after_id=40&limit=1000", nil))
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	assert.EqualValues(t, 40, gotAfter)
	assert.Equal(t, LEGACY_IMPORT_MAX_LIMIT, gotLimit)

	response := struct {
		Data ImportReport `json:"data"`
	}{}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.EqualValues(t, 43, response.Data.LastLegacyID)
	assert.Equal(t, 2, response.Data.Imported)
	assert.Equal(t, 1, response.Data.Failed)
	require.Len(t, response.Data.Results, 3)
	assert.False(t, response.Data.Results[1].OK)

	leads, err := svc.Leads.List(context.Background())
	require.NoError(t, err)
	require.Len(t, leads, 2)
	for _, lead := range leads {
		assert.Equal(t, schemas.DEAL_SOURCE_IMPORTED, lead.Source)
	}
}

func TestImportLegacyReportsUnreachableSource(t *testing.T) {
	handlers, _ := newImportHandlers(t, func(context.Context, int64, int) ([]schemas.LegacyLead, error) {
		return nil, errors.New("dial tcp: connection refused")
	})

	recorder := httptest.NewRecorder()
	handlers.ImportLegacy(recorder, httptest.NewRequest(http.MethodPost, "/v1/leads/import/legacy", nil))
	assert.Equal(t, http.StatusBadGateway, recorder.Code)
}

func TestImportLegacyRejectsBadPaging(t *testing.T) {
	handlers, _ := newImportHandlers(t, func(context.Context, int64, int) ([]schemas.LegacyLead, error) {
		t.Fatal("legacy source must not be queried")
		return nil, nil
	})

	for _, query := range []string{"?after_id=-1", "?after_id=abc", "?limit=0", "?limit=x"} {
		recorder := httptest.NewRecorder()
		handlers.ImportLegacy(recorder, httptest.NewRequest(http.MethodPost, "/v1/leads/import/legacy"+query, nil))
		assert.Equal(t, http.StatusBadRequest, recorder.Code, query)
	}
}
