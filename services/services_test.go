package services

import (
	"context"
	"crm/database"
	"crm/schemas"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap/zaptest"
)

func steppingClock() func() time.Time {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func newTestServices(t *testing.T, store database.Store, mode ConsistencyMode) *Services {
	t.Helper()
	return New(store, zaptest.NewLogger(t), Config{Consistency: mode})
}

func newMemoryServices(t *testing.T) (*Services, *database.MemoryStore) {
	t.Helper()
	store := database.NewMemoryStoreWithClock(steppingClock())
	return newTestServices(t, store, STATS_CONSISTENCY_FRESH), store
}

func threeStagePipeline(t *testing.T, svc *Services, name string) schemas.Pipeline {
	t.Helper()
	pipeline, err := svc.Pipelines.Create(context.Background(), PipelineInput{
		Name: name,
		Stages: []StageInput{
			{ID: "new", Name: "New"},
			{ID: "qualified", Name: "Qualified"},
			{ID: "won", Name: "Won"},
		},
	})
	require.NoError(t, err)
	return pipeline
}

func addDeal(t *testing.T, svc *Services, pipelineID bson.ObjectID, value float64, stage string) schemas.Deal {
	t.Helper()
	deal, err := svc.Deals.Add(context.Background(), pipelineID, DealInput{
		Title: "Deal",
		Value: value,
		Stage: stage,
	})
	require.NoError(t, err)
	return deal
}

func requireStats(t *testing.T, svc *Services, pipelineID bson.ObjectID, count int, total float64) {
	t.Helper()
	pipeline, err := svc.Pipelines.Get(context.Background(), pipelineID)
	require.NoError(t, err)
	require.Equal(t, count, pipeline.DealCount, "deal_count")
	require.InDelta(t, total, pipeline.TotalValue, 0.001, "total_value")
}

var errStoreUnavailable = errors.New("store unavailable")

// flakyStore fails writes to one collection while failing is set.
type flakyStore struct {
	*database.MemoryStore
	collection string
	failing    atomic.Bool
}

func (s *flakyStore) Update(ctx context.Context, collection string, id bson.ObjectID, fields database.Fields) error {
	if collection == s.collection && s.failing.Load() {
		return errStoreUnavailable
	}
	return s.MemoryStore.Update(ctx, collection, id, fields)
}

func (s *flakyStore) Insert(ctx context.Context, collection string, doc any) (bson.ObjectID, error) {
	if collection == s.collection && s.failing.Load() {
		return bson.ObjectID{}, errStoreUnavailable
	}
	return s.MemoryStore.Insert(ctx, collection, doc)
}
