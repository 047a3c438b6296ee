package services

import (
	"context"
	"crm/database"
	"crm/schemas"
	"errors"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

type Stats struct {
	DealCount  int     `json:"deal_count"`
	TotalValue float64 `json:"total_value"`
}

func ComputeStats(deals []schemas.Deal) Stats {
	stats := Stats{}
	for _, deal := range deals {
		if !deal.IsActive() {
			continue
		}
		stats.DealCount++
		stats.TotalValue += deal.Value
	}
	return stats
}

// StatsSynchronizer keeps the cached deal_count and total_value of a pipeline
// in line with its active deals. Results are eventually consistent: nothing
// locks the deal set between the read and the write.
type StatsSynchronizer struct {
	store  database.Store
	logger *zap.Logger
	mode   ConsistencyMode

	mu    sync.Mutex
	views map[bson.ObjectID]*dealView
}

// dealView is the latest live snapshot of a pipeline's active deals, shared by
// every open board feed of that pipeline.
type dealView struct {
	refs  int
	deals []schemas.Deal
	ready bool
}

func NewStatsSynchronizer(store database.Store, logger *zap.Logger, mode ConsistencyMode) *StatsSynchronizer {
	if mode == "" {
		mode = STATS_CONSISTENCY_FRESH
	}

	return &StatsSynchronizer{
		store:  store,
		logger: logger,
		mode:   mode,
		views:  map[bson.ObjectID]*dealView{},
	}
}

func (s *StatsSynchronizer) Mode() ConsistencyMode {
	return s.mode
}

// RecomputeStats never fails the caller. A missing pipeline is a no-op and
// any other failure is only logged.
func (s *StatsSynchronizer) RecomputeStats(ctx context.Context, pipelineID bson.ObjectID) {
	stats, err := s.Compute(ctx, pipelineID)
	if err != nil {
		s.logger.Error("stats recompute failed",
			zap.String("pipeline_id", pipelineID.Hex()), zap.Error(err))
		return
	}

	s.write(ctx, pipelineID, stats)
}

// Compute reads the active deal set from the live view in cached mode and
// from the store otherwise.
func (s *StatsSynchronizer) Compute(ctx context.Context, pipelineID bson.ObjectID) (Stats, error) {
	if s.mode == STATS_CONSISTENCY_CACHED {
		if deals, ok := s.cachedDeals(pipelineID); ok {
			return ComputeStats(deals), nil
		}
	}

	raws, err := s.store.Find(ctx, database.COLLECTION_DEALS, database.Filter{
		"pipeline_id": pipelineID,
		"status":      schemas.DEAL_STATUS_ACTIVE,
	})
	if err != nil {
		return Stats{}, fmt.Errorf("find active deals: %w", err)
	}

	deals, err := decodeAll[schemas.Deal](raws)
	if err != nil {
		return Stats{}, err
	}

	return ComputeStats(deals), nil
}

// RecomputeAll returns how many pipelines were visited.
func (s *StatsSynchronizer) RecomputeAll(ctx context.Context) int {
	raws, err := s.store.Find(ctx, database.COLLECTION_PIPELINES, nil)
	if err != nil {
		s.logger.Error("stats reconcile could not list pipelines", zap.Error(err))
		return 0
	}

	pipelines, err := decodeAll[schemas.Pipeline](raws)
	if err != nil {
		s.logger.Error("stats reconcile could not decode pipelines", zap.Error(err))
		return 0
	}

	for _, pipeline := range pipelines {
		s.RecomputeStats(ctx, pipeline.ID)
	}

	return len(pipelines)
}

func (s *StatsSynchronizer) write(ctx context.Context, pipelineID bson.ObjectID, stats Stats) {
	err := s.store.Update(ctx, database.COLLECTION_PIPELINES, pipelineID, database.Fields{
		"deal_count":  stats.DealCount,
		"total_value": stats.TotalValue,
		"updated_at":  database.ServerTimestamp,
	})

	if errors.Is(err, database.ErrNotFound) {
		s.logger.Debug("stats skipped for missing pipeline", zap.String("pipeline_id", pipelineID.Hex()))
		return
	}
	if err != nil {
		s.logger.Error("stats write failed",
			zap.String("pipeline_id", pipelineID.Hex()), zap.Error(err))
	}
}

func (s *StatsSynchronizer) attachView(pipelineID bson.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	view, ok := s.views[pipelineID]
	if !ok {
		view = &dealView{}
		s.views[pipelineID] = view
	}
	view.refs++
}

func (s *StatsSynchronizer) detachView(pipelineID bson.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	view, ok := s.views[pipelineID]
	if !ok {
		return
	}

	view.refs--
	if view.refs <= 0 {
		delete(s.views, pipelineID)
	}
}

func (s *StatsSynchronizer) cachedDeals(pipelineID bson.ObjectID) ([]schemas.Deal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	view, ok := s.views[pipelineID]
	if !ok || !view.ready {
		return nil, false
	}

	return append([]schemas.Deal(nil), view.deals...), true
}

// observe stores a live snapshot. In cached mode it also rewrites stale
// aggregates so the pipeline converges without waiting for another mutation.
func (s *StatsSynchronizer) observe(ctx context.Context, pipeline *schemas.Pipeline, deals []schemas.Deal) {
	s.mu.Lock()
	if view, ok := s.views[pipeline.ID]; ok {
		view.deals = deals
		view.ready = true
	}
	s.mu.Unlock()

	if s.mode != STATS_CONSISTENCY_CACHED {
		return
	}

	stats := ComputeStats(deals)
	if stats.DealCount == pipeline.DealCount && stats.TotalValue == pipeline.TotalValue {
		return
	}

	s.write(ctx, pipeline.ID, stats)
}
