package services

import (
	"context"
	"crm/database"
	"crm/schemas"
	"crm/utils"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

const DEFAULT_PIPELINE_NAME = "Sales Pipeline"

var stageColors = []string{"blue", "purple", "orange", "green", "red", "teal", "pink", "gray"}

type StageInput struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type PipelineInput struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Stages      []StageInput `json:"stages"`
}

type PipelinePatch struct {
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	Stages      *[]StageInput `json:"stages"`
}

// PipelineRegistry owns the named workflows and their ordered stages.
type PipelineRegistry struct {
	store  database.Store
	logger *zap.Logger
}

func (r *PipelineRegistry) Create(ctx context.Context, input PipelineInput) (schemas.Pipeline, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return schemas.Pipeline{}, utils.NewValidationError("name", "is required")
	}

	stages, err := normalizeStages(input.Stages)
	if err != nil {
		return schemas.Pipeline{}, err
	}

	pipeline := schemas.Pipeline{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Stages:      stages,
		DealCount:   0,
		TotalValue:  0,
	}

	id, err := r.store.Insert(ctx, database.COLLECTION_PIPELINES, pipeline)
	if err != nil {
		return schemas.Pipeline{}, utils.NewRemoteWriteError("insert pipeline", err)
	}

	return r.Get(ctx, id)
}

func (r *PipelineRegistry) CreateDefault(ctx context.Context) (schemas.Pipeline, error) {
	stages := []StageInput{}
	for _, stage := range schemas.DefaultPipelineStages() {
		stages = append(stages, StageInput{ID: stage.ID, Name: stage.Name, Color: stage.Color})
	}

	return r.Create(ctx, PipelineInput{Name: DEFAULT_PIPELINE_NAME, Stages: stages})
}

func (r *PipelineRegistry) Get(ctx context.Context, id bson.ObjectID) (schemas.Pipeline, error) {
	raw, err := r.store.FindOne(ctx, database.COLLECTION_PIPELINES, id)
	if err != nil {
		return schemas.Pipeline{}, readError("pipeline", id, err)
	}
	return decode[schemas.Pipeline](raw)
}

// List returns pipelines oldest first.
func (r *PipelineRegistry) List(ctx context.Context) ([]schemas.Pipeline, error) {
	raws, err := r.store.Find(ctx, database.COLLECTION_PIPELINES, nil)
	if err != nil {
		return nil, fmt.Errorf("find pipelines: %w", err)
	}
	return decodeAll[schemas.Pipeline](raws)
}

func (r *PipelineRegistry) Update(ctx context.Context, id bson.ObjectID, patch PipelinePatch) (schemas.Pipeline, error) {
	if _, err := r.Get(ctx, id); err != nil {
		return schemas.Pipeline{}, err
	}

	fields := database.Fields{}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return schemas.Pipeline{}, utils.NewValidationError("name", "is required")
		}
		fields["name"] = name
	}
	if patch.Description != nil {
		fields["description"] = strings.TrimSpace(*patch.Description)
	}
	if patch.Stages != nil {
		stages, err := normalizeStages(*patch.Stages)
		if err != nil {
			return schemas.Pipeline{}, err
		}
		if err := r.checkStagesStillHoldDeals(ctx, id, stages); err != nil {
			return schemas.Pipeline{}, err
		}
		fields["stages"] = stages
	}

	fields["updated_at"] = database.ServerTimestamp

	if err := r.store.Update(ctx, database.COLLECTION_PIPELINES, id, fields); err != nil {
		return schemas.Pipeline{}, writeError("update pipeline", "pipeline", id, err)
	}

	return r.Get(ctx, id)
}

// Delete removes the pipeline record. Without cascade its deals stay behind as
// orphans reported by Orphaned; with cascade they are removed one by one and
// the number removed is returned.
func (r *PipelineRegistry) Delete(ctx context.Context, id bson.ObjectID, cascade bool) (int, error) {
	if err := r.store.Delete(ctx, database.COLLECTION_PIPELINES, id); err != nil {
		return 0, writeError("delete pipeline", "pipeline", id, err)
	}

	if !cascade {
		return 0, nil
	}

	raws, err := r.store.Find(ctx, database.COLLECTION_DEALS, database.Filter{"pipeline_id": id})
	if err != nil {
		return 0, fmt.Errorf("find deals of deleted pipeline: %w", err)
	}

	deals, err := decodeAll[schemas.Deal](raws)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, deal := range deals {
		err := r.store.Delete(ctx, database.COLLECTION_DEALS, deal.ID)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			r.logger.Warn("cascade delete of deal failed",
				zap.String("pipeline_id", id.Hex()), zap.String("deal_id", deal.ID.Hex()), zap.Error(err))
			continue
		}
		removed++
	}

	return removed, nil
}

// Orphaned lists deals whose pipeline no longer exists.
func (r *PipelineRegistry) Orphaned(ctx context.Context) ([]schemas.Deal, error) {
	pipelines, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	known := map[bson.ObjectID]bool{}
	for _, pipeline := range pipelines {
		known[pipeline.ID] = true
	}

	raws, err := r.store.Find(ctx, database.COLLECTION_DEALS, nil)
	if err != nil {
		return nil, fmt.Errorf("find deals: %w", err)
	}

	deals, err := decodeAll[schemas.Deal](raws)
	if err != nil {
		return nil, err
	}

	orphaned := []schemas.Deal{}
	for _, deal := range deals {
		if !known[deal.PipelineID] {
			orphaned = append(orphaned, deal)
		}
	}

	return orphaned, nil
}

func (r *PipelineRegistry) checkStagesStillHoldDeals(ctx context.Context, id bson.ObjectID, stages []schemas.Stage) error {
	raws, err := r.store.Find(ctx, database.COLLECTION_DEALS, database.Filter{
		"pipeline_id": id,
		"status":      schemas.DEAL_STATUS_ACTIVE,
	})
	if err != nil {
		return fmt.Errorf("find deals of pipeline: %w", err)
	}

	deals, err := decodeAll[schemas.Deal](raws)
	if err != nil {
		return err
	}

	kept := map[string]bool{}
	for _, stage := range stages {
		kept[stage.ID] = true
	}

	removedStage := ""
	held := 0
	for _, deal := range deals {
		if kept[deal.Stage] {
			continue
		}
		if removedStage == "" {
			removedStage = deal.Stage
		}
		if deal.Stage == removedStage {
			held++
		}
	}

	if held > 0 {
		return utils.NewValidationError("stages", fmt.Sprintf("stage %q still holds %d active deals", removedStage, held))
	}

	return nil
}

func normalizeStages(inputs []StageInput) ([]schemas.Stage, error) {
	if len(inputs) < schemas.PIPELINE_MIN_STAGES {
		return nil, utils.NewValidationError("stages", fmt.Sprintf("a pipeline needs at least %d stages", schemas.PIPELINE_MIN_STAGES))
	}

	seen := map[string]bool{}
	stages := make([]schemas.Stage, 0, len(inputs))

	for i, input := range inputs {
		name := strings.TrimSpace(input.Name)
		if name == "" {
			return nil, utils.NewValidationError(fmt.Sprintf("stages[%d].name", i), "is required")
		}

		id := strings.TrimSpace(input.ID)
		if id == "" {
			id = uuid.NewString()
		}
		if seen[id] {
			return nil, utils.NewValidationError(fmt.Sprintf("stages[%d].id", i), fmt.Sprintf("duplicated stage id %q", id))
		}
		seen[id] = true

		color := strings.TrimSpace(input.Color)
		if color == "" {
			color = stageColors[i%len(stageColors)]
		}

		stages = append(stages, schemas.Stage{ID: id, Name: name, Color: color, Order: i + 1})
	}

	return stages, nil
}
