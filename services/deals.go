package services

import (
	"context"
	"crm/database"
	"crm/schemas"
	"crm/utils"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

type DealInput struct {
	Title       string               `json:"title"`
	ContactName string               `json:"contact_name"`
	Company     string               `json:"company"`
	Email       string               `json:"email"`
	Mobile      string               `json:"mobile"`
	Source      schemas.DealSource   `json:"source"`
	Value       float64              `json:"value"`
	Stage       string               `json:"stage"`
	Priority    schemas.DealPriority `json:"priority"`
	Probability int                  `json:"probability"`
	CloseDate   string               `json:"close_date"`
	OwnerID     string               `json:"owner_id"`
}

// DealPatch leaves a field untouched when it is nil. Identity, pipeline and
// deletion state are not patchable; moves and the recycle bin own them.
type DealPatch struct {
	Title       *string               `json:"title"`
	ContactName *string               `json:"contact_name"`
	Company     *string               `json:"company"`
	Email       *string               `json:"email"`
	Mobile      *string               `json:"mobile"`
	Source      *schemas.DealSource   `json:"source"`
	Value       *float64              `json:"value"`
	Stage       *string               `json:"stage"`
	Priority    *schemas.DealPriority `json:"priority"`
	Probability *int                  `json:"probability"`
	CloseDate   *string               `json:"close_date"`
	OwnerID     *string               `json:"owner_id"`
}

// DealLedger holds the deals of every pipeline with their active or deleted
// state. Every mutation that changes a pipeline's active set or values
// triggers the stats synchronizer after the primary write succeeded.
type DealLedger struct {
	store     database.Store
	logger    *zap.Logger
	pipelines *PipelineRegistry
	members   *MemberDirectory
	stats     *StatsSynchronizer
}

func (l *DealLedger) Add(ctx context.Context, pipelineID bson.ObjectID, input DealInput) (schemas.Deal, error) {
	pipeline, err := l.pipelines.Get(ctx, pipelineID)
	if err != nil {
		return schemas.Deal{}, err
	}

	deal, err := l.buildRecord(ctx, input)
	if err != nil {
		return schemas.Deal{}, err
	}

	deal.Stage = strings.TrimSpace(input.Stage)
	if deal.Stage == "" {
		deal.Stage = pipeline.FirstStage().ID
	}
	if _, ok := pipeline.Stage(deal.Stage); !ok {
		return schemas.Deal{}, utils.NewValidationError("stage", fmt.Sprintf("stage %q does not exist in pipeline", deal.Stage))
	}
	if deal.Title == "" {
		deal.Title = firstNonEmpty(deal.Company, deal.ContactName)
	}

	deal.PipelineID = pipelineID
	deal.Status = schemas.DEAL_STATUS_ACTIVE

	id, err := l.store.Insert(ctx, database.COLLECTION_DEALS, deal)
	if err != nil {
		return schemas.Deal{}, utils.NewRemoteWriteError("insert deal", err)
	}

	l.stats.RecomputeStats(ctx, pipelineID)

	return l.Get(ctx, pipelineID, id)
}

// Get returns the deal in any state. A deal that belongs to another pipeline
// is reported as not found.
func (l *DealLedger) Get(ctx context.Context, pipelineID, dealID bson.ObjectID) (schemas.Deal, error) {
	raw, err := l.store.FindOne(ctx, database.COLLECTION_DEALS, dealID)
	if err != nil {
		return schemas.Deal{}, readError("deal", dealID, err)
	}

	deal, err := decode[schemas.Deal](raw)
	if err != nil {
		return schemas.Deal{}, err
	}

	if deal.PipelineID != pipelineID {
		return schemas.Deal{}, utils.NewNotFoundError("deal", dealID.Hex())
	}

	return deal, nil
}

func (l *DealLedger) getActive(ctx context.Context, pipelineID, dealID bson.ObjectID) (schemas.Deal, error) {
	deal, err := l.Get(ctx, pipelineID, dealID)
	if err != nil {
		return schemas.Deal{}, err
	}
	if !deal.IsActive() {
		return schemas.Deal{}, utils.NewNotFoundError("deal", dealID.Hex())
	}
	return deal, nil
}

func (l *DealLedger) Update(ctx context.Context, pipelineID, dealID bson.ObjectID, patch DealPatch) (schemas.Deal, error) {
	current, err := l.getActive(ctx, pipelineID, dealID)
	if err != nil {
		return schemas.Deal{}, err
	}

	fields, err := l.patchFields(ctx, patch)
	if err != nil {
		return schemas.Deal{}, err
	}

	if patch.Stage != nil {
		pipeline, err := l.pipelines.Get(ctx, pipelineID)
		if err != nil {
			return schemas.Deal{}, err
		}
		stage := strings.TrimSpace(*patch.Stage)
		if _, ok := pipeline.Stage(stage); !ok {
			return schemas.Deal{}, utils.NewValidationError("stage", fmt.Sprintf("stage %q does not exist in pipeline", stage))
		}
		fields["stage"] = stage
	}

	fields["updated_at"] = database.ServerTimestamp

	if err := l.store.Update(ctx, database.COLLECTION_DEALS, dealID, fields); err != nil {
		return schemas.Deal{}, writeError("update deal", "deal", dealID, err)
	}

	if patch.Value != nil && *patch.Value != current.Value {
		l.stats.RecomputeStats(ctx, pipelineID)
	}

	return l.Get(ctx, pipelineID, dealID)
}

// Move keeps a deal in place when the pipeline does not change. Across
// pipelines the deal is recreated in the destination under a new id and the
// source record is hard deleted.
func (l *DealLedger) Move(ctx context.Context, dealID, fromPipelineID, toPipelineID bson.ObjectID, toStage string) (schemas.Deal, error) {
	deal, err := l.getActive(ctx, fromPipelineID, dealID)
	if err != nil {
		l.logger.Info("move abandoned, source deal not found",
			zap.String("deal_id", dealID.Hex()), zap.String("pipeline_id", fromPipelineID.Hex()))
		return schemas.Deal{}, err
	}

	destination, err := l.pipelines.Get(ctx, toPipelineID)
	if err != nil {
		return schemas.Deal{}, err
	}

	toStage = strings.TrimSpace(toStage)
	if toStage == "" {
		toStage = destination.FirstStage().ID
	}
	if _, ok := destination.Stage(toStage); !ok {
		return schemas.Deal{}, utils.NewValidationError("to_stage", fmt.Sprintf("stage %q does not exist in pipeline", toStage))
	}

	if fromPipelineID == toPipelineID {
		err := l.store.Update(ctx, database.COLLECTION_DEALS, dealID, database.Fields{
			"stage":      toStage,
			"updated_at": database.ServerTimestamp,
		})
		if err != nil {
			return schemas.Deal{}, writeError("move deal", "deal", dealID, err)
		}
		return l.Get(ctx, toPipelineID, dealID)
	}

	moved := deal
	moved.ID = bson.ObjectID{}
	moved.PipelineID = toPipelineID
	moved.Stage = toStage

	newID, err := l.store.Insert(ctx, database.COLLECTION_DEALS, moved)
	if err != nil {
		return schemas.Deal{}, utils.NewRemoteWriteError("insert moved deal", err)
	}

	err = l.store.Delete(ctx, database.COLLECTION_DEALS, dealID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		l.logger.Error("moved deal left a copy in the source pipeline",
			zap.String("deal_id", dealID.Hex()), zap.String("new_deal_id", newID.Hex()), zap.Error(err))
		return schemas.Deal{}, utils.NewRemoteWriteError("delete moved deal", err)
	}

	l.stats.RecomputeStats(ctx, fromPipelineID)
	l.stats.RecomputeStats(ctx, toPipelineID)

	return l.Get(ctx, toPipelineID, newID)
}

// Delete is a soft delete. The deal leaves the active set and the aggregates.
func (l *DealLedger) Delete(ctx context.Context, pipelineID, dealID bson.ObjectID) error {
	if _, err := l.getActive(ctx, pipelineID, dealID); err != nil {
		return err
	}

	err := l.store.Update(ctx, database.COLLECTION_DEALS, dealID, database.Fields{
		"status":          schemas.DEAL_STATUS_DELETED,
		"deleted_at":      database.ServerTimestamp,
		"deletion_source": schemas.DELETION_SOURCE_PIPELINE,
		"updated_at":      database.ServerTimestamp,
	})
	if err != nil {
		return writeError("delete deal", "deal", dealID, err)
	}

	l.stats.RecomputeStats(ctx, pipelineID)

	return nil
}

func (l *DealLedger) Restore(ctx context.Context, pipelineID, dealID bson.ObjectID) (schemas.Deal, error) {
	deal, err := l.Get(ctx, pipelineID, dealID)
	if err != nil {
		return schemas.Deal{}, err
	}
	if deal.IsActive() {
		return schemas.Deal{}, utils.NewValidationError("status", "deal is not in the recycle bin")
	}

	err = l.store.Update(ctx, database.COLLECTION_DEALS, dealID, database.Fields{
		"status":          schemas.DEAL_STATUS_ACTIVE,
		"deleted_at":      nil,
		"deletion_source": nil,
		"updated_at":      database.ServerTimestamp,
	})
	if err != nil {
		return schemas.Deal{}, writeError("restore deal", "deal", dealID, err)
	}

	l.stats.RecomputeStats(ctx, pipelineID)

	return l.Get(ctx, pipelineID, dealID)
}

// PermanentlyDelete only accepts deals already in the recycle bin, which were
// excluded from the aggregates when they were soft deleted.
func (l *DealLedger) PermanentlyDelete(ctx context.Context, pipelineID, dealID bson.ObjectID) error {
	deal, err := l.Get(ctx, pipelineID, dealID)
	if err != nil {
		return err
	}
	if deal.IsActive() {
		return utils.NewValidationError("status", "only deleted deals can be removed permanently")
	}

	if err := l.store.Delete(ctx, database.COLLECTION_DEALS, dealID); err != nil {
		return writeError("permanently delete deal", "deal", dealID, err)
	}

	return nil
}

func (l *DealLedger) ListByPipeline(ctx context.Context, pipelineID bson.ObjectID) ([]schemas.Deal, error) {
	raws, err := l.store.Find(ctx, database.COLLECTION_DEALS, database.Filter{
		"pipeline_id": pipelineID,
		"status":      schemas.DEAL_STATUS_ACTIVE,
	})
	if err != nil {
		return nil, fmt.Errorf("find deals: %w", err)
	}
	return decodeAll[schemas.Deal](raws)
}

func (l *DealLedger) ListDeleted(ctx context.Context) ([]schemas.Deal, error) {
	raws, err := l.store.Find(ctx, database.COLLECTION_DEALS, database.Filter{
		"status":          schemas.DEAL_STATUS_DELETED,
		"deletion_source": schemas.DELETION_SOURCE_PIPELINE,
	})
	if err != nil {
		return nil, fmt.Errorf("find deleted deals: %w", err)
	}
	return decodeAll[schemas.Deal](raws)
}

// buildRecord validates the fields shared by leads and deals.
func (l *DealLedger) buildRecord(ctx context.Context, input DealInput) (schemas.Deal, error) {
	record := schemas.Deal{
		Title:       strings.TrimSpace(input.Title),
		ContactName: strings.TrimSpace(input.ContactName),
		Company:     strings.TrimSpace(input.Company),
		Email:       strings.TrimSpace(input.Email),
		Mobile:      strings.TrimSpace(input.Mobile),
		Source:      input.Source,
		Value:       input.Value,
		Priority:    input.Priority,
		Probability: input.Probability,
		CloseDate:   strings.TrimSpace(input.CloseDate),
	}

	if record.Source == "" {
		record.Source = schemas.DEAL_SOURCE_MANUAL
	}
	if err := validateValue(record.Value); err != nil {
		return schemas.Deal{}, err
	}
	if err := validatePriority(record.Priority); err != nil {
		return schemas.Deal{}, err
	}
	if err := validateProbability(record.Probability); err != nil {
		return schemas.Deal{}, err
	}
	if err := validateCloseDate(record.CloseDate); err != nil {
		return schemas.Deal{}, err
	}

	ownerID, ownerName, err := l.members.Resolve(ctx, input.OwnerID)
	if err != nil {
		return schemas.Deal{}, err
	}
	record.OwnerID = ownerID
	record.OwnerName = ownerName

	return record, nil
}

func (l *DealLedger) patchFields(ctx context.Context, patch DealPatch) (database.Fields, error) {
	fields := database.Fields{}

	setTrimmed := func(key string, value *string) {
		if value != nil {
			fields[key] = strings.TrimSpace(*value)
		}
	}
	setTrimmed("title", patch.Title)
	setTrimmed("contact_name", patch.ContactName)
	setTrimmed("company", patch.Company)
	setTrimmed("email", patch.Email)
	setTrimmed("mobile", patch.Mobile)

	if patch.Source != nil {
		fields["source"] = *patch.Source
	}
	if patch.Value != nil {
		if err := validateValue(*patch.Value); err != nil {
			return nil, err
		}
		fields["value"] = *patch.Value
	}
	if patch.Priority != nil {
		if err := validatePriority(*patch.Priority); err != nil {
			return nil, err
		}
		fields["priority"] = *patch.Priority
	}
	if patch.Probability != nil {
		if err := validateProbability(*patch.Probability); err != nil {
			return nil, err
		}
		fields["probability"] = *patch.Probability
	}
	if patch.CloseDate != nil {
		closeDate := strings.TrimSpace(*patch.CloseDate)
		if err := validateCloseDate(closeDate); err != nil {
			return nil, err
		}
		fields["close_date"] = closeDate
	}
	if patch.OwnerID != nil {
		ownerID, ownerName, err := l.members.Resolve(ctx, *patch.OwnerID)
		if err != nil {
			return nil, err
		}
		if ownerID.IsZero() {
			fields["owner_id"] = nil
			fields["owner_name"] = nil
		} else {
			fields["owner_id"] = ownerID
			fields["owner_name"] = ownerName
		}
	}

	return fields, nil
}

func validateValue(value float64) error {
	if value < 0 {
		return utils.NewValidationError("value", "must not be negative")
	}
	return nil
}

func validatePriority(priority schemas.DealPriority) error {
	if priority != "" && !slices.Contains(schemas.DealPriorities, priority) {
		return utils.NewValidationError("priority", fmt.Sprintf("unknown priority %q", priority))
	}
	return nil
}

func validateProbability(probability int) error {
	if probability < 0 || probability > 100 {
		return utils.NewValidationError("probability", "must be between 0 and 100")
	}
	return nil
}

func validateCloseDate(closeDate string) error {
	if closeDate != "" && !utils.IsValidDate(closeDate) {
		return utils.NewValidationError("close_date", "invalid date")
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
