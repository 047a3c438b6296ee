package services

import (
	"context"
	"crm/database"
	"crm/schemas"
	"crm/utils"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type PromoteInput struct {
	PipelineID string `json:"pipeline_id"`
	Stage      string `json:"stage"`
}

type ImportResult struct {
	Index int           `json:"index"`
	ID    bson.ObjectID `json:"id,omitzero"`
	OK    bool          `json:"ok"`
	Error string        `json:"error,omitempty"`
}

// LeadDesk handles contacts that are not attached to a pipeline yet.
type LeadDesk struct {
	store           database.Store
	logger          *zap.Logger
	pipelines       *PipelineRegistry
	deals           *DealLedger
	members         *MemberDirectory
	bulkConcurrency int
}

func (d *LeadDesk) Create(ctx context.Context, input DealInput) (schemas.Deal, error) {
	if err := validateContact(input.Email, input.ContactName, input.Company); err != nil {
		return schemas.Deal{}, err
	}

	lead, err := d.deals.buildRecord(ctx, input)
	if err != nil {
		return schemas.Deal{}, err
	}
	if lead.Title == "" {
		lead.Title = firstNonEmpty(lead.Company, lead.ContactName)
	}
	lead.Status = schemas.DEAL_STATUS_ACTIVE

	id, err := d.store.Insert(ctx, database.COLLECTION_LEADS, lead)
	if err != nil {
		return schemas.Deal{}, utils.NewRemoteWriteError("insert lead", err)
	}

	return d.Get(ctx, id)
}

func (d *LeadDesk) Get(ctx context.Context, id bson.ObjectID) (schemas.Deal, error) {
	raw, err := d.store.FindOne(ctx, database.COLLECTION_LEADS, id)
	if err != nil {
		return schemas.Deal{}, readError("lead", id, err)
	}
	return decode[schemas.Deal](raw)
}

// List returns active leads that were not promoted yet.
func (d *LeadDesk) List(ctx context.Context) ([]schemas.Deal, error) {
	raws, err := d.store.Find(ctx, database.COLLECTION_LEADS, database.Filter{
		"status":              schemas.DEAL_STATUS_ACTIVE,
		"promoted_to_deal_id": nil,
	})
	if err != nil {
		return nil, fmt.Errorf("find leads: %w", err)
	}
	return decodeAll[schemas.Deal](raws)
}

func (d *LeadDesk) ListDeleted(ctx context.Context) ([]schemas.Deal, error) {
	raws, err := d.store.Find(ctx, database.COLLECTION_LEADS, database.Filter{
		"status":          schemas.DEAL_STATUS_DELETED,
		"deletion_source": schemas.DELETION_SOURCE_LEADS,
	})
	if err != nil {
		return nil, fmt.Errorf("find deleted leads: %w", err)
	}
	return decodeAll[schemas.Deal](raws)
}

func (d *LeadDesk) Update(ctx context.Context, id bson.ObjectID, patch DealPatch) (schemas.Deal, error) {
	current, err := d.Get(ctx, id)
	if err != nil {
		return schemas.Deal{}, err
	}
	if !current.IsActive() {
		return schemas.Deal{}, utils.NewNotFoundError("lead", id.Hex())
	}
	if patch.Stage != nil {
		return schemas.Deal{}, utils.NewValidationError("stage", "leads have no stage until promoted")
	}

	email, name, company := current.Email, current.ContactName, current.Company
	if patch.Email != nil {
		email = *patch.Email
	}
	if patch.ContactName != nil {
		name = *patch.ContactName
	}
	if patch.Company != nil {
		company = *patch.Company
	}
	if err := validateContact(email, name, company); err != nil {
		return schemas.Deal{}, err
	}

	fields, err := d.deals.patchFields(ctx, patch)
	if err != nil {
		return schemas.Deal{}, err
	}
	fields["updated_at"] = database.ServerTimestamp

	if err := d.store.Update(ctx, database.COLLECTION_LEADS, id, fields); err != nil {
		return schemas.Deal{}, writeError("update lead", "lead", id, err)
	}

	return d.Get(ctx, id)
}

func (d *LeadDesk) Delete(ctx context.Context, id bson.ObjectID) error {
	lead, err := d.Get(ctx, id)
	if err != nil {
		return err
	}
	if !lead.IsActive() {
		return utils.NewNotFoundError("lead", id.Hex())
	}

	err = d.store.Update(ctx, database.COLLECTION_LEADS, id, database.Fields{
		"status":          schemas.DEAL_STATUS_DELETED,
		"deleted_at":      database.ServerTimestamp,
		"deletion_source": schemas.DELETION_SOURCE_LEADS,
		"updated_at":      database.ServerTimestamp,
	})
	if err != nil {
		return writeError("delete lead", "lead", id, err)
	}

	return nil
}

func (d *LeadDesk) Restore(ctx context.Context, id bson.ObjectID) (schemas.Deal, error) {
	lead, err := d.Get(ctx, id)
	if err != nil {
		return schemas.Deal{}, err
	}
	if lead.IsActive() {
		return schemas.Deal{}, utils.NewValidationError("status", "lead is not in the recycle bin")
	}

	err = d.store.Update(ctx, database.COLLECTION_LEADS, id, database.Fields{
		"status":          schemas.DEAL_STATUS_ACTIVE,
		"deleted_at":      nil,
		"deletion_source": nil,
		"updated_at":      database.ServerTimestamp,
	})
	if err != nil {
		return schemas.Deal{}, writeError("restore lead", "lead", id, err)
	}

	return d.Get(ctx, id)
}

func (d *LeadDesk) PermanentlyDelete(ctx context.Context, id bson.ObjectID) error {
	lead, err := d.Get(ctx, id)
	if err != nil {
		return err
	}
	if lead.IsActive() {
		return utils.NewValidationError("status", "only deleted leads can be removed permanently")
	}

	if err := d.store.Delete(ctx, database.COLLECTION_LEADS, id); err != nil {
		return writeError("permanently delete lead", "lead", id, err)
	}

	return nil
}

// Promote copies the lead into a pipeline as a new deal and archives the lead
// with a back reference to that deal. Without a target the oldest pipeline is
// used, and the default pipeline is created when none exists.
func (d *LeadDesk) Promote(ctx context.Context, id bson.ObjectID, input PromoteInput) (schemas.Deal, error) {
	lead, err := d.Get(ctx, id)
	if err != nil {
		return schemas.Deal{}, err
	}
	if !lead.IsActive() {
		return schemas.Deal{}, utils.NewValidationError("status", "lead is in the recycle bin")
	}
	if lead.IsPromoted() {
		return schemas.Deal{}, utils.NewValidationError("promoted_to_deal_id", "lead was already promoted")
	}

	pipeline, err := d.targetPipeline(ctx, input.PipelineID)
	if err != nil {
		return schemas.Deal{}, err
	}

	ownerID := ""
	if !lead.OwnerID.IsZero() {
		ownerID = lead.OwnerID.Hex()
		if _, err := d.members.Get(ctx, lead.OwnerID); utils.IsNotFoundError(err) {
			ownerID = ""
		}
	}

	deal, err := d.deals.Add(ctx, pipeline.ID, DealInput{
		Title:       lead.Title,
		ContactName: lead.ContactName,
		Company:     lead.Company,
		Email:       lead.Email,
		Mobile:      lead.Mobile,
		Source:      lead.Source,
		Value:       lead.Value,
		Stage:       input.Stage,
		Priority:    lead.Priority,
		Probability: lead.Probability,
		CloseDate:   lead.CloseDate,
		OwnerID:     ownerID,
	})
	if err != nil {
		return schemas.Deal{}, err
	}

	err = d.store.Update(ctx, database.COLLECTION_LEADS, id, database.Fields{
		"promoted_to_deal_id": deal.ID,
		"promoted_at":         database.ServerTimestamp,
		"updated_at":          database.ServerTimestamp,
	})
	if err != nil {
		d.logger.Error("lead promoted but not archived",
			zap.String("lead_id", id.Hex()), zap.String("deal_id", deal.ID.Hex()), zap.Error(err))
		return deal, writeError("archive promoted lead", "lead", id, err)
	}

	return deal, nil
}

func (d *LeadDesk) targetPipeline(ctx context.Context, pipelineHex string) (schemas.Pipeline, error) {
	pipelineID, err := parseOptionalID("pipeline_id", pipelineHex)
	if err != nil {
		return schemas.Pipeline{}, err
	}
	if !pipelineID.IsZero() {
		return d.pipelines.Get(ctx, pipelineID)
	}

	pipelines, err := d.pipelines.List(ctx)
	if err != nil {
		return schemas.Pipeline{}, err
	}
	if len(pipelines) > 0 {
		return pipelines[0], nil
	}

	d.logger.Info("no pipeline found, creating default pipeline for promotion")
	return d.pipelines.CreateDefault(ctx)
}

// Import creates every lead independently, tagged as imported. One invalid or
// failing row never stops the others.
func (d *LeadDesk) Import(ctx context.Context, inputs []DealInput) []ImportResult {
	results := make([]ImportResult, len(inputs))

	group := new(errgroup.Group)
	group.SetLimit(d.bulkConcurrency)

	for i, input := range inputs {
		group.Go(func() error {
			input.Source = schemas.DEAL_SOURCE_IMPORTED
			lead, err := d.Create(ctx, input)
			if err != nil {
				d.logger.Warn("lead import row failed", zap.Int("index", i), zap.Error(err))
				results[i] = ImportResult{Index: i, OK: false, Error: err.Error()}
				return nil
			}
			results[i] = ImportResult{Index: i, ID: lead.ID, OK: true}
			return nil
		})
	}

	group.Wait()

	return results
}

func LegacyLeadInput(legacy schemas.LegacyLead) DealInput {
	return DealInput{
		ContactName: legacy.Name,
		Company:     legacy.Company,
		Email:       legacy.Email,
		Mobile:      legacy.Mobile,
		Value:       legacy.Value,
		Source:      schemas.DEAL_SOURCE_IMPORTED,
	}
}

func validateContact(email, name, company string) error {
	if strings.TrimSpace(email) == "" {
		return utils.NewValidationError("email", "is required")
	}
	if strings.TrimSpace(name) == "" && strings.TrimSpace(company) == "" {
		return utils.NewValidationError("contact_name", "name or company is required")
	}
	return nil
}
