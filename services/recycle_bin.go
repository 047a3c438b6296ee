package services

import (
	"context"
	"crm/schemas"
	"crm/utils"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RecycleBin is the view over soft deleted leads and deals. Bulk operations
// run every item on its own: there is no all-or-nothing batch, and each item
// reports its own outcome.
type RecycleBin struct {
	deals           *DealLedger
	leads           *LeadDesk
	logger          *zap.Logger
	bulkConcurrency int
}

func (r *RecycleBin) Contents(ctx context.Context) (schemas.RecycleBin, error) {
	deals, err := r.deals.ListDeleted(ctx)
	if err != nil {
		return schemas.RecycleBin{}, err
	}

	leads, err := r.leads.ListDeleted(ctx)
	if err != nil {
		return schemas.RecycleBin{}, err
	}

	return schemas.RecycleBin{Deals: deals, Leads: leads}, nil
}

func (r *RecycleBin) Restore(ctx context.Context, item schemas.RecycleItem) error {
	switch item.Kind {
	case schemas.RECYCLE_ITEM_DEAL:
		pipelineID, dealID, err := dealItemIDs(item)
		if err != nil {
			return err
		}
		_, err = r.deals.Restore(ctx, pipelineID, dealID)
		return err
	case schemas.RECYCLE_ITEM_LEAD:
		leadID, err := itemID(item)
		if err != nil {
			return err
		}
		_, err = r.leads.Restore(ctx, leadID)
		return err
	}

	return utils.NewValidationError("kind", fmt.Sprintf("unknown item kind %q", item.Kind))
}

func (r *RecycleBin) PermanentlyDelete(ctx context.Context, item schemas.RecycleItem) error {
	switch item.Kind {
	case schemas.RECYCLE_ITEM_DEAL:
		pipelineID, dealID, err := dealItemIDs(item)
		if err != nil {
			return err
		}
		return r.deals.PermanentlyDelete(ctx, pipelineID, dealID)
	case schemas.RECYCLE_ITEM_LEAD:
		leadID, err := itemID(item)
		if err != nil {
			return err
		}
		return r.leads.PermanentlyDelete(ctx, leadID)
	}

	return utils.NewValidationError("kind", fmt.Sprintf("unknown item kind %q", item.Kind))
}

func (r *RecycleBin) BulkRestore(ctx context.Context, items []schemas.RecycleItem) []schemas.RecycleItemResult {
	return r.each(ctx, "restore", items, r.Restore)
}

func (r *RecycleBin) BulkPermanentDelete(ctx context.Context, items []schemas.RecycleItem) []schemas.RecycleItemResult {
	return r.each(ctx, "permanent delete", items, r.PermanentlyDelete)
}

func (r *RecycleBin) each(ctx context.Context, op string, items []schemas.RecycleItem, apply func(context.Context, schemas.RecycleItem) error) []schemas.RecycleItemResult {
	results := make([]schemas.RecycleItemResult, len(items))

	group := new(errgroup.Group)
	group.SetLimit(r.bulkConcurrency)

	for i, item := range items {
		group.Go(func() error {
			result := schemas.RecycleItemResult{Kind: item.Kind, ID: item.ID, OK: true}
			if err := apply(ctx, item); err != nil {
				r.logger.Warn("recycle bin item failed",
					zap.String("op", op), zap.String("kind", string(item.Kind)),
					zap.String("id", item.ID), zap.Error(err))
				result.OK = false
				result.Error = err.Error()
			}
			results[i] = result
			return nil
		})
	}

	group.Wait()

	return results
}

func itemID(item schemas.RecycleItem) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(item.ID)
	if err != nil {
		return bson.ObjectID{}, utils.NewValidationError("id", "invalid id format")
	}
	return id, nil
}

func dealItemIDs(item schemas.RecycleItem) (bson.ObjectID, bson.ObjectID, error) {
	dealID, err := itemID(item)
	if err != nil {
		return bson.ObjectID{}, bson.ObjectID{}, err
	}

	pipelineID, err := bson.ObjectIDFromHex(item.PipelineID)
	if err != nil {
		return bson.ObjectID{}, bson.ObjectID{}, utils.NewValidationError("pipeline_id", "invalid id format")
	}

	return pipelineID, dealID, nil
}
