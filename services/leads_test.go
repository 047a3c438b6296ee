package services

import (
	"context"
	"crm/schemas"
	"crm/utils"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func createLead(t *testing.T, svc *Services, input DealInput) schemas.Deal {
	t.Helper()
	lead, err := svc.Leads.Create(context.Background(), input)
	require.NoError(t, err)
	return lead
}

func TestCreateLeadValidation(t *testing.T) {
	svc, _ := newMemoryServices(t)
	ctx := context.Background()

	_, err := svc.Leads.Create(ctx, DealInput{ContactName: "Ana"})
	var validationErr *utils.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "email", validationErr.Field)

	_, err = svc.Leads.Create(ctx, DealInput{Email: "ana@example.com"})
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "contact_name", validationErr.Field)

	lead := createLead(t, svc, DealInput{Company: "Acme", Email: "sales@acme.com", Value: 10})
	assert.Equal(t, "Acme", lead.Title)
	assert.Equal(t, schemas.DEAL_SOURCE_MANUAL, lead.Source)
	assert.Equal(t, schemas.DEAL_STATUS_ACTIVE, lead.Status)
	assert.True(t, lead.PipelineID.IsZero())
	assert.Empty(t, lead.Stage)
}

func TestUpdateLead(t *testing.T) {
	svc, _ := newMemoryServices(t)
	ctx := context.Background()
	lead := createLead(t, svc, DealInput{ContactName: "Ana", Email: "ana@example.com"})

	mobile := "+55 11 99999-0000"
	updated, err := svc.Leads.Update(ctx, lead.ID, DealPatch{Mobile: &mobile})
	require.NoError(t, err)
	assert.Equal(t, mobile, updated.Mobile)

	blank := ""
	_, err = svc.Leads.Update(ctx, lead.ID, DealPatch{Email: &blank})
	assert.True(t, utils.IsValidationError(err))

	stage := "new"
	_, err = svc.Leads.Update(ctx, lead.ID, DealPatch{Stage: &stage})
	assert.True(t, utils.IsValidationError(err))
}

func TestLeadSoftDeleteAndRestore(t *testing.T) {
	svc, _ := newMemoryServices(t)
	ctx := context.Background()
	lead := createLead(t, svc, DealInput{ContactName: "Ana", Email: "ana@example.com"})

	require.NoError(t, svc.Leads.Delete(ctx, lead.ID))
	assert.True(t, utils.IsNotFoundError(svc.Leads.Delete(ctx, lead.ID)))

	active, err := svc.Leads.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	deleted, err := svc.Leads.ListDeleted(ctx)
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, schemas.DELETION_SOURCE_LEADS, deleted[0].DeletionSource)

	restored, err := svc.Leads.Restore(ctx, lead.ID)
	require.NoError(t, err)
	assert.True(t, restored.IsActive())
	assert.Nil(t, restored.DeletedAt)

	assert.True(t, utils.IsValidationError(svc.Leads.PermanentlyDelete(ctx, lead.ID)))
	require.NoError(t, svc.Leads.Delete(ctx, lead.ID))
	require.NoError(t, svc.Leads.PermanentlyDelete(ctx, lead.ID))

	_, err = svc.Leads.Restore(ctx, lead.ID)
	assert.True(t, utils.IsNotFoundError(err))
}

func TestPromoteLeadCreatesDefaultPipeline(t *testing.T) {
	svc, _ := newMemoryServices(t)
	ctx := context.Background()
	lead := createLead(t, svc, DealInput{ContactName: "Ana", Email: "ana@example.com", Value: 1200, Source: schemas.DEAL_SOURCE_GOOGLE})

	deal, err := svc.Leads.Promote(ctx, lead.ID, PromoteInput{})
	require.NoError(t, err)

	pipelines, err := svc.Pipelines.List(ctx)
	require.NoError(t, err)
	require.Len(t, pipelines, 1)
	assert.Equal(t, DEFAULT_PIPELINE_NAME, pipelines[0].Name)

	assert.Equal(t, pipelines[0].ID, deal.PipelineID)
	assert.Equal(t, "new", deal.Stage)
	assert.Equal(t, "Ana", deal.Title)
	assert.Equal(t, 1200.0, deal.Value)
	assert.Equal(t, schemas.DEAL_SOURCE_GOOGLE, deal.Source)
	requireStats(t, svc, deal.PipelineID, 1, 1200)

	archived, err := svc.Leads.Get(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, deal.ID, archived.PromotedToDealID)
	require.NotNil(t, archived.PromotedAt)

	leads, err := svc.Leads.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, leads)

	_, err = svc.Leads.Promote(ctx, lead.ID, PromoteInput{})
	assert.True(t, utils.IsValidationError(err))
}

func TestPromoteLeadIntoChosenPipeline(t *testing.T) {
	svc, _ := newMemoryServices(t)
	ctx := context.Background()
	threeStagePipeline(t, svc, "Oldest")
	target := threeStagePipeline(t, svc, "Target")

	lead := createLead(t, svc, DealInput{Company: "Acme", Email: "sales@acme.com"})

	deal, err := svc.Leads.Promote(ctx, lead.ID, PromoteInput{PipelineID: target.ID.Hex(), Stage: "qualified"})
	require.NoError(t, err)
	assert.Equal(t, target.ID, deal.PipelineID)
	assert.Equal(t, "qualified", deal.Stage)

	other := createLead(t, svc, DealInput{Company: "Beta", Email: "b@beta.com"})
	_, err = svc.Leads.Promote(ctx, other.ID, PromoteInput{PipelineID: bson.NewObjectID().Hex()})
	assert.True(t, utils.IsNotFoundError(err))

	_, err = svc.Leads.Promote(ctx, other.ID, PromoteInput{PipelineID: "bad"})
	assert.True(t, utils.IsValidationError(err))

	_, err = svc.Leads.Promote(ctx, other.ID, PromoteInput{Stage: "missing"})
	assert.True(t, utils.IsValidationError(err))

	still, err := svc.Leads.Get(ctx, other.ID)
	require.NoError(t, err)
	assert.False(t, still.IsPromoted())
}

func TestPromoteDeletedLeadIsRejected(t *testing.T) {
	svc, _ := newMemoryServices(t)
	ctx := context.Background()
	lead := createLead(t, svc, DealInput{ContactName: "Ana", Email: "ana@example.com"})
	require.NoError(t, svc.Leads.Delete(ctx, lead.ID))

	_, err := svc.Leads.Promote(ctx, lead.ID, PromoteInput{})
	assert.True(t, utils.IsValidationError(err))
}

func TestImportLeadsReportsEachRow(t *testing.T) {
	svc, _ := newMemoryServices(t)
	ctx := context.Background()

	results := svc.Leads.Import(ctx, []DealInput{
		LegacyLeadInput(schemas.LegacyLead{ID: 1, Name: "Ana", Email: "ana@example.com", Value: 10}),
		LegacyLeadInput(schemas.LegacyLead{ID: 2, Name: "No email"}),
		{Company: "Acme", Email: "sales@acme.com", Source: schemas.DEAL_SOURCE_META},
	})

	require.Len(t, results, 3)
	for i, result := range results {
		assert.Equal(t, i, result.Index)
	}
	assert.True(t, results[0].OK)
	assert.False(t, results[1].OK)
	assert.NotEmpty(t, results[1].Error)
	assert.True(t, results[2].OK)

	leads, err := svc.Leads.List(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	for _, lead := range leads {
		assert.Equal(t, schemas.DEAL_SOURCE_IMPORTED, lead.Source)
	}
}
