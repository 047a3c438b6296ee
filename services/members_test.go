package services

import (
	"context"
	"crm/database"
	"crm/schemas"
	"crm/utils"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestAddMemberCyclesPalette(t *testing.T) {
	svc, _ := newMemoryServices(t)
	ctx := context.Background()

	colors := []string{}
	for i := range len(schemas.MemberColors) + 1 {
		member, err := svc.Members.Add(ctx, MemberInput{
			Name:  fmt.Sprintf("Member %d", i),
			Email: fmt.Sprintf("member%d@example.com", i),
		})
		require.NoError(t, err)
		assert.Equal(t, schemas.MEMBER_ROLE_SALES_REP, member.Role)
		colors = append(colors, member.Color)
	}

	assert.Equal(t, schemas.MemberColors, colors[:len(schemas.MemberColors)])
	assert.Equal(t, schemas.MemberColors[0], colors[len(schemas.MemberColors)])
}

func TestAddMemberValidation(t *testing.T) {
	svc, _ := newMemoryServices(t)
	ctx := context.Background()

	_, err := svc.Members.Add(ctx, MemberInput{Email: "a@example.com"})
	assert.True(t, utils.IsValidationError(err))

	_, err = svc.Members.Add(ctx, MemberInput{Name: "A"})
	assert.True(t, utils.IsValidationError(err))

	_, err = svc.Members.Add(ctx, MemberInput{Name: "A", Email: "a@example.com", Role: "Intern"})
	assert.True(t, utils.IsValidationError(err))
}

func TestRenameMemberRefreshesOwnerSnapshots(t *testing.T) {
	svc, _ := newMemoryServices(t)
	ctx := context.Background()
	pipeline := threeStagePipeline(t, svc, "P")

	member, err := svc.Members.Add(ctx, MemberInput{Name: "Ana", Email: "ana@example.com", Role: schemas.MEMBER_ROLE_SALES_MANAGER})
	require.NoError(t, err)
	other, err := svc.Members.Add(ctx, MemberInput{Name: "Caio", Email: "caio@example.com"})
	require.NoError(t, err)

	deal, err := svc.Deals.Add(ctx, pipeline.ID, DealInput{Title: "d", OwnerID: member.ID.Hex()})
	require.NoError(t, err)
	lead, err := svc.Leads.Create(ctx, DealInput{ContactName: "l", Email: "l@example.com", OwnerID: member.ID.Hex()})
	require.NoError(t, err)
	untouched, err := svc.Deals.Add(ctx, pipeline.ID, DealInput{Title: "o", OwnerID: other.ID.Hex()})
	require.NoError(t, err)

	name := "Ana Souza"
	renamed, err := svc.Members.Update(ctx, member.ID, MemberPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", renamed.Name)
	assert.Equal(t, member.Color, renamed.Color)

	deal, err = svc.Deals.Get(ctx, pipeline.ID, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", deal.OwnerName)

	lead, err = svc.Leads.Get(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", lead.OwnerName)

	untouched, err = svc.Deals.Get(ctx, pipeline.ID, untouched.ID)
	require.NoError(t, err)
	assert.Equal(t, "Caio", untouched.OwnerName)
}

func TestUpdateAndDeleteUnknownMember(t *testing.T) {
	svc, _ := newMemoryServices(t)
	ctx := context.Background()

	name := "x"
	_, err := svc.Members.Update(ctx, bson.NewObjectID(), MemberPatch{Name: &name})
	assert.True(t, utils.IsNotFoundError(err))
	assert.True(t, utils.IsNotFoundError(svc.Members.Delete(ctx, bson.NewObjectID())))
}

func TestOwnerDisplayName(t *testing.T) {
	ana := schemas.Member{ID: bson.NewObjectID(), Name: "Ana"}
	gone := bson.NewObjectID()

	tests := []struct {
		name string
		deal schemas.Deal
		want string
	}{
		{"live member", schemas.Deal{OwnerID: ana.ID, OwnerName: "Old name"}, "Ana"},
		{"deleted member keeps snapshot", schemas.Deal{OwnerID: gone, OwnerName: "Bia"}, "Bia"},
		{"no owner", schemas.Deal{}, UNKNOWN_OWNER_NAME},
		{"deleted member without snapshot", schemas.Deal{OwnerID: gone}, UNKNOWN_OWNER_NAME},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OwnerDisplayName(tt.deal, []schemas.Member{ana}))
		})
	}
}

func TestDeletedMemberLeavesSnapshotOnDeals(t *testing.T) {
	svc, store := newMemoryServices(t)
	ctx := context.Background()
	pipeline := threeStagePipeline(t, svc, "P")

	member, err := svc.Members.Add(ctx, MemberInput{Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)
	deal, err := svc.Deals.Add(ctx, pipeline.ID, DealInput{Title: "d", OwnerID: member.ID.Hex()})
	require.NoError(t, err)

	require.NoError(t, svc.Members.Delete(ctx, member.ID))

	members, err := svc.Members.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, members)

	deal, err = svc.Deals.Get(ctx, pipeline.ID, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", OwnerDisplayName(deal, members))

	count, err := store.Count(ctx, database.COLLECTION_DEALS, database.Filter{"owner_id": member.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
