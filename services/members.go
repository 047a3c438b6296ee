package services

import (
	"context"
	"crm/database"
	"crm/schemas"
	"crm/utils"
	"fmt"
	"slices"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

const UNKNOWN_OWNER_NAME = "Unknown"

type MemberInput struct {
	Name  string             `json:"name"`
	Email string             `json:"email"`
	Role  schemas.MemberRole `json:"role"`
}

type MemberPatch struct {
	Name  *string             `json:"name"`
	Email *string             `json:"email"`
	Role  *schemas.MemberRole `json:"role"`
}

// MemberDirectory maps team members to their role and display color.
type MemberDirectory struct {
	store  database.Store
	logger *zap.Logger
}

func (d *MemberDirectory) Add(ctx context.Context, input MemberInput) (schemas.Member, error) {
	member := schemas.Member{
		Name:  strings.TrimSpace(input.Name),
		Email: strings.TrimSpace(input.Email),
		Role:  input.Role,
	}

	if member.Name == "" {
		return schemas.Member{}, utils.NewValidationError("name", "is required")
	}
	if member.Email == "" {
		return schemas.Member{}, utils.NewValidationError("email", "is required")
	}
	if member.Role == "" {
		member.Role = schemas.MEMBER_ROLE_SALES_REP
	}
	if !slices.Contains(schemas.MemberRoles, member.Role) {
		return schemas.Member{}, utils.NewValidationError("role", fmt.Sprintf("unknown role %q", member.Role))
	}

	existing, err := d.store.Count(ctx, database.COLLECTION_MEMBERS, nil)
	if err != nil {
		return schemas.Member{}, fmt.Errorf("count members: %w", err)
	}
	member.Color = schemas.MemberColors[existing%int64(len(schemas.MemberColors))]

	id, err := d.store.Insert(ctx, database.COLLECTION_MEMBERS, member)
	if err != nil {
		return schemas.Member{}, utils.NewRemoteWriteError("insert member", err)
	}

	return d.Get(ctx, id)
}

func (d *MemberDirectory) Get(ctx context.Context, id bson.ObjectID) (schemas.Member, error) {
	raw, err := d.store.FindOne(ctx, database.COLLECTION_MEMBERS, id)
	if err != nil {
		return schemas.Member{}, readError("member", id, err)
	}
	return decode[schemas.Member](raw)
}

func (d *MemberDirectory) List(ctx context.Context) ([]schemas.Member, error) {
	raws, err := d.store.Find(ctx, database.COLLECTION_MEMBERS, nil)
	if err != nil {
		return nil, fmt.Errorf("find members: %w", err)
	}
	return decodeAll[schemas.Member](raws)
}

// Update never touches the color. A rename refreshes the owner name snapshot
// carried by the member's deals and leads.
func (d *MemberDirectory) Update(ctx context.Context, id bson.ObjectID, patch MemberPatch) (schemas.Member, error) {
	current, err := d.Get(ctx, id)
	if err != nil {
		return schemas.Member{}, err
	}

	fields := database.Fields{}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return schemas.Member{}, utils.NewValidationError("name", "is required")
		}
		fields["name"] = name
	}
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if email == "" {
			return schemas.Member{}, utils.NewValidationError("email", "is required")
		}
		fields["email"] = email
	}
	if patch.Role != nil {
		if !slices.Contains(schemas.MemberRoles, *patch.Role) {
			return schemas.Member{}, utils.NewValidationError("role", fmt.Sprintf("unknown role %q", *patch.Role))
		}
		fields["role"] = *patch.Role
	}

	fields["updated_at"] = database.ServerTimestamp

	if err := d.store.Update(ctx, database.COLLECTION_MEMBERS, id, fields); err != nil {
		return schemas.Member{}, writeError("update member", "member", id, err)
	}

	if name, renamed := fields["name"].(string); renamed && name != current.Name {
		d.refreshOwnerName(ctx, id, name)
	}

	return d.Get(ctx, id)
}

func (d *MemberDirectory) Delete(ctx context.Context, id bson.ObjectID) error {
	if err := d.store.Delete(ctx, database.COLLECTION_MEMBERS, id); err != nil {
		return writeError("delete member", "member", id, err)
	}
	return nil
}

// Resolve returns the member referenced by a deal input. An empty id means the
// deal is unassigned.
func (d *MemberDirectory) Resolve(ctx context.Context, ownerID string) (bson.ObjectID, string, error) {
	id, err := parseOptionalID("owner_id", ownerID)
	if err != nil || id.IsZero() {
		return id, "", err
	}

	member, err := d.Get(ctx, id)
	if err != nil {
		return bson.ObjectID{}, "", err
	}

	return member.ID, member.Name, nil
}

func (d *MemberDirectory) refreshOwnerName(ctx context.Context, id bson.ObjectID, name string) {
	for _, collection := range []string{database.COLLECTION_DEALS, database.COLLECTION_LEADS} {
		raws, err := d.store.Find(ctx, collection, database.Filter{"owner_id": id})
		if err != nil {
			d.logger.Warn("owner snapshot refresh skipped",
				zap.String("collection", collection), zap.String("member_id", id.Hex()), zap.Error(err))
			continue
		}

		records, err := decodeAll[schemas.Deal](raws)
		if err != nil {
			d.logger.Warn("owner snapshot refresh skipped",
				zap.String("collection", collection), zap.String("member_id", id.Hex()), zap.Error(err))
			continue
		}

		for _, record := range records {
			err := d.store.Update(ctx, collection, record.ID, database.Fields{"owner_name": name})
			if err != nil {
				d.logger.Warn("owner snapshot refresh failed",
					zap.String("collection", collection), zap.String("record_id", record.ID.Hex()), zap.Error(err))
			}
		}
	}
}

// OwnerDisplayName prefers the live member name, then the snapshot stored on
// the deal.
func OwnerDisplayName(deal schemas.Deal, members []schemas.Member) string {
	if !deal.OwnerID.IsZero() {
		for _, member := range members {
			if member.ID == deal.OwnerID {
				return member.Name
			}
		}
	}

	if deal.OwnerName != "" {
		return deal.OwnerName
	}

	return UNKNOWN_OWNER_NAME
}
