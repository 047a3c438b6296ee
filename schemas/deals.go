package schemas

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type DealStatus string

const (
	DEAL_STATUS_ACTIVE  DealStatus = "active"
	DEAL_STATUS_DELETED DealStatus = "deleted"
)

type DeletionSource string

const (
	DELETION_SOURCE_PIPELINE DeletionSource = "pipeline"
	DELETION_SOURCE_LEADS    DeletionSource = "leads"
)

type DealSource string

const (
	DEAL_SOURCE_MANUAL     DealSource = "Manual"
	DEAL_SOURCE_SIGNUP     DealSource = "Signup"
	DEAL_SOURCE_GOOGLE     DealSource = "Google"
	DEAL_SOURCE_META       DealSource = "Meta"
	DEAL_SOURCE_IMPORTED   DealSource = "Imported"
	DEAL_SOURCE_ENTERPRISE DealSource = "Enterprise"
)

type DealPriority string

const (
	DEAL_PRIORITY_LOW    DealPriority = "low"
	DEAL_PRIORITY_MEDIUM DealPriority = "medium"
	DEAL_PRIORITY_HIGH   DealPriority = "high"
)

var DealPriorities = []DealPriority{DEAL_PRIORITY_LOW, DEAL_PRIORITY_MEDIUM, DEAL_PRIORITY_HIGH}

// Deal is stored in the deals collection once it belongs to a pipeline and in
// the leads collection, without PipelineID, before promotion.
type Deal struct {
	ID               bson.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	PipelineID       bson.ObjectID  `json:"pipeline_id,omitzero" bson:"pipeline_id,omitempty"`
	Title            string         `json:"title,omitempty" bson:"title,omitempty"`
	ContactName      string         `json:"contact_name,omitempty" bson:"contact_name,omitempty"`
	Company          string         `json:"company,omitempty" bson:"company,omitempty"`
	Email            string         `json:"email,omitempty" bson:"email,omitempty"`
	Mobile           string         `json:"mobile,omitempty" bson:"mobile,omitempty"`
	Source           DealSource     `json:"source,omitempty" bson:"source,omitempty"`
	Value            float64        `json:"value" bson:"value"`
	Stage            string         `json:"stage,omitempty" bson:"stage,omitempty"`
	Priority         DealPriority   `json:"priority,omitempty" bson:"priority,omitempty"`
	Probability      int            `json:"probability" bson:"probability"`
	CloseDate        string         `json:"close_date,omitempty" bson:"close_date,omitempty"`
	OwnerID          bson.ObjectID  `json:"owner_id,omitzero" bson:"owner_id,omitempty"`
	OwnerName        string         `json:"owner_name,omitempty" bson:"owner_name,omitempty"`
	Status           DealStatus     `json:"status" bson:"status"`
	DeletionSource   DeletionSource `json:"deletion_source,omitempty" bson:"deletion_source,omitempty"`
	DeletedAt        *time.Time     `json:"deleted_at,omitempty" bson:"deleted_at"`
	PromotedToDealID bson.ObjectID  `json:"promoted_to_deal_id,omitzero" bson:"promoted_to_deal_id,omitempty"`
	PromotedAt       *time.Time     `json:"promoted_at,omitempty" bson:"promoted_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at" bson:"created_at,omitempty"`
	UpdatedAt        time.Time      `json:"updated_at" bson:"updated_at,omitempty"`
}

func (d *Deal) IsActive() bool {
	return d.Status == DEAL_STATUS_ACTIVE
}

func (d *Deal) IsPromoted() bool {
	return !d.PromotedToDealID.IsZero()
}
