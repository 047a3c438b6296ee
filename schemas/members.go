package schemas

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type MemberRole string

const (
	MEMBER_ROLE_SALES_REP     MemberRole = "Sales Rep"
	MEMBER_ROLE_SALES_MANAGER MemberRole = "Sales Manager"
)

var MemberRoles = []MemberRole{MEMBER_ROLE_SALES_REP, MEMBER_ROLE_SALES_MANAGER}

// MemberColors is cycled by creation order. A member keeps its color for life.
var MemberColors = []string{
	"#2563eb",
	"#16a34a",
	"#db2777",
	"#ea580c",
	"#7c3aed",
	"#0891b2",
	"#ca8a04",
	"#dc2626",
}

type Member struct {
	ID        bson.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string        `json:"name" bson:"name"`
	Email     string        `json:"email" bson:"email"`
	Role      MemberRole    `json:"role" bson:"role"`
	Color     string        `json:"color" bson:"color"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at,omitempty"`
	UpdatedAt time.Time     `json:"updated_at" bson:"updated_at,omitempty"`
}
