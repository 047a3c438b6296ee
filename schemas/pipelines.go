package schemas

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const PIPELINE_MIN_STAGES = 2

type Stage struct {
	ID    string `json:"id" bson:"id"`
	Name  string `json:"name" bson:"name"`
	Color string `json:"color,omitempty" bson:"color,omitempty"`
	Order int    `json:"order" bson:"order"`
}

// Pipeline carries DealCount and TotalValue as cached aggregates. The active
// deals of the pipeline are the authoritative source.
type Pipeline struct {
	ID          bson.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string        `json:"name" bson:"name"`
	Description string        `json:"description,omitempty" bson:"description,omitempty"`
	Stages      []Stage       `json:"stages" bson:"stages"`
	DealCount   int           `json:"deal_count" bson:"deal_count"`
	TotalValue  float64       `json:"total_value" bson:"total_value"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at,omitempty"`
	UpdatedAt   time.Time     `json:"updated_at" bson:"updated_at,omitempty"`
}

func (p *Pipeline) Stage(id string) (Stage, bool) {
	for _, stage := range p.Stages {
		if stage.ID == id {
			return stage, true
		}
	}
	return Stage{}, false
}

// FirstStage is the leftmost column of the board.
func (p *Pipeline) FirstStage() Stage {
	first := p.Stages[0]
	for _, stage := range p.Stages[1:] {
		if stage.Order < first.Order {
			first = stage
		}
	}
	return first
}

func DefaultPipelineStages() []Stage {
	return []Stage{
		{ID: "new", Name: "New", Color: "blue", Order: 1},
		{ID: "qualified", Name: "Qualified", Color: "purple", Order: 2},
		{ID: "proposal", Name: "Proposal", Color: "orange", Order: 3},
		{ID: "won", Name: "Won", Color: "green", Order: 4},
		{ID: "lost", Name: "Lost", Color: "red", Order: 5},
	}
}
