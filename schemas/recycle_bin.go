package schemas

type RecycleItemKind string

const (
	RECYCLE_ITEM_DEAL RecycleItemKind = "deal"
	RECYCLE_ITEM_LEAD RecycleItemKind = "lead"
)

type RecycleBin struct {
	Deals []Deal `json:"deals"`
	Leads []Deal `json:"leads"`
}

type RecycleItem struct {
	Kind       RecycleItemKind `json:"kind"`
	ID         string          `json:"id"`
	PipelineID string          `json:"pipeline_id,omitempty"`
}

type RecycleItemResult struct {
	Kind  RecycleItemKind `json:"kind"`
	ID    string          `json:"id"`
	OK    bool            `json:"ok"`
	Error string          `json:"error,omitempty"`
}
