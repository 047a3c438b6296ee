package deals

import (
	"context"
	"crm/database"
	"crm/entities/realtime"
	"crm/utils"
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type MoveRequest struct {
	ToPipelineID string `json:"to_pipeline_id"`
	ToStage      string `json:"to_stage"`
}

// MoveOne moves a deal to another stage, and to another pipeline when
// to_pipeline_id is set. A move across pipelines gives the deal a new id.
func (h *Handlers) MoveOne(w http.ResponseWriter, r *http.Request) {
	pipelineID, dealID, ok := dealIDs(w, r)
	if !ok {
		return
	}

	request := MoveRequest{}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "", nil, utils.INVALID_REQUEST_DATA)
		return
	}

	toPipelineID := pipelineID
	if request.ToPipelineID != "" {
		id, err := bson.ObjectIDFromHex(request.ToPipelineID)
		if err != nil {
			utils.SendResponse(w, http.StatusBadRequest, "", nil, utils.INVALID_PIPELINE_ID_FORMAT)
			return
		}
		toPipelineID = id
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	deal, err := h.Deals.Move(ctx, dealID, pipelineID, toPipelineID, request.ToStage)
	if utils.IsNotFoundError(err) {
		utils.SendResponse(w, http.StatusNotFound, "Negócio ou funil não encontrado", nil, 0)
		return
	}
	if err != nil {
		utils.SendError(w, err, utils.CANNOT_MOVE_DEAL_IN_MONGODB)
		return
	}

	h.Hub.Broadcast(ctx, realtime.Event{
		Action:   realtime.ACTION_MOVED,
		Entity:   realtime.ENTITY_DEAL,
		ID:       deal.ID.Hex(),
		Pipeline: toPipelineID.Hex(),
		Payload:  deal,
		Details:  "from " + pipelineID.Hex() + "/" + dealID.Hex(),
	})

	utils.SendResponse(w, http.StatusOK, "", deal, 0)
}
