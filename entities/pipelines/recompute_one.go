package pipelines

import (
	"context"
	"crm/database"
	"crm/entities/realtime"
	"crm/utils"
	"net/http"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// RecomputeOne rewrites the stored aggregates of one pipeline from its deals.
func (h *Handlers) RecomputeOne(w http.ResponseWriter, r *http.Request) {
	id, err := bson.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "", nil, utils.INVALID_PIPELINE_ID_FORMAT)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	if _, err := h.Pipelines.Get(ctx, id); err != nil {
		if utils.IsNotFoundError(err) {
			utils.SendResponse(w, http.StatusNotFound, "Funil não encontrado", nil, 0)
			return
		}
		utils.SendError(w, err, utils.CANNOT_FIND_PIPELINES_IN_MONGODB)
		return
	}

	h.Stats.RecomputeStats(ctx, id)

	pipeline, err := h.Pipelines.Get(ctx, id)
	if err != nil {
		utils.SendError(w, err, utils.CANNOT_FIND_PIPELINES_IN_MONGODB)
		return
	}

	h.Hub.Broadcast(ctx, realtime.Event{
		Action:   realtime.ACTION_RECOMPUTE,
		Entity:   realtime.ENTITY_PIPELINE,
		ID:       id.Hex(),
		Pipeline: id.Hex(),
		Payload:  pipeline,
	})

	utils.SendResponse(w, http.StatusOK, "", pipeline, 0)
}
