package pipelines

import (
	"context"
	"crm/database"
	"crm/entities/realtime"
	"crm/services"
	"crm/utils"
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func (h *Handlers) UpdateOne(w http.ResponseWriter, r *http.Request) {
	id, err := bson.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "", nil, utils.INVALID_PIPELINE_ID_FORMAT)
		return
	}

	patch := services.PipelinePatch{}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "", nil, utils.INVALID_REQUEST_DATA)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	pipeline, err := h.Pipelines.Update(ctx, id, patch)
	if utils.IsNotFoundError(err) {
		utils.SendResponse(w, http.StatusNotFound, "Funil não encontrado", nil, 0)
		return
	}
	if err != nil {
		utils.SendError(w, err, utils.CANNOT_UPDATE_PIPELINE_IN_MONGODB)
		return
	}

	h.Hub.Broadcast(ctx, realtime.Event{
		Action:   realtime.ACTION_UPDATED,
		Entity:   realtime.ENTITY_PIPELINE,
		ID:       pipeline.ID.Hex(),
		Pipeline: pipeline.ID.Hex(),
		Payload:  pipeline,
	})

	utils.SendResponse(w, http.StatusOK, "", pipeline, 0)
}
