package pipelines

import (
	"context"
	"crm/database"
	"crm/entities/realtime"
	"crm/utils"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type DeleteResult struct {
	DeletedDeals int `json:"deleted_deals"`
}

func (h *Handlers) DeleteOne(w http.ResponseWriter, r *http.Request) {
	id, err := bson.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "", nil, utils.INVALID_PIPELINE_ID_FORMAT)
		return
	}

	cascade := r.URL.Query().Get("cascade") == "true"

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	removed, err := h.Pipelines.Delete(ctx, id, cascade)
	if utils.IsNotFoundError(err) {
		utils.SendResponse(w, http.StatusNotFound, "Funil não encontrado", nil, 0)
		return
	}
	if err != nil {
		utils.SendError(w, err, utils.CANNOT_DELETE_PIPELINE_FROM_MONGODB)
		return
	}

	h.Hub.Broadcast(ctx, realtime.Event{
		Action:   realtime.ACTION_DELETED,
		Entity:   realtime.ENTITY_PIPELINE,
		ID:       id.Hex(),
		Pipeline: id.Hex(),
		Details:  fmt.Sprintf("cascade=%t", cascade),
	})

	utils.SendResponse(w, http.StatusOK, "", DeleteResult{DeletedDeals: removed}, 0)
}
