package deals

import (
	"context"
	"crm/database"
	"crm/entities/realtime"
	"crm/services"
	"crm/utils"
	"encoding/json"
	"net/http"
)

func (h *Handlers) UpdateOne(w http.ResponseWriter, r *http.Request) {
	pipelineID, dealID, ok := dealIDs(w, r)
	if !ok {
		return
	}

	patch := services.DealPatch{}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "", nil, utils.INVALID_REQUEST_DATA)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	deal, err := h.Deals.Update(ctx, pipelineID, dealID, patch)
	if utils.IsNotFoundError(err) {
		utils.SendResponse(w, http.StatusNotFound, "Negócio não encontrado", nil, 0)
		return
	}
	if err != nil {
		utils.SendError(w, err, utils.CANNOT_UPDATE_DEAL_IN_MONGODB)
		return
	}

	h.Hub.Broadcast(ctx, realtime.Event{
		Action:   realtime.ACTION_UPDATED,
		Entity:   realtime.ENTITY_DEAL,
		ID:       deal.ID.Hex(),
		Pipeline: pipelineID.Hex(),
		Payload:  deal,
	})

	utils.SendResponse(w, http.StatusOK, "", deal, 0)
}
