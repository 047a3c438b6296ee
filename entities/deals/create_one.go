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

func (h *Handlers) CreateOne(w http.ResponseWriter, r *http.Request) {
	pipelineID, ok := pipelineID(w, r)
	if !ok {
		return
	}

	input := services.DealInput{}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "", nil, utils.INVALID_REQUEST_DATA)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	deal, err := h.Deals.Add(ctx, pipelineID, input)
	if utils.IsNotFoundError(err) {
		utils.SendResponse(w, http.StatusNotFound, "Funil não encontrado", nil, 0)
		return
	}
	if err != nil {
		utils.SendError(w, err, utils.CANNOT_INSERT_DEAL_TO_MONGODB)
		return
	}

	h.Hub.Broadcast(ctx, realtime.Event{
		Action:   realtime.ACTION_CREATED,
		Entity:   realtime.ENTITY_DEAL,
		ID:       deal.ID.Hex(),
		Pipeline: pipelineID.Hex(),
		Payload:  deal,
	})

	utils.SendResponse(w, http.StatusCreated, "", deal, 0)
}
