package deals

import (
	"context"
	"crm/database"
	"crm/entities/realtime"
	"crm/utils"
	"net/http"
)

func (h *Handlers) RestoreOne(w http.ResponseWriter, r *http.Request) {
	pipelineID, dealID, ok := dealIDs(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	deal, err := h.Deals.Restore(ctx, pipelineID, dealID)
	if utils.IsNotFoundError(err) {
		utils.SendResponse(w, http.StatusNotFound, "Negócio não encontrado", nil, 0)
		return
	}
	if err != nil {
		utils.SendError(w, err, utils.CANNOT_UPDATE_DEAL_IN_MONGODB)
		return
	}

	h.Hub.Broadcast(ctx, realtime.Event{
		Action:   realtime.ACTION_RESTORED,
		Entity:   realtime.ENTITY_DEAL,
		ID:       deal.ID.Hex(),
		Pipeline: pipelineID.Hex(),
		Payload:  deal,
	})

	utils.SendResponse(w, http.StatusOK, "", deal, 0)
}
