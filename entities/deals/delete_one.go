package deals

import (
	"context"
	"crm/database"
	"crm/entities/realtime"
	"crm/utils"
	"net/http"
)

// DeleteOne sends the deal to the recycle bin.
func (h *Handlers) DeleteOne(w http.ResponseWriter, r *http.Request) {
	pipelineID, dealID, ok := dealIDs(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	err := h.Deals.Delete(ctx, pipelineID, dealID)
	if utils.IsNotFoundError(err) {
		utils.SendResponse(w, http.StatusNotFound, "Negócio não encontrado", nil, 0)
		return
	}
	if err != nil {
		utils.SendError(w, err, utils.CANNOT_DELETE_DEAL_FROM_MONGODB)
		return
	}

	h.Hub.Broadcast(ctx, realtime.Event{
		Action:   realtime.ACTION_DELETED,
		Entity:   realtime.ENTITY_DEAL,
		ID:       dealID.Hex(),
		Pipeline: pipelineID.Hex(),
	})

	w.WriteHeader(http.StatusOK)
}
