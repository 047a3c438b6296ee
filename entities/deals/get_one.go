package deals

import (
	"context"
	"crm/database"
	"crm/utils"
	"net/http"
)

func (h *Handlers) GetOne(w http.ResponseWriter, r *http.Request) {
	pipelineID, dealID, ok := dealIDs(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	deal, err := h.Deals.Get(ctx, pipelineID, dealID)
	if utils.IsNotFoundError(err) {
		utils.SendResponse(w, http.StatusNotFound, "Negócio não encontrado", nil, 0)
		return
	}
	if err != nil {
		utils.SendError(w, err, utils.CANNOT_FIND_DEALS_IN_MONGODB)
		return
	}

	utils.SendResponse(w, http.StatusOK, "", deal, 0)
}
