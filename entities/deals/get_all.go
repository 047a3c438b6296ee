package deals

import (
	"context"
	"crm/database"
	"crm/utils"
	"net/http"
)

func (h *Handlers) GetAll(w http.ResponseWriter, r *http.Request) {
	pipelineID, ok := pipelineID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	deals, err := h.Deals.ListByPipeline(ctx, pipelineID)
	if err != nil {
		utils.SendError(w, err, utils.CANNOT_FIND_DEALS_IN_MONGODB)
		return
	}

	utils.SendResponse(w, http.StatusOK, "", deals, 0)
}
