package pipelines

import (
	"context"
	"crm/database"
	"crm/utils"
	"net/http"
)

func (h *Handlers) GetOrphanedDeals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	deals, err := h.Pipelines.Orphaned(ctx)
	if err != nil {
		utils.SendError(w, err, utils.CANNOT_FIND_DEALS_IN_MONGODB)
		return
	}

	utils.SendResponse(w, http.StatusOK, "", deals, 0)
}
