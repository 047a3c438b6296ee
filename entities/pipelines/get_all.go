package pipelines

import (
	"context"
	"crm/database"
	"crm/utils"
	"net/http"
)

func (h *Handlers) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	pipelines, err := h.Pipelines.List(ctx)
	if err != nil {
		utils.SendError(w, err, utils.CANNOT_FIND_PIPELINES_IN_MONGODB)
		return
	}

	utils.SendResponse(w, http.StatusOK, "", pipelines, 0)
}
