package leads

import (
	"context"
	"crm/database"
	"crm/utils"
	"net/http"
)

func (h *Handlers) GetOne(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	lead, err := h.Leads.Get(ctx, id)
	if utils.IsNotFoundError(err) {
		utils.SendResponse(w, http.StatusNotFound, "Lead não encontrado", nil, 0)
		return
	}
	if err != nil {
		utils.SendError(w, err, utils.CANNOT_FIND_LEADS_IN_MONGODB)
		return
	}

	utils.SendResponse(w, http.StatusOK, "", lead, 0)
}
