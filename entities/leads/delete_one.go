package leads

import (
	"context"
	"crm/database"
	"crm/entities/realtime"
	"crm/utils"
	"net/http"
)

func (h *Handlers) DeleteOne(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	err := h.Leads.Delete(ctx, id)
	if utils.IsNotFoundError(err) {
		utils.SendResponse(w, http.StatusNotFound, "Lead não encontrado", nil, 0)
		return
	}
	if err != nil {
		utils.SendError(w, err, utils.CANNOT_DELETE_LEAD_FROM_MONGODB)
		return
	}

	h.Hub.Broadcast(ctx, realtime.Event{
		Action: realtime.ACTION_DELETED,
		Entity: realtime.ENTITY_LEAD,
		ID:     id.Hex(),
	})

	w.WriteHeader(http.StatusOK)
}
