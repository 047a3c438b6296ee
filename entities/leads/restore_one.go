package leads

import (
	"context"
	"crm/database"
	"crm/entities/realtime"
	"crm/utils"
	"net/http"
)

func (h *Handlers) RestoreOne(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	lead, err := h.Leads.Restore(ctx, id)
	if utils.IsNotFoundError(err) {
		utils.SendResponse(w, http.StatusNotFound, "Lead não encontrado", nil, 0)
		return
	}
	if err != nil {
		utils.SendError(w, err, utils.CANNOT_UPDATE_LEAD_IN_MONGODB)
		return
	}

	h.Hub.Broadcast(ctx, realtime.Event{
		Action:  realtime.ACTION_RESTORED,
		Entity:  realtime.ENTITY_LEAD,
		ID:      lead.ID.Hex(),
		Payload: lead,
	})

	utils.SendResponse(w, http.StatusOK, "", lead, 0)
}
