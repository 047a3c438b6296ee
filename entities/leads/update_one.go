package leads

import (
	"context"
	"crm/database"
	"crm/entities/realtime"
	"crm/services"
	"crm/utils"
	"encoding/json"
	"net/http"
)

func (h *Handlers) UpdateOne(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}

	patch := services.DealPatch{}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "", nil, utils.INVALID_REQUEST_DATA)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	lead, err := h.Leads.Update(ctx, id, patch)
	if utils.IsNotFoundError(err) {
		utils.SendResponse(w, http.StatusNotFound, "Lead não encontrado", nil, 0)
		return
	}
	if err != nil {
		utils.SendError(w, err, utils.CANNOT_UPDATE_LEAD_IN_MONGODB)
		return
	}

	h.Hub.Broadcast(ctx, realtime.Event{
		Action:  realtime.ACTION_UPDATED,
		Entity:  realtime.ENTITY_LEAD,
		ID:      lead.ID.Hex(),
		Payload: lead,
	})

	utils.SendResponse(w, http.StatusOK, "", lead, 0)
}
