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

func (h *Handlers) CreateOne(w http.ResponseWriter, r *http.Request) {
	input := services.DealInput{}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "", nil, utils.INVALID_REQUEST_DATA)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	lead, err := h.Leads.Create(ctx, input)
	if err != nil {
		utils.SendError(w, err, utils.CANNOT_INSERT_LEAD_TO_MONGODB)
		return
	}

	h.Hub.Broadcast(ctx, realtime.Event{
		Action:  realtime.ACTION_CREATED,
		Entity:  realtime.ENTITY_LEAD,
		ID:      lead.ID.Hex(),
		Payload: lead,
	})

	utils.SendResponse(w, http.StatusCreated, "", lead, 0)
}
