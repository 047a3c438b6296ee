package leads

import (
	"context"
	"crm/database"
	"crm/entities/realtime"
	"crm/services"
	"crm/utils"
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// PromoteOne turns the lead into a deal. The body is optional; without it the
// lead lands in the first stage of the oldest pipeline.
func (h *Handlers) PromoteOne(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}

	input := services.PromoteInput{}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil && !errors.Is(err, io.EOF) {
		utils.SendResponse(w, http.StatusBadRequest, "", nil, utils.INVALID_REQUEST_DATA)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	deal, err := h.Leads.Promote(ctx, id, input)
	if utils.IsNotFoundError(err) {
		utils.SendResponse(w, http.StatusNotFound, "Lead ou funil não encontrado", nil, 0)
		return
	}
	if err != nil && deal.ID.IsZero() {
		utils.SendError(w, err, utils.CANNOT_PROMOTE_LEAD)
		return
	}

	h.Hub.Broadcast(ctx, realtime.Event{
		Action:   realtime.ACTION_PROMOTED,
		Entity:   realtime.ENTITY_LEAD,
		ID:       id.Hex(),
		Pipeline: deal.PipelineID.Hex(),
		Payload:  deal,
	})

	if err != nil {
		utils.SendError(w, err, utils.CANNOT_PROMOTE_LEAD)
		return
	}

	utils.SendResponse(w, http.StatusCreated, "", deal, 0)
}
