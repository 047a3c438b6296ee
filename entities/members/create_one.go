package members

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
	input := services.MemberInput{}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "", nil, utils.INVALID_REQUEST_DATA)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	member, err := h.Members.Add(ctx, input)
	if err != nil {
		utils.SendError(w, err, utils.CANNOT_INSERT_MEMBER_TO_MONGODB)
		return
	}

	h.Hub.Broadcast(ctx, realtime.Event{
		Action:  realtime.ACTION_CREATED,
		Entity:  realtime.ENTITY_MEMBER,
		ID:      member.ID.Hex(),
		Payload: member,
	})

	utils.SendResponse(w, http.StatusCreated, "", member, 0)
}
