package members

import (
	"context"
	"crm/database"
	"crm/entities/realtime"
	"crm/services"
	"crm/utils"
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func (h *Handlers) UpdateOne(w http.ResponseWriter, r *http.Request) {
	id, err := bson.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "", nil, utils.INVALID_MEMBER_ID_FORMAT)
		return
	}

	patch := services.MemberPatch{}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "", nil, utils.INVALID_REQUEST_DATA)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	member, err := h.Members.Update(ctx, id, patch)
	if utils.IsNotFoundError(err) {
		utils.SendResponse(w, http.StatusNotFound, "Membro não encontrado", nil, 0)
		return
	}
	if err != nil {
		utils.SendError(w, err, utils.CANNOT_UPDATE_MEMBER_IN_MONGODB)
		return
	}

	h.Hub.Broadcast(ctx, realtime.Event{
		Action:  realtime.ACTION_UPDATED,
		Entity:  realtime.ENTITY_MEMBER,
		ID:      member.ID.Hex(),
		Payload: member,
	})

	utils.SendResponse(w, http.StatusOK, "", member, 0)
}
