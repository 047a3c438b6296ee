package members

import (
	"context"
	"crm/database"
	"crm/entities/realtime"
	"crm/utils"
	"net/http"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func (h *Handlers) DeleteOne(w http.ResponseWriter, r *http.Request) {
	id, err := bson.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "", nil, utils.INVALID_MEMBER_ID_FORMAT)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	err = h.Members.Delete(ctx, id)
	if utils.IsNotFoundError(err) {
		utils.SendResponse(w, http.StatusNotFound, "Membro não encontrado", nil, 0)
		return
	}
	if err != nil {
		utils.SendError(w, err, utils.CANNOT_DELETE_MEMBER_FROM_MONGODB)
		return
	}

	h.Hub.Broadcast(ctx, realtime.Event{
		Action: realtime.ACTION_DELETED,
		Entity: realtime.ENTITY_MEMBER,
		ID:     id.Hex(),
	})

	w.WriteHeader(http.StatusOK)
}
