package members

import (
	"context"
	"crm/database"
	"crm/utils"
	"net/http"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func (h *Handlers) GetOne(w http.ResponseWriter, r *http.Request) {
	id, err := bson.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "", nil, utils.INVALID_MEMBER_ID_FORMAT)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	member, err := h.Members.Get(ctx, id)
	if utils.IsNotFoundError(err) {
		utils.SendResponse(w, http.StatusNotFound, "Membro não encontrado", nil, 0)
		return
	}
	if err != nil {
		utils.SendError(w, err, utils.CANNOT_FIND_MEMBERS_IN_MONGODB)
		return
	}

	utils.SendResponse(w, http.StatusOK, "", member, 0)
}
