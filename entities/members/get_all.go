package members

import (
	"context"
	"crm/database"
	"crm/utils"
	"net/http"
)

func (h *Handlers) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	members, err := h.Members.List(ctx)
	if err != nil {
		utils.SendError(w, err, utils.CANNOT_FIND_MEMBERS_IN_MONGODB)
		return
	}

	utils.SendResponse(w, http.StatusOK, "", members, 0)
}
