package recyclebin

import (
	"context"
	"crm/database"
	"crm/utils"
	"net/http"
)

func (h *Handlers) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	contents, err := h.RecycleBin.Contents(ctx)
	if err != nil {
		utils.SendError(w, err, utils.CANNOT_FIND_RECYCLE_BIN_IN_MONGODB)
		return
	}

	utils.SendResponse(w, http.StatusOK, "", contents, 0)
}
