package recyclebin

import (
	"context"
	"crm/database"
	"crm/entities/realtime"
	"crm/schemas"
	"crm/utils"
	"net/http"
)

func (h *Handlers) PurgeOneLead(w http.ResponseWriter, r *http.Request) {
	item := schemas.RecycleItem{
		Kind: schemas.RECYCLE_ITEM_LEAD,
		ID:   r.PathValue("id"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	if err := h.RecycleBin.PermanentlyDelete(ctx, item); err != nil {
		sendItemError(w, err, utils.CANNOT_DELETE_LEAD_FROM_MONGODB)
		return
	}

	h.Hub.Broadcast(ctx, realtime.Event{
		Action: realtime.ACTION_PURGED,
		Entity: realtime.ENTITY_LEAD,
		ID:     item.ID,
	})

	w.WriteHeader(http.StatusOK)
}
