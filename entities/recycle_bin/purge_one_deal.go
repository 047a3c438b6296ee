package recyclebin

import (
	"context"
	"crm/database"
	"crm/entities/realtime"
	"crm/schemas"
	"crm/utils"
	"net/http"
)

func (h *Handlers) PurgeOneDeal(w http.ResponseWriter, r *http.Request) {
	item := schemas.RecycleItem{
		Kind:       schemas.RECYCLE_ITEM_DEAL,
		ID:         r.PathValue("dealId"),
		PipelineID: r.URL.Query().Get("pipeline_id"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	if err := h.RecycleBin.PermanentlyDelete(ctx, item); err != nil {
		sendItemError(w, err, utils.CANNOT_DELETE_DEAL_FROM_MONGODB)
		return
	}

	h.Hub.Broadcast(ctx, realtime.Event{
		Action:   realtime.ACTION_PURGED,
		Entity:   realtime.ENTITY_DEAL,
		ID:       item.ID,
		Pipeline: item.PipelineID,
	})

	w.WriteHeader(http.StatusOK)
}
