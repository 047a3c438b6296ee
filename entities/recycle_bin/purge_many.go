package recyclebin

import (
	"context"
	"crm/database"
	"crm/entities/realtime"
	"crm/utils"
	"encoding/json"
	"net/http"
)

func (h *Handlers) PurgeMany(w http.ResponseWriter, r *http.Request) {
	request := BulkRequest{}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || len(request.Items) == 0 {
		utils.SendResponse(w, http.StatusBadRequest, "", nil, utils.INVALID_REQUEST_DATA)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	report := newBulkReport(h.RecycleBin.BulkPermanentDelete(ctx, request.Items))

	for i, result := range report.Results {
		if !result.OK {
			continue
		}
		h.Hub.Broadcast(ctx, realtime.Event{
			Action:   realtime.ACTION_PURGED,
			Entity:   itemEntity(result.Kind),
			ID:       result.ID,
			Pipeline: request.Items[i].PipelineID,
		})
	}

	utils.SendResponse(w, http.StatusOK, "", report, 0)
}
