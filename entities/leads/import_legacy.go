package leads

import (
	"context"
	"crm/database"
	"crm/entities/realtime"
	"crm/services"
	"crm/utils"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

const (
	LEGACY_IMPORT_DEFAULT_LIMIT = 100
	LEGACY_IMPORT_MAX_LIMIT     = 500
)

type ImportReport struct {
	LastLegacyID int64                   `json:"last_legacy_id"`
	Imported     int                     `json:"imported"`
	Failed       int                     `json:"failed"`
	Results      []services.ImportResult `json:"results"`
}

// ImportLegacy pages leads out of the legacy MySQL table and creates them as
// imported leads. Callers continue with ?after_id=<last_legacy_id>.
func (h *Handlers) ImportLegacy(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	afterID := int64(0)
	if value := query.Get("after_id"); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil || parsed < 0 {
			utils.SendResponse(w, http.StatusBadRequest, "", nil, utils.INVALID_REQUEST_DATA)
			return
		}
		afterID = parsed
	}

	limit := LEGACY_IMPORT_DEFAULT_LIMIT
	if value := query.Get("limit"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			utils.SendResponse(w, http.StatusBadRequest, "", nil, utils.INVALID_REQUEST_DATA)
			return
		}
		limit = min(parsed, LEGACY_IMPORT_MAX_LIMIT)
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	legacy, err := h.Legacy(ctx, afterID, limit)
	if err != nil {
		h.Logger.Error("legacy lead read failed", zap.Int64("after_id", afterID), zap.Error(err))
		utils.SendResponse(w, http.StatusBadGateway, "", nil, utils.CANNOT_CONNECT_TO_MYSQL)
		return
	}

	inputs := make([]services.DealInput, len(legacy))
	report := ImportReport{LastLegacyID: afterID}
	for i, lead := range legacy {
		inputs[i] = services.LegacyLeadInput(lead)
		report.LastLegacyID = max(report.LastLegacyID, lead.ID)
	}

	report.Results = h.Leads.Import(ctx, inputs)
	for _, result := range report.Results {
		if result.OK {
			report.Imported++
		} else {
			report.Failed++
		}
	}

	if report.Imported > 0 {
		h.Hub.Broadcast(ctx, realtime.Event{
			Action:  realtime.ACTION_IMPORTED,
			Entity:  realtime.ENTITY_LEAD,
			Details: fmt.Sprintf("%d imported, %d failed", report.Imported, report.Failed),
		})
	}

	utils.SendResponse(w, http.StatusOK, "", report, 0)
}
