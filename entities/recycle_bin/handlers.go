package recyclebin

import (
	"crm/entities/realtime"
	"crm/schemas"
	"crm/services"
	"crm/utils"
	"net/http"

	"go.uber.org/zap"
)

type Handlers struct {
	RecycleBin *services.RecycleBin
	Hub        *realtime.Hub
	Logger     *zap.Logger
}

func New(svc *services.Services, hub *realtime.Hub, logger *zap.Logger) *Handlers {
	return &Handlers{RecycleBin: svc.RecycleBin, Hub: hub, Logger: logger}
}

type BulkRequest struct {
	Items []schemas.RecycleItem `json:"items"`
}

type BulkReport struct {
	Succeeded int                         `json:"succeeded"`
	Failed    int                         `json:"failed"`
	Results   []schemas.RecycleItemResult `json:"results"`
}

func newBulkReport(results []schemas.RecycleItemResult) BulkReport {
	report := BulkReport{Results: results}
	for _, result := range results {
		if result.OK {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}
	return report
}

func itemEntity(kind schemas.RecycleItemKind) string {
	if kind == schemas.RECYCLE_ITEM_DEAL {
		return realtime.ENTITY_DEAL
	}
	return realtime.ENTITY_LEAD
}

func sendItemError(w http.ResponseWriter, err error, internalErrorCode int) {
	if utils.IsNotFoundError(err) {
		utils.SendResponse(w, http.StatusNotFound, "Registro não encontrado na lixeira", nil, 0)
		return
	}
	utils.SendError(w, err, internalErrorCode)
}
