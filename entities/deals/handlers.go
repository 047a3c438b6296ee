package deals

import (
	"crm/entities/realtime"
	"crm/services"
	"crm/utils"
	"net/http"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

type Handlers struct {
	Deals  *services.DealLedger
	Hub    *realtime.Hub
	Logger *zap.Logger
}

func New(svc *services.Services, hub *realtime.Hub, logger *zap.Logger) *Handlers {
	return &Handlers{Deals: svc.Deals, Hub: hub, Logger: logger}
}

func pipelineID(w http.ResponseWriter, r *http.Request) (bson.ObjectID, bool) {
	id, err := bson.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "", nil, utils.INVALID_PIPELINE_ID_FORMAT)
		return bson.ObjectID{}, false
	}
	return id, true
}

func dealIDs(w http.ResponseWriter, r *http.Request) (bson.ObjectID, bson.ObjectID, bool) {
	pipeline, ok := pipelineID(w, r)
	if !ok {
		return bson.ObjectID{}, bson.ObjectID{}, false
	}

	deal, err := bson.ObjectIDFromHex(r.PathValue("dealId"))
	if err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "", nil, utils.INVALID_DEAL_ID_FORMAT)
		return bson.ObjectID{}, bson.ObjectID{}, false
	}

	return pipeline, deal, true
}
