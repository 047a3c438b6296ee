package leads

import (
	"context"
	"crm/database"
	"crm/entities/realtime"
	"crm/schemas"
	"crm/services"
	"crm/utils"
	"net/http"
	"os"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

type LegacySource func(ctx context.Context, afterID int64, limit int) ([]schemas.LegacyLead, error)

type Handlers struct {
	Leads  *services.LeadDesk
	Hub    *realtime.Hub
	Logger *zap.Logger
	Legacy LegacySource
}

func New(svc *services.Services, hub *realtime.Hub, logger *zap.Logger) *Handlers {
	return &Handlers{
		Leads:  svc.Leads,
		Hub:    hub,
		Logger: logger,
		Legacy: func(ctx context.Context, afterID int64, limit int) ([]schemas.LegacyLead, error) {
			return database.ReadLegacyLeads(ctx, os.Getenv(utils.MYSQL_URI), afterID, limit)
		},
	}
}

func leadID(w http.ResponseWriter, r *http.Request) (bson.ObjectID, bool) {
	id, err := bson.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "", nil, utils.INVALID_LEAD_ID_FORMAT)
		return bson.ObjectID{}, false
	}
	return id, true
}
