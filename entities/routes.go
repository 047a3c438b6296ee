package entities

import (
	"crm/entities/deals"
	"crm/entities/leads"
	"crm/entities/members"
	"crm/entities/pipelines"
	"crm/entities/realtime"
	recyclebin "crm/entities/recycle_bin"
	"crm/services"
	"crm/utils"
	"net/http"

	"go.uber.org/zap"
)

type Health struct {
	Status      string `json:"status"`
	Consistency string `json:"stats_consistency"`
	Clients     int    `json:"ws_clients"`
}

func Register(mux *http.ServeMux, svc *services.Services, hub *realtime.Hub, logger *zap.Logger) {
	membersHandlers := members.New(svc, hub, logger)
	mux.HandleFunc("GET /v1/members", membersHandlers.GetAll)
	mux.HandleFunc("GET /v1/members/{id}", membersHandlers.GetOne)
	mux.HandleFunc("POST /v1/members", membersHandlers.CreateOne)
	mux.HandleFunc("PATCH /v1/members/{id}", membersHandlers.UpdateOne)
	mux.HandleFunc("DELETE /v1/members/{id}", membersHandlers.DeleteOne)

	pipelinesHandlers := pipelines.New(svc, hub, logger)
	mux.HandleFunc("GET /v1/pipelines", pipelinesHandlers.GetAll)
	mux.HandleFunc("GET /v1/pipelines/orphaned-deals", pipelinesHandlers.GetOrphanedDeals)
	mux.HandleFunc("GET /v1/pipelines/{id}", pipelinesHandlers.GetOne)
	mux.HandleFunc("POST /v1/pipelines", pipelinesHandlers.CreateOne)
	mux.HandleFunc("PATCH /v1/pipelines/{id}", pipelinesHandlers.UpdateOne)
	mux.HandleFunc("DELETE /v1/pipelines/{id}", pipelinesHandlers.DeleteOne)
	mux.HandleFunc("POST /v1/pipelines/{id}/recompute", pipelinesHandlers.RecomputeOne)

	dealsHandlers := deals.New(svc, hub, logger)
	mux.HandleFunc("GET /v1/pipelines/{id}/deals", dealsHandlers.GetAll)
	mux.HandleFunc("GET /v1/pipelines/{id}/deals/{dealId}", dealsHandlers.GetOne)
	mux.HandleFunc("POST /v1/pipelines/{id}/deals", dealsHandlers.CreateOne)
	mux.HandleFunc("PATCH /v1/pipelines/{id}/deals/{dealId}", dealsHandlers.UpdateOne)
	mux.HandleFunc("DELETE /v1/pipelines/{id}/deals/{dealId}", dealsHandlers.DeleteOne)
	mux.HandleFunc("POST /v1/pipelines/{id}/deals/{dealId}/move", dealsHandlers.MoveOne)
	mux.HandleFunc("POST /v1/pipelines/{id}/deals/{dealId}/restore", dealsHandlers.RestoreOne)

	leadsHandlers := leads.New(svc, hub, logger)
	mux.HandleFunc("GET /v1/leads", leadsHandlers.GetAll)
	mux.HandleFunc("GET /v1/leads/{id}", leadsHandlers.GetOne)
	mux.HandleFunc("POST /v1/leads", leadsHandlers.CreateOne)
	mux.HandleFunc("PATCH /v1/leads/{id}", leadsHandlers.UpdateOne)
	mux.HandleFunc("DELETE /v1/leads/{id}", leadsHandlers.DeleteOne)
	mux.HandleFunc("POST /v1/leads/{id}/restore", leadsHandlers.RestoreOne)
	mux.HandleFunc("POST /v1/leads/{id}/promote", leadsHandlers.PromoteOne)
	mux.HandleFunc("POST /v1/leads/import/legacy", leadsHandlers.ImportLegacy)

	recycleBinHandlers := recyclebin.New(svc, hub, logger)
	mux.HandleFunc("GET /v1/recycle-bin", recycleBinHandlers.GetAll)
	mux.HandleFunc("POST /v1/recycle-bin/restore", recycleBinHandlers.RestoreMany)
	mux.HandleFunc("POST /v1/recycle-bin/purge", recycleBinHandlers.PurgeMany)
	mux.HandleFunc("DELETE /v1/recycle-bin/deals/{dealId}", recycleBinHandlers.PurgeOneDeal)
	mux.HandleFunc("DELETE /v1/recycle-bin/leads/{id}", recycleBinHandlers.PurgeOneLead)

	mux.HandleFunc("GET /v1/ws/crm", hub.WebSocketHandler)
	mux.Handle("GET /v1/ws/pipelines/{id}", &realtime.BoardStream{Boards: svc.Boards, Logger: logger})

	mux.HandleFunc("GET /v1/health", func(w http.ResponseWriter, r *http.Request) {
		utils.SendResponse(w, http.StatusOK, "", Health{
			Status:      "ok",
			Consistency: string(svc.Stats.Mode()),
			Clients:     hub.ClientCount(),
		}, 0)
	})
}
