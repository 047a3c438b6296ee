package members

import (
	"crm/entities/realtime"
	"crm/services"

	"go.uber.org/zap"
)

type Handlers struct {
	Members *services.MemberDirectory
	Hub     *realtime.Hub
	Logger  *zap.Logger
}

func New(svc *services.Services, hub *realtime.Hub, logger *zap.Logger) *Handlers {
	return &Handlers{Members: svc.Members, Hub: hub, Logger: logger}
}
