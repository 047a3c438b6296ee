package pipelines

import (
	"crm/entities/realtime"
	"crm/services"

	"go.uber.org/zap"
)

type Handlers struct {
	Pipelines *services.PipelineRegistry
	Stats     *services.StatsSynchronizer
	Hub       *realtime.Hub
	Logger    *zap.Logger
}

func New(svc *services.Services, hub *realtime.Hub, logger *zap.Logger) *Handlers {
	return &Handlers{Pipelines: svc.Pipelines, Stats: svc.Stats, Hub: hub, Logger: logger}
}
