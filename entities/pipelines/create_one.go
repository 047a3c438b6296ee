package pipelines

import (
	"context"
	"crm/database"
	"crm/entities/realtime"
	"crm/schemas"
	"crm/services"
	"crm/utils"
	"encoding/json"
	"net/http"
)

// CreateOne creates the pipeline from the body. With ?default=true the body is
// ignored and the standard five stage pipeline is created.
func (h *Handlers) CreateOne(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), database.MONGO_TIMEOUT)
	defer cancel()

	var pipeline schemas.Pipeline
	var err error

	if r.URL.Query().Get("default") == "true" {
		pipeline, err = h.Pipelines.CreateDefault(ctx)
	} else {
		input := services.PipelineInput{}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			utils.SendResponse(w, http.StatusBadRequest, "", nil, utils.INVALID_REQUEST_DATA)
			return
		}
		pipeline, err = h.Pipelines.Create(ctx, input)
	}

	if err != nil {
		utils.SendError(w, err, utils.CANNOT_INSERT_PIPELINE_TO_MONGODB)
		return
	}

	h.Hub.Broadcast(ctx, realtime.Event{
		Action:   realtime.ACTION_CREATED,
		Entity:   realtime.ENTITY_PIPELINE,
		ID:       pipeline.ID.Hex(),
		Pipeline: pipeline.ID.Hex(),
		Payload:  pipeline,
	})

	utils.SendResponse(w, http.StatusCreated, "", pipeline, 0)
}
