package realtime

import (
	"crm/services"
	"crm/utils"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

type BoardMessage struct {
	Action string          `json:"action"`
	Board  *services.Board `json:"board,omitempty"`
}

type BoardStream struct {
	Boards *services.LiveBoards
	Logger *zap.Logger
}

// ServeHTTP streams board snapshots of one pipeline. The feed lives exactly as
// long as the socket.
func (s *BoardStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pipelineID, err := bson.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		utils.SendResponse(w, http.StatusBadRequest, "", nil, utils.INVALID_PIPELINE_ID_FORMAT)
		return
	}

	feed, err := s.Boards.Open(r.Context(), pipelineID)
	if err != nil {
		utils.SendError(w, err, utils.CANNOT_OPEN_BOARD_FEED)
		return
	}
	defer feed.Close()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case board, ok := <-feed.C:
			if !ok {
				if errors.Is(feed.Err(), services.ErrPipelineRemoved) {
					conn.WriteJSON(BoardMessage{Action: "pipeline.deleted"})
				}
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(BoardMessage{Action: "snapshot", Board: &board}); err != nil {
				s.Logger.Debug("board stream write failed", zap.String("pipeline_id", pipelineID.Hex()), zap.Error(err))
				return
			}
		}
	}
}
