package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/Kromaric/workshop-2025-2026-epsi/internal/game"
	"github.com/Kromaric/workshop-2025-2026-epsi/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// GameWSHandler runs the per-connection loop: register, snapshot, dispatch
// inbound actions, guaranteed cleanup on every exit path.
type GameWSHandler struct {
	hub     *ws.Hub
	manager *game.StateManager
	engine  *game.Engine
}

func NewGameWSHandler(hub *ws.Hub, manager *game.StateManager, engine *game.Engine) *GameWSHandler {
	return &GameWSHandler{hub: hub, manager: manager, engine: engine}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type inboundMessage struct {
	Action         string `json:"action"`
	Message        string `json:"message"`
	Code           string `json:"code"`
	HieroglyphCode string `json:"hieroglyph_code"`
}

// HandleWebSocket godoc
// @Summary      WebSocket connection for game state updates
// @Description  Connect via WebSocket for the turn token, chat and puzzle progress
// @Tags         websocket
// @Param        team_id path string true "Team ID"
// @Param        player_id path string true "Player slot (team1 or team2)"
// @Router       /ws/{team_id}/{player_id} [get]
func (h *GameWSHandler) HandleWebSocket(c *gin.Context) {
	teamID := c.Param("team_id")
	playerID := c.Param("player_id")
	if teamID == "" || !h.manager.Roster().Contains(playerID) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid team or player id"})
		return
	}

	if err := h.manager.EnsureTeam(teamID); err != nil {
		log.Printf("ws: ensure team %s: %v", teamID, err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "temporary failure, try again"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		if len(h.hub.LivePlayers(teamID)) == 0 {
			h.manager.Drop(teamID)
		}
		return
	}

	connID := h.hub.Register(teamID, playerID, conn)
	defer func() {
		h.hub.Unregister(teamID, playerID, connID)
		if len(h.hub.LivePlayers(teamID)) == 0 {
			h.manager.Drop(teamID)
		}
	}()

	// A teammate disconnecting between the EnsureTeam above and Register can
	// evict the team state. Re-ensure now that this connection counts as
	// live, so the state can no longer disappear underneath us.
	if err := h.manager.EnsureTeam(teamID); err != nil {
		log.Printf("ws: ensure team %s: %v", teamID, err)
		return
	}

	if err := h.manager.PushSnapshot(teamID, playerID); err != nil {
		log.Printf("ws: snapshot for %s/%s: %v", teamID, playerID, err)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("ws: malformed message from %s/%s: %v", teamID, playerID, err)
			continue
		}

		h.dispatch(teamID, playerID, msg)
	}
}

func (h *GameWSHandler) dispatch(teamID, playerID string, msg inboundMessage) {
	switch {
	case msg.Action == "button_click":
		if err := h.manager.ToggleToken(teamID, playerID); err != nil {
			log.Printf("ws: toggle for %s/%s: %v", teamID, playerID, err)
		}

	case msg.Action == "send_message":
		_, err := h.manager.AppendChat(teamID, playerID, msg.Message)
		if err != nil && !errors.Is(err, game.ErrEmptyMessage) {
			log.Printf("ws: chat for %s/%s: %v", teamID, playerID, err)
		}

	case strings.HasPrefix(msg.Action, "validate_"):
		puzzleName := strings.TrimPrefix(msg.Action, "validate_")
		answer := msg.Code
		if answer == "" {
			answer = msg.HieroglyphCode
		}

		result, err := h.engine.Validate(teamID, playerID, puzzleName, answer)
		if err != nil {
			log.Printf("ws: validate %s for %s/%s: %v", puzzleName, teamID, playerID, err)
			result = game.Result{
				Reason:  game.ReasonRetryLater,
				Message: "Temporary failure, please try again",
			}
		}
		h.hub.SendTo(teamID, playerID, game.ResultEvent{Type: puzzleName + "_result", Result: result})

	default:
		// Unknown actions are ignored; the connection stays open.
		log.Printf("ws: unknown action %q from %s/%s", msg.Action, teamID, playerID)
	}
}
