package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Kromaric/workshop-2025-2026-epsi/internal/store"

	"github.com/gin-gonic/gin"
)

// AdminHandler exposes the read-only back-office views over the durable
// store, plus team delete/reset. None of it touches the realtime core.
type AdminHandler struct {
	store *store.Store
}

func NewAdminHandler(s *store.Store) *AdminHandler {
	return &AdminHandler{store: s}
}

// ListTeams godoc
// @Summary      List all teams
// @Description  Get every team with its score and completion state
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} models.Team
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/admin/teams [get]
func (h *AdminHandler) ListTeams(c *gin.Context) {
	teams, err := h.store.ListTeams()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, teams)
}

// GetTeam godoc
// @Summary      Get a team
// @Description  Get one team with its players and puzzle progress
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Team ID"
// @Success      200 {object} models.Team
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/admin/teams/{id} [get]
func (h *AdminHandler) GetTeam(c *gin.Context) {
	team, err := h.store.TeamDetail(c.Param("id"))
	if errors.Is(err, store.ErrTeamNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "team not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, team)
}

// Leaderboard godoc
// @Summary      Leaderboard
// @Description  Teams ranked by score, finished teams first
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Max entries" default(10)
// @Success      200 {array} store.LeaderboardEntry
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/admin/leaderboard [get]
func (h *AdminHandler) Leaderboard(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		limit = 10
	}

	entries, err := h.store.Leaderboard(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Stats godoc
// @Summary      Global statistics
// @Description  Aggregate counts and scores across all teams
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} store.GlobalStats
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/admin/stats/global [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.store.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// TeamMessages godoc
// @Summary      Team chat transcript
// @Description  Most recent chat messages for one team, oldest first
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        team_id path string true "Team ID"
// @Param        limit query int false "Max messages" default(100)
// @Success      200 {array} models.ChatMessage
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/admin/messages/{team_id} [get]
func (h *AdminHandler) TeamMessages(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	messages, err := h.store.TeamMessages(c.Param("team_id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, messages)
}

// DeleteTeam godoc
// @Summary      Delete a team
// @Description  Remove a team and everything attached to it
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Team ID"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/admin/teams/{id} [delete]
func (h *AdminHandler) DeleteTeam(c *gin.Context) {
	teamID := c.Param("id")
	err := h.store.DeleteTeam(teamID)
	if errors.Is(err, store.ErrTeamNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "team not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "team " + teamID + " deleted"})
}

// ResetTeam godoc
// @Summary      Reset a team
// @Description  Wipe a team's progress, chat and token state, keeping the team itself
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Team ID"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/admin/teams/{id}/reset [post]
func (h *AdminHandler) ResetTeam(c *gin.Context) {
	teamID := c.Param("id")
	err := h.store.ResetTeam(teamID)
	if errors.Is(err, store.ErrTeamNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "team not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "team " + teamID + " progress reset"})
}
