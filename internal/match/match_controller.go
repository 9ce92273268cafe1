package match

import (
	"net/http"
	"time"

	"github.com/DhavalSuthar-24/padel/internal/common"
	"github.com/DhavalSuthar-24/padel/internal/middleware"
	"github.com/DhavalSuthar-24/padel/pkg/responses"
	"github.com/gin-gonic/gin"
)

// MatchController handles match-related HTTP requests
type MatchController struct {
	service *Service
	sweeper *Sweeper
}

func NewMatchController(service *Service, sweeper *Sweeper) *MatchController {
	return &MatchController{service: service, sweeper: sweeper}
}

// SweepResponse reports a manual sweep.
type SweepResponse struct {
	Deleted int `json:"deleted"`
}

func currentUser(c *gin.Context) (uint, bool) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return 0, false
	}
	return userID, true
}

func matchID(c *gin.Context) (uint, bool) {
	id, ok := common.ParseIDParam(c, "id")
	if !ok {
		responses.BadRequest(c, "Invalid match ID")
	}
	return id, ok
}

func (mc *MatchController) respond(c *gin.Context, status int, message string, m *Match) {
	view, err := mc.service.View(c.Request.Context(), m)
	if err != nil {
		responses.FromError(c, err)
		return
	}
	responses.SendSuccess(c, status, message, view)
}

func (mc *MatchController) respondList(c *gin.Context, message string, ms []Match) {
	views, err := mc.service.Views(c.Request.Context(), ms)
	if err != nil {
		responses.FromError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, message, views)
}

// CreateMatch godoc
// @Summary      Create a match
// @Description  The caller becomes organizer and player 1. Other players are named by username.
// @Tags         Matches
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateMatchRequest true "Match details"
// @Success      201 {object} responses.SuccessResponse{data=MatchView}
// @Failure      400 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse "Player not found"
// @Failure      502 {object} responses.ErrorResponse "Weather lookup failed"
// @Router       /matches [post]
func (mc *MatchController) CreateMatch(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationError(c, err)
		return
	}

	m, err := mc.service.Create(c.Request.Context(), userID, CreateInput{
		Player2: req.Player2Username,
		Player3: req.Player3Username,
		Player4: req.Player4Username,
		Date:    req.Date,
		Time:    req.Time,
		City:    req.City,
	})
	if err != nil {
		responses.FromError(c, err)
		return
	}
	mc.respond(c, http.StatusCreated, "Match created successfully", m)
}

// GetMatches godoc
// @Summary      List my matches
// @Description  Matches the caller organizes or plays in, newest first.
// @Tags         Matches
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} responses.SuccessResponse{data=[]MatchView}
// @Router       /matches [get]
func (mc *MatchController) GetMatches(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	ms, err := mc.service.List(c.Request.Context(), userID)
	if err != nil {
		responses.FromError(c, err)
		return
	}
	mc.respondList(c, "Matches retrieved successfully", ms)
}

// GetJoinableMatches godoc
// @Summary      List joinable matches
// @Description  Matches with at least one free slot, newest schedule first.
// @Tags         Matches
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} responses.SuccessResponse{data=[]MatchView}
// @Router       /matches/joinable [get]
func (mc *MatchController) GetJoinableMatches(c *gin.Context) {
	ms, err := mc.service.ListJoinable(c.Request.Context())
	if err != nil {
		responses.FromError(c, err)
		return
	}
	mc.respondList(c, "Joinable matches retrieved successfully", ms)
}

// GetMatchByID godoc
// @Summary      Get a match
// @Tags         Matches
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Match ID"
// @Success      200 {object} responses.SuccessResponse{data=MatchView}
// @Failure      404 {object} responses.ErrorResponse
// @Router       /matches/{id} [get]
func (mc *MatchController) GetMatchByID(c *gin.Context) {
	id, ok := matchID(c)
	if !ok {
		return
	}
	m, err := mc.service.Get(c.Request.Context(), id)
	if err != nil {
		responses.FromError(c, err)
		return
	}
	mc.respond(c, http.StatusOK, "Match retrieved successfully", m)
}

// JoinMatch godoc
// @Summary      Join a match
// @Description  Takes the lowest free slot among 2, 3 and 4.
// @Tags         Matches
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Match ID"
// @Success      200 {object} responses.SuccessResponse{data=MatchView}
// @Failure      404 {object} responses.ErrorResponse
// @Failure      409 {object} responses.ErrorResponse "Already joined or match full"
// @Router       /matches/join/{id} [put]
func (mc *MatchController) JoinMatch(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := matchID(c)
	if !ok {
		return
	}
	m, err := mc.service.Join(c.Request.Context(), userID, id)
	if err != nil {
		responses.FromError(c, err)
		return
	}
	mc.respond(c, http.StatusOK, "Joined match successfully", m)
}

// UpdateMatch godoc
// @Summary      Update a match
// @Description  Organizer only. A null player username empties the slot. is_saved with results saves the score.
// @Tags         Matches
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Match ID"
// @Param        request body UpdateMatchRequest true "Fields to change"
// @Success      200 {object} responses.SuccessResponse{data=MatchView}
// @Failure      400 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Failure      409 {object} responses.ErrorResponse
// @Router       /matches/{id} [put]
func (mc *MatchController) UpdateMatch(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := matchID(c)
	if !ok {
		return
	}
	var req UpdateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationError(c, err)
		return
	}

	m, err := mc.service.Update(c.Request.Context(), userID, id, req.Patch())
	if err != nil {
		responses.FromError(c, err)
		return
	}
	mc.respond(c, http.StatusOK, "Match updated successfully", m)
}

// SaveMatch godoc
// @Summary      Save match results
// @Description  Any participant, once. Left scores are the caller's team.
// @Tags         Matches
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Match ID"
// @Param        request body SaveMatchRequest true "Three sets"
// @Success      200 {object} responses.SuccessResponse{data=MatchView}
// @Failure      400 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Failure      409 {object} responses.ErrorResponse "Already saved"
// @Router       /matches/savematches/{id} [put]
func (mc *MatchController) SaveMatch(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := matchID(c)
	if !ok {
		return
	}
	var req SaveMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationError(c, err)
		return
	}

	m, err := mc.service.Save(c.Request.Context(), userID, id, req.Results)
	if err != nil {
		responses.FromError(c, err)
		return
	}
	mc.respond(c, http.StatusOK, "Results saved successfully", m)
}

// DeleteMatch godoc
// @Summary      Delete a match
// @Tags         Matches
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Match ID"
// @Success      200 {object} responses.SuccessResponse
// @Failure      404 {object} responses.ErrorResponse
// @Router       /matches/{id} [delete]
func (mc *MatchController) DeleteMatch(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := matchID(c)
	if !ok {
		return
	}
	if err := mc.service.Delete(c.Request.Context(), userID, id); err != nil {
		responses.FromError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Match deleted successfully", nil)
}

// SweepMatches godoc
// @Summary      Sweep expired matches
// @Description  Admin only. Deletes matches whose start has passed with a slot still empty.
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} responses.SuccessResponse{data=SweepResponse}
// @Router       /admin/matches/sweep [post]
func (mc *MatchController) SweepMatches(c *gin.Context) {
	deleted, err := mc.sweeper.Sweep(c.Request.Context(), time.Now())
	if err != nil {
		responses.FromError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Sweep finished", SweepResponse{Deleted: deleted})
}
