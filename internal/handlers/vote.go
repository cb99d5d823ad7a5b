package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/RomanDaru/otazkomat/internal/middleware"
	"github.com/RomanDaru/otazkomat/internal/models"
	"github.com/RomanDaru/otazkomat/internal/services"
	"github.com/RomanDaru/otazkomat/internal/utils"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	service *services.VoteService
}

func NewVoteHandler(service *services.VoteService) *VoteHandler {
	return &VoteHandler{service: service}
}

type castVoteRequest struct {
	QuestionID uint  `json:"questionId"`
	IsPositive *bool `json:"isPositive"`
}

type voteResponse struct {
	ID         uint `json:"id"`
	QuestionID uint `json:"questionId"`
	UserID     uint `json:"userId"`
	IsPositive bool `json:"isPositive"`
}

func newVoteResponse(v *models.Vote) voteResponse {
	return voteResponse{
		ID:         v.ID,
		QuestionID: v.QuestionID,
		UserID:     v.UserID,
		IsPositive: v.IsPositive,
	}
}

// Cast handles POST /api/vote: upsert the caller's vote on a question.
func (h *VoteHandler) Cast(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req castVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.QuestionID == 0 || req.IsPositive == nil {
		Fail(c, http.StatusBadRequest, "Invalid request data")
		return
	}

	vote, err := h.service.CastVote(c.Request.Context(), req.QuestionID, user.ID, *req.IsPositive)
	if err != nil {
		if errors.Is(err, services.ErrQuestionNotFound) {
			Fail(c, http.StatusNotFound, "Question not found")
			return
		}
		log.Printf("Failed to process vote: %v", err)
		Fail(c, http.StatusInternalServerError, "Failed to process vote")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "vote": newVoteResponse(vote)})
}

// Get handles GET /api/vote?questionId=&userId=: fetch an existing vote so
// the client can render prior-vote state.
func (h *VoteHandler) Get(c *gin.Context) {
	questionID := utils.StringToInt(c.Query("questionId"))
	userID := utils.StringToInt(c.Query("userId"))
	if questionID <= 0 || userID <= 0 {
		Fail(c, http.StatusBadRequest, "Question ID and User ID are required")
		return
	}

	vote, err := h.service.GetVote(c.Request.Context(), uint(questionID), uint(userID))
	if err != nil {
		log.Printf("Failed to check vote: %v", err)
		Fail(c, http.StatusInternalServerError, "Failed to check vote")
		return
	}
	if vote == nil {
		c.JSON(http.StatusOK, gin.H{"vote": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vote": newVoteResponse(vote)})
}
