package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/RomanDaru/otazkomat/internal/middleware"
	"github.com/RomanDaru/otazkomat/internal/services"
	"github.com/RomanDaru/otazkomat/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Quota cookie: marks that an anonymous client used its free question.
const (
	askedFreeQuestionKey = "asked_free_question"
	quotaCookieMaxAge    = 30 * 24 * 60 * 60 // 30 days
)

type AskHandler struct {
	service *services.AskService
}

func NewAskHandler(service *services.AskService) *AskHandler {
	return &AskHandler{service: service}
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer        string `json:"answer"`
	AnswerHTML    string `json:"answerHtml"`
	Score         int    `json:"score"`
	Source        string `json:"source"`
	QuestionID    uint   `json:"questionId"`
	AskCount      int    `json:"askCount"`
	RequiresLogin bool   `json:"requiresLogin,omitempty"`
}

// Ask handles POST /api/ask.
func (h *AskHandler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		Fail(c, http.StatusBadRequest, "Question is required")
		return
	}

	var userID *uint
	if user := middleware.CurrentUser(c); user != nil {
		userID = &user.ID
	}

	quota := sessions.DefaultMany(c, middleware.QuotaSessionName)
	usedFreeQuestion := quota.Get(askedFreeQuestionKey) != nil

	result, err := h.service.Ask(c.Request.Context(), req.Question, userID, usedFreeQuestion)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrQuestionRequired):
			Fail(c, http.StatusBadRequest, "Question is required")
		case errors.Is(err, services.ErrQuotaExceeded):
			c.JSON(http.StatusForbidden, gin.H{
				"error":         services.LoginPromptSK,
				"requiresLogin": true,
			})
		default:
			log.Printf("Failed to process question: %v", err)
			Fail(c, http.StatusInternalServerError, "Failed to process question")
		}
		return
	}

	if result.IsNew && userID == nil {
		// Mark the free question as used. Re-marking is harmless.
		quota.Options(sessions.Options{
			Path:     "/",
			MaxAge:   quotaCookieMaxAge,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		quota.Set(askedFreeQuestionKey, true)
		if err := quota.Save(); err != nil {
			log.Printf("Failed to save quota cookie: %v", err)
		}
	}

	c.JSON(http.StatusOK, askResponse{
		Answer:        result.Answer,
		AnswerHTML:    utils.RenderMarkdown(result.Answer),
		Score:         1,
		Source:        services.AnswerSource,
		QuestionID:    result.QuestionID,
		AskCount:      result.AskCount,
		RequiresLogin: result.RequiresLogin,
	})
}
