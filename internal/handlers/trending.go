package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/RomanDaru/otazkomat/internal/models"
	"github.com/RomanDaru/otazkomat/internal/services"
	"github.com/RomanDaru/otazkomat/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TrendingHandler struct {
	db *gorm.DB
}

func NewTrendingHandler(gdb *gorm.DB) *TrendingHandler {
	return &TrendingHandler{db: gdb}
}

type trendingItem struct {
	ID          uint   `json:"id"`
	QuestionID  uint   `json:"questionId"`
	Content     string `json:"content"`
	Answer      string `json:"answer"`
	AnswerHTML  string `json:"answerHtml"`
	AskCount    int    `json:"askCount"`
	IsAnonymous bool   `json:"isAnonymous"`
	Source      string `json:"source"`
}

// List handles GET /api/trending: questions asked today, most asked first.
// Pages are cached for a minute; trending tolerates slightly stale data.
func (h *TrendingHandler) List(c *gin.Context) {
	page := parsePage(c)
	pageSize := parsePageSize(c, defaultTrendingPageSize)

	cacheKey := fmt.Sprintf("trending:page:%d:size:%d", page, pageSize)
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		if data, ok := cached.(gin.H); ok {
			c.JSON(http.StatusOK, data)
			return
		}
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var total int64
	if err := h.db.Model(&models.Question{}).
		Where("last_asked >= ?", startOfDay).
		Count(&total).Error; err != nil {
		log.Printf("Failed to fetch trending questions: %v", err)
		Fail(c, http.StatusInternalServerError, "Failed to fetch trending questions")
		return
	}

	var questions []models.Question
	if err := h.db.
		Where("last_asked >= ?", startOfDay).
		Order("ask_count DESC, last_asked DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&questions).Error; err != nil {
		log.Printf("Failed to fetch trending questions: %v", err)
		Fail(c, http.StatusInternalServerError, "Failed to fetch trending questions")
		return
	}

	items := make([]trendingItem, 0, len(questions))
	for _, q := range questions {
		items = append(items, trendingItem{
			ID:          q.ID,
			QuestionID:  q.ID,
			Content:     q.Content,
			Answer:      q.Answer,
			AnswerHTML:  utils.RenderMarkdown(q.Answer),
			AskCount:    q.AskCount,
			IsAnonymous: q.UserID == nil,
			Source:      services.AnswerSource,
		})
	}

	data := gin.H{
		"questions":  items,
		"pagination": newPagination(page, pageSize, total),
	}
	utils.GetCache().Set(cacheKey, data, time.Minute)

	c.JSON(http.StatusOK, data)
}
