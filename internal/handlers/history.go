package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/RomanDaru/otazkomat/internal/middleware"
	"github.com/RomanDaru/otazkomat/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HistoryHandler struct {
	db *gorm.DB
}

func NewHistoryHandler(gdb *gorm.DB) *HistoryHandler {
	return &HistoryHandler{db: gdb}
}

type voteSummary struct {
	Positive int64 `json:"positive"`
	Negative int64 `json:"negative"`
	Total    int64 `json:"total"` // positive - negative
}

type historyItem struct {
	ID          uint        `json:"id"`
	Content     string      `json:"content"`
	Answer      string      `json:"answer"`
	AskCount    int         `json:"askCount"`
	LastAsked   time.Time   `json:"lastAsked"`
	CreatedAt   time.Time   `json:"createdAt"`
	VoteSummary voteSummary `json:"voteSummary"`
}

// List handles GET /api/history: the caller's own questions, paginated and
// sortable, each annotated with a live vote tally.
func (h *HistoryHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)

	page := parsePage(c)
	pageSize := parsePageSize(c, defaultHistoryPageSize)

	order := "last_asked DESC, created_at DESC"
	if c.Query("sortBy") == "popular" {
		order = "ask_count DESC, last_asked DESC"
	}

	var total int64
	if err := h.db.Model(&models.Question{}).
		Where("user_id = ?", user.ID).
		Count(&total).Error; err != nil {
		log.Printf("Failed to fetch user history: %v", err)
		Fail(c, http.StatusInternalServerError, "Failed to fetch user history")
		return
	}

	var questions []models.Question
	if err := h.db.
		Where("user_id = ?", user.ID).
		Order(order).
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&questions).Error; err != nil {
		log.Printf("Failed to fetch user history: %v", err)
		Fail(c, http.StatusInternalServerError, "Failed to fetch user history")
		return
	}

	summaries, err := fillVoteSummaries(h.db, questions)
	if err != nil {
		log.Printf("Failed to fetch user history: %v", err)
		Fail(c, http.StatusInternalServerError, "Failed to fetch user history")
		return
	}

	items := make([]historyItem, 0, len(questions))
	for _, q := range questions {
		items = append(items, historyItem{
			ID:          q.ID,
			Content:     q.Content,
			Answer:      q.Answer,
			AskCount:    q.AskCount,
			LastAsked:   q.LastAsked,
			CreatedAt:   q.CreatedAt,
			VoteSummary: summaries[q.ID],
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"questions":  items,
		"pagination": newPagination(page, pageSize, total),
	})
}

// fillVoteSummaries batch-counts vote rows for a page of questions.
func fillVoteSummaries(gdb *gorm.DB, questions []models.Question) (map[uint]voteSummary, error) {
	summaries := make(map[uint]voteSummary, len(questions))
	if len(questions) == 0 {
		return summaries, nil
	}

	questionIDs := make([]uint, len(questions))
	for i, q := range questions {
		questionIDs[i] = q.ID
	}

	type tallyRow struct {
		QuestionID uint
		IsPositive bool
		Count      int64
	}
	var rows []tallyRow
	if err := gdb.Model(&models.Vote{}).
		Select("question_id, is_positive, COUNT(*) as count").
		Where("question_id IN ?", questionIDs).
		Group("question_id, is_positive").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		s := summaries[row.QuestionID]
		if row.IsPositive {
			s.Positive = row.Count
		} else {
			s.Negative = row.Count
		}
		summaries[row.QuestionID] = s
	}
	for id, s := range summaries {
		s.Total = s.Positive - s.Negative
		summaries[id] = s
	}
	return summaries, nil
}
