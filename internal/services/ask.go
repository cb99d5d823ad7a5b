package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/RomanDaru/otazkomat/internal/models"

	"gorm.io/gorm"
)

var (
	// ErrQuestionRequired means the submitted question was missing or blank.
	ErrQuestionRequired = errors.New("question is required")
	// ErrQuotaExceeded means an anonymous caller already used their free
	// question and tried to ask a brand-new one.
	ErrQuotaExceeded = errors.New("free question already used")
)

// LoginPromptSK is the message shown to anonymous callers who exhausted
// their free question.
const LoginPromptSK = "Pre ďalšie otázky sa, prosím, prihláste pomocou Google účtu."

// loginSuffixSK is appended to the free answer an anonymous caller gets.
const loginSuffixSK = "\n\nPre ďalšie otázky sa, prosím, prihláste pomocou Google účtu. " +
	"Prihlásení používatelia majú prístup k histórii svojich otázok a ďalším funkciám."

// AskService implements the dedup/regeneration policy: reuse a stored answer,
// regenerate it, or create a new question — with the one-free-question gate
// for anonymous callers. The oracle is invoked at most once per call.
type AskService struct {
	db     *gorm.DB
	votes  *VoteService
	oracle AnswerGenerator
}

func NewAskService(gdb *gorm.DB, votes *VoteService, oracle AnswerGenerator) *AskService {
	return &AskService{db: gdb, votes: votes, oracle: oracle}
}

type AskResult struct {
	QuestionID    uint
	Answer        string
	AskCount      int
	IsNew         bool
	RequiresLogin bool
}

// Ask resolves one submitted question. userID is nil for anonymous callers;
// usedFreeQuestion reflects the client's quota cookie and is passed in
// explicitly so the policy stays free of request plumbing.
func (s *AskService) Ask(ctx context.Context, content string, userID *uint, usedFreeQuestion bool) (*AskResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrQuestionRequired
	}

	// Exact content match, case-sensitive. Matches the historical behavior;
	// see DESIGN.md before changing the normalization.
	var existing models.Question
	err := s.db.WithContext(ctx).Where("content = ?", content).First(&existing).Error
	if err == nil {
		return s.askExisting(ctx, &existing, userID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// The free-question gate applies to brand-new questions only. Known
	// questions above are always answerable, cookie or not.
	if userID == nil && usedFreeQuestion {
		return nil, ErrQuotaExceeded
	}

	answer, err := s.oracle.GenerateAnswer(ctx, content)
	if err != nil {
		return nil, err
	}

	// The row is created only after generation succeeded, so a failed oracle
	// call leaves no partial state behind.
	question := models.Question{
		Content:   content,
		Answer:    answer,
		AskCount:  1,
		UserID:    userID,
		LastAsked: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&question).Error; err != nil {
		return nil, err
	}

	result := &AskResult{
		QuestionID: question.ID,
		Answer:     answer,
		AskCount:   1,
		IsNew:      true,
	}
	if userID == nil {
		result.Answer += loginSuffixSK
		result.RequiresLogin = true
	}
	return result, nil
}

// askExisting serves a repeat ask: bump counters, then either return the
// stored answer or regenerate it when the crowd disliked it.
func (s *AskService) askExisting(ctx context.Context, question *models.Question, userID *uint) (*AskResult, error) {
	if err := s.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ?", question.ID).
		UpdateColumns(map[string]interface{}{
			"ask_count":  gorm.Expr("ask_count + ?", 1),
			"last_asked": time.Now(),
		}).Error; err != nil {
		return nil, err
	}
	question.AskCount++

	positive, negative, err := s.votes.CountVotes(ctx, question.ID)
	if err != nil {
		return nil, err
	}

	// Regeneration needs both a downvoted answer and a logged-in asker.
	// Anonymous callers always get the stored answer as-is.
	if negative > positive && userID != nil {
		answer, err := s.oracle.GenerateAnswer(ctx, question.Content)
		if err != nil {
			return nil, err
		}
		if err := s.db.WithContext(ctx).Model(&models.Question{}).
			Where("id = ?", question.ID).
			Update("answer", answer).Error; err != nil {
			return nil, err
		}
		return &AskResult{
			QuestionID: question.ID,
			Answer:     answer,
			AskCount:   question.AskCount,
		}, nil
	}

	return &AskResult{
		QuestionID: question.ID,
		Answer:     question.Answer,
		AskCount:   question.AskCount,
	}, nil
}
