package services

import (
	"context"
	"errors"

	"github.com/RomanDaru/otazkomat/internal/models"

	"gorm.io/gorm"
)

// ErrQuestionNotFound is returned when a vote references a question that
// doesn't exist.
var ErrQuestionNotFound = errors.New("question not found")

// VoteService is the vote ledger: one upsertable vote per (question, user).
type VoteService struct {
	db *gorm.DB
}

func NewVoteService(gdb *gorm.DB) *VoteService {
	return &VoteService{db: gdb}
}

// CastVote creates the caller's vote or overwrites its polarity. The latest
// call always wins; votes are never deleted.
func (s *VoteService) CastVote(ctx context.Context, questionID, userID uint, isPositive bool) (*models.Vote, error) {
	var question models.Question
	if err := s.db.WithContext(ctx).First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}

	var vote models.Vote
	err := s.db.WithContext(ctx).
		Where("question_id = ? AND user_id = ?", questionID, userID).
		First(&vote).Error
	if err == nil {
		vote.IsPositive = isPositive
		if err := s.db.WithContext(ctx).Save(&vote).Error; err != nil {
			return nil, err
		}
		return &vote, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	vote = models.Vote{
		QuestionID: questionID,
		UserID:     userID,
		IsPositive: isPositive,
	}
	if err := s.db.WithContext(ctx).Create(&vote).Error; err != nil {
		return nil, err
	}
	return &vote, nil
}

// GetVote returns the user's existing vote, or nil when they haven't voted.
func (s *VoteService) GetVote(ctx context.Context, questionID, userID uint) (*models.Vote, error) {
	var vote models.Vote
	err := s.db.WithContext(ctx).
		Where("question_id = ? AND user_id = ?", questionID, userID).
		First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vote, nil
}

// CountVotes tallies the live vote rows for a question. Recomputed from
// scratch on every read so the counts can never drift from the ledger.
func (s *VoteService) CountVotes(ctx context.Context, questionID uint) (positive, negative int64, err error) {
	if err = s.db.WithContext(ctx).Model(&models.Vote{}).
		Where("question_id = ? AND is_positive = ?", questionID, true).
		Count(&positive).Error; err != nil {
		return 0, 0, err
	}
	if err = s.db.WithContext(ctx).Model(&models.Vote{}).
		Where("question_id = ? AND is_positive = ?", questionID, false).
		Count(&negative).Error; err != nil {
		return 0, 0, err
	}
	return positive, negative, nil
}
