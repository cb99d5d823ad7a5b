package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/RomanDaru/otazkomat/internal/db"
	"github.com/RomanDaru/otazkomat/internal/models"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type fakeOracle struct {
	answer string
	err    error
	calls  int
}

func (f *fakeOracle) GenerateAnswer(ctx context.Context, question string) (string, error) {
	_ = ctx
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return gdb
}

func newAskService(gdb *gorm.DB, oracle AnswerGenerator) *AskService {
	return NewAskService(gdb, NewVoteService(gdb), oracle)
}

func uintPtr(v uint) *uint { return &v }

func TestAsk_NewQuestionCreatesRow(t *testing.T) {
	gdb := openTestDB(t)
	oracle := &fakeOracle{answer: "Bratislava."}
	svc := newAskService(gdb, oracle)

	result, err := svc.Ask(context.Background(), "Aké je hlavné mesto Slovenska?", uintPtr(1), false)
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if !result.IsNew {
		t.Fatalf("expected a new question")
	}
	if result.Answer != "Bratislava." {
		t.Fatalf("unexpected answer: %q", result.Answer)
	}
	if result.AskCount != 1 {
		t.Fatalf("expected askCount 1, got %d", result.AskCount)
	}
	if result.RequiresLogin {
		t.Fatalf("logged-in asker must not get a login prompt")
	}
	if oracle.calls != 1 {
		t.Fatalf("expected 1 oracle call, got %d", oracle.calls)
	}

	var question models.Question
	if err := gdb.First(&question, result.QuestionID).Error; err != nil {
		t.Fatalf("load question: %v", err)
	}
	if question.UserID == nil || *question.UserID != 1 {
		t.Fatalf("expected owner 1, got %v", question.UserID)
	}
}

func TestAsk_RepeatAskIncrementsSingleRow(t *testing.T) {
	gdb := openTestDB(t)
	oracle := &fakeOracle{answer: "42"}
	svc := newAskService(gdb, oracle)

	for i := 0; i < 3; i++ {
		result, err := svc.Ask(context.Background(), "Koľko je odpoveď na všetko?", uintPtr(1), false)
		if err != nil {
			t.Fatalf("ask %d: %v", i, err)
		}
		if result.AskCount != i+1 {
			t.Fatalf("ask %d: expected askCount %d, got %d", i, i+1, result.AskCount)
		}
	}

	// Repeat asks never invoke the oracle when the answer is in good standing.
	if oracle.calls != 1 {
		t.Fatalf("expected 1 oracle call, got %d", oracle.calls)
	}

	var count int64
	gdb.Model(&models.Question{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single row, got %d", count)
	}
}

func TestAsk_LookupIsCaseSensitive(t *testing.T) {
	gdb := openTestDB(t)
	svc := newAskService(gdb, &fakeOracle{answer: "odpoveď"})

	if _, err := svc.Ask(context.Background(), "Prečo je nebo modré?", uintPtr(1), false); err != nil {
		t.Fatalf("ask: %v", err)
	}
	if _, err := svc.Ask(context.Background(), "prečo je nebo modré?", uintPtr(1), false); err != nil {
		t.Fatalf("ask: %v", err)
	}

	var count int64
	gdb.Model(&models.Question{}).Count(&count)
	if count != 2 {
		t.Fatalf("expected two rows for differently-cased content, got %d", count)
	}
}

func seedQuestionWithVotes(t *testing.T, gdb *gorm.DB, content string, positive, negative int) *models.Question {
	t.Helper()
	question := models.Question{
		Content:   content,
		Answer:    "stará odpoveď",
		AskCount:  1,
		LastAsked: time.Now(),
	}
	if err := gdb.Create(&question).Error; err != nil {
		t.Fatalf("seed question: %v", err)
	}

	userID := uint(100)
	for i := 0; i < positive; i++ {
		userID++
		if err := gdb.Create(&models.Vote{QuestionID: question.ID, UserID: userID, IsPositive: true}).Error; err != nil {
			t.Fatalf("seed vote: %v", err)
		}
	}
	for i := 0; i < negative; i++ {
		userID++
		if err := gdb.Create(&models.Vote{QuestionID: question.ID, UserID: userID, IsPositive: false}).Error; err != nil {
			t.Fatalf("seed vote: %v", err)
		}
	}
	return &question
}

func TestAsk_RegeneratesWhenDownvotedAndLoggedIn(t *testing.T) {
	gdb := openTestDB(t)
	oracle := &fakeOracle{answer: "nová odpoveď"}
	svc := newAskService(gdb, oracle)

	question := seedQuestionWithVotes(t, gdb, "Ako sa varí kapustnica?", 1, 2)

	result, err := svc.Ask(context.Background(), question.Content, uintPtr(1), false)
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if oracle.calls != 1 {
		t.Fatalf("expected regeneration to call the oracle once, got %d", oracle.calls)
	}
	if result.Answer != "nová odpoveď" {
		t.Fatalf("expected the regenerated answer, got %q", result.Answer)
	}

	var stored models.Question
	if err := gdb.First(&stored, question.ID).Error; err != nil {
		t.Fatalf("load question: %v", err)
	}
	if stored.Answer != "nová odpoveď" {
		t.Fatalf("expected answer overwritten, got %q", stored.Answer)
	}
	if stored.AskCount != 2 {
		t.Fatalf("expected askCount 2, got %d", stored.AskCount)
	}
}

func TestAsk_AnonymousNeverRegenerates(t *testing.T) {
	gdb := openTestDB(t)
	oracle := &fakeOracle{answer: "nová odpoveď"}
	svc := newAskService(gdb, oracle)

	question := seedQuestionWithVotes(t, gdb, "Ako sa varí kapustnica?", 0, 3)

	result, err := svc.Ask(context.Background(), question.Content, nil, true)
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if oracle.calls != 0 {
		t.Fatalf("anonymous ask must not call the oracle, got %d calls", oracle.calls)
	}
	if result.Answer != "stará odpoveď" {
		t.Fatalf("expected the stored answer, got %q", result.Answer)
	}
}

func TestAsk_FreeQuestionGate(t *testing.T) {
	gdb := openTestDB(t)
	oracle := &fakeOracle{answer: "odpoveď"}
	svc := newAskService(gdb, oracle)

	// First anonymous ask goes through and flags the response.
	result, err := svc.Ask(context.Background(), "Prvá otázka?", nil, false)
	if err != nil {
		t.Fatalf("first ask: %v", err)
	}
	if !result.RequiresLogin {
		t.Fatalf("expected requiresLogin on the anonymous answer")
	}
	if !strings.Contains(result.Answer, "prihláste pomocou Google účtu") {
		t.Fatalf("expected the login prompt suffix, got %q", result.Answer)
	}

	// A second brand-new question is denied without touching the store or
	// the oracle.
	callsBefore := oracle.calls
	_, err = svc.Ask(context.Background(), "Druhá otázka?", nil, true)
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if oracle.calls != callsBefore {
		t.Fatalf("denied ask must not call the oracle")
	}
	var count int64
	gdb.Model(&models.Question{}).Count(&count)
	if count != 1 {
		t.Fatalf("denied ask must not create a row, got %d rows", count)
	}

	// A known question stays answerable even after the quota is used.
	repeat, err := svc.Ask(context.Background(), "Prvá otázka?", nil, true)
	if err != nil {
		t.Fatalf("repeat ask: %v", err)
	}
	if repeat.AskCount != 2 {
		t.Fatalf("expected askCount 2, got %d", repeat.AskCount)
	}
}

func TestAsk_OracleFailureLeavesNoRow(t *testing.T) {
	gdb := openTestDB(t)
	svc := newAskService(gdb, &fakeOracle{err: ErrNoAnswer})

	_, err := svc.Ask(context.Background(), "Bude zajtra pršať?", uintPtr(1), false)
	if !errors.Is(err, ErrNoAnswer) {
		t.Fatalf("expected generation error, got %v", err)
	}

	var count int64
	gdb.Model(&models.Question{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no rows after a failed generation, got %d", count)
	}
}

func TestAsk_BlankQuestionRejected(t *testing.T) {
	gdb := openTestDB(t)
	oracle := &fakeOracle{answer: "odpoveď"}
	svc := newAskService(gdb, oracle)

	if _, err := svc.Ask(context.Background(), "   ", uintPtr(1), false); !errors.Is(err, ErrQuestionRequired) {
		t.Fatalf("expected ErrQuestionRequired, got %v", err)
	}
	if oracle.calls != 0 {
		t.Fatalf("blank question must not call the oracle")
	}
}
