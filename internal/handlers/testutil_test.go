package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/RomanDaru/otazkomat/internal/config"
	"github.com/RomanDaru/otazkomat/internal/db"
	"github.com/RomanDaru/otazkomat/internal/middleware"
	"github.com/RomanDaru/otazkomat/internal/models"
	"github.com/RomanDaru/otazkomat/internal/services"
	"github.com/RomanDaru/otazkomat/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	gormsqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
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
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gdb))
	return gdb
}

// newTestRouter builds the production route table with an injectable answer
// generator. The shared trending cache is purged so pages never leak between
// tests.
func newTestRouter(t *testing.T, gdb *gorm.DB, oracle services.AnswerGenerator) *gin.Engine {
	t.Helper()
	utils.GetCache().Purge()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.SessionsMany([]string{middleware.SessionName, middleware.QuotaSessionName}, store))
	r.Use(middleware.LoadUser(gdb))

	voteService := services.NewVoteService(gdb)
	askService := services.NewAskService(gdb, voteService, oracle)

	askHandler := NewAskHandler(askService)
	voteHandler := NewVoteHandler(voteService)
	historyHandler := NewHistoryHandler(gdb)
	trendingHandler := NewTrendingHandler(gdb)
	authHandler := NewAuthHandler(gdb, config.Config{SiteURL: "http://localhost:8080"})

	api := r.Group("/api")
	api.POST("/ask", askHandler.Ask)
	api.GET("/trending", trendingHandler.List)

	authorized := api.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/history", historyHandler.List)
		authorized.GET("/vote", voteHandler.Get)
		authorized.POST("/vote", voteHandler.Cast)
		authorized.GET("/me", authHandler.Me)
	}

	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/logout", authHandler.Logout)
	}

	return r
}

// testClient drives the router like a browser would, carrying cookies across
// requests.
type testClient struct {
	t       *testing.T
	router  *gin.Engine
	cookies map[string]*http.Cookie
}

func newTestClient(t *testing.T, router *gin.Engine) *testClient {
	return &testClient{t: t, router: router, cookies: make(map[string]*http.Cookie)}
}

func (c *testClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return w
}

func (c *testClient) register(email, password string) uint {
	c.t.Helper()
	w := c.do(http.MethodPost, "/auth/register", gin.H{"email": email, "password": password})
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		User struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	decodeBody(c.t, w, &body)
	return body.User.ID
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func seedQuestion(t *testing.T, gdb *gorm.DB, content string, userID *uint, askCount int, lastAsked time.Time) *models.Question {
	t.Helper()
	question := models.Question{
		Content:   content,
		Answer:    "odpoveď na " + content,
		AskCount:  askCount,
		UserID:    userID,
		LastAsked: lastAsked,
	}
	require.NoError(t, gdb.Create(&question).Error)
	return &question
}

func seedVote(t *testing.T, gdb *gorm.DB, questionID, userID uint, isPositive bool) {
	t.Helper()
	require.NoError(t, gdb.Create(&models.Vote{
		QuestionID: questionID,
		UserID:     userID,
		IsPositive: isPositive,
	}).Error)
}
