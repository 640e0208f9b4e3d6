package markets

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joefazee/veilbet/app/api"
	"github.com/joefazee/veilbet/app/auth"
	"github.com/joefazee/veilbet/internal/fhe"
	"github.com/joefazee/veilbet/internal/logger"
	"github.com/joefazee/veilbet/internal/sanitizer"
	"github.com/joefazee/veilbet/internal/validator"
	"github.com/joefazee/veilbet/models"
	"github.com/joefazee/veilbet/tests/suites"
	"github.com/stretchr/testify/suite"
)

type MarketHandlerTestSuite struct {
	suites.SQLiteTestSuite
	router *gin.Engine
	clock  *suites.Clock
	caller models.Address
}

func TestMarketHandlers(t *testing.T) {
	suite.Run(t, new(MarketHandlerTestSuite))
}

func (s *MarketHandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.Require().NoError(validator.RegisterBindingRules())
}

func (s *MarketHandlerTestSuite) SetupTest() {
	s.SQLiteTestSuite.SetupTest()
	s.clock = suites.NewClock(time.Now())
	s.caller = models.Address{0xaa}

	fakeAuth := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			api.UnauthorizedResponse(c)
			return
		}
		auth.ContextSetCaller(c, s.caller)
		c.Next()
	}

	s.router = gin.New()
	Init(s.router.Group("/api/v1"), Dependencies{
		DB:          s.DB,
		FHE:         fhe.NewLocalService(fhe.LocalOptions{}),
		Sanitizer:   sanitizer.NewHTMLStripper(),
		Logger:      logger.NewNullLogger(),
		RequireAuth: fakeAuth,
		Options:     []Option{WithClock(s.clock.Now)},
	})
}

func (s *MarketHandlerTestSuite) do(method, path string, body interface{}, authed bool) (*httptest.ResponseRecorder, api.Response) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer test")
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp api.Response
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func (s *MarketHandlerTestSuite) createBody(question string) map[string]interface{} {
	return map[string]interface{}{
		"question":   question,
		"close_time": s.clock.Now().Add(2 * time.Hour).Format(time.RFC3339),
		"fee_bps":    200,
	}
}

func (s *MarketHandlerTestSuite) TestCreateAndGet() {
	w, resp := s.do(http.MethodPost, "/api/v1/markets", s.createBody("<b>Will BTC close above 100k?</b>"), true)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.True(resp.Success)

	data := resp.Data.(map[string]interface{})
	s.Equal("Will BTC close above 100k?", data["question"])
	s.Equal(s.caller.Hex(), data["creator"])

	w, resp = s.do(http.MethodGet, "/api/v1/markets/1", nil, false)
	s.Equal(http.StatusOK, w.Code)
	info := resp.Data.(map[string]interface{})
	s.Equal("open", info["state"])
	s.Equal(false, info["settled"])
	s.NotContains(info, "creator")

	_, resp = s.do(http.MethodGet, "/api/v1/markets/1?full=true", nil, false)
	s.Contains(resp.Data.(map[string]interface{}), "encrypted_yes_pool")

	w, resp = s.do(http.MethodGet, "/api/v1/markets", nil, false)
	s.Equal(http.StatusOK, w.Code)
	s.Len(resp.Data.([]interface{}), 1)

	w, resp = s.do(http.MethodGet, "/api/v1/markets/1/events", nil, false)
	s.Equal(http.StatusOK, w.Code)
	s.Len(resp.Data.([]interface{}), 1)
}

func (s *MarketHandlerTestSuite) TestCreateRequiresAuth() {
	w, resp := s.do(http.MethodPost, "/api/v1/markets", s.createBody("Will BTC close above 100k?"), false)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("UNAUTHORIZED", resp.Error.Code)
}

func (s *MarketHandlerTestSuite) TestCreateValidation() {
	w, resp := s.do(http.MethodPost, "/api/v1/markets", map[string]interface{}{"question": "x"}, true)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("BAD_REQUEST", resp.Error.Code)

	w, resp = s.do(http.MethodPost, "/api/v1/markets", s.createBody("<i></i>"), true)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("VALIDATION_ERROR", resp.Error.Code)

	body := s.createBody("Will BTC close above 100k?")
	body["close_time"] = s.clock.Now().Add(-time.Hour).Format(time.RFC3339)
	w, resp = s.do(http.MethodPost, "/api/v1/markets", body, true)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("INVALID_CLOSE_TIME", resp.Error.Code)
}

func (s *MarketHandlerTestSuite) TestNotFoundAndBadID() {
	w, resp := s.do(http.MethodGet, "/api/v1/markets/7", nil, false)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("MARKET_NOT_FOUND", resp.Error.Code)

	w, resp = s.do(http.MethodGet, "/api/v1/markets/abc", nil, false)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("BAD_REQUEST", resp.Error.Code)

	w, _ = s.do(http.MethodGet, "/api/v1/markets?state=bogus", nil, false)
	s.Equal(http.StatusBadRequest, w.Code)
}
