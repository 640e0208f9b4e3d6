package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joefazee/veilbet/app/api"
	"github.com/joefazee/veilbet/app/auth"
	"github.com/joefazee/veilbet/app/markets"
	"github.com/joefazee/veilbet/internal/fhe"
	"github.com/joefazee/veilbet/internal/lock"
	"github.com/joefazee/veilbet/internal/logger"
	"github.com/joefazee/veilbet/internal/rail"
	"github.com/joefazee/veilbet/internal/sanitizer"
	"github.com/joefazee/veilbet/internal/validator"
	"github.com/joefazee/veilbet/models"
	"github.com/joefazee/veilbet/tests/suites"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type LedgerHandlerTestSuite struct {
	suites.SQLiteTestSuite
	router   *gin.Engine
	clock    *suites.Clock
	fhe      *fhe.LocalService
	caller   models.Address
	marketID uint64
}

func TestLedgerHandlers(t *testing.T) {
	suite.Run(t, new(LedgerHandlerTestSuite))
}

func (s *LedgerHandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.Require().NoError(validator.RegisterBindingRules())
}

func (s *LedgerHandlerTestSuite) SetupTest() {
	s.SQLiteTestSuite.SetupTest()
	s.clock = suites.NewClock(time.Now())
	s.fhe = fhe.NewLocalService(fhe.LocalOptions{})
	s.caller = models.Address{0xbe}

	fakeAuth := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			api.UnauthorizedResponse(c)
			return
		}
		auth.ContextSetCaller(c, s.caller)
		c.Next()
	}

	valueRail := rail.NewLedgerRail(s.DB, models.Address{})
	_, err := valueRail.Fund(s.T().Context(), s.caller, decimal.NewFromInt(1000))
	s.Require().NoError(err)

	s.router = gin.New()
	v1 := s.router.Group("/api/v1")
	marketService := markets.Init(v1, markets.Dependencies{
		DB:          s.DB,
		FHE:         s.fhe,
		Sanitizer:   sanitizer.NewHTMLStripper(),
		Logger:      logger.NewNullLogger(),
		RequireAuth: fakeAuth,
		Options:     []markets.Option{markets.WithClock(s.clock.Now)},
	})
	Init(v1, Dependencies{
		DB:          s.DB,
		Guard:       markets.NewGuard(s.DB, lock.NewKeyedMutex(), markets.NewRepository(s.DB)),
		FHE:         s.fhe,
		Rail:        valueRail,
		Logger:      logger.NewNullLogger(),
		RequireAuth: fakeAuth,
		Options:     []Option{WithClock(s.clock.Now)},
	})

	fee := 100
	m, err := marketService.CreateMarket(s.T().Context(), s.caller, &markets.CreateMarketRequest{
		Question:  "Will the river flood this spring?",
		CloseTime: s.clock.Now().Add(time.Hour),
		FeeBps:    &fee,
	})
	s.Require().NoError(err)
	s.marketID = m.ID
}

func (s *LedgerHandlerTestSuite) do(method, path string, body interface{}, authed bool) (*httptest.ResponseRecorder, api.Response) {
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

func (s *LedgerHandlerTestSuite) betBody(escrow uint64, yes bool) map[string]interface{} {
	ctx := s.T().Context()
	stake, err := s.fhe.EncryptUint64(ctx, escrow)
	s.Require().NoError(err)
	outcome, err := s.fhe.EncryptBool(ctx, yes)
	s.Require().NoError(err)
	return map[string]interface{}{
		"escrow_amount":     fmt.Sprintf("%d", escrow),
		"encrypted_stake":   stake.Hex(),
		"encrypted_outcome": outcome.Hex(),
	}
}

func (s *LedgerHandlerTestSuite) path(suffix string) string {
	return fmt.Sprintf("/api/v1/markets/%d%s", s.marketID, suffix)
}

func (s *LedgerHandlerTestSuite) TestPlaceAndReadBets() {
	w, resp := s.do(http.MethodPost, s.path("/bets"), s.betBody(40, true), true)
	s.Equal(http.StatusCreated, w.Code)
	s.True(resp.Success)

	w, _ = s.do(http.MethodPost, s.path("/bets"), s.betBody(60, false), true)
	s.Equal(http.StatusCreated, w.Code)

	w, resp = s.do(http.MethodGet, s.path("/bets/1"), nil, false)
	s.Equal(http.StatusOK, w.Code)
	data := resp.Data.(map[string]interface{})
	s.Equal("60", data["escrow_amount"])
	s.Equal(s.caller.Hex(), data["bettor"])

	w, resp = s.do(http.MethodGet, s.path("/bets"), nil, false)
	s.Equal(http.StatusOK, w.Code)
	s.Len(resp.Data, 2)
	s.Require().NotNil(resp.Meta)

	w, resp = s.do(http.MethodPost, s.path("/reconcile"), nil, false)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(true, resp.Data.(map[string]interface{})["consistent"])
}

func (s *LedgerHandlerTestSuite) TestPlaceBetErrors() {
	w, resp := s.do(http.MethodPost, s.path("/bets"), s.betBody(40, true), false)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.False(resp.Success)

	body := s.betBody(40, true)
	body["escrow_amount"] = "1.5"
	w, resp = s.do(http.MethodPost, s.path("/bets"), body, true)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("BAD_REQUEST", resp.Error.Code)

	w, resp = s.do(http.MethodPost, s.path("/bets"), s.betBody(5000, true), true)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal("INSUFFICIENT_BALANCE", resp.Error.Code)

	w, _ = s.do(http.MethodPost, "/api/v1/markets/99/bets", s.betBody(40, true), true)
	s.Equal(http.StatusNotFound, w.Code)

	s.clock.Advance(2 * time.Hour)
	w, resp = s.do(http.MethodPost, s.path("/bets"), s.betBody(40, true), true)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("MARKET_CLOSED", resp.Error.Code)

	w, _ = s.do(http.MethodGet, s.path("/bets/9"), nil, false)
	s.Equal(http.StatusNotFound, w.Code)
	w, _ = s.do(http.MethodGet, s.path("/bets/abc"), nil, false)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *LedgerHandlerTestSuite) TestReusedHandlesAreRejected() {
	body := s.betBody(40, true)
	w, _ := s.do(http.MethodPost, s.path("/bets"), body, true)
	s.Require().Equal(http.StatusCreated, w.Code)

	body["escrow_amount"] = "1"
	w, resp := s.do(http.MethodPost, s.path("/bets"), body, true)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("INVALID_CIPHERTEXT", resp.Error.Code)
}
