package gateway

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
	"github.com/joefazee/veilbet/app/markets"
	"github.com/joefazee/veilbet/internal/fhe"
	"github.com/joefazee/veilbet/internal/lock"
	"github.com/joefazee/veilbet/internal/logger"
	"github.com/joefazee/veilbet/internal/validator"
	"github.com/joefazee/veilbet/models"
	"github.com/joefazee/veilbet/tests/suites"
	"github.com/stretchr/testify/suite"
)

type GatewayHandlerTestSuite struct {
	suites.SQLiteTestSuite
	router   *gin.Engine
	clock    *suites.Clock
	fhe      *fhe.LocalService
	marketID uint64
}

func TestGatewayHandlers(t *testing.T) {
	suite.Run(t, new(GatewayHandlerTestSuite))
}

func (s *GatewayHandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.Require().NoError(validator.RegisterBindingRules())
}

func (s *GatewayHandlerTestSuite) SetupTest() {
	s.SQLiteTestSuite.SetupTest()
	s.clock = suites.NewClock(time.Now())
	s.fhe = fhe.NewLocalService(fhe.LocalOptions{Manual: true})

	config := GetDefaultConfig()
	config.EncryptHelper = true
	marketRepo := markets.NewRepository(s.DB)
	locker := lock.NewKeyedMutex()

	s.router = gin.New()
	Init(s.router.Group("/api/v1"), Dependencies{
		DB:      s.DB,
		Config:  config,
		Guard:   markets.NewGuard(s.DB, locker, marketRepo),
		Locker:  locker,
		FHE:     s.fhe,
		Logger:  logger.NewNullLogger(),
		Options: []Option{WithClock(s.clock.Now)},
	})

	yes, err := s.fhe.Zero(s.T().Context())
	s.Require().NoError(err)
	no, err := s.fhe.Zero(s.T().Context())
	s.Require().NoError(err)
	m := &models.Market{
		Question:         "Will the vote pass this week?",
		CloseTime:        s.clock.Now().Add(time.Minute),
		FeeBps:           100,
		State:            models.MarketStateOpen,
		Creator:          models.Address{0xc0},
		EncryptedYesPool: yes,
		EncryptedNoPool:  no,
	}
	s.Require().NoError(marketRepo.Create(s.T().Context(), m))
	s.marketID = m.ID
}

func (s *GatewayHandlerTestSuite) do(method, path string, body interface{}) (*httptest.ResponseRecorder, api.Response) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp api.Response
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func (s *GatewayHandlerTestSuite) TestDecryptionFlow() {
	path := fmt.Sprintf("/api/v1/markets/%d/decryption", s.marketID)

	w, resp := s.do(http.MethodPost, path, nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("MARKET_STILL_OPEN", resp.Error.Code)

	s.clock.Advance(time.Minute)

	w, _ = s.do(http.MethodGet, path, nil)
	s.Equal(http.StatusConflict, w.Code)

	w, resp = s.do(http.MethodPost, path, nil)
	s.Equal(http.StatusAccepted, w.Code)
	s.Equal(string(models.MarketStateDecryptionRequested), resp.Data.(map[string]interface{})["state"])

	w, resp = s.do(http.MethodGet, path, nil)
	s.Equal(http.StatusAccepted, w.Code)
	s.Equal("5", w.Header().Get("Retry-After"))
	s.Equal(false, resp.Data.(map[string]interface{})["ready"])

	s.fhe.ReleaseAll()
	w, resp = s.do(http.MethodGet, path, nil)
	s.Equal(http.StatusOK, w.Code)
	data := resp.Data.(map[string]interface{})
	s.Equal(true, data["ready"])
	s.Equal("0", data["yes_pool"])
	s.Equal("0", data["no_pool"])

	w, _ = s.do(http.MethodPost, fmt.Sprintf("/api/v1/markets/%d/bets/0/reveal", s.marketID), nil)
	s.Equal(http.StatusConflict, w.Code)
}

func (s *GatewayHandlerTestSuite) TestEncryptHelper() {
	w, resp := s.do(http.MethodPost, "/api/v1/fhe/encrypt", map[string]string{"type": "uint64", "value": "7"})
	s.Equal(http.StatusCreated, w.Code)
	handle := resp.Data.(map[string]interface{})["handle"].(string)
	_, err := fhe.ParseHandle(handle)
	s.NoError(err)

	w, resp = s.do(http.MethodPost, "/api/v1/fhe/encrypt", map[string]string{"type": "string", "value": "7"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("BAD_REQUEST", resp.Error.Code)
}
