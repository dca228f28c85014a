package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/bugg-bot/internal/artifact"
	"github.com/wfunc/bugg-bot/internal/config"
	"github.com/wfunc/bugg-bot/internal/game"
	"github.com/wfunc/bugg-bot/internal/game/catalog"
	"github.com/wfunc/bugg-bot/internal/middleware"
	"github.com/wfunc/bugg-bot/internal/repository"
	"github.com/wfunc/bugg-bot/internal/service"
	"github.com/wfunc/bugg-bot/internal/utils"
	"go.uber.org/zap"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	} `json:"error"`
}

type RouterTestSuite struct {
	suite.Suite
	sched  *game.ManualScheduler
	router *Router
}

func (s *RouterTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	cfg := config.Default()

	s.sched = game.NewManualScheduler(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	registry := game.NewRegistry(catalog.New(cfg.Game), catalog.RegistryConfig(cfg.Game),
		game.WithScheduler(s.sched),
		game.WithClock(s.sched.Now),
		game.WithRNG(utils.NewRand(5)))

	acfg := artifact.DefaultConfig()
	acfg.Rules.Location = time.UTC
	store, err := artifact.Open(ctx, acfg, nil, artifact.WithClock(s.sched.Now), artifact.WithRNG(utils.NewRand(6)))
	s.Require().NoError(err)

	db := repository.SetupTestDB(s.T())
	services := service.NewServices(cfg.Game, registry, store, repository.NewManager(db), zap.NewNop())
	s.router = NewRouter(services, Options{DB: db}, zap.NewNop())
}

func (s *RouterTestSuite) do(method, path string, body interface{}) (int, envelope) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.GetEngine().ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func (s *RouterTestSuite) state(env envelope) game.State {
	var st struct {
		game.State
		Board json.RawMessage `json:"board"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &st))
	return st.State
}

func (s *RouterTestSuite) TestHealth() {
	code, _ := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, code)
}

func (s *RouterTestSuite) TestOpenAPIDocument() {
	w := httptest.NewRecorder()
	s.router.GetEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi", nil))
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Header().Get("Content-Type"), "application/yaml")
	s.Contains(w.Body.String(), "/api/v1/games/{key}/moves")
	s.Contains(w.Body.String(), "/api/v1/artifact/disturb")

	w = httptest.NewRecorder()
	s.router.GetEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/ui", nil))
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "url: '/openapi'")
}

func (s *RouterTestSuite) TestGameLifecycle() {
	code, env := s.do(http.MethodPost, "/api/v1/games", gin.H{"key": "g:c", "kind": "tictactoe", "players": []string{"alice", "bob"}})
	s.Require().Equal(http.StatusOK, code)
	s.Equal(game.KindTicTacToe, s.state(env).Kind)

	code, env = s.do(http.MethodPost, "/api/v1/games", gin.H{"key": "g:c", "kind": "connect4", "players": []string{"x", "y"}})
	s.Equal(http.StatusConflict, code)
	s.False(env.Success)

	code, env = s.do(http.MethodPost, "/api/v1/games/g:c/moves", gin.H{"player": "bob", "index": 0})
	s.Equal(http.StatusForbidden, code)
	s.Require().NotNil(env.Error)

	code, _ = s.do(http.MethodPost, "/api/v1/games/g:c/moves", gin.H{"player": "alice", "index": 9})
	s.Equal(http.StatusBadRequest, code)

	code, env = s.do(http.MethodPost, "/api/v1/games/g:c/moves", gin.H{"player": "alice", "index": 4})
	s.Require().Equal(http.StatusOK, code)
	s.Equal(1, s.state(env).Moves)

	code, env = s.do(http.MethodGet, "/api/v1/games/g:c/moves?actor=bob", nil)
	s.Require().Equal(http.StatusOK, code)
	var moves struct {
		Moves []game.Move `json:"moves"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &moves))
	s.Len(moves.Moves, 8)

	code, env = s.do(http.MethodGet, "/api/v1/games/g:c", nil)
	s.Require().Equal(http.StatusOK, code)
	cur := s.state(env)
	s.Equal("bob", cur.Current())

	code, env = s.do(http.MethodDelete, "/api/v1/games/g:c?reason=admin", nil)
	s.Require().Equal(http.StatusOK, code)
	st := s.state(env)
	s.Require().NotNil(st.Result)
	s.True(st.Result.Abandoned)
	s.Equal("admin", st.Result.Reason)

	code, env = s.do(http.MethodGet, "/api/v1/players/alice/history", nil)
	s.Require().Equal(http.StatusOK, code)
	var hist struct {
		Stats struct {
			Played    int64 `json:"played"`
			Abandoned int64 `json:"abandoned"`
		} `json:"stats"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &hist))
	s.Equal(int64(1), hist.Stats.Played)
	s.Equal(int64(1), hist.Stats.Abandoned)
}

func (s *RouterTestSuite) TestJoin() {
	code, _ := s.do(http.MethodPost, "/api/v1/games", gin.H{"key": "g:t", "kind": "blackjack", "players": []string{"alice"}})
	s.Require().Equal(http.StatusOK, code)

	code, env := s.do(http.MethodPost, "/api/v1/games/g:t/join", gin.H{"player": "bob"})
	s.Require().Equal(http.StatusOK, code)
	s.Len(s.state(env).Players, 2)

	code, _ = s.do(http.MethodPost, "/api/v1/games/g:t/join", gin.H{"player": "bob"})
	s.Equal(http.StatusConflict, code)

	code, _ = s.do(http.MethodPost, "/api/v1/games/g:t/join", gin.H{})
	s.Equal(http.StatusBadRequest, code)
}

func (s *RouterTestSuite) TestBadRequests() {
	code, env := s.do(http.MethodPost, "/api/v1/games", gin.H{"key": "g:c"})
	s.Equal(http.StatusBadRequest, code)
	s.Require().NotNil(env.Error)

	code, _ = s.do(http.MethodPost, "/api/v1/games", gin.H{"key": "g:c", "kind": "chess", "players": []string{"a"}})
	s.Equal(http.StatusBadRequest, code)

	code, _ = s.do(http.MethodGet, "/api/v1/games/g:missing", nil)
	s.Equal(http.StatusNotFound, code)

	code, _ = s.do(http.MethodGet, "/api/v1/nowhere", nil)
	s.Equal(http.StatusNotFound, code)
}

func (s *RouterTestSuite) TestArtifactRoutes() {
	code, env := s.do(http.MethodPost, "/api/v1/artifact/usage", gin.H{"category": "gambling"})
	s.Require().Equal(http.StatusOK, code)
	var view artifact.View
	s.Require().NoError(json.Unmarshal(env.Data, &view))
	s.Equal(1, view.Stats.Chaos)

	code, _ = s.do(http.MethodPost, "/api/v1/artifact/usage", gin.H{"category": "weird"})
	s.Equal(http.StatusBadRequest, code)

	code, env = s.do(http.MethodPost, "/api/v1/commands/market/completed", nil)
	s.Require().Equal(http.StatusOK, code)
	s.Require().NoError(json.Unmarshal(env.Data, &view))
	s.Equal(1, view.Stats.Greed)

	code, _ = s.do(http.MethodPost, "/api/v1/artifact/touch", nil)
	s.Equal(http.StatusOK, code)

	code, env = s.do(http.MethodPost, "/api/v1/artifact/disturb", nil)
	s.Require().Equal(http.StatusOK, code)
	var res struct {
		Outcome  string `json:"outcome"`
		Response string `json:"response"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &res))
	s.Contains([]string{"calm", "anger"}, res.Outcome)
	s.NotEmpty(res.Response)

	code, _ = s.do(http.MethodPost, "/api/v1/artifact/disturb", nil)
	s.Equal(http.StatusTooManyRequests, code)

	s.sched.Advance(artifact.DefaultConfig().DisturbCooldown)
	code, _ = s.do(http.MethodPost, "/api/v1/artifact/disturb", nil)
	s.Equal(http.StatusOK, code)

	code, env = s.do(http.MethodGet, "/api/v1/artifact", nil)
	s.Require().Equal(http.StatusOK, code)
	s.Require().NoError(json.Unmarshal(env.Data, &view))
	s.Equal("The Cracked Compass", view.Name)
}

func (s *RouterTestSuite) TestRequestIDEchoed() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	s.router.GetEngine().ServeHTTP(w, req)
	s.Equal("abc-123", w.Header().Get(middleware.RequestIDHeader))

	w = httptest.NewRecorder()
	s.router.GetEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	s.NotEmpty(w.Header().Get(middleware.RequestIDHeader))
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func TestHistoryWithoutDatabase(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	registry := game.NewRegistry(catalog.New(cfg.Game), catalog.RegistryConfig(cfg.Game),
		game.WithScheduler(game.NewManualScheduler(time.Now())))
	store, err := artifact.Open(context.Background(), artifact.DefaultConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	r := NewRouter(service.NewServices(cfg.Game, registry, store, nil, zap.NewNop()), Options{}, zap.NewNop())

	w := httptest.NewRecorder()
	r.GetEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/players/alice/history", nil))
	if w.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}
