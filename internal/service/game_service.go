package service

import (
	"context"

	apperr "github.com/wfunc/bugg-bot/internal/errors"
	"github.com/wfunc/bugg-bot/internal/game"
	"go.uber.org/zap"
)

// gameService 会话服务实现，负责把外部字符串解析为领域类型
type gameService struct {
	registry *game.Registry
	log      *zap.Logger
}

// NewGameService 创建会话服务
func NewGameService(registry *game.Registry, log *zap.Logger) GameService {
	return &gameService{registry: registry, log: log}
}

func parseKey(s string) (game.Key, error) {
	k, err := game.ParseKey(s)
	if err != nil {
		return game.Key{}, apperr.Wrap(err, apperr.ErrInvalidParam, err.Error())
	}
	return k, nil
}

func (s *gameService) Create(ctx context.Context, req *CreateGameRequest) (*game.State, error) {
	key, err := parseKey(req.Key)
	if err != nil {
		return nil, err
	}
	kind := game.Kind(req.Kind)
	if !kind.Valid() {
		return nil, apperr.Newf(apperr.ErrUnknownKind, "%s", req.Kind)
	}

	st, err := s.registry.Create(ctx, key, kind, req.Players, req.Options)
	if err != nil {
		s.log.Debug("创建游戏失败", zap.String("key", req.Key), zap.String("kind", req.Kind), zap.Error(err))
		return nil, err
	}
	return st, nil
}

func (s *gameService) Get(ctx context.Context, key string) (*game.State, error) {
	k, err := parseKey(key)
	if err != nil {
		return nil, err
	}
	return s.registry.Get(ctx, k)
}

func (s *gameService) Join(ctx context.Context, key, player string) (*game.State, error) {
	k, err := parseKey(key)
	if err != nil {
		return nil, err
	}
	if player == "" {
		return nil, apperr.New(apperr.ErrInvalidParam, "缺少玩家")
	}
	return s.registry.Join(ctx, k, player)
}

func (s *gameService) Move(ctx context.Context, req *MoveRequest) (*game.State, error) {
	k, err := parseKey(req.Key)
	if err != nil {
		return nil, err
	}
	return s.registry.ApplyMove(ctx, k, req.Player, game.Move{Action: req.Action, Index: req.Index})
}

func (s *gameService) LegalMoves(ctx context.Context, key, player string) ([]game.Move, error) {
	k, err := parseKey(key)
	if err != nil {
		return nil, err
	}
	return s.registry.LegalMoves(ctx, k, player)
}

// End 管理员强制结束
func (s *gameService) End(ctx context.Context, key, reason string) (*game.State, error) {
	k, err := parseKey(key)
	if err != nil {
		return nil, err
	}
	if reason == "" {
		reason = "ended"
	}
	return s.registry.End(ctx, k, reason)
}

func (s *gameService) Active() int {
	return s.registry.Active()
}
