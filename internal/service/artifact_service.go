package service

import (
	"context"
	"strings"

	"github.com/wfunc/bugg-bot/internal/artifact"
	apperr "github.com/wfunc/bugg-bot/internal/errors"
	"go.uber.org/zap"
)

// commandCategories 命令名到使用类别，未列出的命令为 Neutral
var commandCategories = map[string]artifact.Category{
	"slots":     artifact.Gambling,
	"roulette":  artifact.Gambling,
	"blackjack": artifact.Gambling,
	"deathroll": artifact.Gambling,
	"duel":      artifact.Gambling,
	"market":    artifact.Market,
}

// Classify 按命令名归类，忽略大小写和前缀符号
func Classify(command string) artifact.Category {
	name := strings.ToLower(strings.TrimLeft(strings.TrimSpace(command), "/!."))
	if i := strings.IndexAny(name, " \t"); i >= 0 {
		name = name[:i]
	}
	if c, ok := commandCategories[name]; ok {
		return c
	}
	return artifact.Neutral
}

type artifactService struct {
	store *artifact.Store
	log   *zap.Logger
}

// NewArtifactService 创建神器服务
func NewArtifactService(store *artifact.Store, log *zap.Logger) ArtifactService {
	return &artifactService{store: store, log: log}
}

func (s *artifactService) Status(ctx context.Context) artifact.View {
	return s.store.Status(ctx)
}

func (s *artifactService) ReportUsage(ctx context.Context, category string) (artifact.View, error) {
	c, ok := artifact.ParseCategory(category)
	if !ok {
		return artifact.View{}, apperr.Newf(apperr.ErrInvalidParam, "未知类别 %q", category)
	}
	return s.report(ctx, c)
}

// CommandCompleted 命令执行完成后上报
func (s *artifactService) CommandCompleted(ctx context.Context, command string) (artifact.View, error) {
	if strings.TrimSpace(command) == "" {
		return artifact.View{}, apperr.New(apperr.ErrInvalidParam, "缺少命令名")
	}
	return s.report(ctx, Classify(command))
}

func (s *artifactService) report(ctx context.Context, c artifact.Category) (artifact.View, error) {
	view, err := s.store.ReportUsage(ctx, c)
	if apperr.Is(err, apperr.ErrArtifactPersist) {
		s.log.Warn("神器状态未能持久化，内存状态已更新", zap.String("category", string(c)), zap.Error(err))
	}
	return view, err
}

func (s *artifactService) Touch(ctx context.Context) (artifact.TouchResult, error) {
	return s.store.Touch(ctx)
}

func (s *artifactService) Disturb(ctx context.Context) (artifact.DisturbResult, error) {
	return s.store.Disturb(ctx)
}
