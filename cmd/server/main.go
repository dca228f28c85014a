package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/bugg-bot/internal/api"
	"github.com/wfunc/bugg-bot/internal/app"
	"github.com/wfunc/bugg-bot/internal/config"
	"github.com/wfunc/bugg-bot/internal/logger"
	"github.com/wfunc/bugg-bot/internal/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// 版本信息
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "配置文件路径")
		showVersion = flag.Bool("version", false, "显示版本信息")
	)
	flag.Parse()

	if *showVersion {
		printVersion()
		return
	}

	if err := config.Init(*configPath); err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Get()

	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("服务器异常退出", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("服务器已安全关闭")
}

// run 启动 HTTP 适配层、事件推送和会话清理，直到 ctx 结束
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.GetLogger()
	log.Info("正在启动 bugg 服务",
		zap.String("version", Version),
		zap.String("mode", cfg.Server.Mode))

	components, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer components.Close()

	hub := websocket.NewHub(websocket.FromConfig(cfg.WebSocket), logger.WithModule("websocket"))
	components.Registry.Subscribe(hub)

	gin.SetMode(cfg.Server.Mode)
	router := api.NewRouter(components.Services, api.Options{
		Hub:    hub,
		DB:     components.DB,
		WSPath: cfg.WebSocket.Path,
	}, logger.WithModule("api"))

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	config.Watch(func(newCfg *config.Config) {
		// 会话与神器参数在启动时固定，这里只提示
		log.Info("配置文件已变更，新参数将在重启后生效",
			zap.Duration("move_timeout", newCfg.Game.MoveTimeout),
			zap.String("log_level", newCfg.Log.Level))
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP 服务已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	components.Registry.StartSweeper(gctx, cfg.Game.SweepInterval)

	g.Go(func() error {
		<-gctx.Done()
		log.Info("正在优雅关闭服务...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func printVersion() {
	fmt.Printf("bugg 游戏与神器服务\n")
	fmt.Printf("版本: %s\n", Version)
	fmt.Printf("构建时间: %s\n", BuildTime)
	fmt.Printf("Git提交: %s\n", GitCommit)
	fmt.Printf("Go版本: %s\n", runtime.Version())
	fmt.Printf("操作系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
