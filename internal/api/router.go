package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperr "github.com/wfunc/bugg-bot/internal/errors"
	"github.com/wfunc/bugg-bot/internal/middleware"
	"github.com/wfunc/bugg-bot/internal/service"
	"github.com/wfunc/bugg-bot/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Router 本地适配层，把聊天前端的命令转成 HTTP 调用
type Router struct {
	engine   *gin.Engine
	services *service.Services
	hub      *websocket.Hub
	db       *gorm.DB
	log      *zap.Logger
}

// Options 可选依赖，Hub 和 DB 为 nil 时相应路由降级
type Options struct {
	Hub    *websocket.Hub
	DB     *gorm.DB
	WSPath string
}

// NewRouter 创建路由器
func NewRouter(services *service.Services, opts Options, log *zap.Logger) *Router {
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Recovery(), middleware.Logger())

	r := &Router{
		engine:   engine,
		services: services,
		hub:      opts.Hub,
		db:       opts.DB,
		log:      log,
	}
	if opts.WSPath == "" {
		opts.WSPath = "/ws"
	}
	r.setupRoutes(opts.WSPath)
	return r
}

func (r *Router) setupRoutes(wsPath string) {
	r.engine.GET("/health", r.healthCheck)

	v1 := r.engine.Group("/api/v1")
	{
		games := v1.Group("/games")
		{
			games.POST("", r.createGame)
			games.GET("/:key", r.getGame)
			games.POST("/:key/join", r.joinGame)
			games.POST("/:key/moves", r.applyMove)
			games.GET("/:key/moves", r.legalMoves)
			games.DELETE("/:key", r.endGame)
		}

		art := v1.Group("/artifact")
		{
			art.GET("", r.artifactStatus)
			art.POST("/usage", r.reportUsage)
			art.POST("/touch", r.touch)
			art.POST("/disturb", r.disturb)
		}

		v1.POST("/commands/:name/completed", r.commandCompleted)
		v1.GET("/players/:id/history", r.playerHistory)
	}

	registerOpenAPIRoutes(r.engine)
	registerSwaggerRoutes(r.engine)

	if r.hub != nil {
		r.engine.GET(wsPath, gin.WrapF(r.hub.ServeWS))
	}

	r.engine.NoRoute(func(c *gin.Context) {
		r.fail(c, apperr.New(apperr.ErrNotFound, "接口不存在"))
	})
}

// healthCheck 健康检查；未配置数据库时只报告会话数
func (r *Router) healthCheck(c *gin.Context) {
	body := gin.H{
		"status":          "healthy",
		"active_sessions": r.services.Game.Active(),
	}
	if r.hub != nil {
		body["subscribers"] = r.hub.OnlineCount()
	}
	if r.db != nil {
		sqlDB, err := r.db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			r.log.Warn("健康检查数据库不可用", zap.Error(err))
			body["status"] = "unhealthy"
			body["database"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		body["database"] = "ok"
	}
	c.JSON(http.StatusOK, body)
}

// Handler 返回 http.Handler
func (r *Router) Handler() http.Handler {
	return r.engine
}

// GetEngine 获取Gin引擎（用于测试）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
