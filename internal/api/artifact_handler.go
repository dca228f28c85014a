package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apperr "github.com/wfunc/bugg-bot/internal/errors"
	"github.com/wfunc/bugg-bot/internal/websocket"
)

func (r *Router) artifactStatus(c *gin.Context) {
	ok(c, r.services.Artifact.Status(c.Request.Context()))
}

// publish 推送神器最新状态
func (r *Router) publish(data interface{}) {
	if r.hub != nil {
		r.hub.PublishJSON(websocket.MessageTypeArtifact, "", data)
	}
}

type usageRequest struct {
	Category string `json:"category" binding:"required"`
}

func (r *Router) reportUsage(c *gin.Context) {
	var req usageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		r.badRequest(c, err)
		return
	}
	view, err := r.services.Artifact.ReportUsage(c.Request.Context(), req.Category)
	if err != nil {
		r.fail(c, err)
		return
	}
	r.publish(view)
	ok(c, view)
}

func (r *Router) commandCompleted(c *gin.Context) {
	view, err := r.services.Artifact.CommandCompleted(c.Request.Context(), c.Param("name"))
	if err != nil {
		r.fail(c, err)
		return
	}
	r.publish(view)
	ok(c, view)
}

func (r *Router) touch(c *gin.Context) {
	res, err := r.services.Artifact.Touch(c.Request.Context())
	if err != nil {
		r.fail(c, err)
		return
	}
	r.publish(res.View)
	ok(c, res)
}

func (r *Router) disturb(c *gin.Context) {
	res, err := r.services.Artifact.Disturb(c.Request.Context())
	if err != nil {
		r.fail(c, err)
		return
	}
	r.publish(res.View)
	ok(c, res)
}

// playerHistory GET /api/v1/players/:id/history?page=&page_size=
func (r *Router) playerHistory(c *gin.Context) {
	if r.services.History == nil {
		r.fail(c, apperr.New(apperr.ErrNotImplemented, "未配置数据库，战绩不可用"))
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	ctx := c.Request.Context()
	player := c.Param("id")
	rows, p, err := r.services.History.List(ctx, player, page, size)
	if err != nil {
		r.fail(c, err)
		return
	}
	stats, err := r.services.History.Stats(ctx, player)
	if err != nil {
		r.fail(c, err)
		return
	}
	ok(c, gin.H{"records": rows, "pagination": p, "stats": stats})
}
