package api

import (
	"github.com/gin-gonic/gin"
	"github.com/wfunc/bugg-bot/internal/service"
)

// createGame POST /api/v1/games
func (r *Router) createGame(c *gin.Context) {
	var req service.CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		r.badRequest(c, err)
		return
	}
	st, err := r.services.Game.Create(c.Request.Context(), &req)
	if err != nil {
		r.fail(c, err)
		return
	}
	ok(c, st)
}

func (r *Router) getGame(c *gin.Context) {
	st, err := r.services.Game.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		r.fail(c, err)
		return
	}
	ok(c, st)
}

type joinRequest struct {
	Player string `json:"player" binding:"required"`
}

func (r *Router) joinGame(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		r.badRequest(c, err)
		return
	}
	st, err := r.services.Game.Join(c.Request.Context(), c.Param("key"), req.Player)
	if err != nil {
		r.fail(c, err)
		return
	}
	ok(c, st)
}

func (r *Router) applyMove(c *gin.Context) {
	var req service.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		r.badRequest(c, err)
		return
	}
	req.Key = c.Param("key")
	st, err := r.services.Game.Move(c.Request.Context(), &req)
	if err != nil {
		r.fail(c, err)
		return
	}
	ok(c, st)
}

// legalMoves GET /api/v1/games/:key/moves?actor=
func (r *Router) legalMoves(c *gin.Context) {
	moves, err := r.services.Game.LegalMoves(c.Request.Context(), c.Param("key"), c.Query("actor"))
	if err != nil {
		r.fail(c, err)
		return
	}
	ok(c, gin.H{"moves": moves})
}

// endGame DELETE /api/v1/games/:key?reason=
func (r *Router) endGame(c *gin.Context) {
	st, err := r.services.Game.End(c.Request.Context(), c.Param("key"), c.Query("reason"))
	if err != nil {
		r.fail(c, err)
		return
	}
	ok(c, st)
}
