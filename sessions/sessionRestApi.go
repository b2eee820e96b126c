package sessions

import (
	"crudcore/session"
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterSessionHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/session", middleWares...)
	g.GET("", DetailSession)
}

func DetailSession(c *gin.Context) {
	sec := session.ExtractSessionFromGinContext(c)
	c.JSON(http.StatusOK, sec)
}
