package crud

import (
	"crudcore/bizerror"
	"crudcore/i18n"
	"crudcore/query"
	"crudcore/session"
	"net/http"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// RegisterCrudAPI exposes the five verbs of one entity under /v1/<table>.
// The verb to action mapping is fixed at registration time.
func RegisterCrudAPI(r *gin.Engine, desc query.Descriptor, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/"+desc.TableName, middleWares...)
	g.GET("", buildIndexHandler(desc))
	g.GET(":id", buildShowHandler(desc))
	g.POST("", buildStoreHandler(desc))
	g.PUT(":id", buildUpdateHandler(desc))
	g.DELETE(":id", buildDestroyHandler(desc))
}

func buildIndexHandler(desc query.Descriptor) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := IndexRecordsFunc(desc, rawParams(c), i18n.LanguageID(c), session.ExtractSessionFromGinContext(c))
		if err != nil {
			panic(err)
		}
		c.JSON(http.StatusOK, result)
	}
}

func buildShowHandler(desc query.Descriptor) gin.HandlerFunc {
	return func(c *gin.Context) {
		record, err := DetailRecordFunc(desc, rawParams(c), entityID(c), i18n.LanguageID(c), session.ExtractSessionFromGinContext(c))
		if err != nil {
			panic(err)
		}
		c.JSON(http.StatusOK, record)
	}
}

func buildStoreHandler(desc query.Descriptor) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload := map[string]interface{}{}
		if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
		record, err := CreateRecordFunc(desc, payload, i18n.LanguageID(c), session.ExtractSessionFromGinContext(c))
		if err != nil {
			panic(err)
		}
		c.JSON(http.StatusCreated, record)
	}
}

func buildUpdateHandler(desc query.Descriptor) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload := map[string]interface{}{}
		if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
		record, err := UpdateRecordFunc(desc, entityID(c), payload, i18n.LanguageID(c), session.ExtractSessionFromGinContext(c))
		if err != nil {
			panic(err)
		}
		c.JSON(http.StatusOK, record)
	}
}

func buildDestroyHandler(desc query.Descriptor) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := DeleteRecordFunc(desc, entityID(c), session.ExtractSessionFromGinContext(c)); err != nil {
			panic(err)
		}
		c.JSON(http.StatusOK, gin.H{"message": "deleted"})
	}
}

func rawParams(c *gin.Context) map[string]string {
	raw := map[string]string{}
	for name, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			raw[name] = values[0]
		}
	}
	return raw
}

func entityID(c *gin.Context) types.ID {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return id
}
