package account

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var PathUsers = "/v1/users"

func RegisterUsersHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	users := r.Group(PathUsers, middleWares...)
	users.POST("", HandleRegisterUser)
}

func HandleRegisterUser(c *gin.Context) {
	creation := UserCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(err)
	}

	record, err := RegisterUserFunc(&creation)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}
