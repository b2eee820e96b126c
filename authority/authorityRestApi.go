package authority

import (
	"crudcore/bizerror"
	"net/http"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathRoles     = "/v1/roles"
	PathUserRoles = "/v1/user-roles"
)

func RegisterAuthorityHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	roles := r.Group(PathRoles, middleWares...)
	roles.GET("", HandleQueryRoles)
	roles.POST("", HandleCreateRole)
	roles.POST(":roleId/grants", HandleGrantActionToRole)

	userRoles := r.Group(PathUserRoles, middleWares...)
	userRoles.POST("", HandleAssignUserRole)
	userRoles.DELETE("", HandleRevokeUserRole)
}

func HandleQueryRoles(c *gin.Context) {
	records, err := QueryRolesFunc()
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func HandleCreateRole(c *gin.Context) {
	creation := RoleCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(err)
	}
	record, err := CreateRoleFunc(&creation)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func HandleGrantActionToRole(c *gin.Context) {
	roleID, err := types.ParseID(c.Param("roleId"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	creation := RoleGrantCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(err)
	}
	record, err := GrantActionToRole(roleID, &creation)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func HandleAssignUserRole(c *gin.Context) {
	assignment := UserRoleAssignment{}
	if err := c.ShouldBindBodyWith(&assignment, binding.JSON); err != nil {
		panic(err)
	}
	record, err := AssignUserRoleFunc(&assignment)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func HandleRevokeUserRole(c *gin.Context) {
	assignment := UserRoleAssignment{}
	if err := c.ShouldBindBodyWith(&assignment, binding.JSON); err != nil {
		panic(err)
	}
	if err := RevokeUserRoleFunc(&assignment); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}
