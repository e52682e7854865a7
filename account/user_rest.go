package account

import (
	"net/http"
	"strconv"

	"marketflow/bizerror"
	"marketflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var (
	PathUsers        = "/v1/users"
	PathSessionUsers = "/v1/session-users"

	validate = validator.New()
)

func RegisterUsersRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	users := r.Group(PathUsers, middleWares...)
	users.GET("", handleQueryUsers)
	users.POST("", handleCreateUser)
	users.PUT(":id", handleUpdateUser)

	sessionUsers := r.Group(PathSessionUsers, middleWares...)
	sessionUsers.PUT("basic-auths", handleUpdateBasicAuth)
}

func handleQueryUsers(c *gin.Context) {
	results, err := QueryUsersFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, results)
}

func handleCreateUser(c *gin.Context) {
	creation := UserCreation{}
	if err := c.ShouldBindJSON(&creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	info, err := CreateUserFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, info)
}

func handleUpdateUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	updation := UserUpdation{}
	if err := c.ShouldBindJSON(&updation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := UpdateUserFunc(types.ID(id), &updation, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusOK)
}

func handleUpdateBasicAuth(c *gin.Context) {
	payload := BasicAuthUpdating{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(payload); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := UpdateBasicAuthSecretFunc(&payload, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusOK)
}
