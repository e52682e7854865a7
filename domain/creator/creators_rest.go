package creator

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
	PathCreators = "/v1/creators"

	validate = validator.New()
)

func RegisterCreatorsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathCreators, middleWares...)
	g.GET("", handleQueryCreators)
	g.POST("", handleCreateCreator)
	g.GET(":id", handleDetailCreator)
	g.PUT(":id", handleUpdateCreator)
	g.DELETE(":id", handleDeactivateCreator)
	g.POST(":id/toggle-active", handleToggleCreatorActive)
}

func parseIdParam(c *gin.Context, name string) types.ID {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return types.ID(id)
}

func handleQueryCreators(c *gin.Context) {
	query := CreatorQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	records, err := QueryCreatorsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleDetailCreator(c *gin.Context) {
	record, err := DetailCreatorFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleCreateCreator(c *gin.Context) {
	creation := CreatorCreation{}
	if err := c.ShouldBindJSON(&creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := CreateCreatorFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleUpdateCreator(c *gin.Context) {
	updating := CreatorUpdating{}
	if err := c.ShouldBindJSON(&updating); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(updating); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := UpdateCreatorFunc(parseIdParam(c, "id"), &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleDeactivateCreator(c *gin.Context) {
	record, err := DeactivateCreatorFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleToggleCreatorActive(c *gin.Context) {
	record, err := ToggleCreatorActiveFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}
