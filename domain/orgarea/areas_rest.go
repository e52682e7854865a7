package orgarea

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
	PathAreas       = "/v1/areas"
	PathAreaMembers = "/v1/area-members"

	validate = validator.New()
)

func RegisterAreasRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathAreas, middleWares...)
	g.GET("", handleQueryAreas)
	g.POST("", handleCreateArea)
	g.GET(":id", handleDetailArea)
	g.PUT(":id", handleUpdateArea)
	g.POST(":id/toggle-active", handleToggleAreaActive)
	g.GET(":id/members", handleQueryAreaMembers)

	m := r.Group(PathAreaMembers, middleWares...)
	m.POST("", handleAddMember)
	m.DELETE(":id", handleRemoveMember)
	m.PUT(":id/position", handleUpdateMemberPosition)
}

func parseIdParam(c *gin.Context, name string) types.ID {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return types.ID(id)
}

func handleQueryAreas(c *gin.Context) {
	areas, err := QueryAreasFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, areas)
}

func handleDetailArea(c *gin.Context) {
	area, err := DetailArea(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, area)
}

func handleCreateArea(c *gin.Context) {
	creation := AreaCreation{}
	if err := c.ShouldBindJSON(&creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	area, err := CreateAreaFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, area)
}

func handleUpdateArea(c *gin.Context) {
	updating := AreaUpdating{}
	if err := c.ShouldBindJSON(&updating); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	area, err := UpdateAreaFunc(parseIdParam(c, "id"), &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, area)
}

func handleToggleAreaActive(c *gin.Context) {
	area, err := ToggleAreaActiveFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, area)
}

func handleQueryAreaMembers(c *gin.Context) {
	members, err := QueryAreaMembersFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, members)
}

func handleAddMember(c *gin.Context) {
	creation := AreaMemberCreation{}
	if err := c.ShouldBindJSON(&creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	member, err := AddMemberFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, member)
}

func handleRemoveMember(c *gin.Context) {
	if err := RemoveMemberFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleUpdateMemberPosition(c *gin.Context) {
	updating := MemberPositionUpdating{}
	if err := c.ShouldBindJSON(&updating); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	member, err := UpdateMemberPositionFunc(parseIdParam(c, "id"), &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, member)
}
