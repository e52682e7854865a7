package request

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
	PathRequests = "/v1/requests"

	validate = validator.New()
)

func RegisterRequestsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathRequests, middleWares...)
	g.GET("", handleQueryRequests)
	g.POST("", handleCreateRequest)
	g.GET(":id", handleDetailRequest)
	g.PUT(":id", handleUpdateRequest)
	g.POST(":id/submissions", handleSubmitRequest)
	g.POST(":id/advances", handleAdvanceStep)
	g.POST(":id/rejections", handleRejectToStep)
	g.POST(":id/corrections", handleCorrectRequest)
	g.POST(":id/cancellations", handleCancelRequest)
	g.GET(":id/field-permissions", handleResolvePermissions)
	g.PUT(":id/field-values", handleSetFieldValue)
	g.GET(":id/field-values/:fieldId/versions", handleQueryFieldVersions)
}

func parseIdParam(c *gin.Context, name string) types.ID {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return types.ID(id)
}

func handleQueryRequests(c *gin.Context) {
	query := RequestQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	records, err := QueryRequestsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleDetailRequest(c *gin.Context) {
	detail, err := DetailRequestFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func handleCreateRequest(c *gin.Context) {
	creation := RequestCreation{}
	if err := c.ShouldBindJSON(&creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := CreateRequestFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleUpdateRequest(c *gin.Context) {
	updating := RequestUpdating{}
	if err := c.ShouldBindJSON(&updating); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(updating); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := UpdateRequestFunc(parseIdParam(c, "id"), &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleSubmitRequest(c *gin.Context) {
	record, err := SubmitRequestFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleAdvanceStep(c *gin.Context) {
	record, err := AdvanceStepFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleRejectToStep(c *gin.Context) {
	rejection := Rejection{}
	if err := c.ShouldBindJSON(&rejection); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(rejection); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := RejectToStepFunc(parseIdParam(c, "id"), &rejection, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleCorrectRequest(c *gin.Context) {
	updating := RequestUpdating{}
	if err := c.ShouldBindJSON(&updating); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(updating); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := CorrectRequestFunc(parseIdParam(c, "id"), &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleCancelRequest(c *gin.Context) {
	record, err := CancelRequestFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleResolvePermissions(c *gin.Context) {
	perms, err := ResolvePermissionsFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, perms)
}

func handleSetFieldValue(c *gin.Context) {
	setting := FieldValueSetting{}
	if err := c.ShouldBindJSON(&setting); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(setting); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	value, err := SetFieldValueFunc(parseIdParam(c, "id"), &setting, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, value)
}

func handleQueryFieldVersions(c *gin.Context) {
	versions, err := QueryFieldVersionsFunc(parseIdParam(c, "id"), parseIdParam(c, "fieldId"),
		session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, versions)
}
