package contenttype

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
	PathContentTypes      = "/v1/content-types"
	PathWorkflowSteps     = "/v1/workflow-steps"
	PathContentTypeFields = "/v1/content-type-fields"

	validate = validator.New()
)

func RegisterContentTypesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathContentTypes, middleWares...)
	g.GET("", handleQueryContentTypes)
	g.POST("", handleCreateContentType)
	g.GET(":id", handleDetailContentType)
	g.PUT(":id", handleUpdateContentType)
	g.POST(":id/toggle-active", handleToggleContentTypeActive)
	g.GET(":id/steps", handleQuerySteps)
	g.GET(":id/fields", handleQueryFields)

	steps := r.Group(PathWorkflowSteps, middleWares...)
	steps.POST("", handleCreateStep)
	steps.GET(":id", handleDetailStep)
	steps.PUT(":id", handleUpdateStep)
	steps.DELETE(":id", handleDeleteStep)
	steps.POST("reorders", handleReorderSteps)

	fields := r.Group(PathContentTypeFields, middleWares...)
	fields.POST("", handleCreateField)
	fields.PUT(":id", handleUpdateField)
	fields.DELETE(":id", handleDeleteField)
	fields.POST("reorders", handleReorderFields)
}

func parseIdParam(c *gin.Context, name string) types.ID {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return types.ID(id)
}

func handleQueryContentTypes(c *gin.Context) {
	records, err := QueryContentTypesFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleDetailContentType(c *gin.Context) {
	record, err := DetailContentType(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleCreateContentType(c *gin.Context) {
	creation := ContentTypeCreation{}
	if err := c.ShouldBindJSON(&creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := CreateContentTypeFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleUpdateContentType(c *gin.Context) {
	updating := ContentTypeUpdating{}
	if err := c.ShouldBindJSON(&updating); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := UpdateContentTypeFunc(parseIdParam(c, "id"), &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleToggleContentTypeActive(c *gin.Context) {
	record, err := ToggleContentTypeActiveFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleQuerySteps(c *gin.Context) {
	steps, err := QueryStepsFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, steps)
}

func handleDetailStep(c *gin.Context) {
	step, err := DetailStep(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, step)
}

func handleCreateStep(c *gin.Context) {
	creation := StepCreation{}
	if err := c.ShouldBindJSON(&creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	step, err := CreateStepFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, step)
}

func handleUpdateStep(c *gin.Context) {
	updating := StepUpdating{}
	if err := c.ShouldBindJSON(&updating); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	step, err := UpdateStepFunc(parseIdParam(c, "id"), &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, step)
}

func handleDeleteStep(c *gin.Context) {
	if err := DeleteStepFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleReorderSteps(c *gin.Context) {
	reordering := StepsReordering{}
	if err := c.ShouldBindJSON(&reordering); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(reordering); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	steps, err := ReorderStepsFunc(&reordering, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, steps)
}

func handleQueryFields(c *gin.Context) {
	fields, err := QueryFieldsFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, fields)
}

func handleCreateField(c *gin.Context) {
	creation := FieldCreation{}
	if err := c.ShouldBindJSON(&creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	field, err := CreateFieldFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, field)
}

func handleUpdateField(c *gin.Context) {
	updating := FieldUpdating{}
	if err := c.ShouldBindJSON(&updating); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	field, err := UpdateFieldFunc(parseIdParam(c, "id"), &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, field)
}

func handleDeleteField(c *gin.Context) {
	result, err := DeleteFieldFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func handleReorderFields(c *gin.Context) {
	reordering := FieldsReordering{}
	if err := c.ShouldBindJSON(&reordering); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(reordering); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	fields, err := ReorderFieldsFunc(&reordering, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, fields)
}
