package bizerror

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"marketflow/misc"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

func ErrorHandling() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handle(c)
		c.Next()
	}
}

func handle(c *gin.Context) {
	if ret := recover(); ret != nil {
		err, ok := ret.(error)
		if !ok {
			err = errors.New(fmt.Sprintf("%s", ret))
		}
		HandleError(c, err)
	} else {
		if err := c.Errors.Last(); err != nil {
			HandleError(c, err)
		}
	}
}

func HandleError(c *gin.Context, err error) {
	logrus.Error(err)

	genericErr := err
	var ginErr *gin.Error
	if errors.As(err, &ginErr) {
		genericErr = ginErr.Err
	}

	if bizErr, ok := genericErr.(BizError); ok {
		respond := bizErr.Respond()
		c.JSON(respond.Status, &misc.ErrorBody{Code: respond.Code, Message: respond.Message, Data: respond.Data})
		c.Abort()
		return
	}

	// bad request: io.EOF (no body)
	if errors.Is(genericErr, io.EOF) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: "EOF"})
		c.Abort()
		return
	}
	// bad request: json syntax error
	if syntaxErr, ok := genericErr.(*json.SyntaxError); ok {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: syntaxErr.Error()})
		c.Abort()
		return
	}
	// validation failed
	if validationErr, ok := genericErr.(validator.ValidationErrors); ok {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: validationErr.Error()})
		c.Abort()
		return
	}

	if errors.Is(genericErr, ErrUnauthenticated) {
		c.JSON(http.StatusUnauthorized, &misc.ErrorBody{Code: "common.unauthenticated", Message: "unauthenticated"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrInvalidPassword) {
		c.JSON(http.StatusUnauthorized, &misc.ErrorBody{Code: "account.invalid_password", Message: "invalid password"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrForbidden) {
		c.JSON(http.StatusForbidden, &misc.ErrorBody{Code: "security.forbidden", Message: "access forbidden"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, gorm.ErrRecordNotFound) || errors.Is(genericErr, ErrNotFound) {
		c.JSON(http.StatusNotFound, &misc.ErrorBody{Code: "common.record_not_found", Message: "record not found"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrConcurrentModification) {
		c.JSON(http.StatusConflict, &misc.ErrorBody{Code: "common.concurrent_modification", Message: "record was modified concurrently, refetch and retry"})
		c.Abort()
		return
	}

	for sentinelErr, body := range sentinelResponds {
		if errors.Is(genericErr, sentinelErr) {
			c.JSON(body.Status, &misc.ErrorBody{Code: body.Code, Message: body.Message})
			c.Abort()
			return
		}
	}

	c.JSON(http.StatusInternalServerError, &misc.ErrorBody{Code: "common.internal_server_error", Message: err.Error()})
	c.Abort()
}

var sentinelResponds = map[error]BizErrorDetail{
	ErrInvalidArguments:   {Status: http.StatusBadRequest, Code: "common.bad_param", Message: "invalid arguments"},
	ErrInvalidState:       {Status: http.StatusBadRequest, Code: "workflow.invalid_state", Message: "operation not allowed in current state"},
	ErrInvalidReason:      {Status: http.StatusBadRequest, Code: "workflow.invalid_reason", Message: "reason must have at least 10 characters"},
	ErrInvalidTargetStep:  {Status: http.StatusBadRequest, Code: "workflow.invalid_target_step", Message: "target step must be strictly earlier than the current step"},
	ErrEmptyProject:       {Status: http.StatusBadRequest, Code: "adflow.empty_project", Message: "project must have at least 1 video"},
	ErrPhaseLocked:        {Status: http.StatusBadRequest, Code: "adflow.phase_locked", Message: "operation not allowed in current phase"},
	ErrInvalidPhaseStatus: {Status: http.StatusBadRequest, Code: "adflow.invalid_phase_status", Message: "phase status is not valid for the current phase"},
	ErrAdNumbersAssigned:  {Status: http.StatusBadRequest, Code: "adflow.ad_numbers_assigned", Message: "ad numbers already assigned"},
	ErrSlugExisted:        {Status: http.StatusConflict, Code: "orgarea.slug_existed", Message: "slug already exists"},
	ErrMemberExisted:      {Status: http.StatusConflict, Code: "orgarea.member_existed", Message: "user is already a member of this area"},
	ErrPositionOccupied:   {Status: http.StatusConflict, Code: "orgarea.position_occupied", Message: "area already has a member with this position"},
	ErrFieldNameExisted:   {Status: http.StatusConflict, Code: "contenttype.field_name_existed", Message: "field name already exists for this content type"},
	ErrEmailExisted:       {Status: http.StatusConflict, Code: "creator.email_existed", Message: "email is already in use by another creator"},
	ErrStepReferenced:     {Status: http.StatusConflict, Code: "workflow.step_referenced", Message: "requests are currently on this step"},
}
