package bizerror

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrInvalidArguments = errors.New("invalid arguments")

	ErrInvalidState           = errors.New("invalid state")
	ErrInvalidReason          = errors.New("invalid reason")
	ErrInvalidTargetStep      = errors.New("invalid target step")
	ErrConcurrentModification = errors.New("concurrent modification")

	ErrEmptyProject       = errors.New("project has no videos")
	ErrPhaseLocked        = errors.New("operation not allowed in current phase")
	ErrInvalidPhaseStatus = errors.New("invalid phase status")
	ErrAdNumbersAssigned  = errors.New("ad numbers already assigned")

	ErrSlugExisted      = errors.New("slug existed")
	ErrMemberExisted    = errors.New("member existed")
	ErrPositionOccupied = errors.New("position occupied")
	ErrFieldNameExisted = errors.New("field name existed")
	ErrEmailExisted     = errors.New("email existed")
	ErrStepReferenced   = errors.New("step is referenced by requests")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}

// ErrMissingRequiredFields blocks a workflow step exit until the named
// fields are filled. FieldNames are surfaced verbatim to the caller.
type ErrMissingRequiredFields struct {
	FieldNames []string
}

func (e *ErrMissingRequiredFields) Error() string {
	return "missing required fields: " + strings.Join(e.FieldNames, ", ")
}
func (e *ErrMissingRequiredFields) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "workflow.missing_required_fields",
		Message: "required fields must be filled before exiting the current step", Data: e.FieldNames}
}

type ErrPhaseIncomplete struct {
	VideosReady int
	VideosTotal int
}

func (e *ErrPhaseIncomplete) Error() string {
	return "cannot advance: " + strconv.Itoa(e.VideosReady) + "/" + strconv.Itoa(e.VideosTotal) + " videos ready"
}
func (e *ErrPhaseIncomplete) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "adflow.phase_incomplete",
		Message: e.Error(), Data: map[string]int{"videosReady": e.VideosReady, "videosTotal": e.VideosTotal}}
}
