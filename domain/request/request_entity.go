package request

import (
	"marketflow/event"

	"github.com/fundwit/go-commons/types"
)

const (
	StatusDraft     = "DRAFT"
	StatusPending   = "PENDING"
	StatusInReview  = "IN_REVIEW"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"

	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// Request is one content request moving through the approval sequence of its
// content type. CurrentStepID is nil in DRAFT and again once APPROVED.
type Request struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Title         string   `json:"title"`
	Description   string   `json:"description" sql:"type:TEXT"`
	ContentTypeID types.ID `json:"contentTypeId" gorm:"index:request_content_type_idx" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Origin        string   `json:"origin"`
	Priority      string   `json:"priority"`

	Deadline *types.Timestamp `json:"deadline" sql:"type:DATETIME(6)"`

	Status           string    `json:"status" gorm:"index:request_status_idx"`
	CurrentStepID    *types.ID `json:"currentStepId" sql:"type:BIGINT UNSIGNED"`
	CurrentStepOrder int       `json:"currentStepOrder"`
	RejectionReason  string    `json:"rejectionReason" sql:"type:TEXT"`

	CreatedByID types.ID        `json:"createdById" sql:"type:BIGINT UNSIGNED NOT NULL"`
	CreateTime  types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

// RequestFieldValue holds the current value of one custom field on one
// request. Value is the JSON encoding of the field content; mutations go
// through SetFieldValue which appends a FieldValueVersion per change.
type RequestFieldValue struct {
	ID        types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	RequestID types.ID `json:"requestId" gorm:"unique_index:request_field_idx" sql:"type:BIGINT UNSIGNED NOT NULL"`
	FieldID   types.ID `json:"fieldId" gorm:"unique_index:request_field_idx" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Value string `json:"value" sql:"type:TEXT"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	UpdateTime types.Timestamp `json:"updateTime" sql:"type:DATETIME(6) NOT NULL"`
}

// FieldValueVersion is the append-only audit trail of field mutations.
type FieldValueVersion struct {
	ID        types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	RequestID types.ID `json:"requestId" gorm:"index:version_request_idx" sql:"type:BIGINT UNSIGNED NOT NULL"`
	FieldID   types.ID `json:"fieldId" sql:"type:BIGINT UNSIGNED NOT NULL"`

	OldValue string `json:"oldValue" sql:"type:TEXT"`
	NewValue string `json:"newValue" sql:"type:TEXT"`

	ChangedByID types.ID        `json:"changedById" sql:"type:BIGINT UNSIGNED NOT NULL"`
	CreateTime  types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type RequestCreation struct {
	Title         string   `json:"title" validate:"required,min=3,max=200"`
	Description   string   `json:"description" validate:"required,min=10,max=5000"`
	ContentTypeID types.ID `json:"contentTypeId" validate:"required"`
	Origin        string   `json:"origin" validate:"required"`

	Priority string           `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Deadline *types.Timestamp `json:"deadline"`
}

type RequestUpdating struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string `json:"description" validate:"omitempty,min=10,max=5000"`
	Origin      *string `json:"origin"`

	Priority *string          `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Deadline *types.Timestamp `json:"deadline"`
}

type RequestQuery struct {
	Status        string   `json:"status" form:"status"`
	ContentTypeID types.ID `json:"contentTypeId" form:"contentTypeId"`
	Search        string   `json:"search" form:"search"`
}

type Rejection struct {
	TargetStepID types.ID `json:"targetStepId" validate:"required"`
	Reason       string   `json:"reason" validate:"required"`
}

type FieldValueSetting struct {
	FieldID types.ID `json:"fieldId" validate:"required"`
	// Value is the JSON encoding of the new field content.
	Value string `json:"value"`
}

type RequestDetail struct {
	Request

	CreatedByName string              `json:"createdByName"`
	FieldValues   []RequestFieldValue `json:"fieldValues"`
	History       []event.EventRecord `json:"history"`
}

// statusForStepOrder maps a step position to the in-progress status label:
// PENDING while waiting at the first step, IN_REVIEW once past it.
func statusForStepOrder(order int) string {
	if order == 0 {
		return StatusPending
	}
	return StatusInReview
}

func isTerminalStatus(status string) bool {
	return status == StatusApproved || status == StatusCancelled
}
