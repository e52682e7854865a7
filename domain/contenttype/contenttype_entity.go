package contenttype

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"marketflow/authority"

	"github.com/fundwit/go-commons/types"
)

const (
	FieldTypeText        = "TEXT"
	FieldTypeTextarea    = "TEXTAREA"
	FieldTypeNumber      = "NUMBER"
	FieldTypeDate        = "DATE"
	FieldTypeSelect      = "SELECT"
	FieldTypeMultiSelect = "MULTI_SELECT"
	FieldTypeCheckbox    = "CHECKBOX"
	FieldTypeUrl         = "URL"
)

type ContentType struct {
	ID          types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Name        string   `json:"name" gorm:"unique_index:content_type_name_idx"`
	Description string   `json:"description"`
	IsActive    bool     `json:"isActive"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

// WorkflowStep is one ordered stage of a content type's approval sequence.
// StepOrder is 0-based and unique among the active steps of a content type.
type WorkflowStep struct {
	ID            types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	ContentTypeID types.ID `json:"contentTypeId" gorm:"index:step_content_type_idx" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Name        string `json:"name"`
	Description string `json:"description"`
	StepOrder   int    `json:"order" gorm:"column:step_order"`

	RequiredFieldsToEnter FieldNames `json:"requiredFieldsToEnter" sql:"type:TEXT"`
	RequiredFieldsToExit  FieldNames `json:"requiredFieldsToExit" sql:"type:TEXT"`

	// ApproverAreaID nil means anyone may approve this step.
	ApproverAreaID *types.ID `json:"approverAreaId" sql:"type:BIGINT UNSIGNED"`
	// ApproverPositions empty means any position within the approver area.
	ApproverPositions Positions `json:"approverPositions" sql:"type:TEXT"`

	IsFinalStep bool `json:"isFinalStep"`
	IsActive    bool `json:"isActive"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type ContentTypeField struct {
	ID            types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	ContentTypeID types.ID `json:"contentTypeId" gorm:"index:field_content_type_idx" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Name      string `json:"name"`
	Label     string `json:"label"`
	FieldType string `json:"fieldType"`

	Required     bool       `json:"required"`
	DisplayOrder int        `json:"order" gorm:"column:display_order"`
	Options      FieldNames `json:"options" sql:"type:TEXT"`
	Placeholder  string     `json:"placeholder"`
	HelpText     string     `json:"helpText"`
	DefaultValue string     `json:"defaultValue"`

	// AssignedStepID nil means the field is unassigned and editable by any
	// area member while the request is in the step sequence.
	AssignedStepID *types.ID `json:"assignedStepId" sql:"type:BIGINT UNSIGNED"`
	IsActive       bool      `json:"isActive"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type ContentTypeCreation struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description"`
}

type ContentTypeUpdating struct {
	Name        string `json:"name" validate:"omitempty,min=1,max=100"`
	Description string `json:"description"`
}

type StepCreation struct {
	ContentTypeID types.ID `json:"contentTypeId" validate:"required"`
	Name          string   `json:"name" validate:"required,min=1,max=100"`
	Description   string   `json:"description"`
	StepOrder     int      `json:"order" validate:"min=0"`

	RequiredFieldsToEnter []string             `json:"requiredFieldsToEnter"`
	RequiredFieldsToExit  []string             `json:"requiredFieldsToExit"`
	ApproverAreaID        *types.ID            `json:"approverAreaId"`
	ApproverPositions     []authority.Position `json:"approverPositions"`
	IsFinalStep           bool                 `json:"isFinalStep"`
}

type StepUpdating struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	StepOrder   *int    `json:"order" validate:"omitempty,min=0"`

	RequiredFieldsToEnter *[]string             `json:"requiredFieldsToEnter"`
	RequiredFieldsToExit  *[]string             `json:"requiredFieldsToExit"`
	ApproverAreaID        *types.ID             `json:"approverAreaId"`
	ClearApproverArea     bool                  `json:"clearApproverArea"`
	ApproverPositions     *[]authority.Position `json:"approverPositions"`
	IsFinalStep           *bool                 `json:"isFinalStep"`
	IsActive              *bool                 `json:"isActive"`
}

type StepsReordering struct {
	ContentTypeID types.ID   `json:"contentTypeId" validate:"required"`
	StepIDs       []types.ID `json:"stepIds" validate:"required,min=1"`
}

type FieldCreation struct {
	ContentTypeID types.ID `json:"contentTypeId" validate:"required"`
	Name          string   `json:"name" validate:"required,max=100"`
	Label         string   `json:"label" validate:"required,min=1,max=200"`
	FieldType     string   `json:"fieldType" validate:"required,oneof=TEXT TEXTAREA NUMBER DATE SELECT MULTI_SELECT CHECKBOX URL"`

	Required       bool      `json:"required"`
	DisplayOrder   int       `json:"order"`
	Options        []string  `json:"options"`
	Placeholder    string    `json:"placeholder"`
	HelpText       string    `json:"helpText"`
	DefaultValue   string    `json:"defaultValue"`
	AssignedStepID *types.ID `json:"assignedStepId"`
}

type FieldUpdating struct {
	Label        *string   `json:"label" validate:"omitempty,min=1,max=200"`
	Required     *bool     `json:"required"`
	DisplayOrder *int      `json:"order"`
	Options      *[]string `json:"options"`
	Placeholder  *string   `json:"placeholder"`
	HelpText     *string   `json:"helpText"`
	DefaultValue *string   `json:"defaultValue"`

	AssignedStepID    *types.ID `json:"assignedStepId"`
	ClearAssignedStep bool      `json:"clearAssignedStep"`
	IsActive          *bool     `json:"isActive"`
}

type FieldsReordering struct {
	ContentTypeID types.ID   `json:"contentTypeId" validate:"required"`
	FieldIDs      []types.ID `json:"fieldIds" validate:"required,min=1"`
}

// FieldDeletion tells the caller whether the field row was dropped or only
// deactivated because versioned values reference it.
type FieldDeletion struct {
	Deleted     bool `json:"deleted"`
	Deactivated bool `json:"deactivated"`
}

type FieldNames []string

func (t FieldNames) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (t *FieldNames) Scan(v interface{}) error {
	return scanJSONColumn(v, t)
}

func (t FieldNames) Contains(name string) bool {
	for _, n := range t {
		if n == name {
			return true
		}
	}
	return false
}

type Positions []authority.Position

func (t Positions) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (t *Positions) Scan(v interface{}) error {
	return scanJSONColumn(v, t)
}

func (t Positions) Contains(p authority.Position) bool {
	for _, c := range t {
		if c == p {
			return true
		}
	}
	return false
}

func scanJSONColumn(v interface{}, target interface{}) error {
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	return json.Unmarshal([]byte(jsonString), target)
}
