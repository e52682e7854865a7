package request

import (
	"encoding/json"

	"marketflow/authority"
	"marketflow/domain/contenttype"

	"github.com/fundwit/go-commons/types"
)

// FieldPermissions is the answer of ResolveFieldPermissions: which fields
// the actor may edit right now, which required fields are still empty, and
// whether the request could exit its current step.
type FieldPermissions struct {
	EditableFieldIds []types.ID `json:"editableFieldIds"`
	RequiredFieldIds []types.ID `json:"requiredFieldIds"`
	CanAdvance       bool       `json:"canAdvance"`
}

func (p *FieldPermissions) CanEdit(fieldId types.ID) bool {
	for _, id := range p.EditableFieldIds {
		if id == fieldId {
			return true
		}
	}
	return false
}

// ResolveFieldPermissions is pure and re-derived on every call.
//
// Editability by status (exactly one branch applies):
//   - DRAFT: everything, creator only.
//   - REJECTED: everything for the creator; members of the current step's
//     approver area get the step's fields plus unassigned fields.
//   - PENDING / IN_REVIEW: step fields plus unassigned fields, members of the
//     step's approver area only (any membership when the step names no area).
//   - APPROVED: everything, admins only.
//   - CANCELLED: nothing.
func ResolveFieldPermissions(req *Request, fields []contenttype.ContentTypeField,
	values []RequestFieldValue, currentStep *contenttype.WorkflowStep,
	actorId types.ID, perms authority.Permissions, areaRoles authority.AreaRoles) FieldPermissions {

	isCreator := req.CreatedByID == actorId
	isAdmin := perms.HasAdminRole()

	isStepAreaMember := len(areaRoles) > 0
	if currentStep != nil && currentStep.ApproverAreaID != nil {
		isStepAreaMember = areaRoles.HasArea(*currentStep.ApproverAreaID)
	}

	editable := []types.ID{}
	switch req.Status {
	case StatusDraft:
		if isCreator {
			editable = allFieldIds(fields)
		}
	case StatusRejected:
		if isCreator {
			editable = allFieldIds(fields)
		} else if req.CurrentStepID != nil && isStepAreaMember {
			editable = stepFieldIds(fields, *req.CurrentStepID)
		}
	case StatusPending, StatusInReview:
		if req.CurrentStepID != nil && isStepAreaMember {
			editable = stepFieldIds(fields, *req.CurrentStepID)
		}
	case StatusApproved:
		if isAdmin {
			editable = allFieldIds(fields)
		}
	}

	required := []types.ID{}
	if currentStep != nil && len(currentStep.RequiredFieldsToExit) > 0 {
		valueByFieldId := map[types.ID]string{}
		for _, v := range values {
			valueByFieldId[v.FieldID] = v.Value
		}
		for _, f := range fields {
			if currentStep.RequiredFieldsToExit.Contains(f.Name) && IsEmptyValue(valueByFieldId[f.ID]) {
				required = append(required, f.ID)
			}
		}
	}

	return FieldPermissions{
		EditableFieldIds: editable,
		RequiredFieldIds: required,
		CanAdvance:       len(required) == 0,
	}
}

func allFieldIds(fields []contenttype.ContentTypeField) []types.ID {
	ids := make([]types.ID, 0, len(fields))
	for _, f := range fields {
		ids = append(ids, f.ID)
	}
	return ids
}

func stepFieldIds(fields []contenttype.ContentTypeField, stepId types.ID) []types.ID {
	ids := []types.ID{}
	for _, f := range fields {
		if f.AssignedStepID == nil || *f.AssignedStepID == stepId {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

// IsEmptyValue reports whether a stored JSON field value counts as empty:
// absent, null, empty string or empty array.
func IsEmptyValue(raw string) bool {
	if raw == "" {
		return true
	}
	var decoded interface{}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		// not JSON, the raw text itself is a non-empty value
		return false
	}
	switch v := decoded.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []interface{}:
		return len(v) == 0
	}
	return false
}
