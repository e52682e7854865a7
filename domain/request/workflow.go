package request

import (
	"marketflow/authority"
	"marketflow/bizerror"
	"marketflow/domain/contenttype"
	"marketflow/event"
	"marketflow/persistence"
	"marketflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	AdvanceStepFunc        = AdvanceStep
	RejectToStepFunc       = RejectToStep
	ResolvePermissionsFunc = ResolvePermissions
)

// CanApproveStep is the approver predicate: SUPER_ADMIN always passes; a
// step without an approver area is open to everyone; otherwise the actor
// needs a membership in the area with one of the listed positions (empty
// list means any position).
func CanApproveStep(step *contenttype.WorkflowStep, perms authority.Permissions, areaRoles authority.AreaRoles) bool {
	if perms.HasSuperAdminRole() {
		return true
	}
	if step.ApproverAreaID == nil {
		return true
	}
	return areaRoles.HasAreaPosition(*step.ApproverAreaID, []authority.Position(step.ApproverPositions))
}

// AdvanceStep moves a request one step forward, or approves it when the
// current step is final. The status/step update is conditional on the state
// read inside the transaction; a lost race surfaces as ErrConcurrentModification.
func AdvanceStep(id types.ID, s *session.Session) (*Request, error) {
	record := Request{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&Request{ID: id}).First(&record).Error; err != nil {
			return err
		}
		if record.Status != StatusPending && record.Status != StatusInReview {
			return bizerror.ErrInvalidState
		}
		if record.CurrentStepID == nil {
			return bizerror.ErrInvalidState
		}

		currentStep := contenttype.WorkflowStep{ID: *record.CurrentStepID}
		if err := tx.Where(&currentStep).First(&currentStep).Error; err != nil {
			return err
		}
		if !CanApproveStep(&currentStep, s.Perms, s.AreaRoles) {
			return bizerror.ErrForbidden
		}

		missing, err := missingRequiredFields(tx, &record, &currentStep)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return &bizerror.ErrMissingRequiredFields{FieldNames: missing}
		}

		changes := map[string]interface{}{}
		newOrder := record.CurrentStepOrder
		if currentStep.IsFinalStep {
			changes["status"] = StatusApproved
			changes["current_step_id"] = nil
		} else {
			nextStep := contenttype.WorkflowStep{}
			err := tx.Where("content_type_id = ? AND step_order > ? AND is_active = ?",
				record.ContentTypeID, currentStep.StepOrder, true).
				Order("step_order ASC").First(&nextStep).Error
			if err == gorm.ErrRecordNotFound {
				return bizerror.ErrInvalidState
			}
			if err != nil {
				return err
			}
			newOrder = nextStep.StepOrder
			changes["status"] = statusForStepOrder(nextStep.StepOrder)
			changes["current_step_id"] = nextStep.ID
			changes["current_step_order"] = nextStep.StepOrder
		}

		query := tx.Model(&Request{}).
			Where("id = ? AND status = ? AND current_step_id = ?", id, record.Status, *record.CurrentStepID).
			Update(changes)
		if query.Error != nil {
			return query.Error
		}
		if query.RowsAffected != 1 {
			return bizerror.ErrConcurrentModification
		}

		if err := event.CreateEvent(event.SourceTypeRequest, id, record.Title, event.EventCategoryAdvanced,
			stepOrderProperty(record.CurrentStepOrder, newOrder), "", &s.Identity, tx); err != nil {
			return err
		}
		return tx.Where(&Request{ID: id}).First(&record).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

// RejectToStep sends a request back to an earlier step. Rejection only moves
// backward, needs a reason of at least 10 characters, and is not available
// on the first step.
func RejectToStep(id types.ID, r *Rejection, s *session.Session) (*Request, error) {
	record := Request{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&Request{ID: id}).First(&record).Error; err != nil {
			return err
		}
		if record.Status != StatusPending && record.Status != StatusInReview {
			return bizerror.ErrInvalidState
		}
		if record.CurrentStepID == nil {
			return bizerror.ErrInvalidState
		}

		currentStep := contenttype.WorkflowStep{ID: *record.CurrentStepID}
		if err := tx.Where(&currentStep).First(&currentStep).Error; err != nil {
			return err
		}
		if !CanApproveStep(&currentStep, s.Perms, s.AreaRoles) {
			return bizerror.ErrForbidden
		}
		if record.CurrentStepOrder <= 0 {
			return bizerror.ErrInvalidTargetStep
		}
		if len(r.Reason) < 10 {
			return bizerror.ErrInvalidReason
		}

		targetStep := contenttype.WorkflowStep{}
		err := tx.Where(&contenttype.WorkflowStep{ID: r.TargetStepID,
			ContentTypeID: record.ContentTypeID, IsActive: true}).First(&targetStep).Error
		if err == gorm.ErrRecordNotFound {
			return bizerror.ErrInvalidTargetStep
		}
		if err != nil {
			return err
		}
		if targetStep.StepOrder >= record.CurrentStepOrder {
			return bizerror.ErrInvalidTargetStep
		}

		query := tx.Model(&Request{}).
			Where("id = ? AND status = ? AND current_step_id = ?", id, record.Status, *record.CurrentStepID).
			Update(map[string]interface{}{
				"status": StatusRejected, "current_step_id": targetStep.ID,
				"current_step_order": targetStep.StepOrder, "rejection_reason": r.Reason,
			})
		if query.Error != nil {
			return query.Error
		}
		if query.RowsAffected != 1 {
			return bizerror.ErrConcurrentModification
		}

		if err := event.CreateEvent(event.SourceTypeRequest, id, record.Title, event.EventCategoryRejected,
			stepOrderProperty(record.CurrentStepOrder, targetStep.StepOrder), r.Reason, &s.Identity, tx); err != nil {
			return err
		}
		return tx.Where(&Request{ID: id}).First(&record).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

// ResolvePermissions loads the request context and runs the pure resolver
// for the acting session. Exposed as a UI probe; mutations re-check on their
// own inside their transactions.
func ResolvePermissions(id types.ID, s *session.Session) (*FieldPermissions, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	record := Request{ID: id}
	if err := db.Where(&record).First(&record).Error; err != nil {
		return nil, err
	}
	fields, values, currentStep, err := loadFieldContext(db, &record)
	if err != nil {
		return nil, err
	}
	perms := ResolveFieldPermissions(&record, fields, values, currentStep, s.Identity.ID, s.Perms, s.AreaRoles)
	return &perms, nil
}

func loadFieldContext(db *gorm.DB, record *Request) ([]contenttype.ContentTypeField,
	[]RequestFieldValue, *contenttype.WorkflowStep, error) {

	fields := []contenttype.ContentTypeField{}
	if err := db.Where(&contenttype.ContentTypeField{ContentTypeID: record.ContentTypeID, IsActive: true}).
		Order("display_order ASC").Find(&fields).Error; err != nil {
		return nil, nil, nil, err
	}
	values := []RequestFieldValue{}
	if err := db.Where(&RequestFieldValue{RequestID: record.ID}).Find(&values).Error; err != nil {
		return nil, nil, nil, err
	}
	var currentStep *contenttype.WorkflowStep
	if record.CurrentStepID != nil {
		step := contenttype.WorkflowStep{ID: *record.CurrentStepID}
		if err := db.Where(&step).First(&step).Error; err != nil {
			return nil, nil, nil, err
		}
		currentStep = &step
	}
	return fields, values, currentStep, nil
}

func missingRequiredFields(tx *gorm.DB, record *Request, step *contenttype.WorkflowStep) ([]string, error) {
	if len(step.RequiredFieldsToExit) == 0 {
		return nil, nil
	}
	fields, values, _, err := loadFieldContext(tx, record)
	if err != nil {
		return nil, err
	}
	valueByFieldId := map[types.ID]string{}
	for _, v := range values {
		valueByFieldId[v.FieldID] = v.Value
	}
	missing := []string{}
	for _, name := range step.RequiredFieldsToExit {
		for _, f := range fields {
			if f.Name == name && IsEmptyValue(valueByFieldId[f.ID]) {
				missing = append(missing, name)
			}
		}
	}
	return missing, nil
}
