package contenttype

import (
	"marketflow/bizerror"
	"marketflow/idgen"
	"marketflow/persistence"
	"marketflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	QueryStepsFunc   = QuerySteps
	CreateStepFunc   = CreateStep
	UpdateStepFunc   = UpdateStep
	DeleteStepFunc   = DeleteStep
	ReorderStepsFunc = ReorderSteps
)

func QuerySteps(contentTypeId types.ID, s *session.Session) ([]WorkflowStep, error) {
	var steps []WorkflowStep
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where(&WorkflowStep{ContentTypeID: contentTypeId, IsActive: true}).
		Order("step_order ASC").Find(&steps).Error; err != nil {
		return nil, err
	}
	return steps, nil
}

func DetailStep(id types.ID, s *session.Session) (*WorkflowStep, error) {
	step := WorkflowStep{ID: id}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where(&step).First(&step).Error; err != nil {
		return nil, err
	}
	return &step, nil
}

func CreateStep(c *StepCreation, s *session.Session) (*WorkflowStep, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}

	step := WorkflowStep{ID: idgen.NextID(contentTypeIdWorker), ContentTypeID: c.ContentTypeID,
		Name: c.Name, Description: c.Description, StepOrder: c.StepOrder,
		RequiredFieldsToEnter: FieldNames(c.RequiredFieldsToEnter),
		RequiredFieldsToExit:  FieldNames(c.RequiredFieldsToExit),
		ApproverAreaID:        c.ApproverAreaID, ApproverPositions: Positions(c.ApproverPositions),
		IsFinalStep: c.IsFinalStep, IsActive: true, CreateTime: types.CurrentTimestamp()}
	if step.RequiredFieldsToEnter == nil {
		step.RequiredFieldsToEnter = FieldNames{}
	}
	if step.RequiredFieldsToExit == nil {
		step.RequiredFieldsToExit = FieldNames{}
	}
	if step.ApproverPositions == nil {
		step.ApproverPositions = Positions{}
	}

	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		contentType := ContentType{ID: c.ContentTypeID}
		if err := tx.Where(&contentType).First(&contentType).Error; err != nil {
			return err
		}
		return tx.Create(&step).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &step, nil
}

func UpdateStep(id types.ID, u *StepUpdating, s *session.Session) (*WorkflowStep, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}

	step := WorkflowStep{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&WorkflowStep{ID: id}).First(&step).Error; err != nil {
			return err
		}

		changes := map[string]interface{}{}
		if u.Name != nil {
			changes["name"] = *u.Name
		}
		if u.Description != nil {
			changes["description"] = *u.Description
		}
		if u.StepOrder != nil {
			changes["step_order"] = *u.StepOrder
		}
		if u.RequiredFieldsToEnter != nil {
			changes["required_fields_to_enter"] = FieldNames(*u.RequiredFieldsToEnter)
		}
		if u.RequiredFieldsToExit != nil {
			changes["required_fields_to_exit"] = FieldNames(*u.RequiredFieldsToExit)
		}
		if u.ClearApproverArea {
			changes["approver_area_id"] = nil
		} else if u.ApproverAreaID != nil {
			changes["approver_area_id"] = *u.ApproverAreaID
		}
		if u.ApproverPositions != nil {
			changes["approver_positions"] = Positions(*u.ApproverPositions)
		}
		if u.IsFinalStep != nil {
			changes["is_final_step"] = *u.IsFinalStep
		}
		if u.IsActive != nil {
			changes["is_active"] = *u.IsActive
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&WorkflowStep{ID: id}).Update(changes).Error; err != nil {
			return err
		}
		return tx.Where(&WorkflowStep{ID: id}).First(&step).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &step, nil
}

// DeleteStep drops a step definition. Steps currently holding requests
// cannot be deleted.
func DeleteStep(id types.ID, s *session.Session) error {
	if !s.Perms.HasAdminRole() {
		return bizerror.ErrForbidden
	}

	return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		step := WorkflowStep{ID: id}
		if err := tx.Where(&step).First(&step).Error; err != nil {
			return err
		}

		requestsOnStep := 0
		if err := tx.Table("requests").Where("current_step_id = ?", id).Count(&requestsOnStep).Error; err != nil {
			return err
		}
		if requestsOnStep > 0 {
			return bizerror.ErrStepReferenced
		}

		return tx.Delete(&WorkflowStep{}, &WorkflowStep{ID: id}).Error
	})
}

// ReorderSteps rewrites step_order to match the given id sequence.
func ReorderSteps(r *StepsReordering, s *session.Session) ([]WorkflowStep, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}

	var steps []WorkflowStep
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		for index, stepId := range r.StepIDs {
			step := WorkflowStep{ID: stepId, ContentTypeID: r.ContentTypeID}
			if err := tx.Where(&step).First(&step).Error; err != nil {
				return err
			}
			if err := tx.Model(&WorkflowStep{ID: stepId}).Update("step_order", index).Error; err != nil {
				return err
			}
		}
		return tx.Where(&WorkflowStep{ContentTypeID: r.ContentTypeID, IsActive: true}).
			Order("step_order ASC").Find(&steps).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return steps, nil
}
