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
	QueryFieldsFunc   = QueryFields
	CreateFieldFunc   = CreateField
	UpdateFieldFunc   = UpdateField
	DeleteFieldFunc   = DeleteField
	ReorderFieldsFunc = ReorderFields
)

func QueryFields(contentTypeId types.ID, s *session.Session) ([]ContentTypeField, error) {
	var fields []ContentTypeField
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where(&ContentTypeField{ContentTypeID: contentTypeId, IsActive: true}).
		Order("display_order ASC").Find(&fields).Error; err != nil {
		return nil, err
	}
	return fields, nil
}

func CreateField(c *FieldCreation, s *session.Session) (*ContentTypeField, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}

	field := ContentTypeField{ID: idgen.NextID(contentTypeIdWorker), ContentTypeID: c.ContentTypeID,
		Name: c.Name, Label: c.Label, FieldType: c.FieldType, Required: c.Required,
		DisplayOrder: c.DisplayOrder, Options: FieldNames(c.Options), Placeholder: c.Placeholder,
		HelpText: c.HelpText, DefaultValue: c.DefaultValue, AssignedStepID: c.AssignedStepID,
		IsActive: true, CreateTime: types.CurrentTimestamp()}
	if field.Options == nil {
		field.Options = FieldNames{}
	}

	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		contentType := ContentType{ID: c.ContentTypeID}
		if err := tx.Where(&contentType).First(&contentType).Error; err != nil {
			return err
		}

		existing := ContentTypeField{}
		err := tx.Where(&ContentTypeField{ContentTypeID: c.ContentTypeID, Name: c.Name}).First(&existing).Error
		if err == nil {
			return bizerror.ErrFieldNameExisted
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		return tx.Create(&field).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &field, nil
}

func UpdateField(id types.ID, u *FieldUpdating, s *session.Session) (*ContentTypeField, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}

	field := ContentTypeField{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&ContentTypeField{ID: id}).First(&field).Error; err != nil {
			return err
		}

		changes := map[string]interface{}{}
		if u.Label != nil {
			changes["label"] = *u.Label
		}
		if u.Required != nil {
			changes["required"] = *u.Required
		}
		if u.DisplayOrder != nil {
			changes["display_order"] = *u.DisplayOrder
		}
		if u.Options != nil {
			changes["options"] = FieldNames(*u.Options)
		}
		if u.Placeholder != nil {
			changes["placeholder"] = *u.Placeholder
		}
		if u.HelpText != nil {
			changes["help_text"] = *u.HelpText
		}
		if u.DefaultValue != nil {
			changes["default_value"] = *u.DefaultValue
		}
		if u.ClearAssignedStep {
			changes["assigned_step_id"] = nil
		} else if u.AssignedStepID != nil {
			changes["assigned_step_id"] = *u.AssignedStepID
		}
		if u.IsActive != nil {
			changes["is_active"] = *u.IsActive
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&ContentTypeField{ID: id}).Update(changes).Error; err != nil {
			return err
		}
		return tx.Where(&ContentTypeField{ID: id}).First(&field).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &field, nil
}

// DeleteField drops the field definition, or only deactivates it when
// versioned request values still reference it.
func DeleteField(id types.ID, s *session.Session) (*FieldDeletion, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}

	result := FieldDeletion{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		field := ContentTypeField{ID: id}
		if err := tx.Where(&field).First(&field).Error; err != nil {
			return err
		}

		valueCount := 0
		if err := tx.Table("request_field_values").Where("field_id = ?", id).Count(&valueCount).Error; err != nil {
			return err
		}
		if valueCount > 0 {
			result.Deactivated = true
			return tx.Model(&ContentTypeField{ID: id}).Update("is_active", false).Error
		}
		result.Deleted = true
		return tx.Delete(&ContentTypeField{}, &ContentTypeField{ID: id}).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &result, nil
}

func ReorderFields(r *FieldsReordering, s *session.Session) ([]ContentTypeField, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}

	var fields []ContentTypeField
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		for index, fieldId := range r.FieldIDs {
			field := ContentTypeField{ID: fieldId, ContentTypeID: r.ContentTypeID}
			if err := tx.Where(&field).First(&field).Error; err != nil {
				return err
			}
			if err := tx.Model(&ContentTypeField{ID: fieldId}).Update("display_order", index).Error; err != nil {
				return err
			}
		}
		return tx.Where(&ContentTypeField{ContentTypeID: r.ContentTypeID, IsActive: true}).
			Order("display_order ASC").Find(&fields).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return fields, nil
}
