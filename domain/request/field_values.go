package request

import (
	"marketflow/bizerror"
	"marketflow/idgen"
	"marketflow/persistence"
	"marketflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	SetFieldValueFunc      = SetFieldValue
	QueryFieldVersionsFunc = QueryFieldVersions
)

// SetFieldValue mutates one field value under the resolver's edit
// permission. Values are superseded, never deleted: every call appends
// exactly one FieldValueVersion in the same transaction.
func SetFieldValue(requestId types.ID, setting *FieldValueSetting, s *session.Session) (*RequestFieldValue, error) {
	value := RequestFieldValue{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		record := Request{ID: requestId}
		if err := tx.Where(&record).First(&record).Error; err != nil {
			return err
		}
		fields, values, currentStep, err := loadFieldContext(tx, &record)
		if err != nil {
			return err
		}

		fieldExists := false
		for _, f := range fields {
			if f.ID == setting.FieldID {
				fieldExists = true
				break
			}
		}
		if !fieldExists {
			return bizerror.ErrNotFound
		}

		perms := ResolveFieldPermissions(&record, fields, values, currentStep,
			s.Identity.ID, s.Perms, s.AreaRoles)
		if !perms.CanEdit(setting.FieldID) {
			return bizerror.ErrForbidden
		}

		oldValue := ""
		existing := RequestFieldValue{}
		err = tx.Where(&RequestFieldValue{RequestID: requestId, FieldID: setting.FieldID}).
			First(&existing).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return err
		}
		now := types.CurrentTimestamp()
		if err == nil {
			oldValue = existing.Value
			if err := tx.Model(&RequestFieldValue{ID: existing.ID}).
				Update(map[string]interface{}{"value": setting.Value, "update_time": now}).Error; err != nil {
				return err
			}
			value = existing
			value.Value = setting.Value
			value.UpdateTime = now
		} else {
			value = RequestFieldValue{ID: idgen.NextID(requestIdWorker), RequestID: requestId,
				FieldID: setting.FieldID, Value: setting.Value, CreateTime: now, UpdateTime: now}
			if err := tx.Create(&value).Error; err != nil {
				return err
			}
		}

		version := FieldValueVersion{ID: idgen.NextID(requestIdWorker), RequestID: requestId,
			FieldID: setting.FieldID, OldValue: oldValue, NewValue: setting.Value,
			ChangedByID: s.Identity.ID, CreateTime: now}
		return tx.Create(&version).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &value, nil
}

// QueryFieldVersions returns the audit trail of one field on one request,
// oldest first.
func QueryFieldVersions(requestId, fieldId types.ID, s *session.Session) ([]FieldValueVersion, error) {
	versions := []FieldValueVersion{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where(&FieldValueVersion{RequestID: requestId, FieldID: fieldId}).
		Order("create_time ASC").Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}
