package contenttype

import (
	"marketflow/bizerror"
	"marketflow/idgen"
	"marketflow/persistence"
	"marketflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	contentTypeIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	QueryContentTypesFunc       = QueryContentTypes
	CreateContentTypeFunc       = CreateContentType
	UpdateContentTypeFunc       = UpdateContentType
	ToggleContentTypeActiveFunc = ToggleContentTypeActive
)

func QueryContentTypes(s *session.Session) ([]ContentType, error) {
	var records []ContentType
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where(&ContentType{IsActive: true}).Order("name ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func DetailContentType(id types.ID, s *session.Session) (*ContentType, error) {
	record := ContentType{ID: id}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where(&record).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func CreateContentType(c *ContentTypeCreation, s *session.Session) (*ContentType, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}
	record := ContentType{ID: idgen.NextID(contentTypeIdWorker), Name: c.Name,
		Description: c.Description, IsActive: true, CreateTime: types.CurrentTimestamp()}
	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func UpdateContentType(id types.ID, u *ContentTypeUpdating, s *session.Session) (*ContentType, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}

	record := ContentType{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&ContentType{ID: id}).First(&record).Error; err != nil {
			return err
		}
		changes := map[string]interface{}{"description": u.Description}
		if u.Name != "" {
			changes["name"] = u.Name
		}
		if err := tx.Model(&ContentType{ID: id}).Update(changes).Error; err != nil {
			return err
		}
		return tx.Where(&ContentType{ID: id}).First(&record).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

func ToggleContentTypeActive(id types.ID, s *session.Session) (*ContentType, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}

	record := ContentType{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&ContentType{ID: id}).First(&record).Error; err != nil {
			return err
		}
		if err := tx.Model(&ContentType{ID: id}).Update("is_active", !record.IsActive).Error; err != nil {
			return err
		}
		record.IsActive = !record.IsActive
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}
