package creator

import (
	"marketflow/account"
	"marketflow/bizerror"
	"marketflow/idgen"
	"marketflow/persistence"
	"marketflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	creatorIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	QueryCreatorsFunc       = QueryCreators
	DetailCreatorFunc       = DetailCreator
	CreateCreatorFunc       = CreateCreator
	UpdateCreatorFunc       = UpdateCreator
	DeactivateCreatorFunc   = DeactivateCreator
	ToggleCreatorActiveFunc = ToggleCreatorActive
)

func QueryCreators(q *CreatorQuery, s *session.Session) ([]CreatorDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context).Table("creators").
		Select("creators.*, users.nickname AS responsible_name").
		Joins("LEFT JOIN users ON users.id = creators.responsible_id")
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		db = db.Where("creators.name LIKE ? OR creators.email LIKE ? OR creators.instagram LIKE ?",
			pattern, pattern, pattern)
	}
	if q.Type != "" {
		db = db.Where("creators.type = ?", q.Type)
	}
	if q.ResponsibleID != 0 {
		db = db.Where("creators.responsible_id = ?", q.ResponsibleID)
	}

	records := []CreatorDetail{}
	if err := db.Order("creators.create_time DESC").Scan(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func DetailCreator(id types.ID, s *session.Session) (*Creator, error) {
	record := Creator{ID: id}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where(&record).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func CreateCreator(c *CreatorCreation, s *session.Session) (*Creator, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}

	record := Creator{ID: idgen.NextID(creatorIdWorker), Name: c.Name, Email: c.Email,
		Phone: c.Phone, Instagram: c.Instagram, Type: c.Type, Code: c.Code, Notes: c.Notes,
		ResponsibleID: c.ResponsibleID, IsActive: true, CreateTime: types.CurrentTimestamp()}

	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		responsible := account.User{ID: c.ResponsibleID}
		if err := tx.Where(&responsible).First(&responsible).Error; err != nil {
			return err
		}

		if c.Email != "" {
			existing := Creator{}
			err := tx.Where(&Creator{Email: c.Email}).First(&existing).Error
			if err == nil {
				return bizerror.ErrEmailExisted
			}
			if err != gorm.ErrRecordNotFound {
				return err
			}
		}

		return tx.Create(&record).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

func UpdateCreator(id types.ID, u *CreatorUpdating, s *session.Session) (*Creator, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}

	record := Creator{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&Creator{ID: id}).First(&record).Error; err != nil {
			return err
		}

		if u.ResponsibleID != nil {
			responsible := account.User{ID: *u.ResponsibleID}
			if err := tx.Where(&responsible).First(&responsible).Error; err != nil {
				return err
			}
		}
		if u.Email != nil && *u.Email != "" && *u.Email != record.Email {
			existing := Creator{}
			err := tx.Where("email = ? AND id != ?", *u.Email, id).First(&existing).Error
			if err == nil {
				return bizerror.ErrEmailExisted
			}
			if err != gorm.ErrRecordNotFound {
				return err
			}
		}

		changes := map[string]interface{}{}
		if u.Name != nil {
			changes["name"] = *u.Name
		}
		if u.Email != nil {
			changes["email"] = *u.Email
		}
		if u.Phone != nil {
			changes["phone"] = *u.Phone
		}
		if u.Instagram != nil {
			changes["instagram"] = *u.Instagram
		}
		if u.Type != nil {
			changes["type"] = *u.Type
		}
		if u.Code != nil {
			changes["code"] = *u.Code
		}
		if u.Notes != nil {
			changes["notes"] = *u.Notes
		}
		if u.ResponsibleID != nil {
			changes["responsible_id"] = *u.ResponsibleID
		}
		if u.IsActive != nil {
			changes["is_active"] = *u.IsActive
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&Creator{ID: id}).Update(changes).Error; err != nil {
			return err
		}
		return tx.Where(&Creator{ID: id}).First(&record).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

// DeactivateCreator soft-deletes: creators referenced by videos stay
// resolvable for nomenclatura generation.
func DeactivateCreator(id types.ID, s *session.Session) (*Creator, error) {
	inactive := false
	return UpdateCreator(id, &CreatorUpdating{IsActive: &inactive}, s)
}

func ToggleCreatorActive(id types.ID, s *session.Session) (*Creator, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}

	record := Creator{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&Creator{ID: id}).First(&record).Error; err != nil {
			return err
		}
		if err := tx.Model(&Creator{ID: id}).Update("is_active", !record.IsActive).Error; err != nil {
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
