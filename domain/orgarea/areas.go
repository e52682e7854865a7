package orgarea

import (
	"context"
	"regexp"

	"marketflow/authority"
	"marketflow/bizerror"
	"marketflow/idgen"
	"marketflow/persistence"
	"marketflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	areaIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	QueryAreasFunc           = QueryAreas
	CreateAreaFunc           = CreateArea
	UpdateAreaFunc           = UpdateArea
	ToggleAreaActiveFunc     = ToggleAreaActive
	QueryAreaMembersFunc     = QueryAreaMembers
	AddMemberFunc            = AddMember
	RemoveMemberFunc         = RemoveMember
	UpdateMemberPositionFunc = UpdateMemberPosition
	LoadAreaRolesFunc        = LoadAreaRoles
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

func QueryAreas(s *session.Session) ([]Area, error) {
	var areas []Area
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where(&Area{IsActive: true}).Order("name ASC").Find(&areas).Error; err != nil {
		return nil, err
	}
	return areas, nil
}

func DetailArea(id types.ID, s *session.Session) (*Area, error) {
	area := Area{ID: id}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where(&area).First(&area).Error; err != nil {
		return nil, err
	}
	return &area, nil
}

func CreateArea(c *AreaCreation, s *session.Session) (*Area, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}
	if !slugPattern.MatchString(c.Slug) {
		return nil, bizerror.ErrInvalidArguments
	}

	area := Area{ID: idgen.NextID(areaIdWorker), Name: c.Name, Slug: c.Slug,
		Description: c.Description, IsActive: true, CreateTime: types.CurrentTimestamp()}

	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		existing := Area{}
		err := tx.Where(&Area{Slug: c.Slug}).First(&existing).Error
		if err == nil {
			return bizerror.ErrSlugExisted
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		return tx.Create(&area).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &area, nil
}

func UpdateArea(id types.ID, u *AreaUpdating, s *session.Session) (*Area, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}

	area := Area{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&Area{ID: id}).First(&area).Error; err != nil {
			return err
		}
		changes := map[string]interface{}{}
		if u.Name != "" {
			changes["name"] = u.Name
		}
		changes["description"] = u.Description
		if err := tx.Model(&Area{ID: id}).Update(changes).Error; err != nil {
			return err
		}
		return tx.Where(&Area{ID: id}).First(&area).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &area, nil
}

func ToggleAreaActive(id types.ID, s *session.Session) (*Area, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}

	area := Area{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&Area{ID: id}).First(&area).Error; err != nil {
			return err
		}
		if err := tx.Model(&Area{ID: id}).Update("is_active", !area.IsActive).Error; err != nil {
			return err
		}
		area.IsActive = !area.IsActive
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &area, nil
}

func QueryAreaMembers(areaId types.ID, s *session.Session) ([]AreaMemberDetail, error) {
	var members []AreaMemberDetail
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Model(&AreaMember{}).
		Select("area_members.*, users.name AS user_name, users.nickname AS user_nickname").
		Where(&AreaMember{AreaID: areaId}).
		Joins("LEFT JOIN users ON users.id = area_members.user_id").
		Order("area_members.position ASC").
		Scan(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// AddMember creates a membership. Assigning a second HEAD or COORDINATOR
// to the same area is rejected; callers wanting a replacement go through
// UpdateMemberPosition which demotes atomically.
func AddMember(c *AreaMemberCreation, s *session.Session) (*AreaMember, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}
	if !c.Position.IsValid() {
		return nil, bizerror.ErrInvalidArguments
	}

	member := AreaMember{ID: idgen.NextID(areaIdWorker), AreaID: c.AreaID, UserID: c.UserID,
		Position: c.Position, CreateTime: types.CurrentTimestamp()}

	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		area := Area{ID: c.AreaID}
		if err := tx.Where(&area).First(&area).Error; err != nil {
			return err
		}

		existing := AreaMember{}
		err := tx.Where(&AreaMember{AreaID: c.AreaID, UserID: c.UserID}).First(&existing).Error
		if err == nil {
			return bizerror.ErrMemberExisted
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		if c.Position == authority.PositionHead || c.Position == authority.PositionCoordinator {
			holder := AreaMember{}
			err := tx.Where(&AreaMember{AreaID: c.AreaID, Position: c.Position}).First(&holder).Error
			if err == nil {
				return bizerror.ErrPositionOccupied
			}
			if err != gorm.ErrRecordNotFound {
				return err
			}
		}

		return tx.Create(&member).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &member, nil
}

func RemoveMember(memberId types.ID, s *session.Session) error {
	if !s.Perms.HasAdminRole() {
		return bizerror.ErrForbidden
	}
	return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		member := AreaMember{ID: memberId}
		if err := tx.Where(&member).First(&member).Error; err != nil {
			return err
		}
		return tx.Delete(&AreaMember{}, &AreaMember{ID: memberId}).Error
	})
}

// UpdateMemberPosition changes a member's position. Promoting to HEAD or
// COORDINATOR demotes the current holder to STAFF inside the same
// transaction, keeping the at-most-one invariant without a client-side
// read-confirm-write window.
func UpdateMemberPosition(memberId types.ID, u *MemberPositionUpdating, s *session.Session) (*AreaMember, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}
	if !u.Position.IsValid() {
		return nil, bizerror.ErrInvalidArguments
	}

	member := AreaMember{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&AreaMember{ID: memberId}).First(&member).Error; err != nil {
			return err
		}

		if u.Position != authority.PositionStaff {
			holder := AreaMember{}
			err := tx.Where(&AreaMember{AreaID: member.AreaID, Position: u.Position}).First(&holder).Error
			if err != nil && err != gorm.ErrRecordNotFound {
				return err
			}
			if err == nil && holder.ID != memberId {
				if err := tx.Model(&AreaMember{ID: holder.ID}).Update("position", authority.PositionStaff).Error; err != nil {
					return err
				}
			}
		}

		if err := tx.Model(&AreaMember{ID: memberId}).Update("position", u.Position).Error; err != nil {
			return err
		}
		member.Position = u.Position
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &member, nil
}

// LoadAreaRoles loads the active-area memberships of a user for the session.
func LoadAreaRoles(userId types.ID) (authority.AreaRoles, error) {
	roles := []authority.AreaRole{}
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	if err := db.Model(&AreaMember{}).
		Select("area_members.area_id, areas.slug AS area_slug, area_members.position").
		Where(&AreaMember{UserID: userId}).
		Joins("INNER JOIN areas ON areas.id = area_members.area_id AND areas.is_active = 1").
		Scan(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}
