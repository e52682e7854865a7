package account

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"marketflow/authority"
	"marketflow/bizerror"
	"marketflow/domain/orgarea"
	"marketflow/idgen"
	"marketflow/misc"
	"marketflow/persistence"
	"marketflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	userIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateUserFunc            = CreateUser
	QueryUsersFunc            = QueryUsers
	UpdateUserFunc            = UpdateUser
	UpdateBasicAuthSecretFunc = UpdateBasicAuthSecret
	LoadPermsFunc             = LoadPerms
)

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

func CreateUser(c *UserCreation, s *session.Session) (*UserInfo, error) {
	if !s.Perms.HasAdminRole() {
		return nil, bizerror.ErrForbidden
	}
	if c.Role == authority.RoleSuperAdmin && !s.Perms.HasSuperAdminRole() {
		return nil, bizerror.ErrForbidden
	}

	user := User{ID: idgen.NextID(userIdWorker), Name: c.Name, Nickname: c.Nickname,
		Secret: HashSha256(c.Secret), Role: c.Role, CreateTime: types.CurrentTimestamp()}
	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).Create(&user).Error; err != nil {
		return nil, err
	}
	return &UserInfo{ID: user.ID, Name: user.Name, Nickname: user.Nickname, Role: user.Role}, nil
}

func QueryUsers(s *session.Session) (*[]UserInfo, error) {
	var users []UserInfo
	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).Model(&User{}).Scan(&users).Error; err != nil {
		return nil, err
	}
	return &users, nil
}

func UpdateUser(userId types.ID, u *UserUpdation, s *session.Session) error {
	if !s.Perms.HasAdminRole() && userId != s.Identity.ID {
		return bizerror.ErrForbidden
	}

	return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		user := User{ID: userId}
		if err := tx.Where(&user).First(&user).Error; err != nil {
			return err
		}
		return tx.Model(&user).Update(&User{Nickname: u.Nickname}).Error
	})
}

func UpdateBasicAuthSecret(u *BasicAuthUpdating, s *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	user := User{}
	if err := db.Model(&User{}).Where(&User{ID: s.Identity.ID, Secret: HashSha256(u.OriginalSecret)}).
		Scan(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return bizerror.ErrInvalidPassword
		}
		return err
	}

	return db.Model(&User{}).Where(&User{ID: s.Identity.ID, Secret: HashSha256(u.OriginalSecret)}).
		Update(&User{Secret: HashSha256(u.NewSecret)}).Error
}

// LoadPerms collects the global role and the active-area memberships of a user.
func LoadPerms(userId types.ID) (authority.Permissions, authority.AreaRoles) {
	perms := authority.Permissions{}

	user := User{ID: userId}
	if err := persistence.ActiveDataSourceManager.GormDB(context.Background()).Where(&user).First(&user).Error; err != nil {
		misc.Log.Warnf("failed to load user %d: %v", userId, err)
	} else if user.Role != "" {
		perms = append(perms, user.Role)
	}

	areaRoles, err := orgarea.LoadAreaRolesFunc(userId)
	if err != nil {
		misc.Log.Warnf("failed to load area roles of user %d: %v", userId, err)
		areaRoles = authority.AreaRoles{}
	}
	return perms, areaRoles
}

func QueryAccountNames(ids []types.ID) (map[types.ID]string, error) {
	if len(ids) == 0 {
		return map[types.ID]string{}, nil
	}
	var records []UserInfo
	if err := persistence.ActiveDataSourceManager.GormDB(context.Background()).Model(&User{}).
		Where("id IN (?)", ids).Scan(&records).Error; err != nil {
		return nil, err
	}
	result := map[types.ID]string{}
	for _, r := range records {
		result[r.ID] = r.DisplayName()
	}
	return result, nil
}
