package account

import (
	"github.com/fundwit/go-commons/types"
)

type User struct {
	ID     types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Name   string   `json:"name" gorm:"unique_index:name_idx"`
	Secret string   `json:"-"`

	Nickname string `json:"nickname"`
	// Role is the global role: empty, ADMIN or SUPER_ADMIN.
	Role string `json:"role"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type UserInfo struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
	Role     string   `json:"role"`
}

type UserCreation struct {
	Name   string `json:"name" validate:"required"`
	Secret string `json:"secret" validate:"required,min=6"`

	Nickname string `json:"nickname"`
	Role     string `json:"role" validate:"omitempty,oneof=ADMIN SUPER_ADMIN"`
}

type UserUpdation struct {
	Nickname string `json:"nickname"`
}

type BasicAuthUpdating struct {
	OriginalSecret string `json:"originalSecret" validate:"required"`
	NewSecret      string `json:"newSecret" validate:"required,min=6"`
}

func (u User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Name
}

func (u UserInfo) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Name
}
