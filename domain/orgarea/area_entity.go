package orgarea

import (
	"marketflow/authority"

	"github.com/fundwit/go-commons/types"
)

type Area struct {
	ID   types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Name string   `json:"name"`
	Slug string   `json:"slug" gorm:"unique_index:slug_idx"`

	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type AreaMember struct {
	ID     types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	AreaID types.ID `json:"areaId" gorm:"unique_index:area_user_idx" sql:"type:BIGINT UNSIGNED NOT NULL"`
	UserID types.ID `json:"userId" gorm:"unique_index:area_user_idx" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Position authority.Position `json:"position"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type AreaCreation struct {
	Name string `json:"name" validate:"required,min=3,max=100"`
	Slug string `json:"slug" validate:"required,min=1,max=100"`

	Description string `json:"description"`
}

type AreaUpdating struct {
	Name        string `json:"name" validate:"omitempty,min=3,max=100"`
	Description string `json:"description"`
}

type AreaMemberCreation struct {
	AreaID   types.ID           `json:"areaId" binding:"required"`
	UserID   types.ID           `json:"userId" binding:"required"`
	Position authority.Position `json:"position" binding:"required"`
}

type MemberPositionUpdating struct {
	Position authority.Position `json:"position" binding:"required"`
}

type AreaMemberDetail struct {
	AreaMember

	UserName     string `json:"userName"`
	UserNickname string `json:"userNickname"`
}
