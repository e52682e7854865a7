package creator

import (
	"github.com/fundwit/go-commons/types"
)

const (
	TypeUgcCreator    = "UGC_CREATOR"
	TypeEmbaixador    = "EMBAIXADOR"
	TypeAtleta        = "ATLETA"
	TypeInfluenciador = "INFLUENCIADOR"
	TypeAtorModelo    = "ATOR_MODELO"
)

// Creator is a person producing ad content. Code, when set, is the token
// used in generated ad nomenclatures; otherwise a code is derived from
// the name.
type Creator struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Instagram string `json:"instagram"`
	Type      string `json:"type"`
	Code      string `json:"code"`
	Notes     string `json:"notes" sql:"type:TEXT"`

	ResponsibleID types.ID `json:"responsibleId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	IsActive      bool     `json:"isActive"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type CreatorCreation struct {
	Name      string `json:"name" validate:"required,min=2,max=100"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
	Instagram string `json:"instagram"`
	Type      string `json:"type" validate:"required,oneof=UGC_CREATOR EMBAIXADOR ATLETA INFLUENCIADOR ATOR_MODELO"`
	Code      string `json:"code"`
	Notes     string `json:"notes"`

	ResponsibleID types.ID `json:"responsibleId" validate:"required"`
}

type CreatorUpdating struct {
	Name      *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone"`
	Instagram *string `json:"instagram"`
	Type      *string `json:"type" validate:"omitempty,oneof=UGC_CREATOR EMBAIXADOR ATLETA INFLUENCIADOR ATOR_MODELO"`
	Code      *string `json:"code"`
	Notes     *string `json:"notes"`

	ResponsibleID *types.ID `json:"responsibleId"`
	IsActive      *bool     `json:"isActive"`
}

type CreatorQuery struct {
	Search        string   `json:"search" form:"search"`
	Type          string   `json:"type" form:"type"`
	ResponsibleID types.ID `json:"responsibleId" form:"responsibleId"`
}

type CreatorDetail struct {
	Creator

	ResponsibleName string `json:"responsibleName"`
}
