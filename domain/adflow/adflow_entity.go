package adflow

import (
	"github.com/fundwit/go-commons/types"
)

const (
	ProjectStatusDraft     = "DRAFT"
	ProjectStatusActive    = "ACTIVE"
	ProjectStatusCompleted = "COMPLETED"
	ProjectStatusCancelled = "CANCELLED"

	PhaseBriefing   = 1
	PhaseRoteiro    = 2
	PhaseElenco     = 3
	PhaseProducao   = 4
	PhaseRevisao    = 5
	PhasePublicacao = 6

	PhaseStatusPendente     = "PENDENTE"
	PhaseStatusEmAndamento  = "EM_ANDAMENTO"
	PhaseStatusPronto       = "PRONTO"
	PhaseStatusElenco       = "ELENCO"
	PhaseStatusPreProd      = "PRE_PROD"
	PhaseStatusEmProducao   = "EM_PRODUCAO"
	PhaseStatusEntregue     = "ENTREGUE"
	PhaseStatusEmRevisao    = "EM_REVISAO"
	PhaseStatusValidando    = "VALIDANDO"
	PhaseStatusAprovado     = "APROVADO"
	PhaseStatusNomenclatura = "NOMENCLATURA"
	PhaseStatusPublicado    = "PUBLICADO"
)

// AdType categorizes ad projects (e.g. conversion, awareness).
type AdType struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Name     string `json:"name" gorm:"unique_index:ad_type_name_idx"`
	IsActive bool   `json:"isActive"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

// AdOrigin is a producing house. Code is the PRODUTORA token of generated
// nomenclatures.
type AdOrigin struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Name     string `json:"name"`
	Code     string `json:"code"`
	IsActive bool   `json:"isActive"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

// AdProject is one batch of ad videos moving through the six phases
// together. CurrentPhase only moves forward, one phase at a time.
type AdProject struct {
	ID types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`

	Title    string   `json:"title"`
	AdTypeID types.ID `json:"adTypeId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	OriginID types.ID `json:"originId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Briefing string   `json:"briefing" sql:"type:TEXT"`

	Deadline *types.Timestamp `json:"deadline" sql:"type:DATETIME(6)"`
	Priority string           `json:"priority"`

	Status       string `json:"status" gorm:"index:ad_project_status_idx"`
	CurrentPhase int    `json:"currentPhase"`

	IncluiPackFotos bool `json:"incluiPackFotos"`

	CreatedByID types.ID        `json:"createdById" sql:"type:BIGINT UNSIGNED NOT NULL"`
	CreateTime  types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

// AdVideo is one creative inside a project. NomeDescritivo is stored
// sanitized (uppercase alphanumeric, max 25 chars).
type AdVideo struct {
	ID        types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	ProjectID types.ID `json:"projectId" gorm:"index:ad_video_project_idx" sql:"type:BIGINT UNSIGNED NOT NULL"`

	NomeDescritivo string `json:"nomeDescritivo"`
	Tema           string `json:"tema"`
	Estilo         string `json:"estilo"`
	Formato        string `json:"formato"`

	CurrentPhase int    `json:"currentPhase"`
	PhaseStatus  string `json:"phaseStatus"`

	Roteiro                    string `json:"roteiro" sql:"type:TEXT"`
	ValidacaoRoteiroCompliance bool   `json:"validacaoRoteiroCompliance"`
	ValidacaoRoteiroMedico     bool   `json:"validacaoRoteiroMedico"`

	CriadorID            *types.ID        `json:"criadorId" sql:"type:BIGINT UNSIGNED"`
	AprovacaoElenco      bool             `json:"aprovacaoElenco"`
	AprovacaoPreProducao bool             `json:"aprovacaoPreProducao"`
	StoryboardUrl        string           `json:"storyboardUrl"`
	LocalGravacao        string           `json:"localGravacao"`
	DataGravacao         *types.Timestamp `json:"dataGravacao" sql:"type:DATETIME(6)"`

	RevisaoConteudo          bool `json:"revisaoConteudo"`
	RevisaoDesign            bool `json:"revisaoDesign"`
	ValidacaoFinalCompliance bool `json:"validacaoFinalCompliance"`
	ValidacaoFinalMedico     bool `json:"validacaoFinalMedico"`

	AprovacaoFinal bool   `json:"aprovacaoFinal"`
	LinkAnuncio    string `json:"linkAnuncio"`

	RejectionReason string `json:"rejectionReason" sql:"type:TEXT"`
	RejectedToPhase int    `json:"rejectedToPhase"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

// AdDeliverable is one exported cut of a video. Once AdNumber is assigned
// the row is immutable except for the nomenclatura fields.
type AdDeliverable struct {
	ID      types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	VideoID types.ID `json:"videoId" gorm:"index:ad_deliverable_video_idx" sql:"type:BIGINT UNSIGNED NOT NULL"`

	HookNumber int    `json:"hookNumber"`
	FileKey    string `json:"fileKey"`

	Tempo         string `json:"tempo"`
	Tamanho       string `json:"tamanho"`
	MostraProduto bool   `json:"mostraProduto"`
	DescHook      string `json:"descHook"`

	AdNumber            *int   `json:"adNumber" sql:"type:INT"`
	NomenclaturaGerada  string `json:"nomenclaturaGerada"`
	NomenclaturaEditada string `json:"nomenclaturaEditada"`
	VersionNumber       int    `json:"versionNumber"`
	IsPost              bool   `json:"isPost"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

// AdVideoComment records discussion on a video, stamped with the project
// phase it was written in.
type AdVideoComment struct {
	ID      types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	VideoID types.ID `json:"videoId" gorm:"index:ad_comment_video_idx" sql:"type:BIGINT UNSIGNED NOT NULL"`

	UserID       types.ID `json:"userId" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Content      string   `json:"content" sql:"type:TEXT"`
	ProjectPhase int      `json:"projectPhase"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

// AdCounter is the single-row table backing sequential AD numbers.
type AdCounter struct {
	ID           types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	CurrentValue int      `json:"currentValue"`
}

type ProjectCreation struct {
	Title    string   `json:"title" validate:"required,min=3,max=200"`
	AdTypeID types.ID `json:"adTypeId" validate:"required"`
	OriginID types.ID `json:"originId" validate:"required"`
	Briefing string   `json:"briefing" validate:"required,min=10"`

	Deadline        *types.Timestamp `json:"deadline"`
	Priority        string           `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	IncluiPackFotos bool             `json:"incluiPackFotos"`
}

type ProjectUpdating struct {
	Title    *string          `json:"title" validate:"omitempty,min=3,max=200"`
	Briefing *string          `json:"briefing" validate:"omitempty,min=10"`
	Deadline *types.Timestamp `json:"deadline"`
	Priority *string          `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
}

type ProjectQuery struct {
	Status string `json:"status" form:"status"`
	Search string `json:"search" form:"search"`
}

type VideoCreation struct {
	ProjectID      types.ID `json:"projectId" validate:"required"`
	NomeDescritivo string   `json:"nomeDescritivo" validate:"required,min=1,max=25"`
	Tema           string   `json:"tema" validate:"required"`
	Estilo         string   `json:"estilo" validate:"required"`
	Formato        string   `json:"formato" validate:"required"`
}

type VideoUpdating struct {
	NomeDescritivo *string `json:"nomeDescritivo" validate:"omitempty,min=1,max=25"`
	Tema           *string `json:"tema"`
	Estilo         *string `json:"estilo"`
	Formato        *string `json:"formato"`

	Roteiro       *string          `json:"roteiro"`
	CriadorID     *types.ID        `json:"criadorId"`
	StoryboardUrl *string          `json:"storyboardUrl" validate:"omitempty,url"`
	LocalGravacao *string          `json:"localGravacao"`
	DataGravacao  *types.Timestamp `json:"dataGravacao"`
}

type PhaseStatusUpdating struct {
	PhaseStatus string `json:"phaseStatus" validate:"required"`
}

type ValidationMarking struct {
	Field string `json:"field" validate:"required,oneof=validacaoRoteiroCompliance validacaoRoteiroMedico aprovacaoElenco aprovacaoPreProducao revisaoConteudo revisaoDesign validacaoFinalCompliance validacaoFinalMedico aprovacaoFinal"`
	Value bool   `json:"value"`
}

type VideoRegression struct {
	TargetPhase int    `json:"targetPhase" validate:"required,min=2,max=5"`
	Reason      string `json:"reason" validate:"required"`
}

type LinkAnuncioSetting struct {
	LinkAnuncio string `json:"linkAnuncio" validate:"required,url"`
}

type DeliverableCreation struct {
	VideoID types.ID `json:"videoId" validate:"required"`
	FileKey string   `json:"fileKey" validate:"required"`

	Tempo         string `json:"tempo" validate:"required,oneof=T15S T30S T45S T60S T90S T120S T180S"`
	Tamanho       string `json:"tamanho" validate:"required,oneof=S9X16 S1X1 S4X5 S16X9 S2X3"`
	MostraProduto bool   `json:"mostraProduto"`
	DescHook      string `json:"descHook"`
}

type DeliverableUpdating struct {
	FileKey       *string `json:"fileKey"`
	Tempo         *string `json:"tempo" validate:"omitempty,oneof=T15S T30S T45S T60S T90S T120S T180S"`
	Tamanho       *string `json:"tamanho" validate:"omitempty,oneof=S9X16 S1X1 S4X5 S16X9 S2X3"`
	MostraProduto *bool   `json:"mostraProduto"`
	DescHook      *string `json:"descHook"`
}

type NomenclaturaUpdating struct {
	NomenclaturaEditada *string `json:"nomenclaturaEditada"`
	IsPost              *bool   `json:"isPost"`
	VersionNumber       *int    `json:"versionNumber" validate:"omitempty,min=1"`
}

type CommentCreation struct {
	VideoID types.ID `json:"videoId" validate:"required"`
	Content string   `json:"content" validate:"required,min=1,max=5000"`
}

type AssignedAdNumber struct {
	DeliverableID types.ID `json:"deliverableId"`
	AdNumber      int      `json:"adNumber"`
}

type VideoApproval struct {
	VideoID           types.ID           `json:"videoId"`
	AssignedAdNumbers []AssignedAdNumber `json:"assignedAdNumbers"`
}

// VideoReadiness is the per-video slice of a project phase report.
type VideoReadiness struct {
	ID                  types.ID `json:"id"`
	NomeDescritivo      string   `json:"nomeDescritivo"`
	PhaseStatus         string   `json:"phaseStatus"`
	IsReady             bool     `json:"isReady"`
	MissingRequirements []string `json:"missingRequirements"`
}

type PhaseReport struct {
	ProjectID    types.ID         `json:"projectId"`
	CurrentPhase int              `json:"currentPhase"`
	Status       string           `json:"status"`
	VideosTotal  int              `json:"videosTotal"`
	VideosReady  int              `json:"videosReady"`
	CanAdvance   bool             `json:"canAdvance"`
	Videos       []VideoReadiness `json:"videos"`
}

type ProjectDetail struct {
	AdProject

	AdTypeName    string    `json:"adTypeName"`
	OriginName    string    `json:"originName"`
	CreatedByName string    `json:"createdByName"`
	Videos        []AdVideo `json:"videos"`
}
