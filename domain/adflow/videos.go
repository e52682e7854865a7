package adflow

import (
	"fmt"

	"marketflow/bizerror"
	"marketflow/domain/creator"
	"marketflow/event"
	"marketflow/idgen"
	"marketflow/persistence"
	"marketflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	CreateVideoFunc            = CreateVideo
	UpdateVideoFunc            = UpdateVideo
	DeleteVideoFunc            = DeleteVideo
	UpdateVideoPhaseStatusFunc = UpdateVideoPhaseStatus
	MarkValidationFunc         = MarkValidation
	RegressVideoFunc           = RegressVideo
	ApproveVideoFinalFunc      = ApproveVideoFinal
	SetLinkAnuncioFunc         = SetLinkAnuncio
	QueryVideoCommentsFunc     = QueryVideoComments
	CreateVideoCommentFunc     = CreateVideoComment
)

// validationActions maps a video approval flag to the action gating it.
// The two final validations share one action on purpose.
var validationActions = map[string]string{
	"validacaoRoteiroCompliance": "validar_roteiro_compliance",
	"validacaoRoteiroMedico":     "validar_roteiro_medico",
	"aprovacaoElenco":            "aprovar_elenco",
	"aprovacaoPreProducao":       "aprovar_pre_producao",
	"revisaoConteudo":            "revisao_conteudo",
	"revisaoDesign":              "revisao_design",
	"validacaoFinalCompliance":   "validacao_final",
	"validacaoFinalMedico":       "validacao_final",
	"aprovacaoFinal":             "aprovacao_final",
}

var validationColumns = map[string]string{
	"validacaoRoteiroCompliance": "validacao_roteiro_compliance",
	"validacaoRoteiroMedico":     "validacao_roteiro_medico",
	"aprovacaoElenco":            "aprovacao_elenco",
	"aprovacaoPreProducao":       "aprovacao_pre_producao",
	"revisaoConteudo":            "revisao_conteudo",
	"revisaoDesign":              "revisao_design",
	"validacaoFinalCompliance":   "validacao_final_compliance",
	"validacaoFinalMedico":       "validacao_final_medico",
	"aprovacaoFinal":             "aprovacao_final",
}

// regressActions maps the video's current phase to the action allowed to
// send it back.
var regressActions = map[int]string{
	2: "validar_roteiro_compliance",
	3: "aprovar_pre_producao",
	4: "producao_entrega",
	5: "revisao_conteudo",
	6: "aprovacao_final",
}

// videoFieldPhaseLimits: last phase in which each field group stays editable.
const (
	basicFieldsPhaseLimit      = 2
	roteiroPhaseLimit          = 5
	criadorPhaseLimit          = 3
	productionFieldsPhaseLimit = 4
)

func CreateVideo(c *VideoCreation, s *session.Session) (*AdVideo, error) {
	record := AdVideo{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		project := AdProject{ID: c.ProjectID}
		if err := tx.Where(&project).First(&project).Error; err != nil {
			return err
		}
		if project.CurrentPhase > basicFieldsPhaseLimit {
			return bizerror.ErrPhaseLocked
		}

		record = AdVideo{ID: idgen.NextID(adflowIdWorker), ProjectID: c.ProjectID,
			NomeDescritivo: SanitizeName(c.NomeDescritivo), Tema: c.Tema, Estilo: c.Estilo,
			Formato: c.Formato, CurrentPhase: project.CurrentPhase, PhaseStatus: PhaseStatusPendente,
			CreateTime: types.CurrentTimestamp()}
		return tx.Create(&record).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

// UpdateVideo applies the per-field phase locks: briefing fields close
// after phase 2, criador after 3, production fields after 4, roteiro after 5.
func UpdateVideo(id types.ID, u *VideoUpdating, s *session.Session) (*AdVideo, error) {
	record := AdVideo{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&AdVideo{ID: id}).First(&record).Error; err != nil {
			return err
		}
		phase := record.CurrentPhase

		if (u.NomeDescritivo != nil || u.Tema != nil || u.Estilo != nil || u.Formato != nil) &&
			phase > basicFieldsPhaseLimit {
			return bizerror.ErrPhaseLocked
		}
		if u.Roteiro != nil && phase > roteiroPhaseLimit {
			return bizerror.ErrPhaseLocked
		}
		if u.CriadorID != nil && phase > criadorPhaseLimit {
			return bizerror.ErrPhaseLocked
		}
		if (u.StoryboardUrl != nil || u.LocalGravacao != nil || u.DataGravacao != nil) &&
			phase > productionFieldsPhaseLimit {
			return bizerror.ErrPhaseLocked
		}

		if u.CriadorID != nil {
			criador := creator.Creator{ID: *u.CriadorID}
			if err := tx.Where(&criador).First(&criador).Error; err != nil {
				return err
			}
		}

		changes := map[string]interface{}{}
		if u.NomeDescritivo != nil {
			changes["nome_descritivo"] = SanitizeName(*u.NomeDescritivo)
		}
		if u.Tema != nil {
			changes["tema"] = *u.Tema
		}
		if u.Estilo != nil {
			changes["estilo"] = *u.Estilo
		}
		if u.Formato != nil {
			changes["formato"] = *u.Formato
		}
		if u.Roteiro != nil {
			changes["roteiro"] = *u.Roteiro
		}
		if u.CriadorID != nil {
			changes["criador_id"] = *u.CriadorID
		}
		if u.StoryboardUrl != nil {
			changes["storyboard_url"] = *u.StoryboardUrl
		}
		if u.LocalGravacao != nil {
			changes["local_gravacao"] = *u.LocalGravacao
		}
		if u.DataGravacao != nil {
			changes["data_gravacao"] = *u.DataGravacao
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&AdVideo{ID: id}).Update(changes).Error; err != nil {
			return err
		}
		return tx.Where(&AdVideo{ID: id}).First(&record).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

func DeleteVideo(id types.ID, s *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		record := AdVideo{ID: id}
		if err := tx.Where(&record).First(&record).Error; err != nil {
			return err
		}
		project := AdProject{ID: record.ProjectID}
		if err := tx.Where(&project).First(&project).Error; err != nil {
			return err
		}
		if project.CurrentPhase > basicFieldsPhaseLimit {
			return bizerror.ErrPhaseLocked
		}

		if err := tx.Where("video_id = ?", id).Delete(&AdDeliverable{}).Error; err != nil {
			return err
		}
		if err := tx.Where("video_id = ?", id).Delete(&AdVideoComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&AdVideo{}, &AdVideo{ID: id}).Error
	})
}

// UpdateVideoPhaseStatus moves a video within its phase's status
// vocabulary. Cross-phase movement happens only through AdvancePhase,
// RegressVideo and ApproveVideoFinal.
func UpdateVideoPhaseStatus(id types.ID, u *PhaseStatusUpdating, s *session.Session) (*AdVideo, error) {
	record := AdVideo{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&AdVideo{ID: id}).First(&record).Error; err != nil {
			return err
		}

		valid := false
		for _, status := range validPhaseStatuses[record.CurrentPhase] {
			if status == u.PhaseStatus {
				valid = true
				break
			}
		}
		if !valid {
			return bizerror.ErrInvalidPhaseStatus
		}

		if err := tx.Model(&AdVideo{ID: id}).Update("phase_status", u.PhaseStatus).Error; err != nil {
			return err
		}
		record.PhaseStatus = u.PhaseStatus
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

// MarkValidation flips one approval flag, gated by the action owning it.
func MarkValidation(id types.ID, m *ValidationMarking, s *session.Session) (*AdVideo, error) {
	action, found := AdActions[validationActions[m.Field]]
	if !found {
		return nil, bizerror.ErrInvalidArguments
	}
	if !CanPerformAdAction(action, s.Perms, s.AreaRoles) {
		return nil, bizerror.ErrForbidden
	}

	record := AdVideo{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&AdVideo{ID: id}).First(&record).Error; err != nil {
			return err
		}
		if err := tx.Model(&AdVideo{ID: id}).Update(validationColumns[m.Field], m.Value).Error; err != nil {
			return err
		}
		return tx.Where(&AdVideo{ID: id}).First(&record).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

// RegressVideo sends a video back to an earlier phase (never to phase 1).
// Videos with assigned AD numbers are immutable history and cannot regress.
func RegressVideo(id types.ID, r *VideoRegression, s *session.Session) (*AdVideo, error) {
	record := AdVideo{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&AdVideo{ID: id}).First(&record).Error; err != nil {
			return err
		}

		if actionKey, found := regressActions[record.CurrentPhase]; found {
			if !CanPerformAdAction(AdActions[actionKey], s.Perms, s.AreaRoles) {
				return bizerror.ErrForbidden
			}
		}
		if r.TargetPhase < PhaseRoteiro {
			return bizerror.ErrInvalidArguments
		}
		if r.TargetPhase >= record.CurrentPhase {
			return bizerror.ErrInvalidArguments
		}

		numbered := 0
		if err := tx.Model(&AdDeliverable{}).
			Where("video_id = ? AND ad_number IS NOT NULL", id).Count(&numbered).Error; err != nil {
			return err
		}
		if numbered > 0 {
			return bizerror.ErrAdNumbersAssigned
		}

		oldPhase := record.CurrentPhase
		changes := map[string]interface{}{
			"current_phase":     r.TargetPhase,
			"phase_status":      PhaseStatusPendente,
			"rejection_reason":  r.Reason,
			"rejected_to_phase": r.TargetPhase,
		}
		if err := tx.Model(&AdVideo{ID: id}).Update(changes).Error; err != nil {
			return err
		}
		if err := tx.Where(&AdVideo{ID: id}).First(&record).Error; err != nil {
			return err
		}

		return event.CreateEvent(event.SourceTypeAdVideo, id, record.NomeDescritivo,
			event.EventCategoryRegressed, []event.UpdatedProperty{{
				PropertyName: "currentPhase",
				OldValue:     fmt.Sprint(oldPhase),
				NewValue:     fmt.Sprint(r.TargetPhase)}}, r.Reason, &s.Identity, tx)
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

// ApproveVideoFinal is sub-step 6A: assigns AD numbers to every
// deliverable atomically and marks the video APROVADO.
func ApproveVideoFinal(id types.ID, s *session.Session) (*VideoApproval, error) {
	if !CanPerformAdAction(AdActions["aprovacao_final"], s.Perms, s.AreaRoles) {
		return nil, bizerror.ErrForbidden
	}

	approval := VideoApproval{VideoID: id}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		record := AdVideo{ID: id}
		if err := tx.Where(&record).First(&record).Error; err != nil {
			return err
		}
		if record.CurrentPhase != PhasePublicacao {
			return bizerror.ErrPhaseLocked
		}

		total := 0
		if err := tx.Model(&AdDeliverable{}).Where("video_id = ?", id).Count(&total).Error; err != nil {
			return err
		}
		if total == 0 {
			return bizerror.ErrInvalidState
		}

		assigned, err := assignAdNumbers(tx, id)
		if err != nil {
			return err
		}
		approval.AssignedAdNumbers = assigned

		if err := tx.Model(&AdVideo{ID: id}).Update(map[string]interface{}{
			"aprovacao_final": true, "phase_status": PhaseStatusAprovado}).Error; err != nil {
			return err
		}

		return event.CreateEvent(event.SourceTypeAdVideo, id, record.NomeDescritivo,
			event.EventCategoryApproved, nil, "", &s.Identity, tx)
	})
	if txErr != nil {
		return nil, txErr
	}

	if err := GenerateNomenclaturaForVideo(id, s); err != nil {
		return nil, err
	}
	return &approval, nil
}

func SetLinkAnuncio(id types.ID, l *LinkAnuncioSetting, s *session.Session) (*AdVideo, error) {
	record := AdVideo{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&AdVideo{ID: id}).First(&record).Error; err != nil {
			return err
		}
		if record.CurrentPhase != PhasePublicacao {
			return bizerror.ErrPhaseLocked
		}
		if err := tx.Model(&AdVideo{ID: id}).Update("link_anuncio", l.LinkAnuncio).Error; err != nil {
			return err
		}
		record.LinkAnuncio = l.LinkAnuncio
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

type VideoCommentDetail struct {
	AdVideoComment

	UserName string `json:"userName"`
}

func QueryVideoComments(videoId types.ID, s *session.Session) ([]VideoCommentDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	comments := []AdVideoComment{}
	if err := db.Where(&AdVideoComment{VideoID: videoId}).
		Order("create_time ASC").Find(&comments).Error; err != nil {
		return nil, err
	}

	userIds := []types.ID{}
	for _, c := range comments {
		userIds = append(userIds, c.UserID)
	}
	names := map[types.ID]string{}
	if len(userIds) > 0 {
		var err error
		if names, err = queryAccountNamesFunc(userIds); err != nil {
			return nil, err
		}
	}

	details := []VideoCommentDetail{}
	for _, c := range comments {
		details = append(details, VideoCommentDetail{AdVideoComment: c, UserName: names[c.UserID]})
	}
	return details, nil
}

// CreateVideoComment stamps the comment with the project's current phase.
func CreateVideoComment(c *CommentCreation, s *session.Session) (*AdVideoComment, error) {
	record := AdVideoComment{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		video := AdVideo{ID: c.VideoID}
		if err := tx.Where(&video).First(&video).Error; err != nil {
			return err
		}
		project := AdProject{ID: video.ProjectID}
		if err := tx.Where(&project).First(&project).Error; err != nil {
			return err
		}

		record = AdVideoComment{ID: idgen.NextID(adflowIdWorker), VideoID: c.VideoID,
			UserID: s.Identity.ID, Content: c.Content, ProjectPhase: project.CurrentPhase,
			CreateTime: types.CurrentTimestamp()}
		return tx.Create(&record).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}
