package adflow

import (
	"fmt"

	"marketflow/bizerror"
	"marketflow/event"
	"marketflow/persistence"
	"marketflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	ProjectPhaseStatusFunc = ProjectPhaseStatus
	AdvancePhaseFunc       = AdvancePhase
)

// readyStatusForPhase is the phaseStatus a video must reach before its
// project may leave the phase.
func readyStatusForPhase(phase int) (string, error) {
	switch phase {
	case PhaseBriefing, PhaseRoteiro, PhaseElenco, PhaseRevisao:
		return PhaseStatusPronto, nil
	case PhaseProducao:
		return PhaseStatusEntregue, nil
	case PhasePublicacao:
		return PhaseStatusPublicado, nil
	}
	return "", fmt.Errorf("invalid phase: %d", phase)
}

// validPhaseStatuses is the phaseStatus vocabulary of each phase.
var validPhaseStatuses = map[int][]string{
	1: {PhaseStatusPendente, PhaseStatusEmAndamento, PhaseStatusPronto},
	2: {PhaseStatusPendente, PhaseStatusEmAndamento, PhaseStatusPronto},
	3: {PhaseStatusPendente, PhaseStatusElenco, PhaseStatusPreProd, PhaseStatusPronto},
	4: {PhaseStatusPendente, PhaseStatusEmProducao, PhaseStatusEntregue},
	5: {PhaseStatusPendente, PhaseStatusEmRevisao, PhaseStatusValidando, PhaseStatusPronto},
	6: {PhaseStatusPendente, PhaseStatusAprovado, PhaseStatusNomenclatura, PhaseStatusPublicado},
}

// validateVideoReadyForPhase lists what still blocks a video from the
// phase's ready status. An empty result means the video may be marked ready.
func validateVideoReadyForPhase(video *AdVideo, deliverables []AdDeliverable, phase int) []string {
	missing := []string{}

	switch phase {
	case PhaseBriefing:
		if video.NomeDescritivo == "" {
			missing = append(missing, "nomeDescritivo")
		}
		if video.Tema == "" {
			missing = append(missing, "tema")
		}
		if video.Estilo == "" {
			missing = append(missing, "estilo")
		}
		if video.Formato == "" {
			missing = append(missing, "formato")
		}

	case PhaseRoteiro:
		if video.Roteiro == "" {
			missing = append(missing, "roteiro")
		}
		if !video.ValidacaoRoteiroCompliance {
			missing = append(missing, "validacaoRoteiroCompliance")
		}
		if !video.ValidacaoRoteiroMedico {
			missing = append(missing, "validacaoRoteiroMedico")
		}

	case PhaseElenco:
		if video.CriadorID == nil {
			missing = append(missing, "criadorId")
		}
		if !video.AprovacaoElenco {
			missing = append(missing, "aprovacaoElenco")
		}
		if !video.AprovacaoPreProducao {
			missing = append(missing, "aprovacaoPreProducao")
		}
		if video.StoryboardUrl == "" && video.LocalGravacao == "" {
			missing = append(missing, "storyboardUrl ou localGravacao")
		}

	case PhaseProducao:
		if len(deliverables) == 0 {
			missing = append(missing, "pelo menos 1 deliverable")
		} else {
			hasFile := false
			for _, d := range deliverables {
				if d.FileKey != "" {
					hasFile = true
					break
				}
			}
			if !hasFile {
				missing = append(missing, "deliverable com arquivo")
			}
		}

	case PhaseRevisao:
		if !video.RevisaoConteudo {
			missing = append(missing, "revisaoConteudo")
		}
		if !video.RevisaoDesign {
			missing = append(missing, "revisaoDesign")
		}
		if !video.ValidacaoFinalCompliance {
			missing = append(missing, "validacaoFinalCompliance")
		}
		if !video.ValidacaoFinalMedico {
			missing = append(missing, "validacaoFinalMedico")
		}

	case PhasePublicacao:
		if !video.AprovacaoFinal {
			missing = append(missing, "aprovacaoFinal")
		}
		if video.LinkAnuncio == "" {
			missing = append(missing, "linkAnuncio")
		}
		allNumbered := true
		allNamed := true
		for _, d := range deliverables {
			if d.AdNumber == nil {
				allNumbered = false
			}
			if d.NomenclaturaGerada == "" && d.NomenclaturaEditada == "" {
				allNamed = false
			}
		}
		if !allNumbered {
			missing = append(missing, "AD numbers em todos deliverables")
		}
		if !allNamed {
			missing = append(missing, "nomenclatura em todos deliverables")
		}
	}

	return missing
}

func buildPhaseReport(db *gorm.DB, project *AdProject) (*PhaseReport, error) {
	readyStatus, err := readyStatusForPhase(project.CurrentPhase)
	if err != nil {
		return nil, err
	}

	var videos []AdVideo
	if err := db.Where(&AdVideo{ProjectID: project.ID}).
		Order("create_time ASC").Find(&videos).Error; err != nil {
		return nil, err
	}

	report := PhaseReport{ProjectID: project.ID, CurrentPhase: project.CurrentPhase,
		Status: project.Status, VideosTotal: len(videos), Videos: []VideoReadiness{}}
	for i := range videos {
		video := &videos[i]
		var deliverables []AdDeliverable
		if err := db.Where(&AdDeliverable{VideoID: video.ID}).
			Order("hook_number ASC").Find(&deliverables).Error; err != nil {
			return nil, err
		}

		isReady := video.PhaseStatus == readyStatus
		if isReady {
			report.VideosReady++
		}
		report.Videos = append(report.Videos, VideoReadiness{
			ID: video.ID, NomeDescritivo: video.NomeDescritivo, PhaseStatus: video.PhaseStatus,
			IsReady:             isReady,
			MissingRequirements: validateVideoReadyForPhase(video, deliverables, project.CurrentPhase),
		})
	}
	report.CanAdvance = report.VideosTotal > 0 && report.VideosReady == report.VideosTotal
	return &report, nil
}

// ProjectPhaseStatus reports per-video readiness for the project's current
// phase.
func ProjectPhaseStatus(projectId types.ID, s *session.Session) (*PhaseReport, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	project := AdProject{ID: projectId}
	if err := db.Where(&project).First(&project).Error; err != nil {
		return nil, err
	}
	return buildPhaseReport(db, &project)
}

// AdvancePhase moves an active project one phase forward once every video
// reached the phase's ready status, and resets all videos to PENDENTE.
// Leaving phase 1 additionally requires the aprovar_briefing permission.
func AdvancePhase(projectId types.ID, s *session.Session) (*AdProject, error) {
	project := AdProject{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		project = AdProject{ID: projectId}
		if err := tx.Where(&project).First(&project).Error; err != nil {
			return err
		}
		if project.Status != ProjectStatusActive {
			return bizerror.ErrInvalidState
		}
		if project.CurrentPhase == PhaseBriefing {
			if !CanPerformAdAction(AdActions["aprovar_briefing"], s.Perms, s.AreaRoles) {
				return bizerror.ErrForbidden
			}
		}
		if project.CurrentPhase >= PhasePublicacao {
			return bizerror.ErrInvalidState
		}

		report, err := buildPhaseReport(tx, &project)
		if err != nil {
			return err
		}
		if !report.CanAdvance {
			return &bizerror.ErrPhaseIncomplete{VideosReady: report.VideosReady, VideosTotal: report.VideosTotal}
		}

		query := tx.Model(&AdProject{}).
			Where(&AdProject{ID: projectId, Status: ProjectStatusActive}).
			Where("current_phase = ?", project.CurrentPhase).
			Update("current_phase", project.CurrentPhase+1)
		if err := query.Error; err != nil {
			return err
		}
		if query.RowsAffected != 1 {
			return bizerror.ErrConcurrentModification
		}
		if err := tx.Model(&AdVideo{}).Where("project_id = ?", projectId).
			Update(map[string]interface{}{"phase_status": PhaseStatusPendente, "current_phase": project.CurrentPhase + 1}).Error; err != nil {
			return err
		}
		project.CurrentPhase++

		return event.CreateEvent(event.SourceTypeAdProject, projectId, project.Title,
			event.EventCategoryPhaseAdvanced, []event.UpdatedProperty{{
				PropertyName: "currentPhase",
				OldValue:     fmt.Sprint(project.CurrentPhase - 1),
				NewValue:     fmt.Sprint(project.CurrentPhase)}}, "", &s.Identity, tx)
	})
	if txErr != nil {
		return nil, txErr
	}
	return &project, nil
}
