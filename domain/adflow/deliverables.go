package adflow

import (
	"marketflow/bizerror"
	"marketflow/idgen"
	"marketflow/persistence"
	"marketflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

const maxDeliverablesPerVideo = 10

var (
	QueryDeliverablesFunc      = QueryDeliverables
	CreateDeliverableFunc      = CreateDeliverable
	UpdateDeliverableFunc      = UpdateDeliverable
	DeleteDeliverableFunc      = DeleteDeliverable
	UpdateNomenclaturaFunc     = UpdateNomenclatura
	RegenerateNomenclaturaFunc = RegenerateNomenclatura
)

func QueryDeliverables(videoId types.ID, s *session.Session) ([]AdDeliverable, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	records := []AdDeliverable{}
	if err := db.Where(&AdDeliverable{VideoID: videoId}).
		Order("hook_number ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// nextHookNumber fills the lowest gap in 1..10 left by deleted deliverables.
func nextHookNumber(existing []AdDeliverable) int {
	used := map[int]bool{}
	for _, d := range existing {
		used[d.HookNumber] = true
	}
	for n := 1; n <= maxDeliverablesPerVideo; n++ {
		if !used[n] {
			return n
		}
	}
	return 0
}

// CreateDeliverable registers a cut for a video in production or later.
// Once any deliverable of the video carries an AD number the set is frozen.
func CreateDeliverable(c *DeliverableCreation, s *session.Session) (*AdDeliverable, error) {
	record := AdDeliverable{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		video := AdVideo{ID: c.VideoID}
		if err := tx.Where(&video).First(&video).Error; err != nil {
			return err
		}
		if video.CurrentPhase < PhaseProducao {
			return bizerror.ErrPhaseLocked
		}

		existing := []AdDeliverable{}
		if err := tx.Where(&AdDeliverable{VideoID: c.VideoID}).Find(&existing).Error; err != nil {
			return err
		}
		if len(existing) >= maxDeliverablesPerVideo {
			return bizerror.ErrInvalidState
		}
		for _, d := range existing {
			if d.AdNumber != nil {
				return bizerror.ErrAdNumbersAssigned
			}
		}

		record = AdDeliverable{ID: idgen.NextID(adflowIdWorker), VideoID: c.VideoID,
			HookNumber: nextHookNumber(existing), FileKey: c.FileKey,
			Tempo: c.Tempo, Tamanho: c.Tamanho, MostraProduto: c.MostraProduto, DescHook: c.DescHook,
			VersionNumber: 1, CreateTime: types.CurrentTimestamp()}
		return tx.Create(&record).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

func UpdateDeliverable(id types.ID, u *DeliverableUpdating, s *session.Session) (*AdDeliverable, error) {
	record := AdDeliverable{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&AdDeliverable{ID: id}).First(&record).Error; err != nil {
			return err
		}
		if record.AdNumber != nil {
			return bizerror.ErrAdNumbersAssigned
		}

		changes := map[string]interface{}{}
		if u.FileKey != nil {
			changes["file_key"] = *u.FileKey
		}
		if u.Tempo != nil {
			changes["tempo"] = *u.Tempo
		}
		if u.Tamanho != nil {
			changes["tamanho"] = *u.Tamanho
		}
		if u.MostraProduto != nil {
			changes["mostra_produto"] = *u.MostraProduto
		}
		if u.DescHook != nil {
			changes["desc_hook"] = *u.DescHook
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&AdDeliverable{ID: id}).Update(changes).Error; err != nil {
			return err
		}
		return tx.Where(&AdDeliverable{ID: id}).First(&record).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

func DeleteDeliverable(id types.ID, s *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		record := AdDeliverable{ID: id}
		if err := tx.Where(&record).First(&record).Error; err != nil {
			return err
		}
		if record.AdNumber != nil {
			return bizerror.ErrAdNumbersAssigned
		}
		return tx.Delete(&AdDeliverable{}, &AdDeliverable{ID: id}).Error
	})
}

// UpdateNomenclatura edits the published name of a numbered deliverable.
// Allowed only to the nomenclatura action holders, after final approval.
func UpdateNomenclatura(id types.ID, u *NomenclaturaUpdating, s *session.Session) (*AdDeliverable, error) {
	if !CanPerformAdAction(AdActions["nomenclatura"], s.Perms, s.AreaRoles) {
		return nil, bizerror.ErrForbidden
	}

	record := AdDeliverable{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&AdDeliverable{ID: id}).First(&record).Error; err != nil {
			return err
		}
		if record.AdNumber == nil {
			return bizerror.ErrInvalidState
		}
		video := AdVideo{ID: record.VideoID}
		if err := tx.Where(&video).First(&video).Error; err != nil {
			return err
		}
		if video.PhaseStatus != PhaseStatusAprovado && video.PhaseStatus != PhaseStatusNomenclatura {
			return bizerror.ErrInvalidState
		}

		changes := map[string]interface{}{}
		if u.NomenclaturaEditada != nil {
			changes["nomenclatura_editada"] = *u.NomenclaturaEditada
		}
		if u.IsPost != nil {
			changes["is_post"] = *u.IsPost
		}
		if u.VersionNumber != nil {
			changes["version_number"] = *u.VersionNumber
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&AdDeliverable{ID: id}).Update(changes).Error; err != nil {
			return err
		}
		if err := tx.Model(&AdVideo{ID: record.VideoID}).
			Update("phase_status", PhaseStatusNomenclatura).Error; err != nil {
			return err
		}
		return tx.Where(&AdDeliverable{ID: id}).First(&record).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

// RegenerateNomenclatura recomputes the generated names of all numbered
// deliverables of a video from its current attributes.
func RegenerateNomenclatura(videoId types.ID, s *session.Session) ([]AdDeliverable, error) {
	if !CanPerformAdAction(AdActions["nomenclatura"], s.Perms, s.AreaRoles) {
		return nil, bizerror.ErrForbidden
	}
	if err := GenerateNomenclaturaForVideo(videoId, s); err != nil {
		return nil, err
	}
	return QueryDeliverables(videoId, s)
}
