package adflow

import (
	"marketflow/account"
	"marketflow/ads"
	"marketflow/bizerror"
	"marketflow/event"
	"marketflow/idgen"
	"marketflow/persistence"
	"marketflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	adflowIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	queryAccountNamesFunc = account.QueryAccountNames

	QueryProjectsFunc  = QueryProjects
	DetailProjectFunc  = DetailProject
	CreateProjectFunc  = CreateProject
	UpdateProjectFunc  = UpdateProject
	SubmitProjectFunc  = SubmitProject
	CancelProjectFunc  = CancelProject
	DeleteProjectFunc  = DeleteProject
	QueryAdTypesFunc   = QueryAdTypes
	QueryAdOriginsFunc = QueryAdOrigins
)

func QueryAdTypes(s *session.Session) ([]AdType, error) {
	records := []AdType{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where(&AdType{IsActive: true}).Order("name ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func QueryAdOrigins(s *session.Session) ([]AdOrigin, error) {
	records := []AdOrigin{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where(&AdOrigin{IsActive: true}).Order("name ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func QueryProjects(q *ProjectQuery, s *session.Session) ([]AdProject, error) {
	records := []AdProject{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context).Model(&AdProject{})
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.Search != "" {
		db = db.Where("title LIKE ?", "%"+q.Search+"%")
	}
	if err := db.Order("create_time DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func DetailProject(id types.ID, s *session.Session) (*ProjectDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	detail := ProjectDetail{}
	project := AdProject{ID: id}
	if err := db.Where(&project).First(&project).Error; err != nil {
		return nil, err
	}
	detail.AdProject = project

	adType := AdType{ID: project.AdTypeID}
	if err := db.Where(&adType).First(&adType).Error; err == nil {
		detail.AdTypeName = adType.Name
	}
	origin := AdOrigin{ID: project.OriginID}
	if err := db.Where(&origin).First(&origin).Error; err == nil {
		detail.OriginName = origin.Name
	}

	detail.Videos = []AdVideo{}
	if err := db.Where(&AdVideo{ProjectID: id}).Order("create_time ASC").
		Find(&detail.Videos).Error; err != nil {
		return nil, err
	}

	names, err := queryAccountNamesFunc([]types.ID{project.CreatedByID})
	if err != nil {
		return nil, err
	}
	detail.CreatedByName = names[project.CreatedByID]
	return &detail, nil
}

func CreateProject(c *ProjectCreation, s *session.Session) (*AdProject, error) {
	record := AdProject{ID: idgen.NextID(adflowIdWorker), Title: c.Title, AdTypeID: c.AdTypeID,
		OriginID: c.OriginID, Briefing: c.Briefing, Deadline: c.Deadline, Priority: c.Priority,
		Status: ProjectStatusDraft, CurrentPhase: PhaseBriefing, IncluiPackFotos: c.IncluiPackFotos,
		CreatedByID: s.Identity.ID, CreateTime: types.CurrentTimestamp()}

	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		adType := AdType{ID: c.AdTypeID}
		if err := tx.Where(&adType).First(&adType).Error; err != nil {
			return err
		}
		origin := AdOrigin{ID: c.OriginID}
		if err := tx.Where(&origin).First(&origin).Error; err != nil {
			return err
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return event.CreateEvent(event.SourceTypeAdProject, record.ID, record.Title,
			event.EventCategoryCreated, nil, "", &s.Identity, tx)
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

// UpdateProject applies the phase-dependent edit locks: terminal projects
// are frozen, and title/briefing close after phase 2.
func UpdateProject(id types.ID, u *ProjectUpdating, s *session.Session) (*AdProject, error) {
	record := AdProject{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&AdProject{ID: id}).First(&record).Error; err != nil {
			return err
		}
		if record.Status == ProjectStatusCompleted || record.Status == ProjectStatusCancelled {
			return bizerror.ErrInvalidState
		}
		if u.Title != nil || u.Briefing != nil {
			if record.Status != ProjectStatusDraft && record.CurrentPhase > PhaseRoteiro {
				return bizerror.ErrPhaseLocked
			}
		}

		changes := map[string]interface{}{}
		if u.Title != nil {
			changes["title"] = *u.Title
		}
		if u.Briefing != nil {
			changes["briefing"] = *u.Briefing
		}
		if u.Deadline != nil {
			changes["deadline"] = *u.Deadline
		}
		if u.Priority != nil {
			changes["priority"] = *u.Priority
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&AdProject{ID: id}).Update(changes).Error; err != nil {
			return err
		}
		return tx.Where(&AdProject{ID: id}).First(&record).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

func SubmitProject(id types.ID, s *session.Session) (*AdProject, error) {
	record := AdProject{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		record = AdProject{ID: id}
		if err := tx.Where(&record).First(&record).Error; err != nil {
			return err
		}
		if record.Status != ProjectStatusDraft {
			return bizerror.ErrInvalidState
		}

		videoCount := 0
		if err := tx.Model(&AdVideo{}).Where("project_id = ?", id).Count(&videoCount).Error; err != nil {
			return err
		}
		if videoCount == 0 {
			return bizerror.ErrEmptyProject
		}

		query := tx.Model(&AdProject{}).Where(&AdProject{ID: id, Status: ProjectStatusDraft}).
			Update("status", ProjectStatusActive)
		if err := query.Error; err != nil {
			return err
		}
		if query.RowsAffected != 1 {
			return bizerror.ErrConcurrentModification
		}
		record.Status = ProjectStatusActive

		return event.CreateEvent(event.SourceTypeAdProject, id, record.Title,
			event.EventCategorySubmitted, nil, "", &s.Identity, tx)
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

func CancelProject(id types.ID, s *session.Session) (*AdProject, error) {
	record := AdProject{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		record = AdProject{ID: id}
		if err := tx.Where(&record).First(&record).Error; err != nil {
			return err
		}
		if record.Status == ProjectStatusCompleted || record.Status == ProjectStatusCancelled {
			return bizerror.ErrInvalidState
		}

		query := tx.Model(&AdProject{}).Where(&AdProject{ID: id}).
			Where("status = ?", record.Status).Update("status", ProjectStatusCancelled)
		if err := query.Error; err != nil {
			return err
		}
		if query.RowsAffected != 1 {
			return bizerror.ErrConcurrentModification
		}
		record.Status = ProjectStatusCancelled

		// cancelled creatives leave the dashboard index
		var numbered []AdDeliverable
		if err := tx.Joins("JOIN ad_videos ON ad_videos.id = ad_deliverables.video_id").
			Where("ad_videos.project_id = ? AND ad_deliverables.ad_number IS NOT NULL", id).
			Find(&numbered).Error; err != nil {
			return err
		}
		for _, d := range numbered {
			if err := ads.RemoveCreativeFunc(d.ID, s); err != nil {
				return err
			}
		}

		return event.CreateEvent(event.SourceTypeAdProject, id, record.Title,
			event.EventCategoryCancelled, nil, "", &s.Identity, tx)
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

// DeleteProject removes a never-submitted project and everything under it.
func DeleteProject(id types.ID, s *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		record := AdProject{ID: id}
		if err := tx.Where(&record).First(&record).Error; err != nil {
			return err
		}
		if record.Status != ProjectStatusDraft {
			return bizerror.ErrInvalidState
		}

		var videos []AdVideo
		if err := tx.Where(&AdVideo{ProjectID: id}).Find(&videos).Error; err != nil {
			return err
		}
		for _, v := range videos {
			if err := tx.Where("video_id = ?", v.ID).Delete(&AdDeliverable{}).Error; err != nil {
				return err
			}
			if err := tx.Where("video_id = ?", v.ID).Delete(&AdVideoComment{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("project_id = ?", id).Delete(&AdVideo{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&AdProject{}, &AdProject{ID: id}).Error; err != nil {
			return err
		}
		return event.CreateEvent(event.SourceTypeAdProject, id, record.Title,
			event.EventCategoryDeleted, nil, "", &s.Identity, tx)
	})
}
