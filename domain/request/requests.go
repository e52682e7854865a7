package request

import (
	"strconv"

	"marketflow/account"
	"marketflow/bizerror"
	"marketflow/domain/contenttype"
	"marketflow/event"
	"marketflow/idgen"
	"marketflow/persistence"
	"marketflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	requestIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	queryAccountNamesFunc = account.QueryAccountNames

	CreateRequestFunc  = CreateRequest
	QueryRequestsFunc  = QueryRequests
	DetailRequestFunc  = DetailRequest
	UpdateRequestFunc  = UpdateRequest
	SubmitRequestFunc  = SubmitRequest
	CorrectRequestFunc = CorrectRequest
	CancelRequestFunc  = CancelRequest
)

func CreateRequest(c *RequestCreation, s *session.Session) (*Request, error) {
	record := Request{ID: idgen.NextID(requestIdWorker), Title: c.Title, Description: c.Description,
		ContentTypeID: c.ContentTypeID, Origin: c.Origin, Priority: c.Priority, Deadline: c.Deadline,
		Status: StatusDraft, CreatedByID: s.Identity.ID, CreateTime: types.CurrentTimestamp()}

	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		contentType := contenttype.ContentType{ID: c.ContentTypeID}
		if err := tx.Where(&contentType).First(&contentType).Error; err != nil {
			return err
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return event.CreateEvent(event.SourceTypeRequest, record.ID, record.Title,
			event.EventCategoryCreated, nil, "", &s.Identity, tx)
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

func QueryRequests(q *RequestQuery, s *session.Session) ([]Request, error) {
	records := []Request{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context).Model(&Request{})
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.ContentTypeID != 0 {
		db = db.Where("content_type_id = ?", q.ContentTypeID)
	}
	if q.Search != "" {
		db = db.Where("title LIKE ?", "%"+q.Search+"%")
	}
	if err := db.Order("create_time DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func DetailRequest(id types.ID, s *session.Session) (*RequestDetail, error) {
	detail := RequestDetail{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	record := Request{ID: id}
	if err := db.Where(&record).First(&record).Error; err != nil {
		return nil, err
	}
	detail.Request = record

	if err := db.Where(&RequestFieldValue{RequestID: id}).Find(&detail.FieldValues).Error; err != nil {
		return nil, err
	}
	history, err := event.QueryEventsFunc(event.SourceTypeRequest, id, db)
	if err != nil {
		return nil, err
	}
	detail.History = history

	names, err := queryAccountNamesFunc([]types.ID{record.CreatedByID})
	if err != nil {
		return nil, err
	}
	detail.CreatedByName = names[record.CreatedByID]
	return &detail, nil
}

// UpdateRequest patches the built-in fields. Only DRAFT requests may be
// updated this way; REJECTED ones go through CorrectRequest.
func UpdateRequest(id types.ID, u *RequestUpdating, s *session.Session) (*Request, error) {
	record := Request{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&Request{ID: id}).First(&record).Error; err != nil {
			return err
		}
		if record.CreatedByID != s.Identity.ID && !s.Perms.HasAdminRole() {
			return bizerror.ErrForbidden
		}
		if record.Status != StatusDraft {
			return bizerror.ErrInvalidState
		}
		changes := buildRequestChanges(u)
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&Request{ID: id}).Update(changes).Error; err != nil {
			return err
		}
		return tx.Where(&Request{ID: id}).First(&record).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

// SubmitRequest moves a DRAFT onto the first step of its content type's
// workflow.
func SubmitRequest(id types.ID, s *session.Session) (*Request, error) {
	record := Request{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&Request{ID: id}).First(&record).Error; err != nil {
			return err
		}
		if record.CreatedByID != s.Identity.ID && !s.Perms.HasAdminRole() {
			return bizerror.ErrForbidden
		}
		if record.Status != StatusDraft {
			return bizerror.ErrInvalidState
		}
		if record.Title == "" || record.Description == "" || record.Origin == "" {
			return bizerror.ErrInvalidArguments
		}

		firstStep := contenttype.WorkflowStep{}
		if err := tx.Where(&contenttype.WorkflowStep{ContentTypeID: record.ContentTypeID, IsActive: true}).
			Order("step_order ASC").First(&firstStep).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return bizerror.ErrInvalidState
			}
			return err
		}

		query := tx.Model(&Request{}).
			Where("id = ? AND status = ?", id, StatusDraft).
			Update(map[string]interface{}{
				"status": statusForStepOrder(firstStep.StepOrder), "current_step_id": firstStep.ID,
				"current_step_order": firstStep.StepOrder,
			})
		if query.Error != nil {
			return query.Error
		}
		if query.RowsAffected != 1 {
			return bizerror.ErrConcurrentModification
		}
		if err := event.CreateEvent(event.SourceTypeRequest, id, record.Title,
			event.EventCategorySubmitted, nil, "", &s.Identity, tx); err != nil {
			return err
		}
		return tx.Where(&Request{ID: id}).First(&record).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

// CorrectRequest lets the creator rework a REJECTED request and put it back
// into review at the step it was rejected to.
func CorrectRequest(id types.ID, u *RequestUpdating, s *session.Session) (*Request, error) {
	record := Request{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&Request{ID: id}).First(&record).Error; err != nil {
			return err
		}
		if record.CreatedByID != s.Identity.ID && !s.Perms.HasAdminRole() {
			return bizerror.ErrForbidden
		}
		if record.Status != StatusRejected {
			return bizerror.ErrInvalidState
		}

		changes := buildRequestChanges(u)
		changes["status"] = statusForStepOrder(record.CurrentStepOrder)
		changes["rejection_reason"] = ""

		query := tx.Model(&Request{}).
			Where("id = ? AND status = ?", id, StatusRejected).
			Update(changes)
		if query.Error != nil {
			return query.Error
		}
		if query.RowsAffected != 1 {
			return bizerror.ErrConcurrentModification
		}
		if err := event.CreateEvent(event.SourceTypeRequest, id, record.Title,
			event.EventCategoryCorrected, nil, "", &s.Identity, tx); err != nil {
			return err
		}
		return tx.Where(&Request{ID: id}).First(&record).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

// CancelRequest is creator-only and irreversible.
func CancelRequest(id types.ID, s *session.Session) (*Request, error) {
	record := Request{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&Request{ID: id}).First(&record).Error; err != nil {
			return err
		}
		if record.CreatedByID != s.Identity.ID {
			return bizerror.ErrForbidden
		}
		if isTerminalStatus(record.Status) {
			return bizerror.ErrInvalidState
		}

		query := tx.Model(&Request{}).
			Where("id = ? AND status = ?", id, record.Status).
			Update("status", StatusCancelled)
		if query.Error != nil {
			return query.Error
		}
		if query.RowsAffected != 1 {
			return bizerror.ErrConcurrentModification
		}
		if err := event.CreateEvent(event.SourceTypeRequest, id, record.Title,
			event.EventCategoryCancelled, nil, "", &s.Identity, tx); err != nil {
			return err
		}
		record.Status = StatusCancelled
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

func buildRequestChanges(u *RequestUpdating) map[string]interface{} {
	changes := map[string]interface{}{}
	if u == nil {
		return changes
	}
	if u.Title != nil {
		changes["title"] = *u.Title
	}
	if u.Description != nil {
		changes["description"] = *u.Description
	}
	if u.Origin != nil {
		changes["origin"] = *u.Origin
	}
	if u.Priority != nil {
		changes["priority"] = *u.Priority
	}
	if u.Deadline != nil {
		changes["deadline"] = *u.Deadline
	}
	return changes
}

func stepOrderProperty(oldOrder, newOrder int) []event.UpdatedProperty {
	return []event.UpdatedProperty{{PropertyName: "currentStepOrder",
		OldValue: strconv.Itoa(oldOrder), NewValue: strconv.Itoa(newOrder)}}
}
