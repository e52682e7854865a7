package event

import (
	"marketflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	EventPersistCreateFunc = eventPersistCreate
	QueryEventsFunc        = QueryEvents
)

// CreateEvent appends one audit record inside the caller's transaction.
func CreateEvent(sourceType string, sourceId types.ID, sourceDesc string, category EventCategory,
	updatedProperties []UpdatedProperty, reason string, identity *session.Identity, db *gorm.DB) error {

	record := EventRecord{
		Event: Event{
			SourceType: sourceType,
			SourceId:   sourceId,
			SourceDesc: sourceDesc,

			EventCategory:     category,
			UpdatedProperties: updatedProperties,
			Reason:            reason,

			CreatorId:   identity.ID,
			CreatorName: identity.Name,
		},
		Timestamp: types.CurrentTimestamp(),
	}
	return EventPersistCreateFunc(&record, db)
}

func eventPersistCreate(record *EventRecord, db *gorm.DB) error {
	return db.Create(record).Error
}

func QueryEvents(sourceType string, sourceId types.ID, db *gorm.DB) ([]EventRecord, error) {
	records := []EventRecord{}
	if err := db.Where(&EventRecord{Event: Event{SourceType: sourceType, SourceId: sourceId}}).
		Order("timestamp ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
