package event

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/fundwit/go-commons/types"
)

type EventCategory string

const (
	EventCategoryCreated   EventCategory = "CREATED"
	EventCategorySubmitted EventCategory = "SUBMITTED"
	EventCategoryAdvanced  EventCategory = "ADVANCED"
	EventCategoryRejected  EventCategory = "REJECTED"
	EventCategoryCorrected EventCategory = "CORRECTED"
	EventCategoryCancelled EventCategory = "CANCELLED"
	EventCategoryDeleted   EventCategory = "DELETED"

	EventCategoryPhaseAdvanced EventCategory = "PHASE_ADVANCED"
	EventCategoryRegressed     EventCategory = "REGRESSED"
	EventCategoryApproved      EventCategory = "APPROVED"

	SourceTypeRequest   = "REQUEST"
	SourceTypeAdProject = "AD_PROJECT"
	SourceTypeAdVideo   = "AD_VIDEO"
)

type Event struct {
	SourceId   types.ID `json:"sourceId"`
	SourceType string   `json:"sourceType"`
	SourceDesc string   `json:"sourceDesc"`

	CreatorId   types.ID `json:"creatorId"`
	CreatorName string   `json:"creatorName"`

	EventCategory     EventCategory     `json:"eventCategory"`
	UpdatedProperties UpdatedProperties `json:"updatedProperties" sql:"type:TEXT"`
	// Reason carries the user-supplied justification of REJECTED / REGRESSED events.
	Reason string `json:"reason"`
}

type EventRecord struct {
	Event

	Timestamp types.Timestamp `json:"timestamp" sql:"type:DATETIME(6)"`
}

func (r *EventRecord) TableName() string {
	return "events"
}

type UpdatedProperty struct {
	PropertyName string `json:"propertyName"`

	OldValue string `json:"oldValue"`
	NewValue string `json:"newValue"`
}

type UpdatedProperties []UpdatedProperty

func (t UpdatedProperties) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&t)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (c *UpdatedProperties) Scan(v interface{}) error {
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	return json.Unmarshal([]byte(jsonString), c)
}
