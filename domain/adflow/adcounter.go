package adflow

import (
	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// nextAdNumber increments the shared counter row and returns the new
// value. The UPDATE takes a row lock, so concurrent approvals serialize
// here. Must run inside the approval transaction.
func nextAdNumber(tx *gorm.DB) (int, error) {
	if err := tx.Exec("UPDATE ad_counters SET current_value = current_value + 1").Error; err != nil {
		return 0, err
	}
	counter := AdCounter{}
	if err := tx.First(&counter).Error; err != nil {
		return 0, err
	}
	return counter.CurrentValue, nil
}

// assignAdNumbers gives every unnumbered deliverable of the video its AD
// number, in hook order.
func assignAdNumbers(tx *gorm.DB, videoId types.ID) ([]AssignedAdNumber, error) {
	var deliverables []AdDeliverable
	if err := tx.Where("video_id = ? AND ad_number IS NULL", videoId).
		Order("hook_number ASC").Find(&deliverables).Error; err != nil {
		return nil, err
	}

	assigned := []AssignedAdNumber{}
	for _, d := range deliverables {
		adNumber, err := nextAdNumber(tx)
		if err != nil {
			return nil, err
		}
		if err := tx.Model(&AdDeliverable{ID: d.ID}).Update("ad_number", adNumber).Error; err != nil {
			return nil, err
		}
		assigned = append(assigned, AssignedAdNumber{DeliverableID: d.ID, AdNumber: adNumber})
	}
	return assigned, nil
}
