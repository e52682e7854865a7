package adflow

import (
	"context"

	"marketflow/persistence"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var defaultAdTypes = []AdType{
	{ID: 1, Name: "Conversão", IsActive: true},
	{ID: 2, Name: "Reconhecimento", IsActive: true},
	{ID: 3, Name: "Remarketing", IsActive: true},
}

var defaultAdOrigins = []AdOrigin{
	{ID: 1, Name: "Produção Interna", Code: "INTERNA", IsActive: true},
	{ID: 2, Name: "Oslo Filmes", Code: "OSLO", IsActive: true},
	{ID: 3, Name: "Outros", Code: "OUTRO", IsActive: true},
}

// SeedDefaults creates the shared AD number counter and the built-in ad
// types and origins. Existing rows are left untouched, so redeploys keep
// whatever the admins renamed.
func SeedDefaults() error {
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	return db.Transaction(func(tx *gorm.DB) error {
		counter := AdCounter{}
		if err := tx.First(&counter).Error; err != nil {
			if !gorm.IsRecordNotFoundError(err) {
				return err
			}
			if err := tx.Create(&AdCounter{ID: 1, CurrentValue: 0}).Error; err != nil {
				return err
			}
		}

		now := types.CurrentTimestamp()
		for _, t := range defaultAdTypes {
			existing := AdType{}
			err := tx.Where(&AdType{ID: t.ID}).First(&existing).Error
			if gorm.IsRecordNotFoundError(err) {
				t.CreateTime = now
				err = tx.Create(&t).Error
			}
			if err != nil {
				return err
			}
		}
		for _, o := range defaultAdOrigins {
			existing := AdOrigin{}
			err := tx.Where(&AdOrigin{ID: o.ID}).First(&existing).Error
			if gorm.IsRecordNotFoundError(err) {
				o.CreateTime = now
				err = tx.Create(&o).Error
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}
