package adflow

import (
	"io"
	"io/ioutil"
	"path"

	"marketflow/bizerror"
	"marketflow/filestore"
	"marketflow/persistence"
	"marketflow/session"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	UploadDeliverableFileFunc   = UploadDeliverableFile
	DownloadDeliverableFileFunc = DownloadDeliverableFile
)

// UploadDeliverableFile stores the cut in the object store and points the
// deliverable's fileKey at it. Frozen deliverables keep their file.
func UploadDeliverableFile(id types.ID, filename string, r io.Reader, s *session.Session) (*AdDeliverable, error) {
	record := AdDeliverable{}
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&AdDeliverable{ID: id}).First(&record).Error; err != nil {
			return err
		}
		if record.AdNumber != nil {
			return bizerror.ErrAdNumbersAssigned
		}

		key := "ads/" + record.VideoID.String() + "/" + id.String() + path.Ext(filename)
		if err := filestore.PutObjectFunc(key, r, s); err != nil {
			return err
		}
		if err := tx.Model(&AdDeliverable{ID: id}).Update("file_key", key).Error; err != nil {
			return err
		}
		record.FileKey = key
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

func DownloadDeliverableFile(id types.ID, s *session.Session) ([]byte, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	record := AdDeliverable{ID: id}
	if err := db.Where(&record).First(&record).Error; err != nil {
		return nil, err
	}
	if record.FileKey == "" {
		return nil, bizerror.ErrNotFound
	}

	r, err := filestore.GetObjectFunc(record.FileKey, s)
	if err != nil {
		if serErr, ok := err.(oss.ServiceError); ok && serErr.Code == "NoSuchKey" {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	defer r.Close()
	return ioutil.ReadAll(r)
}
