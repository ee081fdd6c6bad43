package persistent

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/finalqr/qrcard/media"
	"github.com/tidwall/buntdb"
)

const uploadKeyPrefix = "upload:"

// UploadJournal remembers every acknowledged upload until the owning card
// row is stored. Leftover entries describe orphaned blobs (upload succeeded,
// insert failed). The journal only records them - no compensating delete.
type UploadJournal struct {
	Buntdb *buntdb.DB
}

var _ media.Journal = (*UploadJournal)(nil)

func (j *UploadJournal) CreateIndexes() {
	j.Buntdb.CreateIndex("uploads", uploadKeyPrefix+"*", buntdb.IndexString)
}

func (j *UploadJournal) Uploaded(m media.Uploaded) error {
	serialized, err := json.Marshal(&m)
	if err != nil {
		return fmt.Errorf("serialize upload: %w", err)
	}
	err = j.Buntdb.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(uploadKeyPrefix+m.PublicId, string(serialized), nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("bunt update: %w", err)
	}
	return nil
}

func (j *UploadJournal) Owned(publicId string) error {
	err := j.Buntdb.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(uploadKeyPrefix + publicId)
		return err
	})
	if err != nil && !errors.Is(err, buntdb.ErrNotFound) {
		return fmt.Errorf("bunt update: %w", err)
	}
	return nil
}

func (j *UploadJournal) Orphans() ([]media.Uploaded, error) {
	orphans := make([]media.Uploaded, 0, 10)
	var contentErr error
	err := j.Buntdb.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("uploads", func(key, value string) bool {
			var m media.Uploaded
			if err := json.Unmarshal([]byte(value), &m); err != nil {
				contentErr = fmt.Errorf("deserialize upload: %w", err)
				return false
			}
			orphans = append(orphans, m)
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("bunt view: %w", err)
	}
	if contentErr != nil {
		return nil, contentErr
	}
	return orphans, nil
}
