package mock

import "github.com/finalqr/qrcard/media"

type UploadJournal struct {
	UploadedFn func(m media.Uploaded) error
	OwnedFn    func(publicId string) error
	OrphansFn  func() ([]media.Uploaded, error)
}

func (j UploadJournal) Uploaded(m media.Uploaded) error {
	return j.UploadedFn(m)
}

func (j UploadJournal) Owned(publicId string) error {
	return j.OwnedFn(publicId)
}

func (j UploadJournal) Orphans() ([]media.Uploaded, error) {
	return j.OrphansFn()
}
