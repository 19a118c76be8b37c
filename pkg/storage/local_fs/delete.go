package local_fs

import (
	"os"

	"github.com/aibianji/sticky-notes-app/pkg/fileurl"
)

func (p *LocalFS) Delete(fileKey string) error {
	dstFileKey := p.getSavePath() + fileKey
	if fileurl.IsExist(dstFileKey) {
		return os.Remove(dstFileKey)
	}
	return nil
}
