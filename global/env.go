package global

import (
	"github.com/aibianji/sticky-notes-app/pkg/fileurl"
)

var (
	// 程序执行目录
	ROOT string
	Name string = "Sticky Notes"
)

func init() {

	filename := fileurl.GetExePath()
	ROOT = filename + "/"

}
