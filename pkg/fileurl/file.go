package fileurl

import (
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

type FileType int

const ImageType FileType = iota + 1

// IsDir determines if the given path is a directory
// IsDir 判断所给路径是否为文件夹
func IsDir(path string) bool {
	s, err := os.Stat(path)
	if err != nil {
		return false
	}
	return s.IsDir()
}

// IsExist determines if the given path exists
// IsExist 判断所给路径是否存在
func IsExist(dst string) bool {
	_, err := os.Stat(dst)
	if err != nil {
		return os.IsExist(err)
	}
	return true
}

// CreatePath creates the parent directory of dst
// CreatePath 创建 dst 的父目录
func CreatePath(dst string, perm os.FileMode) error {
	dir := filepath.Dir(dst)
	return os.MkdirAll(dir, perm)
}

// GetExePath gets path of current execution file
// GetExePath 获取当前执行文件的路径
func GetExePath() string {
	file, _ := exec.LookPath(os.Args[0])
	p, _ := filepath.Abs(file)
	index := strings.LastIndex(p, string(os.PathSeparator))
	return p[:index]
}

// GetFileExt gets file extension
// GetFileExt 获取文件后缀
func GetFileExt(name string) string {
	return path.Ext(name)
}

// GetFileNameOrRandom returns fileName, replacing the clipboard default
// name with a random one so captures never collide
// GetFileNameOrRandom 返回文件名，剪切板默认名替换为随机名避免冲突
func GetFileNameOrRandom(fileName string) string {
	if fileName == "image.png" {
		fileName = uuid.New().String() + GetFileExt(fileName)
	}
	return fileName
}

// GetDatePath gets date save path
// GetDatePath 获取日期保存路径
func GetDatePath(timeFormat string) string {
	if timeFormat == "" {
		timeFormat = "200601/02"
	}
	return PathSuffixCheckAdd(time.Now().Format(timeFormat), "/")
}

// IsContainExt determines if file extension is within the allowed range
// IsContainExt 判断文件后缀是否在允许范围内
func IsContainExt(t FileType, name string, uploadAllowExts []string) bool {
	ext := strings.ToUpper(GetFileExt(name))
	switch t {
	case ImageType:
		for _, allowExt := range uploadAllowExts {
			if strings.ToUpper(allowExt) == ext {
				return true
			}
		}
	}
	return false
}

// PathSuffixCheckAdd checks path suffix, adds it if not exists
// PathSuffixCheckAdd 检查路径后缀，如果没有则添加
func PathSuffixCheckAdd(path string, suffix string) string {
	if !strings.HasSuffix(path, suffix) {
		path = path + suffix
	}
	return path
}
