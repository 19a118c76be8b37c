// Package local_fs stores note screenshot assets on the local filesystem
// Package local_fs 将便签截图资源保存到本地文件系统
package local_fs

import (
	"io"
	"os"
	"time"

	"github.com/aibianji/sticky-notes-app/pkg/fileurl"
)

type Config struct {
	IsEnabled bool   `yaml:"is-enabled" default:"true"`
	SavePath  string `yaml:"save-path" default:"storage/screenshots"`
	UrlPrefix string `yaml:"url-prefix" default:"/screenshots/"`
}

type LocalFS struct {
	Config *Config
}

func NewClient(conf *Config) (*LocalFS, error) {
	if conf.SavePath == "" {
		conf.SavePath = "storage/screenshots"
	}
	return &LocalFS{
		Config: conf,
	}, nil
}

func (p *LocalFS) getSavePath() string {
	return fileurl.PathSuffixCheckAdd(p.Config.SavePath, "/")
}

// SendFile saves reader content under fileKey and returns the saved path
// SendFile 将 reader 内容保存到 fileKey 并返回保存路径
func (p *LocalFS) SendFile(fileKey string, reader io.Reader, contentType string, modTime time.Time) (string, error) {
	dstFileKey := p.getSavePath() + fileKey

	if err := fileurl.CreatePath(dstFileKey, 0755); err != nil {
		return "", err
	}

	dst, err := os.Create(dstFileKey)
	if err != nil {
		return "", err
	}
	if _, err = io.Copy(dst, reader); err != nil {
		dst.Close()
		return "", err
	}
	if err = dst.Close(); err != nil {
		return "", err
	}

	if !modTime.IsZero() {
		if err := os.Chtimes(dstFileKey, modTime, modTime); err != nil {
			return "", err
		}
	}
	return dstFileKey, nil
}

// SendContent saves bytes under fileKey and returns the saved path
// SendContent 将字节内容保存到 fileKey 并返回保存路径
func (p *LocalFS) SendContent(fileKey string, content []byte, modTime time.Time) (string, error) {
	dstFileKey := p.getSavePath() + fileKey

	if err := fileurl.CreatePath(dstFileKey, 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(dstFileKey, content, 0644); err != nil {
		return "", err
	}
	if !modTime.IsZero() {
		if err := os.Chtimes(dstFileKey, modTime, modTime); err != nil {
			return "", err
		}
	}
	return dstFileKey, nil
}
