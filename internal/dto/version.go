package dto

// VersionDTO 版本信息响应
type VersionDTO struct {
	Version   string `json:"version"`
	GitTag    string `json:"gitTag"`
	BuildTime string `json:"buildTime"`
}
