package util

import (
	"fmt"
	"runtime"
)

// 构建时通过 -ldflags 注入
var (
	version   = "v0.1.0"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// Version 版本信息
type Version struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// GetVersion 获取当前构建的版本信息
func GetVersion() Version {
	return Version{
		Version:   version,
		GitCommit: gitCommit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}
