package util

import (
	"strconv"
	"strings"
	"time"
)

// ParseDuration parses duration strings with an extra "d" (day) suffix
// ParseDuration 解析时间长度字符串，额外支持 "d"（天）后缀
// Examples: "30d", "12h", "90s", "500ms"; pure numbers default to seconds
// 示例: "30d"、"12h"、"90s"、"500ms"；纯数字默认为秒
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		daysStr := strings.TrimSuffix(s, "d")
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, err
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	// If it is pure numbers, default to seconds
	// 如果是纯数字，默认为秒
	if _, err := strconv.Atoi(s); err == nil {
		s += "s"
	}
	return time.ParseDuration(s)
}
