package storage

import (
	"strings"
)

// validName 存储文件名只能是单层文件名
// 包含路径分隔符或".."的名字一律视为不存在，防止越界访问
func validName(name string) bool {
	if name == "" || name == "." || strings.Contains(name, "..") {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
