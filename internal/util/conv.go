package util

import (
	"strconv"
)

// MustParseInt 将字符串转换为整数，解析失败时返回 0
func MustParseInt(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}
