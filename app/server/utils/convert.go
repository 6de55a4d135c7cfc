package utils

import (
	"fmt"
	"strconv"
)

// ParseID 解析路径中的数字 ID，0 视为无效
func ParseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", raw, err)
	}
	if id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

// StringsOrEmpty 保证 JSON 输出为 [] 而不是 null
func StringsOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
