package utils

import (
	"strconv"
	"strings"
)

// ParseID parses a positive numeric identifier; ok is false for anything else.
func ParseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
