package service

import (
	"errors"
	"fmt"
	"strings"
)

// 错误种类（handler 层据此映射为固定文案，不向客户端透出原始错误）
var (
	// ErrInvalidPeriod period 参数不在 week/month/year/custom 之内
	ErrInvalidPeriod = errors.New("invalid period")
	// ErrInvalidRange custom 区间的起止日期缺失或无法解析
	ErrInvalidRange = errors.New("invalid custom date range")
	// ErrBadFile 上传文件缺失、非 CSV 或超出大小限制
	ErrBadFile = errors.New("bad import file")
)

// MissingFieldsError CSV 表头缺少必需字段
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}
