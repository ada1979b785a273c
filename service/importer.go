package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"finanalyst/models"

	"gorm.io/gorm"
)

// ImportMode 导入模式
type ImportMode int

const (
	// ImportModeBasic 旧版导入，仅支持 income/expense 两类（兼容保留）
	ImportModeBasic ImportMode = iota
	// ImportModeFull 全量导入，支持 income/expense/debt/saving 四类
	ImportModeFull
)

// allows 判断该模式是否接受给定记录类型
func (m ImportMode) allows(recordType string) bool {
	switch recordType {
	case models.CategoryTypeIncome, models.CategoryTypeExpense:
		return true
	case models.CategoryTypeDebt, models.CategoryTypeSaving:
		return m == ImportModeFull
	}
	return false
}

// requiredImportFields CSV 表头必需字段
var requiredImportFields = []string{"date", "type", "category", "name", "amount"}

// importDateFormats 逐个尝试的日期格式，先命中者生效
var importDateFormats = []string{"2006-01-02", "01/02/2006", "02/01/2006"}

// ImportResult 各类记录的导入条数
type ImportResult struct {
	Income  int `json:"income"`
	Expense int `json:"expense"`
	Debt    int `json:"debt"`
	Saving  int `json:"saving"`
}

// Total 导入总条数
func (r *ImportResult) Total() int {
	return r.Income + r.Expense + r.Debt + r.Saving
}

// ImportService CSV 批量导入服务
// 单行校验失败仅跳过该行；结构性错误（文件/表头/插入失败）整体回滚
type ImportService struct {
	db       *gorm.DB
	maxBytes int64
}

// NewImportService 创建导入服务，maxFileSizeMB 为上传文件大小上限
func NewImportService(db *gorm.DB, maxFileSizeMB int) *ImportService {
	return &ImportService{
		db:       db,
		maxBytes: int64(maxFileSizeMB) * 1024 * 1024,
	}
}

// Import 解析上传的 CSV 并批量入库，记录归属 userID
func (s *ImportService) Import(userID uint, filename string, size int64, r io.Reader, mode ImportMode) (*ImportResult, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return nil, fmt.Errorf("%w: only .csv files are accepted", ErrBadFile)
	}
	if size > s.maxBytes {
		return nil, fmt.Errorf("%w: file size exceeds %dMB", ErrBadFile, s.maxBytes/(1024*1024))
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: 读取文件失败", ErrBadFile)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: file size exceeds %dMB", ErrBadFile, s.maxBytes/(1024*1024))
	}
	// 去掉可能的 UTF-8 BOM
	data = bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: file is not valid UTF-8", ErrBadFile)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: CSV 解析失败", ErrBadFile)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrBadFile)
	}

	// 表头校验：缺少任一必需字段则整体中止
	header := records[0]
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, field := range requiredImportFields {
		if _, ok := cols[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	result := &ImportResult{}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, row := range records[1:] {
			if isEmptyRow(row) {
				continue
			}
			if err := s.importRow(tx, userID, row, cols, mode, result); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// importRow 处理单行
// 行内校验失败仅记录日志并跳过；写入失败返回错误，令整个事务回滚
func (s *ImportService) importRow(tx *gorm.DB, userID uint, row []string, cols map[string]int, mode ImportMode, result *ImportResult) error {
	recordType := strings.ToLower(strings.TrimSpace(field(row, cols, "type")))
	if !mode.allows(recordType) {
		log.Printf("导入跳过: 不支持的记录类型 %q", recordType)
		return nil
	}

	// 类别按 (名称, 类型) 精确匹配，不存在则跳过
	categoryName := strings.TrimSpace(field(row, cols, "category"))
	var category models.Category
	if err := tx.Where("name = ? AND type = ?", categoryName, recordType).First(&category).Error; err != nil {
		log.Printf("导入跳过: 类别不存在 %q (类型 %s)", categoryName, recordType)
		return nil
	}

	// 历史遗留：金额中可能混入 '#'，剥除后再解析
	amountStr := strings.TrimSpace(strings.ReplaceAll(field(row, cols, "amount"), "#", ""))
	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil || amount < 0 {
		log.Printf("导入跳过: 金额无效 %q", field(row, cols, "amount"))
		return nil
	}

	date, ok := parseImportDate(field(row, cols, "date"))
	if !ok {
		log.Printf("导入跳过: 日期无效 %q", field(row, cols, "date"))
		return nil
	}

	name := strings.TrimSpace(field(row, cols, "name"))
	description := strings.TrimSpace(field(row, cols, "description"))
	categoryID := category.ID

	switch recordType {
	case models.CategoryTypeIncome:
		record := models.Income{
			UserID:      userID,
			CategoryID:  &categoryID,
			Name:        name,
			Description: description,
			Amount:      amount,
			Date:        date,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("收入写入失败: %w", err)
		}
		result.Income++

	case models.CategoryTypeExpense:
		record := models.Expense{
			UserID:      userID,
			CategoryID:  &categoryID,
			Name:        name,
			Description: description,
			Amount:      amount,
			Date:        date,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("支出写入失败: %w", err)
		}
		result.Expense++

	case models.CategoryTypeDebt:
		paidAmount := 0.0
		if v := strings.TrimSpace(field(row, cols, "paid_amount")); v != "" {
			paidAmount, err = strconv.ParseFloat(v, 64)
			if err != nil {
				log.Printf("导入跳过: 已偿还金额无效 %q", v)
				return nil
			}
		}
		dueDate := date
		if v := strings.TrimSpace(field(row, cols, "due_date")); v != "" {
			dueDate, err = time.ParseInLocation("2006-01-02", v, time.Local)
			if err != nil {
				log.Printf("导入跳过: 到期日期无效 %q", v)
				return nil
			}
		}
		record := models.Debt{
			UserID:      userID,
			CategoryID:  &categoryID,
			Name:        name,
			Description: description,
			Amount:      amount,
			PaidAmount:  paidAmount,
			DueDate:     dueDate,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("债务写入失败: %w", err)
		}
		result.Debt++

	case models.CategoryTypeSaving:
		currentAmount := 0.0
		if v := strings.TrimSpace(field(row, cols, "current_amount")); v != "" {
			currentAmount, err = strconv.ParseFloat(v, 64)
			if err != nil {
				log.Printf("导入跳过: 当前金额无效 %q", v)
				return nil
			}
		}
		targetDate := date
		if v := strings.TrimSpace(field(row, cols, "target_date")); v != "" {
			targetDate, err = time.ParseInLocation("2006-01-02", v, time.Local)
			if err != nil {
				log.Printf("导入跳过: 目标日期无效 %q", v)
				return nil
			}
		}
		record := models.FutureSaving{
			UserID:        userID,
			CategoryID:    &categoryID,
			Name:          name,
			Description:   description,
			TargetAmount:  amount,
			CurrentAmount: currentAmount,
			TargetDate:    targetDate,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("储蓄目标写入失败: %w", err)
		}
		result.Saving++
	}
	return nil
}

// field 按表头列名取值，行长度不足时返回空串
func field(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// isEmptyRow 整行所有字段均为空
func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseImportDate 依次尝试 YYYY-MM-DD、MM/DD/YYYY、DD/MM/YYYY
func parseImportDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range importDateFormats {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
