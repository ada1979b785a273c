package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"finanalyst/models"

	"gorm.io/gorm"
)

// 仪表盘支持的统计周期
const (
	PeriodWeek   = "week"
	PeriodMonth  = "month"
	PeriodYear   = "year"
	PeriodCustom = "custom"
)

// 日期标签格式，与前端展示约定一致
const (
	dayLabelLayout   = "02 January 2006" // 如 "17 January 2025"
	monthLabelLayout = "January 2006"    // 如 "January 2025"
	dateLayout       = "2006-01-02"
)

// IncomeBucket 收入时间序列中的一个桶
type IncomeBucket struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// CategoryAmount 按类别汇总的金额
type CategoryAmount struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// TopExpense 金额最高的支出条目
type TopExpense struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
}

// RelatedExpenseItem 关联支出条目
type RelatedExpenseItem struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
}

// RelatedExpenseGroup 某个高额支出类别下的关联支出
type RelatedExpenseGroup struct {
	Category string               `json:"category"`
	Total    float64              `json:"total"`
	Items    []RelatedExpenseItem `json:"items"`
}

// DebtPeriodStats 债务在选定周期内的偿还统计
type DebtPeriodStats struct {
	PaidAmount      float64 `json:"paid_amount"`
	PaidPercentage  float64 `json:"paid_percentage"`
	RemainingAmount float64 `json:"remaining_amount"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
}

// DebtProgress 单项债务的偿还进度
type DebtProgress struct {
	Name           string          `json:"name"`
	TotalAmount    float64         `json:"total_amount"`
	PaidAmount     float64         `json:"paid_amount"`
	PaidPercentage float64         `json:"paid_percentage"`
	PeriodStats    DebtPeriodStats `json:"period_stats"`
}

// SavingPeriodStats 储蓄目标在选定周期内的存入统计
type SavingPeriodStats struct {
	SavedAmount             float64 `json:"saved_amount"`
	SavedPercentage         float64 `json:"saved_percentage"`
	RemainingAmount         float64 `json:"remaining_amount"`
	StartDate               string  `json:"start_date"`
	EndDate                 string  `json:"end_date"`
	EstimatedCompletionDate *string `json:"estimated_completion_date"`
}

// SavingsGoal 单个储蓄目标的进度
type SavingsGoal struct {
	Name               string            `json:"name"`
	CurrentAmount      float64           `json:"current_amount"`
	TargetAmount       float64           `json:"target_amount"`
	ProgressPercentage float64           `json:"progress_percentage"`
	PeriodStats        SavingPeriodStats `json:"period_stats"`
}

// Dashboard 仪表盘聚合结果
type Dashboard struct {
	TotalIncome       float64               `json:"total_income"`
	TotalExpenses     float64               `json:"total_expenses"`
	TotalDebt         float64               `json:"total_debt"`
	TotalSavings      float64               `json:"total_savings"`
	IncomeData        []IncomeBucket        `json:"income_data"`
	ExpenseCategories []CategoryAmount      `json:"expense_categories"`
	TopExpenses       []TopExpense          `json:"top_expenses"`
	DebtProgress      []DebtProgress        `json:"debt_progress"`
	SavingsGoals      []SavingsGoal         `json:"savings_goals"`
	RelatedExpenses   []RelatedExpenseGroup `json:"related_expenses"`
}

// ResolveWindow 根据 period 计算统计区间 [start, end]（均为当天零点）
// custom 区间若终止日期早于起始日期，不报错，后续聚合产生空序列和零合计
func ResolveWindow(now time.Time, period, startStr, endStr string) (time.Time, time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch period {
	case PeriodWeek:
		// 周一对齐：Monday..Sunday
		offset := (int(today.Weekday()) + 6) % 7
		start := today.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 6), nil
	case PeriodMonth:
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		end := start.AddDate(0, 1, -1)
		return start, end, nil
	case PeriodYear:
		start := time.Date(today.Year(), 1, 1, 0, 0, 0, 0, today.Location())
		end := time.Date(today.Year(), 12, 31, 0, 0, 0, 0, today.Location())
		return start, end, nil
	case PeriodCustom:
		if startStr == "" || endStr == "" {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date and end_date are required", ErrInvalidRange)
		}
		start, err := time.ParseInLocation(dateLayout, startStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRange, startStr)
		}
		end, err := time.ParseInLocation(dateLayout, endStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRange, endStr)
		}
		return start, end, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
}

// UseMonthlyBuckets 判断收入序列按月还是按日分桶
// 跨度超过 365 天或按年统计时按月分桶
func UseMonthlyBuckets(period string, start, end time.Time) bool {
	if period == PeriodYear {
		return true
	}
	return end.Sub(start) > 365*24*time.Hour
}

// MonthlyIncomeBuckets 按 (年, 月) 汇总收入序列，区间两端的不完整月份按整月计入
func MonthlyIncomeBuckets(incomes []models.Income, start, end time.Time) []IncomeBucket {
	sums := make(map[string]float64)
	for _, in := range incomes {
		key := in.Date.Format(monthLabelLayout)
		sums[key] += in.Amount
	}

	buckets := []IncomeBucket{}
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location())
	for !cur.After(last) {
		label := cur.Format(monthLabelLayout)
		buckets = append(buckets, IncomeBucket{Date: label, Amount: sums[label]})
		cur = cur.AddDate(0, 1, 0)
	}
	return buckets
}

// DailyIncomeBuckets 按自然日汇总收入序列，区间内每一天都出现（无收入为 0）
func DailyIncomeBuckets(incomes []models.Income, start, end time.Time) []IncomeBucket {
	sums := make(map[string]float64)
	for _, in := range incomes {
		sums[in.Date.Format(dateLayout)] += in.Amount
	}

	buckets := []IncomeBucket{}
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 1) {
		buckets = append(buckets, IncomeBucket{
			Date:   cur.Format(dayLabelLayout),
			Amount: sums[cur.Format(dateLayout)],
		})
	}
	return buckets
}

// ExpenseBreakdown 按类别汇总支出并按金额降序排列（展示契约），无类别的记录跳过
func ExpenseBreakdown(expenses []models.Expense) []CategoryAmount {
	sums := make(map[string]float64)
	order := []string{}
	for _, exp := range expenses {
		if exp.Category == nil {
			continue
		}
		if _, ok := sums[exp.Category.Name]; !ok {
			order = append(order, exp.Category.Name)
		}
		sums[exp.Category.Name] += exp.Amount
	}

	result := make([]CategoryAmount, 0, len(order))
	for _, name := range order {
		result = append(result, CategoryAmount{Category: name, Amount: sums[name]})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Amount > result[j].Amount
	})
	return result
}

// expenseDisplayName 支出展示名，缺省为 "Unnamed Expense"
func expenseDisplayName(exp models.Expense) string {
	if exp.Name == "" {
		return "Unnamed Expense"
	}
	return exp.Name
}

// expenseCategoryName 支出类别展示名，无类别为 "Uncategorized"
func expenseCategoryName(exp models.Expense) string {
	if exp.Category == nil {
		return "Uncategorized"
	}
	return exp.Category.Name
}

// sortedByAmountDesc 返回按金额稳定降序排列的副本
func sortedByAmountDesc(expenses []models.Expense) []models.Expense {
	sorted := make([]models.Expense, len(expenses))
	copy(sorted, expenses)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount > sorted[j].Amount
	})
	return sorted
}

// TopExpenses 选出区间内金额最高的 5 条支出，并返回其 ID 集合供关联支出排除
func TopExpenses(expenses []models.Expense) ([]TopExpense, map[uint]bool) {
	sorted := sortedByAmountDesc(expenses)
	if len(sorted) > 5 {
		sorted = sorted[:5]
	}

	top := make([]TopExpense, 0, len(sorted))
	topIDs := make(map[uint]bool, len(sorted))
	for _, exp := range sorted {
		top = append(top, TopExpense{
			Name:     expenseDisplayName(exp),
			Amount:   exp.Amount,
			Category: expenseCategoryName(exp),
			Date:     exp.Date.Format(dayLabelLayout),
		})
		topIDs[exp.ID] = true
	}
	return top, topIDs
}

// RelatedExpenses 高额支出类别的关联支出
// 取 top 支出涉及的类别，按类别区间总额降序排列；每个类别选出排除全局前 5 之后
// 金额最高的至多 3 条；没有剩余条目的类别整体省略
func RelatedExpenses(expenses []models.Expense, top []TopExpense, topIDs map[uint]bool) []RelatedExpenseGroup {
	seen := make(map[string]bool)
	categories := []string{}
	for _, t := range top {
		if !seen[t.Category] {
			seen[t.Category] = true
			categories = append(categories, t.Category)
		}
	}

	// 类别区间总额（按实际类别名匹配，无类别的支出不参与）
	totals := make(map[string]float64, len(categories))
	for _, exp := range expenses {
		if exp.Category == nil {
			continue
		}
		if seen[exp.Category.Name] {
			totals[exp.Category.Name] += exp.Amount
		}
	}

	sort.SliceStable(categories, func(i, j int) bool {
		return totals[categories[i]] > totals[categories[j]]
	})

	groups := []RelatedExpenseGroup{}
	for _, category := range categories {
		var remainder []models.Expense
		for _, exp := range expenses {
			if exp.Category == nil || exp.Category.Name != category || topIDs[exp.ID] {
				continue
			}
			remainder = append(remainder, exp)
		}
		remainder = sortedByAmountDesc(remainder)
		if len(remainder) > 3 {
			remainder = remainder[:3]
		}
		if len(remainder) == 0 {
			continue
		}

		items := make([]RelatedExpenseItem, 0, len(remainder))
		for _, exp := range remainder {
			items = append(items, RelatedExpenseItem{
				Name:   expenseDisplayName(exp),
				Amount: exp.Amount,
				Date:   exp.Date.Format(dayLabelLayout),
			})
		}
		groups = append(groups, RelatedExpenseGroup{
			Category: category,
			Total:    totals[category],
			Items:    items,
		})
	}
	return groups
}

// nameMatches 债务/储蓄目标与流水记录之间的名称弱关联：不区分大小写的子串匹配
// 没有外键，靠名称关联历史遗留行为，原样保留
func nameMatches(recordName, goalName string) bool {
	return strings.Contains(strings.ToLower(recordName), strings.ToLower(goalName))
}

// inWindow 日期是否落在 [start, end]（按日闭区间）
func inWindow(d, start, end time.Time) bool {
	return !d.Before(start) && !d.After(end.AddDate(0, 0, 1).Add(-time.Second))
}

// BuildDebtProgress 每项债务的总体与周期偿还进度，按剩余金额降序排列
func BuildDebtProgress(debts []models.Debt, expenses []models.Expense, start, end time.Time) []DebtProgress {
	progress := []DebtProgress{}
	for _, debt := range debts {
		if debt.Amount <= 0 {
			continue
		}

		var periodPaid float64
		for _, exp := range expenses {
			if exp.Category == nil || exp.Category.Type != models.CategoryTypeDebt {
				continue
			}
			if !inWindow(exp.Date, start, end) {
				continue
			}
			if nameMatches(exp.Name, debt.Name) {
				periodPaid += exp.Amount
			}
		}

		// 除零保护：amount 为 0 时进度恒为 0
		overallPct := 0.0
		periodPct := 0.0
		if debt.Amount > 0 {
			overallPct = debt.PaidAmount / debt.Amount * 100
			periodPct = periodPaid / debt.Amount * 100
		}

		progress = append(progress, DebtProgress{
			Name:           debt.Name,
			TotalAmount:    debt.Amount,
			PaidAmount:     debt.PaidAmount,
			PaidPercentage: overallPct,
			PeriodStats: DebtPeriodStats{
				PaidAmount:      periodPaid,
				PaidPercentage:  periodPct,
				RemainingAmount: debt.Amount - debt.PaidAmount,
				StartDate:       start.Format(dayLabelLayout),
				EndDate:         end.Format(dayLabelLayout),
			},
		})
	}

	sort.SliceStable(progress, func(i, j int) bool {
		return progress[i].TotalAmount-progress[i].PaidAmount > progress[j].TotalAmount-progress[j].PaidAmount
	})
	return progress
}

// BuildSavingsGoals 每个储蓄目标的总体与周期存入进度，按完成百分比升序排列
// （最落后的目标排在最前）
func BuildSavingsGoals(savings []models.FutureSaving, incomes []models.Income, period string, now, start, end time.Time) []SavingsGoal {
	goals := []SavingsGoal{}
	for _, saving := range savings {
		if saving.TargetAmount <= 0 {
			continue
		}

		var periodSaved float64
		for _, in := range incomes {
			if in.Category == nil || in.Category.Type != models.CategoryTypeSaving {
				continue
			}
			if !inWindow(in.Date, start, end) {
				continue
			}
			if nameMatches(in.Name, saving.Name) {
				periodSaved += in.Amount
			}
		}

		overallPct := saving.CurrentAmount / saving.TargetAmount * 100
		periodPct := periodSaved / saving.TargetAmount * 100

		// 按本期日均存入速度预估完成时间，仅月/年周期有意义
		var completion *string
		if periodSaved > 0 && (period == PeriodMonth || period == PeriodYear) {
			days := 30.0
			if period == PeriodYear {
				days = 365.0
			}
			dailyRate := periodSaved / days
			monthsToComplete := (saving.TargetAmount - saving.CurrentAmount) / dailyRate
			estimated := now.Add(time.Duration(monthsToComplete * 30 * 24 * float64(time.Hour)))
			label := estimated.Format(monthLabelLayout)
			completion = &label
		}

		goals = append(goals, SavingsGoal{
			Name:               saving.Name,
			CurrentAmount:      saving.CurrentAmount,
			TargetAmount:       saving.TargetAmount,
			ProgressPercentage: overallPct,
			PeriodStats: SavingPeriodStats{
				SavedAmount:             periodSaved,
				SavedPercentage:         periodPct,
				RemainingAmount:         saving.TargetAmount - saving.CurrentAmount,
				StartDate:               start.Format(dayLabelLayout),
				EndDate:                 end.Format(dayLabelLayout),
				EstimatedCompletionDate: completion,
			},
		})
	}

	sort.SliceStable(goals, func(i, j int) bool {
		return goals[i].ProgressPercentage < goals[j].ProgressPercentage
	})
	return goals
}

// DashboardService 仪表盘聚合服务
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService 创建仪表盘聚合服务
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// Build 聚合指定用户在给定周期内的仪表盘数据
func (s *DashboardService) Build(userID uint, period, startStr, endStr string) (*Dashboard, error) {
	return s.BuildAt(time.Now(), userID, period, startStr, endStr)
}

// BuildAt 以指定的当前时间聚合仪表盘数据（便于测试）
func (s *DashboardService) BuildAt(now time.Time, userID uint, period, startStr, endStr string) (*Dashboard, error) {
	start, end, err := ResolveWindow(now, period, startStr, endStr)
	if err != nil {
		return nil, err
	}

	monthly := UseMonthlyBuckets(period, start, end)

	// 按月分桶时两端的不完整月份按整月统计，查询区间需扩展到整月边界
	incomeStart, incomeEnd := start, end
	if monthly {
		incomeStart = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
		incomeEnd = time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location()).AddDate(0, 1, -1)
	}

	var incomes []models.Income
	if err := s.db.Preload("Category").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, incomeStart, endOfDay(incomeEnd)).
		Find(&incomes).Error; err != nil {
		return nil, fmt.Errorf("查询收入失败: %w", err)
	}

	var expenses []models.Expense
	if err := s.db.Preload("Category").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, endOfDay(end)).
		Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("查询支出失败: %w", err)
	}

	var debts []models.Debt
	if err := s.db.Where("user_id = ?", userID).Find(&debts).Error; err != nil {
		return nil, fmt.Errorf("查询债务失败: %w", err)
	}

	var savings []models.FutureSaving
	if err := s.db.Where("user_id = ?", userID).Find(&savings).Error; err != nil {
		return nil, fmt.Errorf("查询储蓄目标失败: %w", err)
	}

	var incomeData []IncomeBucket
	if monthly {
		incomeData = MonthlyIncomeBuckets(incomes, start, end)
	} else {
		incomeData = DailyIncomeBuckets(incomes, start, end)
	}

	var totalIncome float64
	for _, b := range incomeData {
		totalIncome += b.Amount
	}

	var totalExpenses float64
	for _, exp := range expenses {
		totalExpenses += exp.Amount
	}

	top, topIDs := TopExpenses(expenses)
	debtProgress := BuildDebtProgress(debts, expenses, start, end)
	savingsGoals := BuildSavingsGoals(savings, incomes, period, now, start, end)

	// 合计从产出的进度列表反推，而非全部记录
	var totalDebt float64
	for _, d := range debtProgress {
		totalDebt += d.TotalAmount
	}
	var totalSavings float64
	for _, g := range savingsGoals {
		totalSavings += g.CurrentAmount
	}

	return &Dashboard{
		TotalIncome:       totalIncome,
		TotalExpenses:     totalExpenses,
		TotalDebt:         totalDebt,
		TotalSavings:      totalSavings,
		IncomeData:        incomeData,
		ExpenseCategories: ExpenseBreakdown(expenses),
		TopExpenses:       top,
		DebtProgress:      debtProgress,
		SavingsGoals:      savingsGoals,
		RelatedExpenses:   RelatedExpenses(expenses, top, topIDs),
	}, nil
}

// endOfDay 当天的最后一秒，用于包含结束日期当天
func endOfDay(d time.Time) time.Time {
	return d.Add(24*time.Hour - time.Second)
}
