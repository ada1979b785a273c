package api

import (
	"errors"
	"log"

	"finanalyst/database"
	"finanalyst/middleware"
	"finanalyst/service"

	"github.com/gin-gonic/gin"
)

// DashboardHandler 仪表盘处理器
type DashboardHandler struct{}

// NewDashboardHandler 创建仪表盘处理器
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// GetDashboard 获取财务仪表盘
// @Summary 获取财务仪表盘
// @Description 按周期聚合当前用户的收入、支出、债务与储蓄数据
// @Tags 仪表盘
// @Produce json
// @Security BearerAuth
// @Param period query string false "统计周期" Enums(week,month,year,custom) default(month)
// @Param start_date query string false "自定义开始日期 (2024-01-01)，period=custom 时必填"
// @Param end_date query string false "自定义结束日期 (2024-12-31)，period=custom 时必填"
// @Success 200 {object} Response{data=service.Dashboard} "获取成功"
// @Failure 400 {object} Response "周期或日期参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 500 {object} Response "服务器错误"
// @Router /api/v1/dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	period := c.DefaultQuery("period", service.PeriodMonth)
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")

	svc := service.NewDashboardService(database.DB)
	dashboard, err := svc.Build(userID, period, startDate, endDate)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPeriod):
			BadRequest(c, "无效的统计周期，可选值：week、month、year、custom")
		case errors.Is(err, service.ErrInvalidRange):
			BadRequest(c, "自定义周期需要提供合法的 start_date 和 end_date")
		default:
			log.Printf("仪表盘聚合失败: %v", err)
			InternalError(c, "仪表盘数据获取失败")
		}
		return
	}

	Success(c, dashboard)
}

// GetChart 获取收入趋势图
// @Summary 获取收入趋势图
// @Description 将选定周期内的收入时间序列渲染为 PNG 图片，无数据时返回 204
// @Tags 仪表盘
// @Produce png
// @Security BearerAuth
// @Param period query string false "统计周期" Enums(week,month,year,custom) default(month)
// @Param start_date query string false "自定义开始日期，period=custom 时必填"
// @Param end_date query string false "自定义结束日期，period=custom 时必填"
// @Success 200 {file} binary "PNG 图片"
// @Success 204 "周期内无收入数据"
// @Failure 400 {object} Response "周期或日期参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/dashboard/chart [get]
func (h *DashboardHandler) GetChart(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	period := c.DefaultQuery("period", service.PeriodMonth)
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")

	svc := service.NewDashboardService(database.DB)
	dashboard, err := svc.Build(userID, period, startDate, endDate)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPeriod):
			BadRequest(c, "无效的统计周期，可选值：week、month、year、custom")
		case errors.Is(err, service.ErrInvalidRange):
			BadRequest(c, "自定义周期需要提供合法的 start_date 和 end_date")
		default:
			log.Printf("仪表盘聚合失败: %v", err)
			InternalError(c, "仪表盘数据获取失败")
		}
		return
	}

	png, err := service.RenderIncomeChart(dashboard.IncomeData)
	if err != nil {
		log.Printf("收入趋势图渲染失败: %v", err)
		InternalError(c, "图表渲染失败")
		return
	}
	if png == nil {
		c.Status(204)
		return
	}

	c.Data(200, "image/png", png)
}
