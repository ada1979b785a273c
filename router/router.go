package router

import (
	"time"

	"finanalyst/api"
	"finanalyst/config"
	_ "finanalyst/docs"
	"finanalyst/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 路由组
	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录）
		authHandler := api.NewAuthHandler(cfg)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", middleware.LoginRateLimit(5, time.Minute), authHandler.Login)
		}

		// 财务类别列表（无需登录）
		categoryHandler := api.NewCategoryHandler()
		v1.GET("/categories", categoryHandler.List)

		// 需要 JWT 认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			// 用户相关
			authorized.GET("/auth/profile", authHandler.GetProfile)
			authorized.PUT("/auth/password", authHandler.ChangePassword)

			// 类别管理（仅管理员）
			adminOnly := authorized.Group("/categories")
			adminOnly.Use(middleware.AdminRequired())
			{
				adminOnly.POST("", categoryHandler.Create)
				adminOnly.PUT("/:id", categoryHandler.Update)
				adminOnly.DELETE("/:id", categoryHandler.Delete)
			}

			// 收入记录
			incomeHandler := api.NewIncomeHandler()
			incomes := authorized.Group("/incomes")
			{
				incomes.POST("", incomeHandler.Create)
				incomes.GET("", incomeHandler.List)
				incomes.GET("/:id", incomeHandler.Get)
				incomes.PUT("/:id", incomeHandler.Update)
				incomes.DELETE("/:id", incomeHandler.Delete)
			}

			// 支出记录
			expenseHandler := api.NewExpenseHandler()
			expenses := authorized.Group("/expenses")
			{
				expenses.POST("", expenseHandler.Create)
				expenses.GET("", expenseHandler.List)
				expenses.GET("/:id", expenseHandler.Get)
				expenses.PUT("/:id", expenseHandler.Update)
				expenses.DELETE("/:id", expenseHandler.Delete)
			}

			// 债务记录
			debtHandler := api.NewDebtHandler()
			debts := authorized.Group("/debts")
			{
				debts.POST("", debtHandler.Create)
				debts.GET("", debtHandler.List)
				debts.GET("/visualization", debtHandler.Visualization)
				debts.GET("/:id", debtHandler.Get)
				debts.PUT("/:id", debtHandler.Update)
				debts.DELETE("/:id", debtHandler.Delete)
			}

			// 储蓄目标
			savingHandler := api.NewSavingHandler()
			savings := authorized.Group("/savings")
			{
				savings.POST("", savingHandler.Create)
				savings.GET("", savingHandler.List)
				savings.GET("/visualization", savingHandler.Visualization)
				savings.GET("/:id", savingHandler.Get)
				savings.PUT("/:id", savingHandler.Update)
				savings.DELETE("/:id", savingHandler.Delete)
			}

			// 仪表盘
			dashboardHandler := api.NewDashboardHandler()
			authorized.GET("/dashboard", dashboardHandler.GetDashboard)
			authorized.GET("/dashboard/chart", dashboardHandler.GetChart)

			// CSV 导入
			importHandler := api.NewImportHandler(cfg)
			authorized.POST("/import", importHandler.Import)
			authorized.POST("/import/basic", importHandler.ImportBasic)

			// 数据导出
			exportHandler := api.NewExportHandler()
			export := authorized.Group("/export")
			{
				export.GET("/csv", exportHandler.ExportCSV)
				export.GET("/json", exportHandler.ExportJSON)
				export.GET("/excel", exportHandler.ExportExcel)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
