package database

import (
	"fmt"
	"log"

	"finanalyst/config"
	"finanalyst/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init 初始化数据库连接
func Init(cfg *config.Config) error {
	// 构建 MySQL DSN 连接字符串
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
	)

	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}

	// 获取底层 *sql.DB 连接池配置
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	// 设置连接池参数
	sqlDB.SetMaxIdleConns(10)  // 最大空闲连接数
	sqlDB.SetMaxOpenConns(100) // 最大打开连接数

	// 自动迁移数据库表
	if err := DB.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Income{},
		&models.Expense{},
		&models.Debt{},
		&models.FutureSaving{},
	); err != nil {
		return err
	}

	// 初始化默认类别（仅当表为空时）
	var catCount int64
	DB.Model(&models.Category{}).Count(&catCount)
	if catCount == 0 {
		defaults := []models.Category{
			{Name: "Salary", Type: models.CategoryTypeIncome, Description: "Regular employment income"},
			{Name: "Freelance", Type: models.CategoryTypeIncome, Description: "Contract and side income"},
			{Name: "Investment", Type: models.CategoryTypeIncome, Description: "Dividends and interest"},
			{Name: "Food", Type: models.CategoryTypeExpense, Description: "Groceries and dining"},
			{Name: "Transport", Type: models.CategoryTypeExpense, Description: "Commute and travel"},
			{Name: "Housing", Type: models.CategoryTypeExpense, Description: "Rent and utilities"},
			{Name: "Entertainment", Type: models.CategoryTypeExpense, Description: "Leisure spending"},
			{Name: "Loan Payment", Type: models.CategoryTypeDebt, Description: "Debt repayments"},
			{Name: "Credit Card", Type: models.CategoryTypeDebt, Description: "Credit card balances"},
			{Name: "Emergency Fund", Type: models.CategoryTypeSaving, Description: "Rainy day savings"},
			{Name: "Vacation Fund", Type: models.CategoryTypeSaving, Description: "Travel savings"},
		}
		if err := DB.Create(&defaults).Error; err != nil {
			log.Printf("警告: 初始化默认类别失败: %v", err)
		}
	}

	log.Println("数据库初始化成功")
	return nil
}

// GetDB 获取数据库连接
func GetDB() *gorm.DB {
	return DB
}
