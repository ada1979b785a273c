package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"finanalyst/config"
	"finanalyst/database"
	"finanalyst/middleware"
	"finanalyst/router"
)

// @title 个人财务分析 API
// @version 1.0
// @description 个人财务分析系统 API，支持收入、支出、债务、储蓄记录管理，CSV 批量导入与仪表盘聚合分析
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const version = "1.0.0"

type options struct {
	configFile  string
	port        string
	showVersion bool
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.configFile, "config", "", "外部配置文件路径（可选）")
	flag.StringVar(&opts.configFile, "c", "", "外部配置文件路径（简写）")
	flag.StringVar(&opts.port, "port", "", "监听端口，如: 8080 或 :8080")
	flag.StringVar(&opts.port, "p", "", "监听端口（简写）")
	flag.BoolVar(&opts.showVersion, "version", false, "显示版本信息")
	flag.BoolVar(&opts.showVersion, "v", false, "显示版本信息（简写）")
	flag.Parse()
	return opts
}

func main() {
	opts := parseFlags()

	if opts.showVersion {
		fmt.Printf("个人财务分析系统 v%s\n", version)
		return
	}

	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}

func run(opts options) error {
	// 内置配置 + 可选的外部配置覆盖
	cfg, err := config.LoadConfig(opts.configFile)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	// 命令行端口优先于配置文件
	if opts.port != "" {
		if !strings.HasPrefix(opts.port, ":") {
			opts.port = ":" + opts.port
		}
		cfg.Server.Port = opts.port
	}

	config.PrintConfig()

	if err := database.Init(cfg); err != nil {
		return fmt.Errorf("数据库初始化失败: %w", err)
	}

	middleware.InitJWT(cfg)

	r := router.SetupRouter(cfg)

	log.Printf("个人财务分析系统已启动，监听 %s", cfg.Server.Port)
	log.Printf("Swagger: http://localhost%s/swagger/index.html", cfg.Server.Port)

	return r.Run(cfg.Server.Port)
}
