// staffctl 命令行查看与维护人员出勤数据，与 HTTP 服务共用配置与表格后端。
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amjey/staff-tracker/config"
	"github.com/amjey/staff-tracker/internal/app"
	"github.com/amjey/staff-tracker/internal/service"
	applogger "github.com/amjey/staff-tracker/pkg/logger"
)

var (
	configPath string
	logLevel   string
	timeout    time.Duration

	svc     *service.Service
	backend *app.Backend
	logger  *zap.Logger
	cancel  context.CancelFunc
)

var rootCmd = &cobra.Command{
	Use:   "staffctl",
	Short: "人员出勤数据命令行工具",
	Long: `staffctl 从配置的表格后端读取人员名册与活动记录，
输出汇总、排行榜和个人出勤历史，也可登记人员与活动、导出报表。`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if cancel != nil {
			cancel()
		}
		if backend != nil {
			backend.Close()
		}
		if logger != nil {
			logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径（默认 ./config/config.yaml）")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "输出到 stderr 的日志级别")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "整条命令的超时时间")

	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(addStaffCmd)
	rootCmd.AddCommand(addEventCmd)
	rootCmd.AddCommand(exportCmd)
}

// setup 加载配置并组装服务；命令行不签发会话，不连接 Redis
func setup(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	var ctx context.Context
	ctx, cancel = context.WithTimeout(cmd.Context(), timeout)
	cmd.SetContext(ctx)

	cfg, err := config.LoadCLI(configPath)
	if err != nil {
		return err
	}

	logger, err = applogger.NewCLILogger(logLevel)
	if err != nil {
		return err
	}

	backend, err = app.OpenBackend(ctx, cfg, nil, logger)
	if err != nil {
		return err
	}

	svc = service.NewService(cfg, backend.Gateway, nil, nil, logger)
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(1)
	}
}
