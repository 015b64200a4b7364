package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "time/tzdata"

	"TPISync/internal/api"
	"TPISync/internal/app"
	"TPISync/internal/config"
	"TPISync/internal/export"

	"github.com/spf13/cobra"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:          "tpisync",
	Short:        "tpisync 抓取 Theme Park Industries 的世界数据并调和入库",
	SilenceUsage: true,
	RunE:         serve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 接口和定时任务（默认命令）",
	RunE:  serve,
}

var crawlCmd = &cobra.Command{
	Use:       "crawl parks|cities|rides|news",
	Short:     "执行一次爬取后退出",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"parks", "cities", "rides", "news"},
	RunE:      crawl,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "把数据库导出为 CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Close()
		files, err := a.Exporter.Export(cmd.Context())
		export.RenderSummary(cmd.OutOrStdout(), files)
		return err
	},
}

var fromID int64

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "./config", "config.yaml 所在目录")
	crawlCmd.Flags().Int64Var(&fromID, "from", 0, "公园爬取的起始 id（0 使用配置）")
	rootCmd.AddCommand(serveCmd, crawlCmd, exportCmd)
}

// boot 加载配置、日志、数据库并组装服务
func boot() (*app.App, error) {
	cfg, err := config.LoadConfigFrom(configDir)
	if err != nil {
		return nil, err
	}
	logger, err := app.NewLogger(&cfg.Log)
	if err != nil {
		return nil, err
	}
	logger.Info("配置文件加载成功")

	db, err := app.OpenDatabase(&cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	return app.New(cfg, logger, db)
}

func serve(cmd *cobra.Command, _ []string) error {
	a, err := boot()
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := a.Scheduler()
	if err != nil {
		return err
	}
	if sched != nil {
		sched.Start()
		defer sched.Stop()
	}

	router := api.NewRouter(a.Cfg.Server.Mode,
		api.NewCrawlHandler(a.Crawls, a.Exporter, a.Logger),
		api.NewQueryHandler(a.Parks, a.Cities, a.Activities, a.Logger))
	a.Logger.Infof("Gin运行模式: %s", a.Cfg.Server.Mode)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", a.Cfg.Server.Port)
		a.Logger.Infof("服务启动成功，端口：%d", a.Cfg.Server.Port)
		errCh <- router.Run(addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("启动服务失败: %w", err)
	case <-cmd.Context().Done():
		a.Logger.Info("收到退出信号，停止爬取")
		a.Crawls.StopParks()
		return nil
	}
}

func crawl(cmd *cobra.Command, args []string) error {
	a, err := boot()
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	switch args[0] {
	case "parks":
		if err := a.Crawls.StartParks(ctx, fromID); err != nil {
			return err
		}
		// Ctrl-C 只请求停止，当前这一页读完再退出
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		done := ctx.Done()
		for a.Crawls.ParkStatus().Running {
			select {
			case <-done:
				a.Crawls.StopParks()
				done = nil
			case <-ticker.C:
			}
		}
		st := a.Crawls.ParkStatus()
		a.Logger.WithField("status", st).Info("公园爬取结束")
	case "cities":
		res, err := a.Crawls.CrawlCities(ctx)
		if err != nil {
			return err
		}
		a.Logger.WithField("result", res).Info("城市爬取结束")
	case "rides":
		n, err := a.Crawls.CrawlRides(ctx)
		if err != nil {
			return err
		}
		a.Logger.WithField("rides", n).Info("设施爬取结束")
	case "news":
		res, err := a.Crawls.CrawlNews(ctx)
		if err != nil {
			return err
		}
		a.Logger.WithField("result", res).Info("新闻爬取结束")
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
