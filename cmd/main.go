package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fyerfyer/doc-agent/api"
	"github.com/fyerfyer/doc-agent/api/middleware"

	"github.com/fyerfyer/doc-agent/api/handler"
	agentconfig "github.com/fyerfyer/doc-agent/config"
	"github.com/fyerfyer/doc-agent/internal/document"
	"github.com/fyerfyer/doc-agent/internal/llm"
	"github.com/fyerfyer/doc-agent/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 命令行选项
type options struct {
	ConfigFile   string        // 配置文件路径
	Mode         string        // 运行模式 (debug/release)
	Port         int           // 服务端口(覆盖配置文件)
	ReadTimeout  time.Duration // 读取超时
	WriteTimeout time.Duration // 写入超时
}

func main() {
	// 解析命令行参数
	opts := parseFlags()

	// 加载配置文件(命令行未指定时使用默认路径和环境变量)
	cfg, err := agentconfig.Load(opts.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 命令行端口优先于配置文件
	if opts.Port > 0 {
		cfg.Server.Port = opts.Port
	}

	// 设置Gin模式
	gin.SetMode(opts.Mode)

	// 初始化日志
	logger := setupLogger(cfg.Log)
	logger.Info("Starting document section extraction service...")

	// 创建大语言模型客户端
	llmClient, err := setupLLM(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize LLM client: %v", err)
	}
	logger.WithFields(logrus.Fields{
		"model":    cfg.Ollama.Model,
		"base_url": cfg.Ollama.BaseURL,
	}).Info("LLM client initialized")

	// 创建文本分段器
	splitter := document.NewTextSplitter(document.SplitterConfig{
		MaxChars: cfg.Document.MaxChars,
	})

	// 初始化文档分析器
	analyzer := llm.NewAnalyzer(llmClient,
		llm.WithAnalyzeTimeout(cfg.Ollama.Timeout),
	)

	// 初始化业务服务
	extractService := services.NewExtractService(llmClient,
		services.WithSplitter(splitter),
		services.WithExtractLogger(logger),
	)
	analyzeService := services.NewAnalyzeService(analyzer,
		services.WithAnalyzeLogger(logger),
	)

	// 初始化API处理器
	docHandler := handler.NewDocumentHandler(extractService)
	analyzeHandler := handler.NewAnalyzeHandler(analyzeService)
	healthHandler := handler.NewHealthHandler(cfg.Ollama.Model, cfg.Ollama.BaseURL)

	// 设置路由
	r := api.SetupRouter(docHandler, analyzeHandler, healthHandler)

	// 启动HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}

	// 优雅关闭
	go func() {
		// 启动服务
		logger.Infof("Server is running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 等待终止信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// 创建带超时的上下文
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 优雅关闭服务器
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// parseFlags 解析命令行参数
func parseFlags() options {
	opts := options{}

	// 服务配置
	flag.StringVar(&opts.ConfigFile, "config", "", "Path to config file")
	flag.StringVar(&opts.Mode, "mode", "debug", "Run mode (debug/release)")
	flag.IntVar(&opts.Port, "port", 0, "Server port (overrides config file)")
	flag.DurationVar(&opts.ReadTimeout, "read-timeout", 30*time.Second, "Read timeout")
	// 写超时需要覆盖模型调用的完整重试周期
	flag.DurationVar(&opts.WriteTimeout, "write-timeout", 3*time.Minute, "Write timeout")

	flag.Parse()
	return opts
}

// setupLogger 设置日志系统
func setupLogger(cfg agentconfig.LogConfig) *logrus.Logger {
	logger := middleware.GetLogger()

	// 设置日志级别
	switch cfg.Level {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	// 配置了日志文件时按大小滚动归档
	if cfg.File != "" {
		logger.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}))
	}

	return logger
}

// setupLLM 创建大语言模型客户端
func setupLLM(cfg *agentconfig.Config) (llm.Client, error) {
	return llm.NewClient("ollama",
		llm.WithBaseURL(cfg.Ollama.BaseURL),
		llm.WithModel(cfg.Ollama.Model),
		llm.WithTemperature(cfg.Ollama.Temperature),
		llm.WithTimeout(cfg.Ollama.Timeout),
		llm.WithMaxRetries(cfg.Ollama.MaxRetries),
		llm.WithRetryDelay(cfg.Ollama.RetryDelay),
		llm.WithMaxTokens(cfg.Ollama.MaxTokens),
	)
}
