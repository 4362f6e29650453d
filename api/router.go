package api

import (
	"github.com/gin-gonic/gin"

	"github.com/fyerfyer/doc-agent/api/handler"
	"github.com/fyerfyer/doc-agent/api/middleware"
)

// SetupRouter 设置API路由
// 配置所有的API端点并应用中间件
func SetupRouter(
	docHandler *handler.DocumentHandler,
	analyzeHandler *handler.AnalyzeHandler,
	healthHandler *handler.HealthHandler,
) *gin.Engine {
	// 创建Gin路由引擎，日志和恢复逻辑由自定义中间件承担
	router := gin.New()

	// 应用全局中间件
	router.Use(Cors())
	router.Use(middleware.SetTraceID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorMiddleware())

	// 在调试模式下记录请求体
	if gin.Mode() == gin.DebugMode {
		router.Use(middleware.RequestBodyLog())
	}

	// 服务信息
	router.GET("/", healthHandler.ServiceInfo)

	// 创建API分组
	api := router.Group("/api")
	{
		agent := api.Group("/doc-agent")
		{
			// 章节提取 - POST /api/doc-agent/extract-sections
			agent.POST("/extract-sections", docHandler.ExtractSections)

			// 文档分析 - POST /api/doc-agent/analyze
			agent.POST("/analyze", analyzeHandler.Analyze)

			// 健康检查 - GET /api/doc-agent/health
			agent.GET("/health", healthHandler.Health)

			// 支持的格式 - GET /api/doc-agent/supported-formats
			agent.GET("/supported-formats", healthHandler.SupportedFormats)
		}
	}

	return router
}

// Cors 跨域资源共享中间件
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Trace-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
