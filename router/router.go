package router

import (
	"io/fs"
	"net/http"
	"time"

	"expensetracker/api"
	"expensetracker/cache"
	"expensetracker/config"
	_ "expensetracker/docs"
	"expensetracker/middleware"
	"expensetracker/web"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// 各读接口的缓存时长：计算越重、变化越慢的接口缓存越久
const (
	cacheTTLList       = 60 * time.Second
	cacheTTLBulk       = 120 * time.Second
	cacheTTLAnalytics  = 300 * time.Second
	cacheTTLPredictive = 600 * time.Second
	cacheTTLCategories = 3600 * time.Second
)

// SetupRouter 设置路由
// store 为响应缓存存储，传 nil 则关闭缓存
func SetupRouter(cfg *config.Config, store *cache.Store) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// 嵌入的静态文件 - 前端页面
	staticFS, _ := fs.Sub(web.StaticFS, ".")
	r.GET("/", func(c *gin.Context) {
		content, err := fs.ReadFile(staticFS, "index.html")
		if err != nil {
			c.String(http.StatusInternalServerError, "加载页面失败")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", content)
	})

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API 路由组：限流 + 写请求缓存失效
	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.RateLimit(100, 15*time.Minute))
	apiGroup.Use(middleware.FlushOnWrite(store))
	{
		// 认证相关路由（无需登录）
		authHandler := api.NewAuthHandler(cfg)
		auth := apiGroup.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// 消费类别（静态目录，无需登录）
		expenseHandler := api.NewExpenseHandler(cfg)
		apiGroup.GET("/categories", middleware.CachePage(store, cacheTTLCategories), expenseHandler.GetCategories)

		// 需要 JWT 认证的路由
		authorized := apiGroup.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			// 用户相关
			authorized.GET("/auth/profile", authHandler.GetProfile)
			authorized.PUT("/auth/profile", authHandler.UpdateProfile)

			// 消费记录相关
			expenses := authorized.Group("/expenses")
			{
				expenses.POST("", expenseHandler.Create)
				expenses.GET("", middleware.CachePage(store, cacheTTLList), expenseHandler.List)
				expenses.GET("/bulk", middleware.CachePage(store, cacheTTLBulk), expenseHandler.Bulk)
				expenses.GET("/:id", expenseHandler.Get)
				expenses.PUT("/:id", expenseHandler.Update)
				expenses.DELETE("/:id", expenseHandler.Delete)
			}

			// 分析相关
			analyticsHandler := api.NewAnalyticsHandler()
			analytics := authorized.Group("/analytics")
			{
				analytics.GET("/spending", middleware.CachePage(store, cacheTTLAnalytics), analyticsHandler.GetSpending)
				analytics.GET("/category-breakdown", middleware.CachePage(store, cacheTTLAnalytics), analyticsHandler.GetCategoryBreakdown)
				analytics.GET("/monthly-trends", middleware.CachePage(store, cacheTTLAnalytics), analyticsHandler.GetMonthlyTrends)
				analytics.GET("/predictive", middleware.CachePage(store, cacheTTLPredictive), analyticsHandler.GetPredictive)
			}

			// 导出相关
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
			"status":    "OK",
			"timestamp": time.Now().Format(time.RFC3339),
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
