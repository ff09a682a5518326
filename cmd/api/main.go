package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	appdispatch "github.com/xiebiao/medsupply/internal/application/dispatch"
	"github.com/xiebiao/medsupply/internal/application/event"
	appfacility "github.com/xiebiao/medsupply/internal/application/facility"
	appinv "github.com/xiebiao/medsupply/internal/application/inventory"
	appreport "github.com/xiebiao/medsupply/internal/application/report"
	appreq "github.com/xiebiao/medsupply/internal/application/requisition"
	appuser "github.com/xiebiao/medsupply/internal/application/user"
	"github.com/xiebiao/medsupply/internal/domain/inventory"
	"github.com/xiebiao/medsupply/internal/domain/user"
	"github.com/xiebiao/medsupply/internal/infrastructure/config"
	"github.com/xiebiao/medsupply/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/medsupply/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/medsupply/internal/interface/http/handler"
	"github.com/xiebiao/medsupply/internal/interface/http/middleware"
	"github.com/xiebiao/medsupply/pkg/jwt"
	"github.com/xiebiao/medsupply/pkg/mq"
	"github.com/xiebiao/medsupply/pkg/response"
)

// main 主程序入口
// 说明：手动依赖注入（wire.go提供Wire版本，运行wire gen可生成wire_gen.go）
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())
	fmt.Printf("  - 取消发运自动回补: %t\n", cfg.Lifecycle.RestockOnCancel)

	// 2. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 3. 初始化Redis连接
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 4. 初始化消息队列（可选）
	var publisher event.Publisher = event.NopPublisher{}
	if cfg.MQ.Enabled {
		mqPublisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
		if err != nil {
			log.Fatalf("初始化RabbitMQ失败: %v", err)
		}
		defer mqPublisher.Close()
		publisher = mqPublisher
	}

	// 5. 依赖注入（手动组装）
	// Repository ← Service ← UseCase ← Handler

	// 基础设施层
	txManager := mysql.NewTxManager(db)
	userRepo := mysql.NewUserRepository(db)
	facilityRepo := mysql.NewFacilityRepository(db)
	catalogRepo := mysql.NewCatalogRepository(db)
	inventoryRepo := mysql.NewInventoryRepository(db)
	requisitionRepo := mysql.NewRequisitionRepository(db)
	dispatchRepo := mysql.NewDispatchRepository(db)
	sessionStore := redis.NewSessionStore(redisClient)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 领域层
	userService := user.NewService(userRepo)
	inventoryService := inventory.NewService(inventoryRepo)

	// 应用层
	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore)
	profileUseCase := appuser.NewProfileUseCase(userRepo)
	listUsersUseCase := appuser.NewListUsersUseCase(userRepo)

	facilityManageUseCase := appfacility.NewManageUseCase(facilityRepo)

	createItemUseCase := appinv.NewCreateItemUseCase(catalogRepo, inventoryRepo, txManager)
	updateItemUseCase := appinv.NewUpdateItemUseCase(catalogRepo, inventoryRepo, txManager)
	deleteLineUseCase := appinv.NewDeleteLineUseCase(inventoryRepo, requisitionRepo, txManager)
	adjustStockUseCase := appinv.NewAdjustStockUseCase(inventoryRepo, inventoryService, txManager, publisher)
	inventoryListUseCase := appinv.NewListUseCase(inventoryRepo)
	listMovementsUseCase := appinv.NewListMovementsUseCase(inventoryRepo)
	listCategoriesUseCase := appinv.NewListCategoriesUseCase(catalogRepo)

	submitUseCase := appreq.NewSubmitUseCase(requisitionRepo, catalogRepo, txManager, publisher)
	approveUseCase := appreq.NewApproveUseCase(requisitionRepo, dispatchRepo, inventoryService, txManager, publisher)
	rejectUseCase := appreq.NewRejectUseCase(requisitionRepo, txManager, publisher)
	confirmDeliveryUseCase := appreq.NewConfirmDeliveryUseCase(requisitionRepo, dispatchRepo, catalogRepo, inventoryService, txManager, publisher)
	deleteReqUseCase := appreq.NewDeleteUseCase(requisitionRepo, txManager)
	cancelDispatchUseCase := appreq.NewCancelDispatchUseCase(requisitionRepo, dispatchRepo, inventoryService, txManager, publisher, cfg.Lifecycle.RestockOnCancel)
	reqListUseCase := appreq.NewListUseCase(requisitionRepo)
	reqGetUseCase := appreq.NewGetUseCase(requisitionRepo)

	dispatchListUseCase := appdispatch.NewListUseCase(dispatchRepo)
	dispatchGetUseCase := appdispatch.NewGetUseCase(dispatchRepo)

	dashboardUseCase := appreport.NewDashboardUseCase(requisitionRepo, dispatchRepo, inventoryRepo)

	// 接口层
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase, profileUseCase, listUsersUseCase)
	facilityHandler := handler.NewFacilityHandler(facilityManageUseCase)
	inventoryHandler := handler.NewInventoryHandler(
		createItemUseCase,
		updateItemUseCase,
		deleteLineUseCase,
		adjustStockUseCase,
		inventoryListUseCase,
		listMovementsUseCase,
		listCategoriesUseCase,
	)
	requisitionHandler := handler.NewRequisitionHandler(
		submitUseCase,
		approveUseCase,
		rejectUseCase,
		confirmDeliveryUseCase,
		deleteReqUseCase,
		reqListUseCase,
		reqGetUseCase,
	)
	dispatchHandler := handler.NewDispatchHandler(dispatchListUseCase, dispatchGetUseCase, cancelDispatchUseCase, confirmDeliveryUseCase)
	reportHandler := handler.NewReportHandler(dashboardUseCase)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 6. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// 7. 注册路由
	registerRoutes(r,
		userHandler,
		facilityHandler,
		inventoryHandler,
		requisitionHandler,
		dispatchHandler,
		reportHandler,
		authMiddleware,
	)

	// 8. 启动服务
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	fmt.Printf("\n🚀 服务启动成功！\n")
	fmt.Printf("   访问地址: http://localhost%s\n", addr)
	fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
	fmt.Printf("   API文档: http://localhost%s/swagger/index.html\n", addr)
	fmt.Printf("   监控指标: http://localhost%s/metrics\n", addr)
	fmt.Printf("\n按Ctrl+C停止服务\n\n")

	if err := r.Run(addr); err != nil {
		log.Fatalf("启动服务失败: %v", err)
	}
}

// registerRoutes 注册路由
func registerRoutes(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	facilityHandler *handler.FacilityHandler,
	inventoryHandler *handler.InventoryHandler,
	requisitionHandler *handler.RequisitionHandler,
	dispatchHandler *handler.DispatchHandler,
	reportHandler *handler.ReportHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API路由组
	v1 := r.Group("/api/v1")
	{
		// 认证模块（公开接口）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", userHandler.Register)
			auth.POST("/login", userHandler.Login)
			auth.POST("/logout", authMiddleware.RequireAuth(), userHandler.Logout)
		}

		// 以下路由都需要登录
		authorized := v1.Group("")
		authorized.Use(authMiddleware.RequireAuth())
		{
			// 用户模块
			authorized.GET("/users", userHandler.ListUsers)
			authorized.GET("/users/profile", userHandler.Profile)

			// 机构模块
			facilities := authorized.Group("/facilities")
			{
				facilities.POST("", facilityHandler.Create)
				facilities.GET("", facilityHandler.List)
				facilities.GET("/:id", facilityHandler.Get)
				facilities.PUT("/:id", facilityHandler.Update)
			}

			// 库存模块
			inv := authorized.Group("/inventory")
			{
				inv.POST("", inventoryHandler.CreateItem)
				inv.GET("", inventoryHandler.List)
				inv.GET("/movements", inventoryHandler.ListMovements)
				inv.GET("/categories", inventoryHandler.ListCategories)
				inv.PUT("/:id", inventoryHandler.UpdateItem)
				inv.DELETE("/:id", inventoryHandler.DeleteLine)
				inv.POST("/:id/adjust", inventoryHandler.AdjustStock)
			}

			// 申领模块
			requisitions := authorized.Group("/requisitions")
			{
				requisitions.POST("", requisitionHandler.Submit)
				requisitions.GET("", requisitionHandler.List)
				requisitions.GET("/:id", requisitionHandler.Get)
				requisitions.DELETE("/:id", requisitionHandler.Delete)
				requisitions.POST("/:id/approve", requisitionHandler.Approve)
				requisitions.POST("/:id/reject", requisitionHandler.Reject)
				requisitions.POST("/:id/deliver", requisitionHandler.ConfirmDelivery)
			}

			// 发运模块
			dispatches := authorized.Group("/dispatches")
			{
				dispatches.GET("", dispatchHandler.List)
				dispatches.GET("/:id", dispatchHandler.Get)
				dispatches.POST("/:id/cancel", dispatchHandler.Cancel)
				dispatches.POST("/:id/confirm", dispatchHandler.Confirm)
			}

			// 报表模块
			authorized.GET("/reports/dashboard", reportHandler.Dashboard)
		}
	}
}
