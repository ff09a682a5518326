//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入不同，Wire在编译期生成代码
// 3. 优势：零运行时开销、类型安全、编译期检测循环依赖
//
// Wire工作流程：
// Step 1: 编写wire.go（本文件），定义Providers和Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go，包含完整的依赖创建代码
// Step 4: main.go调用wire_gen.go中的InitializeApp()

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"

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
)

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	config.Load,
	mysql.NewDB,
	redis.NewClient,
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewFacilityRepository,
	mysql.NewCatalogRepository,
	mysql.NewInventoryRepository,
	mysql.NewRequisitionRepository,
	mysql.NewDispatchRepository,
	mysql.NewTxManager,
	// *mysql.TxManager同时满足两个应用层的事务接口
	wire.Bind(new(appreq.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(appinv.TxManager), new(*mysql.TxManager)),
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	user.NewService,
	inventory.NewService,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewProfileUseCase,
	appuser.NewListUsersUseCase,
	appfacility.NewManageUseCase,
	appinv.NewCreateItemUseCase,
	appinv.NewUpdateItemUseCase,
	appinv.NewDeleteLineUseCase,
	appinv.NewAdjustStockUseCase,
	appinv.NewListUseCase,
	appinv.NewListMovementsUseCase,
	appinv.NewListCategoriesUseCase,
	appreq.NewSubmitUseCase,
	appreq.NewApproveUseCase,
	appreq.NewRejectUseCase,
	appreq.NewConfirmDeliveryUseCase,
	appreq.NewDeleteUseCase,
	appreq.NewCancelDispatchUseCase,
	appreq.NewListUseCase,
	appreq.NewGetUseCase,
	appdispatch.NewListUseCase,
	appdispatch.NewGetUseCase,
	appreport.NewDashboardUseCase,
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,
	provideSessionStore,
	middleware.NewAuthMiddleware,
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewFacilityHandler,
	handler.NewInventoryHandler,
	handler.NewRequisitionHandler,
	handler.NewDispatchHandler,
	handler.NewReportHandler,
)

// provideJWTManager 从配置创建JWT管理器
// Wire无法自动从Config提取字段参数，需要手动编写Provider
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 从Redis客户端创建Session存储
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// providePublisher 根据配置创建事件发布者
// MQ未启用时返回NopPublisher，业务代码无需感知
func providePublisher(cfg *config.Config) (event.Publisher, error) {
	if !cfg.MQ.Enabled {
		return event.NopPublisher{}, nil
	}
	return mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
}

// provideRestockOnCancel 取消发运时是否自动回补仓库库存
func provideRestockOnCancel(cfg *config.Config) bool {
	return cfg.Lifecycle.RestockOnCancel
}

// provideGinEngine 创建并配置Gin引擎
// 路由注册复用main.go中的registerRoutes
func provideGinEngine(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	facilityHandler *handler.FacilityHandler,
	inventoryHandler *handler.InventoryHandler,
	requisitionHandler *handler.RequisitionHandler,
	dispatchHandler *handler.DispatchHandler,
	reportHandler *handler.ReportHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	registerRoutes(r,
		userHandler,
		facilityHandler,
		inventoryHandler,
		requisitionHandler,
		dispatchHandler,
		reportHandler,
		authMiddleware,
	)
	return r
}

// InitializeApp 初始化整个应用
// Wire会在编译期分析依赖关系，生成wire_gen.go中的初始化代码
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		providePublisher,
		provideRestockOnCancel,
		provideGinEngine,
	)
	return nil, nil
}
