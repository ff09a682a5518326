package mysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/medsupply/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("✓ 数据库连接成功")

	// 自动迁移表结构（开发环境）
	// 注意：生产环境应使用专门的迁移工具（如golang-migrate）
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&FacilityModel{},
		&ItemMasterModel{},
		&InventoryModel{},
		&StockMovementModel{},
		&RequisitionModel{},
		&RequisitionItemModel{},
		&DispatchModel{},
	)
}

// UserModel GORM用户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
// 3. Repository负责两者之间的转换
type UserModel struct {
	ID         uint       `gorm:"primaryKey"`
	Name       string     `gorm:"size:100;not null;comment:姓名"`
	Email      string     `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password   string     `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Role       string     `gorm:"index;size:32;not null;comment:角色"`
	FacilityID *uint      `gorm:"index;comment:所属机构ID（仓库/平台角色为NULL）"`
	Phone      string     `gorm:"size:20;comment:电话"`
	Department string     `gorm:"size:100;comment:部门"`
	Status     string     `gorm:"size:16;not null;default:active;comment:状态"`
	LastLogin  *time.Time `gorm:"comment:最近登录时间"`
	CreatedAt  time.Time  `gorm:"comment:创建时间"`
	UpdatedAt  time.Time  `gorm:"comment:更新时间"`
}

func (UserModel) TableName() string {
	return "users"
}

// FacilityModel GORM机构模型
type FacilityModel struct {
	ID            uint      `gorm:"primaryKey"`
	Name          string    `gorm:"uniqueIndex;size:200;not null;comment:机构名称"`
	Location      string    `gorm:"size:200;comment:所在地"`
	Type          string    `gorm:"index;size:32;comment:机构类型"`
	ContactPerson string    `gorm:"size:100;comment:联系人"`
	Phone         string    `gorm:"size:20;comment:电话"`
	Email         string    `gorm:"size:100;comment:邮箱"`
	Address       string    `gorm:"size:500;comment:地址"`
	Status        string    `gorm:"size:16;not null;default:active;comment:状态"`
	CreatedAt     time.Time `gorm:"comment:创建时间"`
	UpdatedAt     time.Time `gorm:"comment:更新时间"`
}

func (FacilityModel) TableName() string {
	return "facilities"
}

// ItemMasterModel GORM物资主数据模型
type ItemMasterModel struct {
	ID          uint      `gorm:"primaryKey"`
	Code        string    `gorm:"uniqueIndex;size:64;not null;comment:物资编码"`
	Name        string    `gorm:"index;size:200;not null;comment:物资名称"`
	Category    string    `gorm:"index;size:64;comment:分类"`
	Unit        string    `gorm:"size:32;comment:计量单位"`
	Description string    `gorm:"type:text;comment:描述"`
	CreatedAt   time.Time `gorm:"comment:创建时间"`
	UpdatedAt   time.Time `gorm:"comment:更新时间"`
}

func (ItemMasterModel) TableName() string {
	return "item_masters"
}

// InventoryModel GORM库存行模型
// 设计说明：
// 1. (item_id, facility_id)复合唯一索引保证同一位置同一物资至多一行
//    注意：MySQL的唯一索引允许多个NULL，仓库池行(facility_id=NULL)的
//    唯一性由应用层创建前检查兜底
// 2. Code/Name/Category/Unit为主数据副本，列表查询无需JOIN
type InventoryModel struct {
	ID            uint      `gorm:"primaryKey"`
	ItemID        uint      `gorm:"uniqueIndex:idx_item_location;not null;comment:物资主数据ID"`
	FacilityID    *uint     `gorm:"uniqueIndex:idx_item_location;comment:机构ID（NULL=中心仓库）"`
	Code          string    `gorm:"index;size:64;not null;comment:物资编码（主数据副本）"`
	Name          string    `gorm:"index;size:200;not null;comment:物资名称（主数据副本）"`
	Category      string    `gorm:"index;size:64;comment:分类（主数据副本）"`
	Unit          string    `gorm:"size:32;comment:单位（主数据副本）"`
	Quantity      int       `gorm:"not null;default:0;comment:当前数量"`
	MinStockLevel int       `gorm:"not null;default:0;comment:安全库存"`
	CreatedAt     time.Time `gorm:"comment:创建时间"`
	UpdatedAt     time.Time `gorm:"comment:更新时间"`
}

func (InventoryModel) TableName() string {
	return "inventories"
}

// StockMovementModel GORM库存流水模型（仅追加）
type StockMovementModel struct {
	ID         uint      `gorm:"primaryKey"`
	LineID     uint      `gorm:"index;not null;comment:库存行ID"`
	ItemID     uint      `gorm:"index;not null;comment:物资ID"`
	FacilityID *uint     `gorm:"index;comment:机构ID（NULL=中心仓库）"`
	Kind       string    `gorm:"index;size:16;not null;comment:变动类型(add/subtract/set)"`
	Delta      int       `gorm:"not null;comment:有符号变化量"`
	Previous   int       `gorm:"not null;comment:变动前数量"`
	New        int       `gorm:"column:new_quantity;not null;comment:变动后数量"`
	ActorID    uint      `gorm:"index;not null;comment:操作人ID"`
	Note       string    `gorm:"size:500;comment:备注"`
	CreatedAt  time.Time `gorm:"index;comment:创建时间"`
}

func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// RequisitionModel GORM申领单模型
type RequisitionModel struct {
	ID          uint                   `gorm:"primaryKey"`
	RequesterID uint                   `gorm:"index;not null;comment:申领人ID"`
	FacilityID  uint                   `gorm:"index;not null;comment:申领机构ID"`
	Status      string                 `gorm:"index;size:16;not null;default:pending;comment:状态"`
	Priority    string                 `gorm:"size:16;not null;default:normal;comment:优先级"`
	Remarks     string                 `gorm:"size:500;comment:备注"`
	Items       []RequisitionItemModel `gorm:"foreignKey:RequisitionID;constraint:OnDelete:CASCADE"`
	ApprovedBy  *uint                  `gorm:"comment:审批人ID"`
	ApprovedAt  *time.Time             `gorm:"comment:审批时间"`
	DeliveredAt *time.Time             `gorm:"comment:送达时间"`
	CreatedAt   time.Time              `gorm:"index;comment:创建时间"`
	UpdatedAt   time.Time              `gorm:"comment:更新时间"`
}

func (RequisitionModel) TableName() string {
	return "requisitions"
}

// RequisitionItemModel GORM申领单明细模型
type RequisitionItemModel struct {
	ID                uint   `gorm:"primaryKey"`
	RequisitionID     uint   `gorm:"index;not null;comment:申领单ID"`
	ItemID            uint   `gorm:"index;not null;comment:物资ID"`
	RequestedQuantity int    `gorm:"not null;comment:申领数量"`
	ApprovedQuantity  *int   `gorm:"comment:审批数量"`
	DeliveredQuantity *int   `gorm:"comment:送达数量"`
	Priority          string `gorm:"size:16;default:normal;comment:行优先级"`
}

func (RequisitionItemModel) TableName() string {
	return "requisition_items"
}

// DispatchModel GORM发运模型
// requisition_id唯一索引保证与申领单1:1
type DispatchModel struct {
	ID             uint       `gorm:"primaryKey"`
	RequisitionID  uint       `gorm:"uniqueIndex;not null;comment:申领单ID"`
	FacilityID     uint       `gorm:"index;not null;comment:目的机构ID"`
	Status         string     `gorm:"index;size:16;not null;default:in_transit;comment:状态"`
	DispatchedBy   uint       `gorm:"not null;comment:发运人ID"`
	ReceivedBy     *uint      `gorm:"comment:收货人ID"`
	TrackingNumber string     `gorm:"size:64;comment:追踪号"`
	DispatchedAt   time.Time  `gorm:"comment:发运时间"`
	DeliveredAt    *time.Time `gorm:"comment:送达时间"`
	CreatedAt      time.Time  `gorm:"comment:创建时间"`
	UpdatedAt      time.Time  `gorm:"comment:更新时间"`
}

func (DispatchModel) TableName() string {
	return "dispatches"
}
