package dto

// CreateItemRequest 创建物资请求（主数据+仓库池库存行）
type CreateItemRequest struct {
	Code            string `json:"code" binding:"required,max=64"`
	Name            string `json:"name" binding:"required,max=200"`
	Category        string `json:"category" binding:"omitempty,max=64"`
	Unit            string `json:"unit" binding:"omitempty,max=32"`
	Description     string `json:"description" binding:"omitempty,max=1000"`
	InitialQuantity int    `json:"initial_quantity" binding:"omitempty,min=0"`
	MinStockLevel   int    `json:"min_stock_level" binding:"omitempty,min=0"`
}

// UpdateItemRequest 更新物资请求
type UpdateItemRequest struct {
	Name          string `json:"name" binding:"required,max=200"`
	Category      string `json:"category" binding:"omitempty,max=64"`
	Unit          string `json:"unit" binding:"omitempty,max=32"`
	Description   string `json:"description" binding:"omitempty,max=1000"`
	MinStockLevel int    `json:"min_stock_level" binding:"omitempty,min=0"`
}

// AdjustStockRequest 库存调整请求
type AdjustStockRequest struct {
	Kind   string `json:"kind" binding:"required,oneof=add subtract set"`
	Amount int    `json:"amount" binding:"min=0"`
	Note   string `json:"note" binding:"omitempty,max=500"`
}

// InventoryLineResponse 库存行响应
type InventoryLineResponse struct {
	ID            uint   `json:"id"`
	ItemID        uint   `json:"item_id"`
	FacilityID    *uint  `json:"facility_id,omitempty"` // null表示中心仓库
	Code          string `json:"code"`
	Name          string `json:"name"`
	Category      string `json:"category,omitempty"`
	Unit          string `json:"unit,omitempty"`
	Quantity      int    `json:"quantity"`
	MinStockLevel int    `json:"min_stock_level"`
	LowStock      bool   `json:"low_stock"`
}

// StockMovementResponse 库存流水响应
type StockMovementResponse struct {
	ID         uint   `json:"id"`
	LineID     uint   `json:"line_id"`
	ItemID     uint   `json:"item_id"`
	FacilityID *uint  `json:"facility_id,omitempty"`
	Kind       string `json:"kind"`
	Delta      int    `json:"delta"`
	Previous   int    `json:"previous"`
	New        int    `json:"new"`
	ActorID    uint   `json:"actor_id"`
	Note       string `json:"note,omitempty"`
	CreatedAt  string `json:"created_at"`
}
