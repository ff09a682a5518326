package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appinv "github.com/xiebiao/medsupply/internal/application/inventory"
	"github.com/xiebiao/medsupply/internal/interface/http/dto"
	"github.com/xiebiao/medsupply/internal/interface/http/middleware"
	"github.com/xiebiao/medsupply/pkg/response"
)

// InventoryHandler 库存HTTP处理器
type InventoryHandler struct {
	createItemUseCase     *appinv.CreateItemUseCase
	updateItemUseCase     *appinv.UpdateItemUseCase
	deleteLineUseCase     *appinv.DeleteLineUseCase
	adjustStockUseCase    *appinv.AdjustStockUseCase
	listUseCase           *appinv.ListUseCase
	listMovementsUseCase  *appinv.ListMovementsUseCase
	listCategoriesUseCase *appinv.ListCategoriesUseCase
}

// NewInventoryHandler 创建库存处理器
func NewInventoryHandler(
	createItemUseCase *appinv.CreateItemUseCase,
	updateItemUseCase *appinv.UpdateItemUseCase,
	deleteLineUseCase *appinv.DeleteLineUseCase,
	adjustStockUseCase *appinv.AdjustStockUseCase,
	listUseCase *appinv.ListUseCase,
	listMovementsUseCase *appinv.ListMovementsUseCase,
	listCategoriesUseCase *appinv.ListCategoriesUseCase,
) *InventoryHandler {
	return &InventoryHandler{
		createItemUseCase:     createItemUseCase,
		updateItemUseCase:     updateItemUseCase,
		deleteLineUseCase:     deleteLineUseCase,
		adjustStockUseCase:    adjustStockUseCase,
		listUseCase:           listUseCase,
		listMovementsUseCase:  listMovementsUseCase,
		listCategoriesUseCase: listCategoriesUseCase,
	}
}

// CreateItem 创建物资
// @Summary      创建物资
// @Description  创建物资主数据与仓库池库存行，初始库存写入add流水
// @Tags         库存模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateItemRequest true "物资信息"
// @Success      200 {object} response.Response "创建成功"
// @Failure      400 {object} response.Response "编码重复"
// @Router       /inventory [post]
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req dto.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.createItemUseCase.Execute(c.Request.Context(), appinv.CreateItemRequest{
		Principal:       middleware.GetPrincipal(c),
		Code:            req.Code,
		Name:            req.Name,
		Category:        req.Category,
		Unit:            req.Unit,
		Description:     req.Description,
		InitialQuantity: req.InitialQuantity,
		MinStockLevel:   req.MinStockLevel,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateItem 更新物资
// @Summary      更新物资
// @Description  更新描述字段与安全库存；数量只能通过调整接口变动
// @Tags         库存模块
// @Security     BearerAuth
// @Param        id path int true "库存行ID"
// @Param        request body dto.UpdateItemRequest true "物资信息"
// @Success      200 {object} response.Response "更新成功"
// @Router       /inventory/{id} [put]
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.ErrorWithCode(c, 40900, "非法的库存行ID")
		return
	}

	var req dto.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	if err := h.updateItemUseCase.Execute(c.Request.Context(), appinv.UpdateItemRequest{
		Principal:     middleware.GetPrincipal(c),
		LineID:        id,
		Name:          req.Name,
		Category:      req.Category,
		Unit:          req.Unit,
		Description:   req.Description,
		MinStockLevel: req.MinStockLevel,
	}); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// DeleteLine 删除库存行
// @Summary      删除库存行
// @Description  被未完结申领单引用的物资禁止删除
// @Tags         库存模块
// @Security     BearerAuth
// @Param        id path int true "库存行ID"
// @Success      200 {object} response.Response "删除成功"
// @Failure      400 {object} response.Response "存在未完结申领单"
// @Router       /inventory/{id} [delete]
func (h *InventoryHandler) DeleteLine(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.ErrorWithCode(c, 40900, "非法的库存行ID")
		return
	}

	if err := h.deleteLineUseCase.Execute(c.Request.Context(), appinv.DeleteLineRequest{
		Principal: middleware.GetPrincipal(c),
		LineID:    id,
	}); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// AdjustStock 库存调整
// @Summary      库存调整
// @Description  入库(add)/盘亏(subtract,减到0)/盘点覆盖(set)，每次调整写一条流水
// @Tags         库存模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "库存行ID"
// @Param        request body dto.AdjustStockRequest true "调整信息"
// @Success      200 {object} response.Response "调整成功"
// @Router       /inventory/{id}/adjust [post]
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.ErrorWithCode(c, 40900, "非法的库存行ID")
		return
	}

	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.adjustStockUseCase.Execute(c.Request.Context(), appinv.AdjustStockRequest{
		Principal: middleware.GetPrincipal(c),
		LineID:    id,
		Kind:      req.Kind,
		Amount:    req.Amount,
		Note:      req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// List 库存列表
// @Summary      库存列表
// @Description  warehouse=true查看仓库池；机构角色的机构库存强制本机构
// @Tags         库存模块
// @Security     BearerAuth
// @Param        warehouse query bool false "仓库池"
// @Param        category query string false "分类过滤"
// @Param        low_stock query bool false "只看低库存"
// @Success      200 {object} response.Response "库存列表"
// @Router       /inventory [get]
func (h *InventoryHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)

	var facilityID *uint
	if v := c.Query("facility_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			fid := uint(id)
			facilityID = &fid
		}
	}

	lines, total, err := h.listUseCase.Execute(c.Request.Context(), appinv.ListRequest{
		Principal:  middleware.GetPrincipal(c),
		Page:       page,
		PageSize:   pageSize,
		Warehouse:  c.Query("warehouse") == "true",
		FacilityID: facilityID,
		Category:   c.Query("category"),
		LowStock:   c.Query("low_stock") == "true",
		Keyword:    c.Query("keyword"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]dto.InventoryLineResponse, len(lines))
	for i, l := range lines {
		list[i] = dto.InventoryLineResponse{
			ID:            l.ID,
			ItemID:        l.ItemID,
			FacilityID:    l.FacilityID,
			Code:          l.Code,
			Name:          l.Name,
			Category:      l.Category,
			Unit:          l.Unit,
			Quantity:      l.Quantity,
			MinStockLevel: l.MinStockLevel,
			LowStock:      l.IsLowStock(),
		}
	}
	response.SuccessWithPage(c, list, total, page, pageSize)
}

// ListMovements 库存流水
// @Summary      库存流水
// @Description  仅追加的台账，记录每次数量变化的前后值
// @Tags         库存模块
// @Security     BearerAuth
// @Param        line_id query int false "库存行ID过滤"
// @Param        kind query string false "变动类型过滤"
// @Success      200 {object} response.Response "流水列表"
// @Router       /inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	page, pageSize := parsePagination(c)

	lineID, _ := strconv.ParseUint(c.DefaultQuery("line_id", "0"), 10, 32)
	itemID, _ := strconv.ParseUint(c.DefaultQuery("item_id", "0"), 10, 32)

	movements, total, err := h.listMovementsUseCase.Execute(c.Request.Context(), appinv.ListMovementsRequest{
		Principal: middleware.GetPrincipal(c),
		Page:      page,
		PageSize:  pageSize,
		LineID:    uint(lineID),
		ItemID:    uint(itemID),
		Kind:      c.Query("kind"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]dto.StockMovementResponse, len(movements))
	for i, m := range movements {
		list[i] = dto.StockMovementResponse{
			ID:         m.ID,
			LineID:     m.LineID,
			ItemID:     m.ItemID,
			FacilityID: m.FacilityID,
			Kind:       string(m.Kind),
			Delta:      m.Delta,
			Previous:   m.Previous,
			New:        m.New,
			ActorID:    m.ActorID,
			Note:       m.Note,
			CreatedAt:  m.CreatedAt.Format("2006-01-02 15:04:05"),
		}
	}
	response.SuccessWithPage(c, list, total, page, pageSize)
}

// ListCategories 分类列表
// @Summary      分类列表
// @Tags         库存模块
// @Security     BearerAuth
// @Success      200 {object} response.Response "分类列表"
// @Router       /inventory/categories [get]
func (h *InventoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.listCategoriesUseCase.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, categories)
}
