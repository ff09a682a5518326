package handler

import (
	"github.com/gin-gonic/gin"

	appdispatch "github.com/xiebiao/medsupply/internal/application/dispatch"
	appreq "github.com/xiebiao/medsupply/internal/application/requisition"
	"github.com/xiebiao/medsupply/internal/domain/dispatch"
	"github.com/xiebiao/medsupply/internal/interface/http/dto"
	"github.com/xiebiao/medsupply/internal/interface/http/middleware"
	"github.com/xiebiao/medsupply/pkg/response"
)

// DispatchHandler 发运HTTP处理器
// 发运记录只能作为审批的副作用产生，这里只有查询与取消
type DispatchHandler struct {
	listUseCase    *appdispatch.ListUseCase
	getUseCase     *appdispatch.GetUseCase
	cancelUseCase  *appreq.CancelDispatchUseCase
	confirmUseCase *appreq.ConfirmDeliveryUseCase
}

// NewDispatchHandler 创建发运处理器
func NewDispatchHandler(
	listUseCase *appdispatch.ListUseCase,
	getUseCase *appdispatch.GetUseCase,
	cancelUseCase *appreq.CancelDispatchUseCase,
	confirmUseCase *appreq.ConfirmDeliveryUseCase,
) *DispatchHandler {
	return &DispatchHandler{
		listUseCase:    listUseCase,
		getUseCase:     getUseCase,
		cancelUseCase:  cancelUseCase,
		confirmUseCase: confirmUseCase,
	}
}

// List 发运列表
// @Summary      发运列表
// @Description  机构角色只能看发往本机构的记录
// @Tags         发运模块
// @Security     BearerAuth
// @Param        status query string false "状态过滤"
// @Success      200 {object} response.Response "发运列表"
// @Router       /dispatches [get]
func (h *DispatchHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)

	dispatches, total, err := h.listUseCase.Execute(c.Request.Context(), appdispatch.ListRequest{
		Principal: middleware.GetPrincipal(c),
		Page:      page,
		PageSize:  pageSize,
		Status:    c.Query("status"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]dto.DispatchResponse, len(dispatches))
	for i, d := range dispatches {
		list[i] = toDispatchResponse(d)
	}
	response.SuccessWithPage(c, list, total, page, pageSize)
}

// Get 发运详情
// @Summary      发运详情
// @Tags         发运模块
// @Security     BearerAuth
// @Param        id path int true "发运ID"
// @Success      200 {object} response.Response "发运详情"
// @Router       /dispatches/{id} [get]
func (h *DispatchHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.ErrorWithCode(c, 40900, "非法的发运ID")
		return
	}

	d, err := h.getUseCase.Execute(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := toDispatchResponse(d)
	response.Success(c, resp)
}

// Cancel 取消发运
// @Summary      取消发运
// @Description  发运置为cancelled，申领单回退到approved；默认不回补仓库库存
// @Tags         发运模块
// @Security     BearerAuth
// @Param        id path int true "发运ID"
// @Success      200 {object} response.Response "取消成功"
// @Failure      400 {object} response.Response "发运不在途中"
// @Router       /dispatches/{id}/cancel [post]
func (h *DispatchHandler) Cancel(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.ErrorWithCode(c, 40900, "非法的发运ID")
		return
	}

	if err := h.cancelUseCase.Execute(c.Request.Context(), appreq.CancelDispatchRequest{
		Principal:  middleware.GetPrincipal(c),
		DispatchID: id,
	}); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// Confirm 确认收货
// @Summary      确认收货
// @Description  按发运ID确认收货，与申领单侧的deliver接口等价
// @Tags         发运模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "发运ID"
// @Param        request body dto.ConfirmDeliveryRequest true "送达信息"
// @Success      200 {object} response.Response "确认成功"
// @Router       /dispatches/{id}/confirm [post]
func (h *DispatchHandler) Confirm(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.ErrorWithCode(c, 40900, "非法的发运ID")
		return
	}

	var req dto.ConfirmDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	// 先按发运ID定位申领单，再走同一条确认送达链路
	d, err := h.getUseCase.Execute(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	lines := make([]appreq.DeliveryLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = appreq.DeliveryLine{
			LineID:            l.LineID,
			DeliveredQuantity: l.DeliveredQuantity,
		}
	}

	result, err := h.confirmUseCase.Execute(c.Request.Context(), appreq.ConfirmDeliveryRequest{
		Principal:     middleware.GetPrincipal(c),
		RequisitionID: d.RequisitionID,
		Lines:         lines,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// toDispatchResponse 领域实体 → HTTP响应
func toDispatchResponse(d *dispatch.Dispatch) dto.DispatchResponse {
	resp := dto.DispatchResponse{
		ID:             d.ID,
		RequisitionID:  d.RequisitionID,
		FacilityID:     d.FacilityID,
		Status:         string(d.Status),
		DispatchedBy:   d.DispatchedBy,
		ReceivedBy:     d.ReceivedBy,
		TrackingNumber: d.TrackingNumber,
		DispatchedAt:   d.DispatchedAt.Format("2006-01-02 15:04:05"),
	}
	if d.DeliveredAt != nil {
		resp.DeliveredAt = d.DeliveredAt.Format("2006-01-02 15:04:05")
	}
	return resp
}
