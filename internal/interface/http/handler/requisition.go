package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appreq "github.com/xiebiao/medsupply/internal/application/requisition"
	"github.com/xiebiao/medsupply/internal/domain/requisition"
	"github.com/xiebiao/medsupply/internal/interface/http/dto"
	"github.com/xiebiao/medsupply/internal/interface/http/middleware"
	"github.com/xiebiao/medsupply/pkg/response"
)

// RequisitionHandler 申领单HTTP处理器
type RequisitionHandler struct {
	submitUseCase          *appreq.SubmitUseCase
	approveUseCase         *appreq.ApproveUseCase
	rejectUseCase          *appreq.RejectUseCase
	confirmDeliveryUseCase *appreq.ConfirmDeliveryUseCase
	deleteUseCase          *appreq.DeleteUseCase
	listUseCase            *appreq.ListUseCase
	getUseCase             *appreq.GetUseCase
}

// NewRequisitionHandler 创建申领单处理器
func NewRequisitionHandler(
	submitUseCase *appreq.SubmitUseCase,
	approveUseCase *appreq.ApproveUseCase,
	rejectUseCase *appreq.RejectUseCase,
	confirmDeliveryUseCase *appreq.ConfirmDeliveryUseCase,
	deleteUseCase *appreq.DeleteUseCase,
	listUseCase *appreq.ListUseCase,
	getUseCase *appreq.GetUseCase,
) *RequisitionHandler {
	return &RequisitionHandler{
		submitUseCase:          submitUseCase,
		approveUseCase:         approveUseCase,
		rejectUseCase:          rejectUseCase,
		confirmDeliveryUseCase: confirmDeliveryUseCase,
		deleteUseCase:          deleteUseCase,
		listUseCase:            listUseCase,
		getUseCase:             getUseCase,
	}
}

// Submit 提交申领单
// @Summary      提交申领单
// @Description  机构用户发起申领，只建单不动库存
// @Tags         申领模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.SubmitRequisitionRequest true "申领信息"
// @Success      200 {object} response.Response "提交成功"
// @Failure      400 {object} response.Response "参数错误"
// @Router       /requisitions [post]
func (h *RequisitionHandler) Submit(c *gin.Context) {
	var req dto.SubmitRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	lines := make([]appreq.SubmitLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = appreq.SubmitLine{
			ItemID:   l.ItemID,
			Quantity: l.Quantity,
			Priority: l.Priority,
		}
	}

	result, err := h.submitUseCase.Execute(c.Request.Context(), appreq.SubmitRequest{
		Principal:  middleware.GetPrincipal(c),
		FacilityID: req.FacilityID,
		Priority:   req.Priority,
		Remarks:    req.Remarks,
		Lines:      lines,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Approve 审批申领单
// @Summary      审批申领单
// @Description  仓库管理员审批：写入审批量、扣减仓库库存、创建发运记录，整体一个事务
// @Tags         申领模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "申领单ID"
// @Param        request body dto.ApproveRequisitionRequest true "审批信息"
// @Success      200 {object} response.Response "审批成功"
// @Failure      400 {object} response.Response "库存不足或状态不允许"
// @Router       /requisitions/{id}/approve [post]
//
// 并发说明：同一张单被同时审批时，SELECT FOR UPDATE使两个事务串行化，
// 后到者重查状态发现已dispatched，返回状态错误,仓库只扣减一次。
func (h *RequisitionHandler) Approve(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.ErrorWithCode(c, 40900, "非法的申领单ID")
		return
	}

	var req dto.ApproveRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	lines := make([]appreq.ApprovalLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = appreq.ApprovalLine{
			LineID:           l.LineID,
			ApprovedQuantity: l.ApprovedQuantity,
		}
	}

	result, err := h.approveUseCase.Execute(c.Request.Context(), appreq.ApproveRequest{
		Principal:      middleware.GetPrincipal(c),
		RequisitionID:  id,
		Lines:          lines,
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Reject 驳回申领单
// @Summary      驳回申领单
// @Tags         申领模块
// @Security     BearerAuth
// @Param        id path int true "申领单ID"
// @Param        request body dto.RejectRequisitionRequest false "驳回原因"
// @Success      200 {object} response.Response "驳回成功"
// @Router       /requisitions/{id}/reject [post]
func (h *RequisitionHandler) Reject(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.ErrorWithCode(c, 40900, "非法的申领单ID")
		return
	}

	var req dto.RejectRequisitionRequest
	_ = c.ShouldBindJSON(&req) // 原因可选

	if err := h.rejectUseCase.Execute(c.Request.Context(), appreq.RejectRequest{
		Principal:     middleware.GetPrincipal(c),
		RequisitionID: id,
		Reason:        req.Reason,
	}); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// ConfirmDelivery 确认送达
// @Summary      确认送达
// @Description  目的机构管理员确认收货：写入送达量、入账机构库存（首收自动建行）、发运与申领单置为delivered
// @Tags         申领模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "申领单ID"
// @Param        request body dto.ConfirmDeliveryRequest true "送达信息"
// @Success      200 {object} response.Response "确认成功"
// @Router       /requisitions/{id}/deliver [post]
func (h *RequisitionHandler) ConfirmDelivery(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.ErrorWithCode(c, 40900, "非法的申领单ID")
		return
	}

	var req dto.ConfirmDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	lines := make([]appreq.DeliveryLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = appreq.DeliveryLine{
			LineID:            l.LineID,
			DeliveredQuantity: l.DeliveredQuantity,
		}
	}

	result, err := h.confirmDeliveryUseCase.Execute(c.Request.Context(), appreq.ConfirmDeliveryRequest{
		Principal:     middleware.GetPrincipal(c),
		RequisitionID: id,
		Lines:         lines,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Delete 删除申领单
// @Summary      删除申领单
// @Description  只有待审批的申领单可以删除
// @Tags         申领模块
// @Security     BearerAuth
// @Param        id path int true "申领单ID"
// @Success      200 {object} response.Response "删除成功"
// @Router       /requisitions/{id} [delete]
func (h *RequisitionHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.ErrorWithCode(c, 40900, "非法的申领单ID")
		return
	}

	if err := h.deleteUseCase.Execute(c.Request.Context(), appreq.DeleteRequest{
		Principal:     middleware.GetPrincipal(c),
		RequisitionID: id,
	}); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// List 申领单列表
// @Summary      申领单列表
// @Description  可见范围由角色决定：仓库看全部，机构管理员看本机构，普通用户看自己的
// @Tags         申领模块
// @Security     BearerAuth
// @Param        page query int false "页码" default(1)
// @Param        status query string false "状态过滤"
// @Success      200 {object} response.Response "申领单列表"
// @Router       /requisitions [get]
func (h *RequisitionHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)

	reqs, total, err := h.listUseCase.Execute(c.Request.Context(), appreq.ListRequest{
		Principal: middleware.GetPrincipal(c),
		Page:      page,
		PageSize:  pageSize,
		Status:    c.Query("status"),
		Priority:  c.Query("priority"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]dto.RequisitionResponse, len(reqs))
	for i, r := range reqs {
		list[i] = toRequisitionResponse(r)
	}
	response.SuccessWithPage(c, list, total, page, pageSize)
}

// Get 申领单详情
// @Summary      申领单详情
// @Tags         申领模块
// @Security     BearerAuth
// @Param        id path int true "申领单ID"
// @Success      200 {object} response.Response "申领单详情"
// @Router       /requisitions/{id} [get]
func (h *RequisitionHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.ErrorWithCode(c, 40900, "非法的申领单ID")
		return
	}

	r, err := h.getUseCase.Execute(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := toRequisitionResponse(r)
	response.Success(c, resp)
}

// toRequisitionResponse 领域实体 → HTTP响应
func toRequisitionResponse(r *requisition.Requisition) dto.RequisitionResponse {
	lines := make([]dto.RequisitionLineResponse, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = dto.RequisitionLineResponse{
			ID:                l.ID,
			ItemID:            l.ItemID,
			RequestedQuantity: l.RequestedQuantity,
			ApprovedQuantity:  l.ApprovedQuantity,
			DeliveredQuantity: l.DeliveredQuantity,
			Priority:          string(l.Priority),
		}
	}

	resp := dto.RequisitionResponse{
		ID:          r.ID,
		RequesterID: r.RequesterID,
		FacilityID:  r.FacilityID,
		Status:      string(r.Status),
		Priority:    string(r.Priority),
		Remarks:     r.Remarks,
		Lines:       lines,
		ApprovedBy:  r.ApprovedBy,
		CreatedAt:   r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if r.ApprovedAt != nil {
		resp.ApprovedAt = r.ApprovedAt.Format("2006-01-02 15:04:05")
	}
	if r.DeliveredAt != nil {
		resp.DeliveredAt = r.DeliveredAt.Format("2006-01-02 15:04:05")
	}
	return resp
}

// parseIDParam 解析路径中的ID参数
func parseIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
