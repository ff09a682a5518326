package handler

import (
	"github.com/gin-gonic/gin"

	appfacility "github.com/xiebiao/medsupply/internal/application/facility"
	"github.com/xiebiao/medsupply/internal/domain/facility"
	"github.com/xiebiao/medsupply/internal/interface/http/dto"
	"github.com/xiebiao/medsupply/internal/interface/http/middleware"
	"github.com/xiebiao/medsupply/pkg/response"
)

// FacilityHandler 机构HTTP处理器
type FacilityHandler struct {
	manageUseCase *appfacility.ManageUseCase
}

// NewFacilityHandler 创建机构处理器
func NewFacilityHandler(manageUseCase *appfacility.ManageUseCase) *FacilityHandler {
	return &FacilityHandler{manageUseCase: manageUseCase}
}

// Create 创建机构
// @Summary      创建机构
// @Tags         机构模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateFacilityRequest true "机构信息"
// @Success      200 {object} response.Response "创建成功"
// @Router       /facilities [post]
func (h *FacilityHandler) Create(c *gin.Context) {
	var req dto.CreateFacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	f, err := h.manageUseCase.Create(c.Request.Context(), appfacility.CreateFacilityRequest{
		Principal:     middleware.GetPrincipal(c),
		Name:          req.Name,
		Location:      req.Location,
		Type:          req.Type,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := toFacilityResponse(f)
	response.Success(c, resp)
}

// Update 更新机构
// @Summary      更新机构
// @Tags         机构模块
// @Security     BearerAuth
// @Param        id path int true "机构ID"
// @Param        request body dto.UpdateFacilityRequest true "机构信息"
// @Success      200 {object} response.Response "更新成功"
// @Router       /facilities/{id} [put]
func (h *FacilityHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.ErrorWithCode(c, 40900, "非法的机构ID")
		return
	}

	var req dto.UpdateFacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	if err := h.manageUseCase.Update(c.Request.Context(), appfacility.UpdateFacilityRequest{
		Principal:     middleware.GetPrincipal(c),
		FacilityID:    id,
		Name:          req.Name,
		Location:      req.Location,
		Type:          req.Type,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		Status:        req.Status,
	}); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// Get 机构详情
// @Summary      机构详情
// @Tags         机构模块
// @Security     BearerAuth
// @Param        id path int true "机构ID"
// @Success      200 {object} response.Response "机构详情"
// @Router       /facilities/{id} [get]
func (h *FacilityHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		response.ErrorWithCode(c, 40900, "非法的机构ID")
		return
	}

	f, err := h.manageUseCase.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := toFacilityResponse(f)
	response.Success(c, resp)
}

// List 机构列表
// @Summary      机构列表
// @Tags         机构模块
// @Security     BearerAuth
// @Success      200 {object} response.Response "机构列表"
// @Router       /facilities [get]
func (h *FacilityHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)

	facilities, total, err := h.manageUseCase.List(c.Request.Context(), appfacility.ListFacilitiesRequest{
		Page:     page,
		PageSize: pageSize,
		Type:     c.Query("type"),
		Status:   c.Query("status"),
		Keyword:  c.Query("keyword"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]dto.FacilityResponse, len(facilities))
	for i, f := range facilities {
		list[i] = toFacilityResponse(f)
	}
	response.SuccessWithPage(c, list, total, page, pageSize)
}

func toFacilityResponse(f *facility.Facility) dto.FacilityResponse {
	return dto.FacilityResponse{
		ID:            f.ID,
		Name:          f.Name,
		Location:      f.Location,
		Type:          f.Type,
		ContactPerson: f.ContactPerson,
		Phone:         f.Phone,
		Email:         f.Email,
		Address:       f.Address,
		Status:        string(f.Status),
	}
}
