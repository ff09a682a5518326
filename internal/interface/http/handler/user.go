package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/medsupply/internal/application/user"
	"github.com/xiebiao/medsupply/internal/interface/http/dto"
	"github.com/xiebiao/medsupply/internal/interface/http/middleware"
	"github.com/xiebiao/medsupply/pkg/response"
)

// UserHandler 用户HTTP处理器
type UserHandler struct {
	registerUseCase  *appuser.RegisterUseCase
	loginUseCase     *appuser.LoginUseCase
	logoutUseCase    *appuser.LogoutUseCase
	profileUseCase   *appuser.ProfileUseCase
	listUsersUseCase *appuser.ListUsersUseCase
}

// NewUserHandler 创建用户处理器
func NewUserHandler(
	registerUseCase *appuser.RegisterUseCase,
	loginUseCase *appuser.LoginUseCase,
	logoutUseCase *appuser.LogoutUseCase,
	profileUseCase *appuser.ProfileUseCase,
	listUsersUseCase *appuser.ListUsersUseCase,
) *UserHandler {
	return &UserHandler{
		registerUseCase:  registerUseCase,
		loginUseCase:     loginUseCase,
		logoutUseCase:    logoutUseCase,
		profileUseCase:   profileUseCase,
		listUsersUseCase: listUsersUseCase,
	}
}

// Register 用户注册
// @Summary      用户注册
// @Description  注册新用户，机构角色必须关联机构
// @Tags         用户模块
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      200 {object} response.Response "注册成功"
// @Failure      400 {object} response.Response "参数错误或邮箱已存在"
// @Router       /auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.registerUseCase.Execute(c.Request.Context(), appuser.RegisterRequest{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		FacilityID: req.FacilityID,
		Phone:      req.Phone,
		Department: req.Department,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Login 用户登录
// @Summary      用户登录
// @Description  邮箱密码登录，返回JWT Token对
// @Tags         用户模块
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} response.Response "登录成功"
// @Failure      401 {object} response.Response "邮箱或密码错误"
// @Router       /auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.loginUseCase.Execute(c.Request.Context(), appuser.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Logout 用户登出
// @Summary      用户登出
// @Tags         用户模块
// @Security     BearerAuth
// @Success      200 {object} response.Response "登出成功"
// @Router       /auth/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	// 提取Token加入黑名单
	token := ""
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 {
			token = parts[1]
		}
	}

	if err := h.logoutUseCase.Execute(c.Request.Context(), userID, token); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// Profile 个人信息
// @Summary      个人信息
// @Description  返回当前登录用户的资料
// @Tags         用户模块
// @Security     BearerAuth
// @Success      200 {object} response.Response "个人信息"
// @Router       /users/profile [get]
func (h *UserHandler) Profile(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	u, err := h.profileUseCase.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       string(u.Role),
		FacilityID: u.FacilityID,
		Phone:      u.Phone,
		Department: u.Department,
		Status:     string(u.Status),
	})
}

// ListUsers 用户列表
// @Summary      用户列表
// @Description  机构管理员只能看本机构用户
// @Tags         用户模块
// @Security     BearerAuth
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页大小" default(20)
// @Param        role query string false "角色过滤"
// @Success      200 {object} response.Response "用户列表"
// @Router       /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, pageSize := parsePagination(c)

	users, total, err := h.listUsersUseCase.Execute(c.Request.Context(), appuser.ListUsersRequest{
		Principal: middleware.GetPrincipal(c),
		Page:      page,
		PageSize:  pageSize,
		Role:      c.Query("role"),
		Status:    c.Query("status"),
		Keyword:   c.Query("keyword"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]dto.UserResponse, len(users))
	for i, u := range users {
		list[i] = dto.UserResponse{
			ID:         u.ID,
			Name:       u.Name,
			Email:      u.Email,
			Role:       string(u.Role),
			FacilityID: u.FacilityID,
			Phone:      u.Phone,
			Department: u.Department,
			Status:     string(u.Status),
		}
	}
	response.SuccessWithPage(c, list, total, page, pageSize)
}

// parsePagination 解析分页参数（page默认1，page_size默认20，上限100）
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
