package user

import (
	apperrors "github.com/xiebiao/medsupply/pkg/errors"
)

// 用户领域错误定义
var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = apperrors.New(apperrors.ErrCodeUserNotFound, "用户不存在")

	// ErrEmailDuplicate 邮箱已被注册
	ErrEmailDuplicate = apperrors.New(apperrors.ErrCodeEmailDuplicate, "邮箱已被注册")

	// ErrWeakPassword 密码强度不足
	ErrWeakPassword = apperrors.New(apperrors.ErrCodeWeakPassword, "密码强度不足（至少6位）")

	// ErrInvalidRole 角色不合法
	ErrInvalidRole = apperrors.New(apperrors.ErrCodeInvalidParams, "角色不合法")

	// ErrFacilityRequired 机构角色必须关联机构
	ErrFacilityRequired = apperrors.New(apperrors.ErrCodeInvalidParams, "机构角色必须指定所属机构")

	// ErrUserInactive 用户已停用
	ErrUserInactive = apperrors.New(apperrors.ErrCodeForbidden, "账号已停用")
)
