package user

import (
	"context"

	"github.com/xiebiao/medsupply/internal/domain/user"
)

// ProfileUseCase 个人信息用例
type ProfileUseCase struct {
	userRepo user.Repository
}

// NewProfileUseCase 创建个人信息用例
func NewProfileUseCase(userRepo user.Repository) *ProfileUseCase {
	return &ProfileUseCase{userRepo: userRepo}
}

// Execute 查询当前登录用户的信息
func (uc *ProfileUseCase) Execute(ctx context.Context, userID uint) (*user.User, error) {
	return uc.userRepo.FindByID(ctx, userID)
}
