package services

import (
	"errors"

	"msghub/internal/models"
	apperrors "msghub/pkg/errors"

	"gorm.io/gorm"
)

// OwnershipService 归属校验服务
// 所有校验一律失败关闭：输入缺失视为无效，绝不默认有效
type OwnershipService struct {
	db *gorm.DB
}

func NewOwnershipService(db *gorm.DB) *OwnershipService {
	return &OwnershipService{db: db}
}

// ValidateUserTenant 校验用户是否属于指定租户
// userID或tenantID缺失时返回(false, nil, nil)，不报错，调用方据此产生统一的拒绝响应；
// 校验通过时附带返回用户所属账户
func (s *OwnershipService) ValidateUserTenant(userID, tenantID uint) (bool, *models.Account, error) {
	if userID == 0 || tenantID == 0 {
		return false, nil, nil
	}

	var user models.User
	err := s.db.Where("id = ? AND tenant_id = ?", userID, tenantID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, apperrors.NewInfrastructure(err)
	}

	var account models.Account
	err = s.db.Where("id = ? AND tenant_id = ?", user.AccountID, tenantID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 用户记录指向的账户不在该租户下，按无效处理
		return false, nil, nil
	}
	if err != nil {
		return false, nil, apperrors.NewInfrastructure(err)
	}

	return true, &account, nil
}

// LookupUserTenant 返回用户实际所属的租户ID，用户不存在返回0
// 供审计路径区分"用户不存在"与"用户属于其他租户"，对外响应不使用该区分
func (s *OwnershipService) LookupUserTenant(userID uint) (uint, error) {
	if userID == 0 {
		return 0, nil
	}

	var user models.User
	err := s.db.Select("tenant_id").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, apperrors.NewInfrastructure(err)
	}
	return user.TenantID, nil
}

// FilterUsersByTenant 将一批用户ID按租户归属切分为有效/无效两组
// 空输入返回两个空切片；tenantID缺失时全部判为无效且不触发查询
func (s *OwnershipService) FilterUsersByTenant(userIDs []uint, tenantID uint) (validUserIDs, invalidUserIDs []uint, err error) {
	validUserIDs = []uint{}
	invalidUserIDs = []uint{}

	if len(userIDs) == 0 {
		return validUserIDs, invalidUserIDs, nil
	}

	if tenantID == 0 {
		invalidUserIDs = append(invalidUserIDs, userIDs...)
		return validUserIDs, invalidUserIDs, nil
	}

	var members []uint
	err = s.db.Model(&models.User{}).
		Where("id IN ? AND tenant_id = ?", userIDs, tenantID).
		Pluck("id", &members).Error
	if err != nil {
		return nil, nil, apperrors.NewInfrastructure(err)
	}

	memberSet := make(map[uint]struct{}, len(members))
	for _, id := range members {
		memberSet[id] = struct{}{}
	}

	// 保持输入顺序切分
	for _, id := range userIDs {
		if _, ok := memberSet[id]; ok {
			validUserIDs = append(validUserIDs, id)
		} else {
			invalidUserIDs = append(invalidUserIDs, id)
		}
	}

	return validUserIDs, invalidUserIDs, nil
}
