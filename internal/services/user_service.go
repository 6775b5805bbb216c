package services

import (
	"errors"
	"time"

	"msghub/internal/models"
	apperrors "msghub/pkg/errors"

	"gorm.io/gorm"
)

// UserService 用户服务
type UserService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewUserService(db *gorm.DB, audit *AuditService) *UserService {
	return &UserService{db: db, audit: audit}
}

// Create 在账户下创建用户（坐席/管理员）
func (s *UserService) Create(tenantID, accountID uint, username, email, password, name, role string, meta *RequestMeta) (*models.User, error) {
	if tenantID == 0 {
		return nil, apperrors.NewAccessDenied("访问被拒绝")
	}
	if username == "" || email == "" || password == "" {
		return nil, apperrors.NewInput("用户名、邮箱和密码不能为空")
	}
	if role != models.UserRoleAgent && role != models.UserRoleAdministrator {
		return nil, apperrors.NewInput("无效的用户角色")
	}

	// 账户归属校验
	var account models.Account
	err := s.db.Where("id = ? AND tenant_id = ?", accountID, tenantID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("资源不存在")
	}
	if err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}

	// 用户名/邮箱全局唯一预检
	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ? OR email = ?", username, email).Count(&count).Error; err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}
	if count > 0 {
		return nil, apperrors.NewConflict("用户名或邮箱已被使用")
	}

	user := &models.User{
		TenantID:  tenantID,
		AccountID: accountID,
		Username:  username,
		Email:     email,
		Name:      name,
		Role:      role,
		Status:    models.UserStatusActive,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}

	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewConflict("用户名或邮箱已被使用")
		}
		return nil, apperrors.NewInfrastructure(err)
	}

	s.audit.LogResourceEvent("create", user.TableName(), user.ID, tenantID, meta)
	return user, nil
}

// GetByID 按ID获取用户（不带租户谓词，仅供认证中间件使用）
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("资源不存在")
	}
	if err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}
	return &user, nil
}

// GetByIDInTenant 租户视角获取用户，跨租户命中对外等同于不存在
func (s *UserService) GetByIDInTenant(id, tenantID uint, meta *RequestMeta) (*models.User, error) {
	if tenantID == 0 {
		return nil, apperrors.NewAccessDenied("访问被拒绝")
	}

	var user models.User
	err := s.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("资源不存在")
	}
	if err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}

	if user.TenantID != tenantID {
		s.audit.LogSecurityViolation(tenantID, user.TenantID, user.ID, user.TableName(), meta)
		return nil, apperrors.NewNotFound("资源不存在")
	}

	return &user, nil
}

// GetByUsername 按用户名获取用户（登录入口）
func (s *UserService) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("资源不存在")
	}
	if err != nil {
		return nil, apperrors.NewInfrastructure(err)
	}
	return &user, nil
}

// List 获取租户的用户列表，按ID升序
func (s *UserService) List(tenantID uint, role string, page, pageSize int) ([]*models.User, int64, error) {
	if tenantID == 0 {
		return nil, 0, apperrors.NewAccessDenied("访问被拒绝")
	}

	var users []*models.User
	var total int64

	query := s.db.Model(&models.User{}).Where("tenant_id = ?", tenantID)
	if role != "" {
		query = query.Where("role = ?", role)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewInfrastructure(err)
	}

	offset := (page - 1) * pageSize
	err := query.Order("id ASC").Offset(offset).Limit(pageSize).Find(&users).Error
	if err != nil {
		return nil, 0, apperrors.NewInfrastructure(err)
	}

	return users, total, nil
}

// IsActive 检查用户状态
func (s *UserService) IsActive(user *models.User) bool {
	return user.Status == models.UserStatusActive
}

// UpdateLastLogin 更新最后登录时间
func (s *UserService) UpdateLastLogin(userID uint) error {
	now := time.Now()
	return s.db.Model(&models.User{}).Where("id = ?", userID).Update("last_login_at", &now).Error
}
