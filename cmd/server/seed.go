package main

import (
	"fmt"

	"msghub/internal/database"
	"msghub/internal/models"
	"msghub/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// seedData 初始化种子数据
func seedData() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting seed data initialization...")

	db := database.GetDB()

	// 1. 创建默认租户
	if err := createDefaultTenant(db); err != nil {
		return fmt.Errorf("创建默认租户失败: %v", err)
	}

	// 2. 创建默认账户
	if err := createDefaultAccount(db); err != nil {
		return fmt.Errorf("创建默认账户失败: %v", err)
	}

	// 3. 创建平台管理员用户
	if err := createDefaultAdmin(db); err != nil {
		return fmt.Errorf("创建平台管理员失败: %v", err)
	}

	appLogger.Info("Seed data initialization completed successfully")
	return nil
}

// createDefaultTenant 创建默认租户
func createDefaultTenant(db *gorm.DB) error {
	var count int64
	db.Model(&models.Tenant{}).Where("code = ?", "default").Count(&count)
	if count > 0 {
		logger.GetLogger().Info("默认租户已存在，跳过创建")
		return nil
	}

	tenant := &models.Tenant{
		Name:   "默认租户",
		Code:   "default",
		Status: models.TenantStatusActive,
	}

	if err := db.Create(tenant).Error; err != nil {
		return err
	}

	logger.GetLogger().Info("默认租户创建成功")
	return nil
}

// createDefaultAccount 创建默认账户
func createDefaultAccount(db *gorm.DB) error {
	var count int64
	db.Model(&models.Account{}).Where("name = ?", "默认账户").Count(&count)
	if count > 0 {
		logger.GetLogger().Info("默认账户已存在，跳过创建")
		return nil
	}

	var tenant models.Tenant
	if err := db.Where("code = ?", "default").First(&tenant).Error; err != nil {
		return err
	}

	account := &models.Account{
		TenantID: tenant.ID,
		Name:     "默认账户",
		Token:    uuid.NewString(),
		Status:   models.AccountStatusActive,
	}

	if err := db.Create(account).Error; err != nil {
		return err
	}

	logger.GetLogger().Infof("默认账户创建成功，Webhook令牌: %s", account.Token)
	return nil
}

// createDefaultAdmin 创建平台管理员用户
func createDefaultAdmin(db *gorm.DB) error {
	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count > 0 {
		logger.GetLogger().Info("平台管理员已存在，跳过创建")
		return nil
	}

	var account models.Account
	if err := db.Where("name = ?", "默认账户").First(&account).Error; err != nil {
		return err
	}

	admin := &models.User{
		TenantID:        account.TenantID,
		AccountID:       account.ID,
		Username:        "admin",
		Email:           "admin@msghub.local",
		Name:            "平台管理员",
		Role:            models.UserRoleAdministrator,
		Status:          models.UserStatusActive,
		IsPlatformAdmin: true,
	}
	if err := admin.SetPassword("Admin@123"); err != nil {
		return err
	}

	if err := db.Create(admin).Error; err != nil {
		return err
	}

	logger.GetLogger().Info("平台管理员创建成功（用户名: admin，初始密码: Admin@123）")
	return nil
}
