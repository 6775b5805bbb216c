package services

import (
	"fmt"
	"time"

	"msghub/internal/models"
	"msghub/pkg/config"
	"msghub/pkg/logger"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RetentionService 数据保留服务
// 定时清理过期的Webhook投递记录和安全审计日志。
// 这里删除的是平台自身的流水数据，不属于租户资源的硬删除操作
type RetentionService struct {
	db   *gorm.DB
	cron *cron.Cron
	cfg  *config.RetentionConfig
	log  *logrus.Logger
}

func NewRetentionService(db *gorm.DB, cfg *config.RetentionConfig) *RetentionService {
	return &RetentionService{
		db:   db,
		cron: cron.New(),
		cfg:  cfg,
		log:  logger.GetLogger(),
	}
}

// Start 启动定时清理任务
func (s *RetentionService) Start() error {
	_, err := s.cron.AddFunc(s.cfg.CleanupCron, func() {
		if err := s.Cleanup(); err != nil {
			s.log.Errorf("数据保留清理失败: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("注册清理任务失败: %v", err)
	}

	s.cron.Start()
	s.log.Infof("数据保留服务已启动，执行计划: %s", s.cfg.CleanupCron)
	return nil
}

// Stop 停止定时清理任务
func (s *RetentionService) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	s.log.Info("数据保留服务已停止")
}

// Cleanup 执行一轮清理
func (s *RetentionService) Cleanup() error {
	deliveryCutoff := time.Now().AddDate(0, 0, -s.cfg.WebhookDeliveryDays)
	result := s.db.Where("created_at < ?", deliveryCutoff).Delete(&models.WebhookDelivery{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		s.log.Infof("已清理%d条过期Webhook投递记录", result.RowsAffected)
	}

	auditCutoff := time.Now().AddDate(0, 0, -s.cfg.AuditLogDays)
	result = s.db.Where("created_at < ?", auditCutoff).Delete(&models.SecurityAuditLog{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		s.log.Infof("已清理%d条过期安全审计日志", result.RowsAffected)
	}

	return nil
}
