package repository

import (
	"errors"
	"strings"

	"github.com/prepwise-next/internal/models"

	"gorm.io/gorm"
)

// EmailSubscriptionRepository 邮件订阅数据访问接口
type EmailSubscriptionRepository interface {
	GetByID(id uint) (*models.EmailSubscription, error)
	GetByEmail(email string) (*models.EmailSubscription, error)
	GetByToken(token string) (*models.EmailSubscription, error)
	Create(sub *models.EmailSubscription) error
	Update(sub *models.EmailSubscription) error
	Delete(id uint) error
	List(filter EmailSubscriptionListFilter) ([]models.EmailSubscription, int64, error)
	CountByStatus() (map[string]int64, error)
}

// GormEmailSubscriptionRepository GORM 实现
type GormEmailSubscriptionRepository struct {
	db *gorm.DB
}

// NewEmailSubscriptionRepository 创建邮件订阅仓库
func NewEmailSubscriptionRepository(db *gorm.DB) *GormEmailSubscriptionRepository {
	return &GormEmailSubscriptionRepository{db: db}
}

func (r *GormEmailSubscriptionRepository) first(query *gorm.DB) (*models.EmailSubscription, error) {
	var sub models.EmailSubscription
	if err := query.First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// GetByID 根据 ID 获取订阅
func (r *GormEmailSubscriptionRepository) GetByID(id uint) (*models.EmailSubscription, error) {
	return r.first(r.db.Where("id = ?", id))
}

// GetByEmail 根据邮箱获取订阅
func (r *GormEmailSubscriptionRepository) GetByEmail(email string) (*models.EmailSubscription, error) {
	return r.first(r.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))))
}

// GetByToken 根据退订令牌获取订阅
func (r *GormEmailSubscriptionRepository) GetByToken(token string) (*models.EmailSubscription, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	return r.first(r.db.Where("unsubscribe_token = ?", token))
}

// Create 创建订阅
func (r *GormEmailSubscriptionRepository) Create(sub *models.EmailSubscription) error {
	return r.db.Create(sub).Error
}

// Update 更新订阅
func (r *GormEmailSubscriptionRepository) Update(sub *models.EmailSubscription) error {
	return r.db.Save(sub).Error
}

// Delete 删除订阅
func (r *GormEmailSubscriptionRepository) Delete(id uint) error {
	return r.db.Delete(&models.EmailSubscription{}, id).Error
}

// List 订阅列表
func (r *GormEmailSubscriptionRepository) List(filter EmailSubscriptionListFilter) ([]models.EmailSubscription, int64, error) {
	query := r.db.Model(&models.EmailSubscription{})
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		condition, argCount := buildKeywordLikeCondition(r.db, "email", "name")
		query = query.Where(condition, repeatLikeArgs("%"+keyword+"%", argCount)...)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("subscribed_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("subscribed_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	subs := make([]models.EmailSubscription, 0)
	if err := query.Order("id DESC").Find(&subs).Error; err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

// CountByStatus 按状态统计订阅数
func (r *GormEmailSubscriptionRepository) CountByStatus() (map[string]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	if err := r.db.Model(&models.EmailSubscription{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}
