package service

import (
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/prepwise-next/internal/constants"
	"github.com/prepwise-next/internal/i18n"
	"github.com/prepwise-next/internal/logger"
	"github.com/prepwise-next/internal/models"
	"github.com/prepwise-next/internal/queue"
	"github.com/prepwise-next/internal/repository"

	"github.com/google/uuid"
)

const subscriptionNameMaxLength = 120

// SubscribeInput 订阅参数
type SubscribeInput struct {
	Email  string
	Name   string
	Source string
	Locale string
}

// SubscriptionService 邮件订阅服务
type SubscriptionService struct {
	repo         repository.EmailSubscriptionRepository
	emailService *EmailService
	queueClient  *queue.Client
	now          func() time.Time
}

// NewSubscriptionService 创建邮件订阅服务
func NewSubscriptionService(repo repository.EmailSubscriptionRepository, emailService *EmailService, queueClient *queue.Client) *SubscriptionService {
	return &SubscriptionService{
		repo:         repo,
		emailService: emailService,
		queueClient:  queueClient,
		now:          time.Now,
	}
}

// Subscribe 订阅，重复订阅幂等，已退订的会重新订阅
func (s *SubscriptionService) Subscribe(input SubscribeInput) (*models.EmailSubscription, bool, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, false, err
	}
	name := strings.TrimSpace(input.Name)
	if len([]rune(name)) > subscriptionNameMaxLength {
		return nil, false, ErrSubscriptionInvalid
	}
	source := normalizeSubscriptionSource(input.Source)
	locale := i18n.NormalizeLocale(input.Locale)

	now := s.now()
	sub, err := s.repo.GetByEmail(email)
	if err != nil {
		return nil, false, err
	}
	if sub != nil && sub.Status == constants.SubscriptionStatusSubscribed {
		return sub, false, nil
	}

	if sub == nil {
		sub = &models.EmailSubscription{
			Email:            email,
			Name:             name,
			Source:           source,
			Locale:           locale,
			Status:           constants.SubscriptionStatusSubscribed,
			UnsubscribeToken: uuid.NewString(),
			SubscribedAt:     now,
		}
		if err := s.repo.Create(sub); err != nil {
			return nil, false, err
		}
	} else {
		sub.Status = constants.SubscriptionStatusSubscribed
		sub.UnsubscribeToken = uuid.NewString()
		sub.SubscribedAt = now
		sub.UnsubscribedAt = nil
		sub.Source = source
		sub.Locale = locale
		if name != "" {
			sub.Name = name
		}
		if err := s.repo.Update(sub); err != nil {
			return nil, false, err
		}
	}

	logger.Infow("email_subscribed", "subscription_id", sub.ID, "source", sub.Source)
	if err := s.queueClient.EnqueueSubscriptionWelcomeEmail(queue.SubscriptionWelcomeEmailPayload{
		SubscriptionID: sub.ID,
	}); err != nil {
		logger.Warnw("subscription_welcome_enqueue_failed", "subscription_id", sub.ID, "error", err)
	}
	return sub, true, nil
}

// Unsubscribe 通过退订令牌退订
func (s *SubscriptionService) Unsubscribe(token string) (*models.EmailSubscription, error) {
	sub, err := s.repo.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrSubscriptionTokenInvalid
	}
	if sub.Status == constants.SubscriptionStatusUnsubscribed {
		return sub, nil
	}
	now := s.now()
	sub.Status = constants.SubscriptionStatusUnsubscribed
	sub.UnsubscribedAt = &now
	if err := s.repo.Update(sub); err != nil {
		return nil, err
	}
	logger.Infow("email_unsubscribed", "subscription_id", sub.ID)
	return sub, nil
}

// SendWelcome 发送欢迎邮件，供队列任务调用
func (s *SubscriptionService) SendWelcome(subscriptionID uint) error {
	sub, err := s.repo.GetByID(subscriptionID)
	if err != nil {
		return err
	}
	if sub == nil || sub.Status != constants.SubscriptionStatusSubscribed {
		return nil
	}
	return s.emailService.SendWelcomeEmail(sub.Email, sub.Name, sub.UnsubscribeToken, sub.Locale)
}

// List 订阅列表
func (s *SubscriptionService) List(filter repository.EmailSubscriptionListFilter) ([]models.EmailSubscription, int64, error) {
	return s.repo.List(filter)
}

// CountByStatus 按状态统计
func (s *SubscriptionService) CountByStatus() (map[string]int64, error) {
	return s.repo.CountByStatus()
}

// UpdateStatus 后台修改订阅状态
func (s *SubscriptionService) UpdateStatus(id uint, status string) (*models.EmailSubscription, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != constants.SubscriptionStatusSubscribed && status != constants.SubscriptionStatusUnsubscribed {
		return nil, ErrSubscriptionInvalid
	}
	sub, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrSubscriptionNotFound
	}
	if sub.Status == status {
		return sub, nil
	}
	now := s.now()
	sub.Status = status
	if status == constants.SubscriptionStatusUnsubscribed {
		sub.UnsubscribedAt = &now
	} else {
		sub.UnsubscribedAt = nil
		sub.SubscribedAt = now
	}
	if err := s.repo.Update(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Delete 删除订阅
func (s *SubscriptionService) Delete(id uint) error {
	sub, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if sub == nil {
		return ErrSubscriptionNotFound
	}
	return s.repo.Delete(id)
}

// ExportCSV 按筛选条件导出 CSV
func (s *SubscriptionService) ExportCSV(w io.Writer, filter repository.EmailSubscriptionListFilter) (int, error) {
	filter.Page = 0
	filter.PageSize = 0
	subs, _, err := s.repo.List(filter)
	if err != nil {
		return 0, err
	}
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"email", "name", "source", "locale", "status", "subscribed_at", "unsubscribed_at"}); err != nil {
		return 0, err
	}
	for _, sub := range subs {
		unsubscribedAt := ""
		if sub.UnsubscribedAt != nil {
			unsubscribedAt = sub.UnsubscribedAt.UTC().Format(time.RFC3339)
		}
		if err := writer.Write([]string{
			sub.Email,
			sub.Name,
			sub.Source,
			sub.Locale,
			sub.Status,
			sub.SubscribedAt.UTC().Format(time.RFC3339),
			unsubscribedAt,
		}); err != nil {
			return 0, err
		}
	}
	writer.Flush()
	return len(subs), writer.Error()
}

func normalizeSubscriptionSource(source string) string {
	switch source = strings.ToLower(strings.TrimSpace(source)); source {
	case constants.SubscriptionSourceAdmin, constants.SubscriptionSourceSignup:
		return source
	default:
		return constants.SubscriptionSourceWebsite
	}
}
