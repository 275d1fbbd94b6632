package models

import "time"

// EmailSubscription 邮件订阅
type EmailSubscription struct {
	ID               uint       `gorm:"primarykey" json:"id"`
	Email            string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name             string     `gorm:"type:varchar(120);not null;default:''" json:"name"`
	Source           string     `gorm:"type:varchar(32);not null;default:'website'" json:"source"`
	Locale           string     `gorm:"type:varchar(16);not null;default:'en-US'" json:"locale"`
	Status           string     `gorm:"type:varchar(20);not null;index" json:"status"`
	UnsubscribeToken string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	SubscribedAt     time.Time  `gorm:"index" json:"subscribed_at"`
	UnsubscribedAt   *time.Time `json:"unsubscribed_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (EmailSubscription) TableName() string {
	return "email_subscriptions"
}
