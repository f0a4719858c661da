package entity

import (
	"time"
)

// APIKey 模型凭据实体，保存平台、密钥与端点覆盖
type APIKey struct {
	ID        string            `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerID   string            `json:"owner_id,omitempty" gorm:"type:uuid;index"`
	Name      string            `json:"name" gorm:"type:varchar(100);not null"`
	Platform  string            `json:"platform" gorm:"type:varchar(50);not null"`
	Key       string            `json:"-" gorm:"column:api_key;type:text"`
	BaseURL   string            `json:"base_url,omitempty" gorm:"type:varchar(512)"`
	Model     string            `json:"model,omitempty" gorm:"type:varchar(200)"`
	Endpoints map[string]string `json:"endpoints,omitempty" gorm:"type:jsonb;serializer:json"`
	Enabled   bool              `json:"enabled" gorm:"default:true"`
	CreatedAt time.Time         `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time         `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (APIKey) TableName() string {
	return "api_keys"
}

// NewAPIKey 创建新凭据
func NewAPIKey(ownerID, name, platform, key string) *APIKey {
	now := time.Now()
	return &APIKey{
		OwnerID:   ownerID,
		Name:      name,
		Platform:  platform,
		Key:       key,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Masked 返回脱敏后的密钥
func (k *APIKey) Masked() string {
	if len(k.Key) <= 8 {
		return "****"
	}
	return k.Key[:4] + "****" + k.Key[len(k.Key)-4:]
}
