package entity

import (
	"time"
)

// MediaTaskStatus 媒体任务状态
type MediaTaskStatus string

const (
	MediaTaskStatusSubmitted MediaTaskStatus = "submitted"
	MediaTaskStatusRunning   MediaTaskStatus = "running"
	MediaTaskStatusCompleted MediaTaskStatus = "completed"
	MediaTaskStatusFailed    MediaTaskStatus = "failed"
	MediaTaskStatusTimedOut  MediaTaskStatus = "timed_out"
)

// MediaTask 远端媒体生成任务实体
type MediaTask struct {
	ID         string          `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID  string          `json:"project_id" gorm:"type:uuid;index"`
	EpisodeID  string          `json:"episode_id,omitempty" gorm:"type:uuid;index"`
	RunID      string          `json:"run_id,omitempty" gorm:"type:varchar(100);index"`
	Platform   string          `json:"platform" gorm:"type:varchar(50);not null"`
	Modality   string          `json:"modality" gorm:"type:varchar(20);not null"`
	RemoteID   string          `json:"remote_id" gorm:"type:varchar(200);index"`
	Status     MediaTaskStatus `json:"status" gorm:"type:varchar(50);default:'submitted'"`
	ResultURL  string          `json:"result_url,omitempty" gorm:"type:text"`
	Error      string          `json:"error,omitempty" gorm:"type:text"`
	CreatedAt  time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}

// TableName 指定表名
func (MediaTask) TableName() string {
	return "media_tasks"
}

// IsTerminal 检查任务是否已终止
func (t *MediaTask) IsTerminal() bool {
	switch t.Status {
	case MediaTaskStatusCompleted, MediaTaskStatusFailed, MediaTaskStatusTimedOut:
		return true
	}
	return false
}

// MarkFinished 标记任务终止
func (t *MediaTask) MarkFinished(status MediaTaskStatus, resultURL, errMsg string) {
	now := time.Now()
	t.Status = status
	t.ResultURL = resultURL
	t.Error = errMsg
	t.FinishedAt = &now
	t.UpdatedAt = now
}
