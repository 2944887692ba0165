package models

import (
	"time"

	"gorm.io/datatypes"
)

// 简历提交状态
const (
	StatusUploaded   = "UPLOADED"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// ResumeSubmission 一次简历提交的处理记录
type ResumeSubmission struct {
	SubmissionUUID   string         `gorm:"type:char(36);primaryKey"`
	OriginalFilename string         `gorm:"type:varchar(512)"`
	FileMD5          string         `gorm:"type:char(32);index:idx_submissions_file_md5"`
	OriginalObjectKey string        `gorm:"type:varchar(1024)"`
	ParsedObjectKey  string         `gorm:"type:varchar(1024)"`
	Status           string         `gorm:"type:varchar(50);default:'UPLOADED';index:idx_submissions_status"`
	ErrorDetail      string         `gorm:"type:text"`
	ParsedResultJSON datatypes.JSON `gorm:"type:json"`
	SourceChannel    string         `gorm:"type:varchar(100)"`
	CreatedAt        time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt        time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (ResumeSubmission) TableName() string {
	return "resume_submissions"
}

// Candidate 从解析结果沉淀出的候选人记录，邮箱作为去重键
type Candidate struct {
	CandidateID  string    `gorm:"type:char(36);primaryKey"`
	PrimaryName  string    `gorm:"type:varchar(255)"`
	PrimaryEmail string    `gorm:"type:varchar(255);uniqueIndex:idx_candidates_primary_email_unique"`
	PrimaryPhone string    `gorm:"type:varchar(50)"`
	LinkedInURL  string    `gorm:"type:varchar(512)"`
	Location     string    `gorm:"type:varchar(255)"`
	CreatedAt    time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt    time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (Candidate) TableName() string {
	return "candidates"
}
