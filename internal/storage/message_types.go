package storage

import "time"

// ResumeUploadedMessage 简历上传事件，发布到简历事件交换机
// 消费端据此从对象存储取回文件并解析
type ResumeUploadedMessage struct {
	SubmissionUUID   string    `json:"submission_uuid"`
	OriginalFilename string    `json:"original_filename"`
	ObjectKey        string    `json:"object_key"`
	FileMD5          string    `json:"file_md5"`
	SourceChannel    string    `json:"source_channel"`
	UploadedAt       time.Time `json:"uploaded_at"`
}
