package document

import (
	"time"
)

// Document is the stored metadata of an uploaded loan document. The file
// bytes themselves live behind the Storage seam; only the locator is kept.
type Document struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	ApplicationID string    `json:"application_id" gorm:"column:application_id;not null;index"`
	FileName      string    `json:"file_name" gorm:"column:file_name;not null"`
	ContentType   string    `json:"content_type" gorm:"column:content_type;not null"`
	SizeBytes     int64     `json:"size_bytes" gorm:"column:size_bytes;not null"`
	URL           string    `json:"url" gorm:"column:url;not null"`
	Description   *string   `json:"description,omitempty" gorm:"column:description"`
	UploadedAt    time.Time `json:"uploaded_at" gorm:"column:uploaded_at"`
}

func (Document) TableName() string {
	return "loan_documents"
}

const MaxUploadBytes = 5 << 20

// AcceptedContentTypes limits uploads to the formats the back office handles.
var AcceptedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
}
