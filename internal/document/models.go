package document

import "time"

// Status is the lifecycle state of a document's stored file and index.
type Status string

const (
	StatusUploading Status = "uploading"
	StatusUploaded  Status = "uploaded"
	StatusIndexing  Status = "indexing"
	StatusIndexed   Status = "indexed"
	StatusFailed    Status = "failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusUploading, StatusUploaded, StatusIndexing, StatusIndexed, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
// A re-upload creates a new record rather than resurrecting a failed one.
func (s Status) Terminal() bool {
	return s == StatusIndexed || s == StatusFailed
}

// CanTransition reports whether a document may move from s to next.
// Forward order is uploading, uploaded, indexing, indexed; any
// non-terminal state may move to failed.
func (s Status) CanTransition(next Status) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s.Terminal() {
		return false
	}
	if next == StatusFailed {
		return true
	}
	switch s {
	case StatusUploading:
		return next == StatusUploaded
	case StatusUploaded:
		return next == StatusIndexing
	case StatusIndexing:
		return next == StatusIndexed
	}
	return false
}

// Document is the metadata record for a file stored in a workspace.
// Access requires current membership in the owning workspace,
// independent of who uploaded it.
type Document struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	WorkspaceID  string    `bson:"workspaceId" json:"workspaceId"`
	Title        string    `bson:"title" json:"title"`
	OriginalName string    `bson:"originalName" json:"originalName"`
	FileName     string    `bson:"fileName" json:"fileName"`
	FilePath     string    `bson:"filePath" json:"-"`
	MimeType     string    `bson:"mimeType" json:"mimeType"`
	Size         int64     `bson:"size" json:"size"`
	Status       Status    `bson:"status" json:"status"`
	UploadedBy   string    `bson:"uploadedBy" json:"uploadedBy"`
	ErrorMessage string    `bson:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Stats is a read-side aggregation over a workspace's documents.
type Stats struct {
	Total     int64            `json:"total"`
	ByStatus  map[Status]int64 `json:"byStatus"`
	TotalSize int64            `json:"totalSize"`
}
