// Package docs is the boundary between the workflow engine and the document
// store. Node executors mutate documents only through Repository, so the
// engine itself never touches SQL or the OCR/AI backends.
package docs

import "time"

type Document struct {
	Id               string         `json:"id"`
	Title            string         `json:"title"`
	Amount           *float64       `json:"amount,omitempty"`
	Currency         string         `json:"currency,omitempty"`
	DocDate          string         `json:"docDate,omitempty"`
	CorrespondentId  string         `json:"correspondentId,omitempty"`
	DocumentTypeId   string         `json:"documentTypeId,omitempty"`
	DocumentTypeName string         `json:"documentTypeName,omitempty"`
	Status           string         `json:"status,omitempty"`
	OcrStatus        string         `json:"ocrStatus,omitempty"`
	OcrText          string         `json:"ocrText,omitempty"`
	ValidationStatus string         `json:"validationStatus,omitempty"`
	AssignedUserId   string         `json:"assignedUserId,omitempty"`
	AssignedGroupId  string         `json:"assignedGroupId,omitempty"`
	FileSize         int64          `json:"fileSize,omitempty"`
	MimeType         string         `json:"mimeType,omitempty"`
	Asn              string         `json:"asn,omitempty"`
	FilePath         string         `json:"filePath,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

type Tag struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type Correspondent struct {
	Id         string `json:"id"`
	Name       string `json:"name"`
	IsSupplier bool   `json:"isSupplier"`
	IsCustomer bool   `json:"isCustomer"`
}

type Group struct {
	Id   string `json:"id"`
	Code string `json:"code,omitempty"`
	Name string `json:"name"`
}

type ApprovalTask struct {
	Id          string     `json:"id"`
	ExecutionId string     `json:"executionId"`
	DocumentId  string     `json:"documentId"`
	UserId      string     `json:"userId,omitempty"`
	GroupId     string     `json:"groupId,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	Status      string     `json:"status"`
}

// ApprovalToken is a single-use credential for deciding an approval out of
// band, typically through a link in a notification mail.
type ApprovalToken struct {
	Id             string     `json:"id"`
	Token          string     `json:"token"`
	ExecutionId    string     `json:"executionId"`
	DocumentId     string     `json:"documentId"`
	NodeId         string     `json:"nodeId"`
	UserId         string     `json:"userId,omitempty"`
	GroupId        string     `json:"groupId,omitempty"`
	ActionRequired string     `json:"actionRequired,omitempty"`
	Message        string     `json:"message,omitempty"`
	Priority       string     `json:"priority,omitempty"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
}

// Repository is everything a node executor may do to the document domain.
type Repository interface {
	GetDocument(id string) (*Document, error)
	UpdateFields(id string, fields map[string]any) error
	GetTags(documentId string) ([]Tag, error)
	AddTag(documentId string, tagId string) error
	ResolveTagIds(names []string) ([]string, error)
	GetCorrespondent(documentId string) (*Correspondent, error)
	AssignUser(documentId string, userId string) error
	AssignGroup(documentId string, groupId string) error
	GetGroup(id string) (*Group, error)
	GetGroupByCode(code string) (*Group, error)
	SetValidationStatus(documentId string, status string) error
	ClassificationField(documentId string, name string) (any, error)
	CustomField(documentId string, name string) (any, error)
	ExtractText(doc *Document) (string, error)
	Classify(documentId string) (map[string]any, error)
	CreateApprovalTask(task *ApprovalTask) (string, error)
	CreateApprovalToken(token *ApprovalToken) (string, error)
}

type Mailer interface {
	Send(to string, subject string, body string) error
}
