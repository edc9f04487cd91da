package docs

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/kdocs/flowd/logger"
	"go.uber.org/zap"
)

// InMemoryRepository backs Repository with maps. It is the default wiring
// when no real document store is attached, and the fixture for tests. OCR
// and classification return canned values settable per document.
type InMemoryRepository struct {
	mu             sync.Mutex
	documents      map[string]*Document
	tags           map[string][]Tag
	correspondents map[string]*Correspondent
	classFields    map[string]map[string]any
	customFields   map[string]map[string]any
	ocrResults     map[string]string
	suggestions    map[string]map[string]any
	approvals      map[string]*ApprovalTask
	tokens         map[string]*ApprovalToken
	groups         map[string]Group
}

var _ Repository = new(InMemoryRepository)

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		documents:      make(map[string]*Document),
		tags:           make(map[string][]Tag),
		correspondents: make(map[string]*Correspondent),
		classFields:    make(map[string]map[string]any),
		customFields:   make(map[string]map[string]any),
		ocrResults:     make(map[string]string),
		suggestions:    make(map[string]map[string]any),
		approvals:      make(map[string]*ApprovalTask),
		tokens:         make(map[string]*ApprovalToken),
		groups:         make(map[string]Group),
	}
}

func (r *InMemoryRepository) PutDocument(doc *Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.documents[doc.Id] = doc
}

func (r *InMemoryRepository) PutCorrespondent(documentId string, c *Correspondent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.correspondents[documentId] = c
}

func (r *InMemoryRepository) PutTag(documentId string, tag Tag) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags[documentId] = append(r.tags[documentId], tag)
}

func (r *InMemoryRepository) PutClassificationField(documentId string, name string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.classFields[documentId] == nil {
		r.classFields[documentId] = make(map[string]any)
	}
	r.classFields[documentId][name] = value
}

func (r *InMemoryRepository) PutCustomField(documentId string, name string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.customFields[documentId] == nil {
		r.customFields[documentId] = make(map[string]any)
	}
	r.customFields[documentId][name] = value
}

func (r *InMemoryRepository) SetOcrResult(documentId string, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ocrResults[documentId] = text
}

func (r *InMemoryRepository) SetSuggestions(documentId string, s map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suggestions[documentId] = s
}

func (r *InMemoryRepository) PutGroup(group Group) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[group.Id] = group
}

func (r *InMemoryRepository) ApprovalTokens() []*ApprovalToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	tokens := make([]*ApprovalToken, 0, len(r.tokens))
	for _, t := range r.tokens {
		tokens = append(tokens, t)
	}
	return tokens
}

func (r *InMemoryRepository) ApprovalTasks() []*ApprovalTask {
	r.mu.Lock()
	defer r.mu.Unlock()
	tasks := make([]*ApprovalTask, 0, len(r.approvals))
	for _, t := range r.approvals {
		tasks = append(tasks, t)
	}
	return tasks
}

func (r *InMemoryRepository) GetDocument(id string) (*Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.documents[id]
	if !ok {
		return nil, fmt.Errorf("document %s not found", id)
	}
	copied := *doc
	return &copied, nil
}

func (r *InMemoryRepository) UpdateFields(id string, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.documents[id]
	if !ok {
		return fmt.Errorf("document %s not found", id)
	}
	for k, v := range fields {
		switch k {
		case "title":
			doc.Title = fmt.Sprintf("%v", v)
		case "ocr_text":
			doc.OcrText = fmt.Sprintf("%v", v)
		case "doc_date":
			doc.DocDate = fmt.Sprintf("%v", v)
		case "correspondent_id":
			doc.CorrespondentId = fmt.Sprintf("%v", v)
		case "document_type_id":
			doc.DocumentTypeId = fmt.Sprintf("%v", v)
		case "amount":
			if f, ok := toFloat(v); ok {
				doc.Amount = &f
			}
		default:
			if doc.Metadata == nil {
				doc.Metadata = make(map[string]any)
			}
			doc.Metadata[k] = v
		}
	}
	return nil
}

func (r *InMemoryRepository) GetTags(documentId string) ([]Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Tag(nil), r.tags[documentId]...), nil
}

func (r *InMemoryRepository) AddTag(documentId string, tagId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tags[documentId] {
		if t.Id == tagId {
			return nil
		}
	}
	r.tags[documentId] = append(r.tags[documentId], Tag{Id: tagId})
	return nil
}

func (r *InMemoryRepository) ResolveTagIds(names []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byName := make(map[string]string)
	for _, tags := range r.tags {
		for _, t := range tags {
			byName[t.Name] = t.Id
		}
	}
	var ids []string
	for _, name := range names {
		if id, ok := byName[name]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *InMemoryRepository) GetCorrespondent(documentId string) (*Correspondent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.correspondents[documentId], nil
}

func (r *InMemoryRepository) AssignUser(documentId string, userId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.documents[documentId]
	if !ok {
		return fmt.Errorf("document %s not found", documentId)
	}
	doc.AssignedUserId = userId
	return nil
}

func (r *InMemoryRepository) AssignGroup(documentId string, groupId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.documents[documentId]
	if !ok {
		return fmt.Errorf("document %s not found", documentId)
	}
	doc.AssignedGroupId = groupId
	return nil
}

func (r *InMemoryRepository) GetGroup(id string) (*Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	group, ok := r.groups[id]
	if !ok {
		return nil, nil
	}
	return &group, nil
}

func (r *InMemoryRepository) GetGroupByCode(code string) (*Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, group := range r.groups {
		if group.Code == code {
			copied := group
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *InMemoryRepository) SetValidationStatus(documentId string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.documents[documentId]
	if !ok {
		return fmt.Errorf("document %s not found", documentId)
	}
	doc.ValidationStatus = status
	return nil
}

func (r *InMemoryRepository) ClassificationField(documentId string, name string) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if fields, ok := r.classFields[documentId]; ok {
		return fields[name], nil
	}
	return nil, nil
}

func (r *InMemoryRepository) CustomField(documentId string, name string) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if fields, ok := r.customFields[documentId]; ok {
		return fields[name], nil
	}
	return nil, nil
}

func (r *InMemoryRepository) ExtractText(doc *Document) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if text, ok := r.ocrResults[doc.Id]; ok {
		return text, nil
	}
	return "", fmt.Errorf("no OCR backend configured for document %s", doc.Id)
}

func (r *InMemoryRepository) Classify(documentId string) (map[string]any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.suggestions[documentId]; ok {
		return s, nil
	}
	return map[string]any{}, nil
}

func (r *InMemoryRepository) CreateApprovalTask(task *ApprovalTask) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if task.Id == "" {
		task.Id = uuid.New().String()
	}
	task.Status = "pending"
	r.approvals[task.Id] = task
	return task.Id, nil
}

func (r *InMemoryRepository) CreateApprovalToken(token *ApprovalToken) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token.Id == "" {
		token.Id = uuid.New().String()
	}
	r.tokens[token.Token] = token
	return token.Id, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// LogMailer writes outgoing mail to the process log instead of SMTP.
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

var _ Mailer = new(LogMailer)

func (m *LogMailer) Send(to string, subject string, body string) error {
	logger.Info("sending mail", zap.String("to", to), zap.String("subject", subject), zap.Int("bodyLength", len(body)))
	return nil
}
