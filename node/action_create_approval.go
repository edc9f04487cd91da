package node

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kdocs/flowd/docs"
)

// createApprovalAction mints an approval token and exposes the decision
// links under approval_token, approval_link, reject_link and view_link so a
// later send_email or webhook node can deliver them. The node succeeds
// immediately; pairing it with a wait_approval node is what actually parks
// the execution for the decision.
type createApprovalAction struct {
	baseExecutor
	docs    docs.Repository
	baseUrl string
}

var _ Executor = new(createApprovalAction)

func NewCreateApprovalAction(repo docs.Repository, baseUrl string) *createApprovalAction {
	return &createApprovalAction{
		baseExecutor: newBaseExecutor(map[string]FieldRule{
			"assign_to_user_id":    {Type: "string"},
			"assign_to_group_id":   {Type: "string"},
			"assign_to_group_code": {Type: "string"},
			"action_required":      {Type: "string", Enum: []string{"approve", "reject", "review", "sign"}, Default: "approve"},
			"message":              {Type: "string"},
			"expires_hours":        {Type: "number", Default: 72},
			"priority":             {Type: "string", Enum: []string{"low", "normal", "high", "urgent"}, Default: "normal"},
		}),
		docs:    repo,
		baseUrl: strings.TrimRight(baseUrl, "/"),
	}
}

func (a *createApprovalAction) Execute(bag *ContextBag, config map[string]any) Result {
	if bag.DocumentId() == "" {
		return Failed("no document associated with execution")
	}
	nodeId := cfgString(config, "node_id", "")
	if nodeId == "" {
		return Failed("node id not provided")
	}

	userId := cfgString(config, "assign_to_user_id", "")
	groupId := cfgString(config, "assign_to_group_id", "")
	if groupCode := cfgString(config, "assign_to_group_code", ""); groupCode != "" && groupId == "" {
		group, err := a.docs.GetGroupByCode(groupCode)
		if err != nil {
			return Failed(err.Error())
		}
		if group != nil {
			groupId = group.Id
		}
	}

	token := newApprovalToken()

	expiresHours, ok := cfgFloat(config, "expires_hours")
	if !ok {
		expiresHours = 72
	}
	expiresAt := time.Now().Add(time.Duration(expiresHours * float64(time.Hour)))

	approveUrl := fmt.Sprintf("%s/workflow/approve/%s?action=approve", a.baseUrl, token)
	rejectUrl := fmt.Sprintf("%s/workflow/approve/%s?action=reject", a.baseUrl, token)
	viewUrl := fmt.Sprintf("%s/documents/%s", a.baseUrl, bag.DocumentId())

	actionRequired := cfgString(config, "action_required", "approve")
	priority := cfgString(config, "priority", "normal")

	tokenId, err := a.docs.CreateApprovalToken(&docs.ApprovalToken{
		Token:          token,
		ExecutionId:    bag.ExecutionId(),
		DocumentId:     bag.DocumentId(),
		NodeId:         nodeId,
		UserId:         userId,
		GroupId:        groupId,
		ActionRequired: actionRequired,
		Message:        cfgString(config, "message", ""),
		Priority:       priority,
		ExpiresAt:      &expiresAt,
	})
	if err != nil {
		return Failed(err.Error())
	}

	// the task stays pending until a wait_approval node picks it up
	if _, err := a.docs.CreateApprovalTask(&docs.ApprovalTask{
		ExecutionId: bag.ExecutionId(),
		DocumentId:  bag.DocumentId(),
		UserId:      userId,
		GroupId:     groupId,
		Priority:    priority,
		ExpiresAt:   &expiresAt,
	}); err != nil {
		return Failed(err.Error())
	}

	expires := expiresAt.UTC().Format(time.RFC3339)
	bag.Set("approval_token", token)
	bag.Set("approval_link", approveUrl)
	bag.Set("reject_link", rejectUrl)
	bag.Set("view_link", viewUrl)
	bag.Set("approval_expires_at", expires)
	bag.Set("approval_token_id", tokenId)

	return Success(map[string]any{
		"token":             token,
		"token_id":          tokenId,
		"approval_link":     approveUrl,
		"reject_link":       rejectUrl,
		"view_link":         viewUrl,
		"expires_at":        expires,
		"assigned_user_id":  userId,
		"assigned_group_id": groupId,
	})
}

// newApprovalToken returns 64 hex characters, the width the approval
// endpoint expects.
func newApprovalToken() string {
	a := strings.ReplaceAll(uuid.NewString(), "-", "")
	b := strings.ReplaceAll(uuid.NewString(), "-", "")
	return a + b
}
