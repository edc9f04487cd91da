package node

import (
	"time"

	"github.com/kdocs/flowd/docs"
)

// approvalWait creates an approval task for a user or group and suspends the
// execution until the task is decided. The decision arrives as a resume
// output, so the node routes on approved/rejected plus the timeout and
// cancelled outcomes. With timeout_hours set, a timer fires the timeout
// output when nobody decides in time.
type approvalWait struct {
	baseExecutor
	docs   docs.Repository
	timers TimerScheduler
}

var _ Executor = new(approvalWait)

func NewApprovalWait(repo docs.Repository, timers TimerScheduler) *approvalWait {
	return &approvalWait{
		baseExecutor: newBaseExecutor(map[string]FieldRule{
			"user_id":       {Type: "string"},
			"group_id":      {Type: "string"},
			"timeout_hours": {Type: "number"},
		}),
		docs:   repo,
		timers: timers,
	}
}

func (w *approvalWait) Outputs() []string {
	return []string{"approved", "rejected", "timeout", "cancelled"}
}

func (w *approvalWait) Execute(bag *ContextBag, config map[string]any) Result {
	userId := cfgString(config, "user_id", "")
	groupId := cfgString(config, "group_id", "")
	if userId == "" && groupId == "" {
		return Failed("approval requires a user_id or group_id")
	}

	timeoutHours, _ := cfgFloat(config, "timeout_hours")
	waitSeconds := int(timeoutHours * 3600)
	var expiresAt *time.Time
	if waitSeconds > 0 {
		t := time.Now().Add(time.Duration(waitSeconds) * time.Second)
		expiresAt = &t
	}

	taskId, err := w.docs.CreateApprovalTask(&docs.ApprovalTask{
		ExecutionId: bag.ExecutionId(),
		DocumentId:  bag.DocumentId(),
		UserId:      userId,
		GroupId:     groupId,
		ExpiresAt:   expiresAt,
	})
	if err != nil {
		return Failed(err.Error())
	}

	data := map[string]any{
		"approval_task_id": taskId,
	}
	if waitSeconds > 0 && w.timers != nil {
		timerId, err := w.timers.Schedule(bag.ExecutionId(), cfgString(config, "node_id", ""), "approval_timeout", *expiresAt)
		if err != nil {
			return Failed(err.Error())
		}
		data["timer_id"] = timerId
	}
	return Waiting("approval", waitSeconds, data)
}
