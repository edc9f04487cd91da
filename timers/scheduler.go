package timers

import (
	"time"

	"github.com/google/uuid"
	"github.com/kdocs/flowd/model"
	"github.com/kdocs/flowd/node"
	"github.com/kdocs/flowd/persistence"
)

var _ node.TimerScheduler = new(Scheduler)

// Scheduler creates timers for wait and delay nodes. The sweep picks them
// up once due.
type Scheduler struct {
	storage persistence.TimerStorage
}

func NewScheduler(storage persistence.TimerStorage) *Scheduler {
	return &Scheduler{storage: storage}
}

func (s *Scheduler) Schedule(executionId string, nodeId string, timerType string, fireAt time.Time) (string, error) {
	timer := model.Timer{
		Id:          uuid.NewString(),
		ExecutionId: executionId,
		NodeId:      nodeId,
		TimerType:   timerType,
		FireAt:      fireAt,
		Status:      model.TIMER_WAITING,
	}
	if err := s.storage.SaveTimer(timer); err != nil {
		return "", err
	}
	return timer.Id, nil
}
