package timers

import (
	"sync"
	"time"

	"github.com/kdocs/flowd/engine"
	"github.com/kdocs/flowd/logger"
	"github.com/kdocs/flowd/model"
	"github.com/kdocs/flowd/persistence"
	"github.com/kdocs/flowd/util"
	"go.uber.org/zap"
)

// Sweeper periodically fires due timers. A timer only fires if its execution
// is still waiting on the node the timer was scheduled for; an execution
// that moved on or stopped waiting gets the timer cancelled instead. Firing
// resumes the execution with the timeout output.
type Sweeper struct {
	timers     persistence.TimerStorage
	executions persistence.ExecutionStorage
	engine     *engine.Engine
	batchSize  int
	tw         *util.TickWorker
	stop       chan struct{}
	wg         *sync.WaitGroup
}

func NewSweeper(timers persistence.TimerStorage, executions persistence.ExecutionStorage, eng *engine.Engine, interval time.Duration, batchSize int, wg *sync.WaitGroup) *Sweeper {
	if batchSize <= 0 {
		batchSize = 100
	}
	s := &Sweeper{
		timers:     timers,
		executions: executions,
		engine:     eng,
		batchSize:  batchSize,
		stop:       make(chan struct{}),
		wg:         wg,
	}
	s.tw = util.NewTickWorker("timer-sweeper", interval, s.stop, s.Sweep, wg)
	return s
}

func (s *Sweeper) Start() {
	s.tw.Start()
}

func (s *Sweeper) Stop() {
	if s.tw.IsRunning() {
		s.tw.Stop()
	}
}

// Sweep processes one batch of due timers. Exported so tests and a manual
// trigger can run a sweep without the ticker.
func (s *Sweeper) Sweep() {
	due, err := s.timers.DueTimers(time.Now(), s.batchSize)
	if err != nil {
		logger.Error("failed to load due timers", zap.Error(err))
		return
	}
	for _, timer := range due {
		s.processTimer(timer)
	}
}

func (s *Sweeper) processTimer(timer model.Timer) {
	execution, err := s.executions.GetExecution(timer.ExecutionId)
	if err != nil {
		logger.Error("timer references missing execution",
			zap.String("timerId", timer.Id), zap.String("executionId", timer.ExecutionId))
		s.markTimer(timer.Id, model.TIMER_CANCELLED)
		return
	}
	// stale when the execution stopped waiting or moved to another node
	if execution.Status != model.EXECUTION_WAITING || execution.CurrentNodeId != timer.NodeId {
		s.markTimer(timer.Id, model.TIMER_CANCELLED)
		return
	}
	s.markTimer(timer.Id, model.TIMER_FIRED)
	if _, err := s.engine.Resume(timer.ExecutionId, "timeout"); err != nil {
		logger.Error("failed to resume execution from timer",
			zap.String("timerId", timer.Id), zap.String("executionId", timer.ExecutionId), zap.Error(err))
	}
}

func (s *Sweeper) markTimer(id string, status model.TimerStatus) {
	if err := s.timers.MarkTimer(id, status); err != nil {
		logger.Error("failed to update timer", zap.String("timerId", id), zap.Error(err))
	}
}
