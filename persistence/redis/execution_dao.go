package redis

import (
	"context"
	"errors"

	rd "github.com/go-redis/redis/v9"
	"github.com/kdocs/flowd/model"
	"github.com/kdocs/flowd/persistence"
	"github.com/kdocs/flowd/util"
)

const EXECUTION_KEY string = "EXECUTION"
const EXECUTION_INDEX string = "EXECUTIONS"

var _ persistence.ExecutionStorage = new(redisExecutionStorage)

// Executions live in one key per execution so the claim can WATCH it; hash
// fields cannot be watched individually.
type redisExecutionStorage struct {
	*baseDao
	encoderDecoder util.EncoderDecoder[model.WorkflowExecution]
}

func NewRedisExecutionStorage(baseDao *baseDao) *redisExecutionStorage {
	return &redisExecutionStorage{
		baseDao:        baseDao,
		encoderDecoder: util.NewJsonEncoderDecoder[model.WorkflowExecution](),
	}
}

func (red *redisExecutionStorage) SaveExecution(execution model.WorkflowExecution) error {
	key := red.baseDao.getNamespaceKey(EXECUTION_KEY, execution.Id)
	ctx := context.Background()
	data, err := red.encoderDecoder.Encode(execution)
	if err != nil {
		return err
	}
	_, err = red.redisClient.TxPipelined(ctx, func(pipe rd.Pipeliner) error {
		pipe.Set(ctx, key, data, 0)
		pipe.SAdd(ctx, red.getNamespaceKey(EXECUTION_INDEX, execution.WorkflowId), execution.Id)
		return nil
	})
	if err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (red *redisExecutionStorage) GetExecution(id string) (*model.WorkflowExecution, error) {
	key := red.baseDao.getNamespaceKey(EXECUTION_KEY, id)
	ctx := context.Background()
	val, err := red.redisClient.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, persistence.NotFoundError{Kind: "execution", Id: id}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return red.encoderDecoder.Decode([]byte(val))
}

// ClaimExecution moves the execution to running iff its current status is in
// from. WATCH makes the read-check-write atomic; a concurrent writer aborts
// the transaction and the claim reports not claimed.
func (red *redisExecutionStorage) ClaimExecution(id string, from ...model.ExecutionStatus) (*model.WorkflowExecution, bool, error) {
	key := red.baseDao.getNamespaceKey(EXECUTION_KEY, id)
	ctx := context.Background()
	var claimed *model.WorkflowExecution
	err := red.redisClient.Watch(ctx, func(tx *rd.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if err != nil {
			if errors.Is(err, rd.Nil) {
				return persistence.NotFoundError{Kind: "execution", Id: id}
			}
			return err
		}
		execution, err := red.encoderDecoder.Decode([]byte(val))
		if err != nil {
			return err
		}
		claimable := false
		for _, status := range from {
			if execution.Status == status {
				claimable = true
				break
			}
		}
		if !claimable {
			return nil
		}
		execution.Status = model.EXECUTION_RUNNING
		data, err := red.encoderDecoder.Encode(*execution)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe rd.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err != nil {
			return err
		}
		claimed = execution
		return nil
	}, key)
	if err != nil {
		if errors.Is(err, rd.TxFailedErr) {
			return nil, false, nil
		}
		var notFound persistence.NotFoundError
		if errors.As(err, &notFound) {
			return nil, false, notFound
		}
		return nil, false, persistence.StorageLayerError{Message: err.Error()}
	}
	return claimed, claimed != nil, nil
}

func (red *redisExecutionStorage) ListExecutions(workflowId string) ([]model.WorkflowExecution, error) {
	ctx := context.Background()
	ids, err := red.redisClient.SMembers(ctx, red.getNamespaceKey(EXECUTION_INDEX, workflowId)).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	executions := make([]model.WorkflowExecution, 0, len(ids))
	for _, id := range ids {
		execution, err := red.GetExecution(id)
		if err != nil {
			continue
		}
		executions = append(executions, *execution)
	}
	return executions, nil
}
