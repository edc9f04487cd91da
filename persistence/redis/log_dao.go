package redis

import (
	"context"

	"github.com/kdocs/flowd/model"
	"github.com/kdocs/flowd/persistence"
	"github.com/kdocs/flowd/util"
)

const LOG_KEY string = "LOG"

var _ persistence.LogStorage = new(redisLogStorage)

type redisLogStorage struct {
	*baseDao
	encoderDecoder util.EncoderDecoder[model.ExecutionLog]
}

func NewRedisLogStorage(baseDao *baseDao) *redisLogStorage {
	return &redisLogStorage{
		baseDao:        baseDao,
		encoderDecoder: util.NewJsonEncoderDecoder[model.ExecutionLog](),
	}
}

func (rld *redisLogStorage) AppendLog(log model.ExecutionLog) error {
	key := rld.baseDao.getNamespaceKey(LOG_KEY, log.ExecutionId)
	ctx := context.Background()
	data, err := rld.encoderDecoder.Encode(log)
	if err != nil {
		return err
	}
	if err := rld.redisClient.RPush(ctx, key, string(data)).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rld *redisLogStorage) GetLogs(executionId string) ([]model.ExecutionLog, error) {
	key := rld.baseDao.getNamespaceKey(LOG_KEY, executionId)
	ctx := context.Background()
	values, err := rld.redisClient.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	logs := make([]model.ExecutionLog, 0, len(values))
	for _, v := range values {
		log, err := rld.encoderDecoder.Decode([]byte(v))
		if err != nil {
			return nil, err
		}
		logs = append(logs, *log)
	}
	return logs, nil
}
