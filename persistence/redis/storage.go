package redis

import (
	"github.com/kdocs/flowd/persistence"
)

var _ persistence.Storage = new(redisStorage)

// redisStorage bundles the DAOs over one shared client.
type redisStorage struct {
	*redisMetadataStorage
	*redisExecutionStorage
	*redisLogStorage
	*redisTimerStorage
}

func NewRedisStorage(conf Config) persistence.Storage {
	baseDao := newBaseDao(conf)
	return &redisStorage{
		redisMetadataStorage:  NewRedisMetadataStorage(baseDao),
		redisExecutionStorage: NewRedisExecutionStorage(baseDao),
		redisLogStorage:       NewRedisLogStorage(baseDao),
		redisTimerStorage:     NewRedisTimerStorage(baseDao),
	}
}
