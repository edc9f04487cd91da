package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	rd "github.com/go-redis/redis/v9"
	"github.com/kdocs/flowd/model"
	"github.com/kdocs/flowd/persistence"
	"github.com/kdocs/flowd/util"
)

const TIMER_KEY string = "TIMER"
const TIMER_DUE string = "TIMER_DUE"

var _ persistence.TimerStorage = new(redisTimerStorage)

// Timers are stored per id with a sorted-set index scored by fire time in
// millis. The sweep reads due members from the index; MarkTimer drops the
// member once the timer leaves the waiting state.
type redisTimerStorage struct {
	*baseDao
	encoderDecoder util.EncoderDecoder[model.Timer]
}

func NewRedisTimerStorage(baseDao *baseDao) *redisTimerStorage {
	return &redisTimerStorage{
		baseDao:        baseDao,
		encoderDecoder: util.NewJsonEncoderDecoder[model.Timer](),
	}
}

func (rtd *redisTimerStorage) SaveTimer(timer model.Timer) error {
	key := rtd.baseDao.getNamespaceKey(TIMER_KEY, timer.Id)
	ctx := context.Background()
	data, err := rtd.encoderDecoder.Encode(timer)
	if err != nil {
		return err
	}
	_, err = rtd.redisClient.TxPipelined(ctx, func(pipe rd.Pipeliner) error {
		pipe.Set(ctx, key, data, 0)
		if timer.Status == model.TIMER_WAITING {
			pipe.ZAdd(ctx, rtd.getNamespaceKey(TIMER_DUE), rd.Z{
				Score:  float64(timer.FireAt.UnixMilli()),
				Member: timer.Id,
			})
		}
		return nil
	})
	if err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rtd *redisTimerStorage) GetTimer(id string) (*model.Timer, error) {
	key := rtd.baseDao.getNamespaceKey(TIMER_KEY, id)
	ctx := context.Background()
	val, err := rtd.redisClient.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, persistence.NotFoundError{Kind: "timer", Id: id}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rtd.encoderDecoder.Decode([]byte(val))
}

func (rtd *redisTimerStorage) DueTimers(now time.Time, batchSize int) ([]model.Timer, error) {
	ctx := context.Background()
	opt := &rd.ZRangeBy{
		Min:   "0",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: int64(batchSize),
	}
	ids, err := rtd.redisClient.ZRangeByScore(ctx, rtd.getNamespaceKey(TIMER_DUE), opt).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return []model.Timer{}, nil
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	timers := make([]model.Timer, 0, len(ids))
	for _, id := range ids {
		timer, err := rtd.GetTimer(id)
		if err != nil {
			continue
		}
		timers = append(timers, *timer)
	}
	return timers, nil
}

func (rtd *redisTimerStorage) MarkTimer(id string, status model.TimerStatus) error {
	timer, err := rtd.GetTimer(id)
	if err != nil {
		return err
	}
	timer.Status = status
	key := rtd.baseDao.getNamespaceKey(TIMER_KEY, id)
	ctx := context.Background()
	data, err := rtd.encoderDecoder.Encode(*timer)
	if err != nil {
		return err
	}
	_, err = rtd.redisClient.TxPipelined(ctx, func(pipe rd.Pipeliner) error {
		pipe.Set(ctx, key, data, 0)
		if status != model.TIMER_WAITING {
			pipe.ZRem(ctx, rtd.getNamespaceKey(TIMER_DUE), id)
		}
		return nil
	})
	if err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}
