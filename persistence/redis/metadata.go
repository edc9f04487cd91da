package redis

import (
	"context"
	"errors"

	rd "github.com/go-redis/redis/v9"
	"github.com/kdocs/flowd/model"
	"github.com/kdocs/flowd/persistence"
	"github.com/kdocs/flowd/util"
)

const WORKFLOW_DEF string = "WORKFLOW"
const WORKFLOW_INDEX string = "WORKFLOWS"

var _ persistence.MetadataStorage = new(redisMetadataStorage)

type redisMetadataStorage struct {
	*baseDao
	encoderDecoder util.EncoderDecoder[model.WorkflowGraph]
}

func NewRedisMetadataStorage(baseDao *baseDao) *redisMetadataStorage {
	return &redisMetadataStorage{
		baseDao:        baseDao,
		encoderDecoder: util.NewJsonEncoderDecoder[model.WorkflowGraph](),
	}
}

func (rmd *redisMetadataStorage) SaveWorkflow(graph model.WorkflowGraph) error {
	key := rmd.baseDao.getNamespaceKey(WORKFLOW_DEF, graph.Definition.Id)
	ctx := context.Background()
	data, err := rmd.encoderDecoder.Encode(graph)
	if err != nil {
		return err
	}
	_, err = rmd.redisClient.TxPipelined(ctx, func(pipe rd.Pipeliner) error {
		pipe.Set(ctx, key, data, 0)
		pipe.SAdd(ctx, rmd.getNamespaceKey(WORKFLOW_INDEX), graph.Definition.Id)
		return nil
	})
	if err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rmd *redisMetadataStorage) GetWorkflow(id string) (*model.WorkflowGraph, error) {
	key := rmd.baseDao.getNamespaceKey(WORKFLOW_DEF, id)
	ctx := context.Background()
	val, err := rmd.redisClient.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, persistence.NotFoundError{Kind: "workflow", Id: id}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rmd.encoderDecoder.Decode([]byte(val))
}

func (rmd *redisMetadataStorage) ListWorkflows() ([]model.WorkflowDefinition, error) {
	ctx := context.Background()
	ids, err := rmd.redisClient.SMembers(ctx, rmd.getNamespaceKey(WORKFLOW_INDEX)).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	definitions := make([]model.WorkflowDefinition, 0, len(ids))
	for _, id := range ids {
		graph, err := rmd.GetWorkflow(id)
		if err != nil {
			// index entry without a blob, skip it
			continue
		}
		definitions = append(definitions, graph.Definition)
	}
	return definitions, nil
}

func (rmd *redisMetadataStorage) DeleteWorkflow(id string) error {
	key := rmd.baseDao.getNamespaceKey(WORKFLOW_DEF, id)
	ctx := context.Background()
	_, err := rmd.redisClient.TxPipelined(ctx, func(pipe rd.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.SRem(ctx, rmd.getNamespaceKey(WORKFLOW_INDEX), id)
		return nil
	})
	if err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}
