package config

type StorageType string

const STORAGE_TYPE_REDIS StorageType = "redis"
const STORAGE_TYPE_INMEM StorageType = "memory"

type Config struct {
	RedisConfig               RedisStorageConfig
	HttpPort                  int
	StorageType               StorageType
	BaseUrl                   string
	MaxStepsPerRun            int
	TimerSweepIntervalSeconds int
	TimerSweepBatchSize       int
}

type RedisStorageConfig struct {
	Addrs     []string
	Namespace string
	Password  string
	PoolSize  int
}
