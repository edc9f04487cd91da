package agent

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/kdocs/flowd/config"
	"github.com/kdocs/flowd/docs"
	"github.com/kdocs/flowd/engine"
	"github.com/kdocs/flowd/logger"
	"github.com/kdocs/flowd/metadata"
	"github.com/kdocs/flowd/node"
	"github.com/kdocs/flowd/persistence"
	"github.com/kdocs/flowd/persistence/inmem"
	"github.com/kdocs/flowd/persistence/redis"
	"github.com/kdocs/flowd/rest"
	"github.com/kdocs/flowd/timers"
)

// Agent wires storage, metadata, engine, the timer sweep and the http
// surface into one process.
type Agent struct {
	Config          config.Config
	storage         persistence.Storage
	metadataService *metadata.Service
	factory         *node.Factory
	engine          *engine.Engine
	sweeper         *timers.Sweeper
	httpServer      *rest.Server
	shutdown        bool
	shutdowns       chan struct{}
	shutdownLock    sync.Mutex
	wg              sync.WaitGroup
}

func New(conf config.Config) (*Agent, error) {
	a := &Agent{
		Config:    conf,
		shutdowns: make(chan struct{}),
	}
	setup := []func() error{
		a.setupStorage,
		a.setupFactory,
		a.setupMetadataService,
		a.setupEngine,
		a.setupSweeper,
		a.setupHttpServer,
	}
	for _, fn := range setup {
		if err := fn(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Agent) setupStorage() error {
	switch a.Config.StorageType {
	case config.STORAGE_TYPE_REDIS:
		a.storage = redis.NewRedisStorage(redis.Config{
			Addrs:     a.Config.RedisConfig.Addrs,
			Namespace: a.Config.RedisConfig.Namespace,
			Password:  a.Config.RedisConfig.Password,
			PoolSize:  a.Config.RedisConfig.PoolSize,
		})
	case config.STORAGE_TYPE_INMEM:
		a.storage = inmem.NewStorage()
	default:
		return fmt.Errorf("unknown storage type %s", a.Config.StorageType)
	}
	return nil
}

func (a *Agent) setupFactory() error {
	repo := docs.NewInMemoryRepository()
	a.factory = node.NewFactory(node.Deps{
		Docs:       repo,
		Mailer:     docs.NewLogMailer(),
		Timers:     timers.NewScheduler(a.storage),
		HttpClient: &http.Client{Timeout: 30 * time.Second},
		BaseUrl:    a.Config.BaseUrl,
	})
	return nil
}

func (a *Agent) setupMetadataService() error {
	a.metadataService = metadata.NewService(a.storage, a.factory)
	return nil
}

func (a *Agent) setupEngine() error {
	a.engine = engine.NewEngine(a.metadataService, a.storage, a.storage, a.factory, a.Config.MaxStepsPerRun)
	return nil
}

func (a *Agent) setupSweeper() error {
	interval := time.Duration(a.Config.TimerSweepIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 10 * time.Second
	}
	a.sweeper = timers.NewSweeper(a.storage, a.storage, a.engine, interval, a.Config.TimerSweepBatchSize, &a.wg)
	a.sweeper.Start()
	return nil
}

func (a *Agent) setupHttpServer() error {
	var err error
	a.httpServer, err = rest.NewServer(a.Config.HttpPort, a.metadataService, a.engine, a.factory)
	if err != nil {
		return err
	}
	return nil
}

func (a *Agent) Start() error {
	go func() {
		if err := a.httpServer.Start(); err != nil {
			_ = a.Shutdown()
			panic(err)
		}
	}()
	return nil
}

func (a *Agent) Shutdown() error {
	logger.Info("shutting down server")
	a.shutdownLock.Lock()
	defer a.shutdownLock.Unlock()
	if a.shutdown {
		return nil
	}
	a.shutdown = true
	close(a.shutdowns)

	shutdown := []func() error{
		func() error {
			a.sweeper.Stop()
			return nil
		},
		a.httpServer.Stop,
	}
	for _, fn := range shutdown {
		if err := fn(); err != nil {
			return err
		}
	}
	logger.Info("waiting for all services to shutdown...")
	a.wg.Wait()
	return nil
}
