// Package wire 提供依赖注入配置
package wire

import (
	"short-director-api/internal/config"
	"short-director-api/internal/infrastructure/media"
	"short-director-api/internal/infrastructure/persistence/postgres"
	"short-director-api/internal/infrastructure/persistence/redis"
	storageminio "short-director-api/internal/infrastructure/storage/minio"
	"short-director-api/internal/interfaces/http/router"
	"short-director-api/internal/runtrace"
)

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideTaskResultStore 提供媒体任务结果缓存
func ProvideTaskResultStore(client *redis.Client, cfg *config.Config) *redis.TaskResultStore {
	return redis.NewTaskResultStore(client, cfg.Generation.Media.ResultTTL)
}

// ProvideStorageClient 提供 MinIO 客户端
func ProvideStorageClient(cfg *config.Config) (*storageminio.Client, error) {
	return storageminio.NewClient(&cfg.Storage.Minio)
}

// ProvideMediaClient 提供媒体平台 HTTP 客户端
func ProvideMediaClient(cfg *config.Config) *media.Client {
	return media.NewClient(cfg.Generation.Media.RequestTimeout)
}

// ProvideFormatterRegistry 提供第三方视频平台适配器注册表
func ProvideFormatterRegistry(client *media.Client, store *redis.TaskResultStore) *media.FormatterRegistry {
	return media.NewFormatterRegistry(
		media.NewKieFormatter(client),
		media.NewYiFormatter(client, store),
	)
}

// ProvideTraceStore 提供运行轨迹读取器
func ProvideTraceStore(cfg *config.Config) *runtrace.Store {
	return runtrace.NewStore(cfg.Trace.Dir)
}

// ProvideRouter 提供 HTTP 路由器
func ProvideRouter(cfg *config.Config, handlers *router.Handlers, redisClient *redis.Client) *router.Router {
	return router.New(cfg, handlers, redisClient.Redis())
}
