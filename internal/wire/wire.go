//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"short-director-api/internal/application/generation"
	"short-director-api/internal/config"
	"short-director-api/internal/domain/repository"
	"short-director-api/internal/infrastructure/llm"
	"short-director-api/internal/infrastructure/persistence/postgres"
	"short-director-api/internal/infrastructure/persistence/redis"
	"short-director-api/internal/interfaces/http/handler"
	"short-director-api/internal/interfaces/http/router"
	"short-director-api/internal/workflow/chain"
	workflowport "short-director-api/internal/workflow/port"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		StorageSet,
		MediaSet,
		WorkflowSet,
		EngineSet,
		RouterSet,
	)
	return nil, nil, nil
}

// RepoSet PostgreSQL 仓储提供者集合与接口绑定
var RepoSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewProjectRepository,
	postgres.NewEpisodeRepository,
	postgres.NewAssetRepository,
	postgres.NewAPIKeyRepository,
	postgres.NewMediaTaskRepository,
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.ProjectRepository), new(*postgres.ProjectRepository)),
	wire.Bind(new(repository.EpisodeRepository), new(*postgres.EpisodeRepository)),
	wire.Bind(new(repository.AssetRepository), new(*postgres.AssetRepository)),
	wire.Bind(new(repository.APIKeyRepository), new(*postgres.APIKeyRepository)),
	wire.Bind(new(repository.MediaTaskRepository), new(*postgres.MediaTaskRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	ProvideTaskResultStore,
)

// StorageSet 对象存储提供者集合
var StorageSet = wire.NewSet(
	ProvideStorageClient,
)

// MediaSet 媒体生成客户端提供者集合
var MediaSet = wire.NewSet(
	ProvideMediaClient,
	ProvideFormatterRegistry,
)

// WorkflowSet 工作流提供者集合
var WorkflowSet = wire.NewSet(
	llm.NewEinoFactory,
	chain.NewSkillChain,
	wire.Bind(new(workflowport.ChatModelFactory), new(*llm.EinoFactory)),
)

// EngineSet 生成引擎提供者集合
var EngineSet = wire.NewSet(
	generation.NewEngine,
	ProvideTraceStore,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewProjectHandler,
	handler.NewEpisodeHandler,
	handler.NewAssetHandler,
	handler.NewAPIKeyHandler,
	handler.NewGenerateHandler,
	handler.NewRunHandler,
	wire.Struct(new(router.Handlers), "*"),
	ProvideRouter,
)
