// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(v1 *gin.RouterGroup, h *Handlers) {
	// 生成入口，SSE 流式返回
	v1.POST("/generate", h.Generate.Generate)

	// 生成轨迹
	runs := v1.Group("/runs")
	{
		runs.GET("", h.Run.ListRuns)
		runs.GET("/:id", h.Run.GetRun)
	}

	// 项目管理
	projects := v1.Group("/projects")
	{
		projects.GET("", h.Project.ListProjects)
		projects.POST("", h.Project.CreateProject)
		projects.GET("/:id", h.Project.GetProject)
		projects.PUT("/:id", h.Project.UpdateProject)
		projects.DELETE("/:id", h.Project.DeleteProject)

		// 项目下的集
		projects.GET("/:id/episodes", h.Episode.ListEpisodes)
		projects.POST("/:id/episodes", h.Episode.CreateEpisode)

		// 项目下的资产
		projects.GET("/:id/assets", h.Asset.ListAssets)
	}

	// 集与剧本管理
	episodes := v1.Group("/episodes")
	{
		episodes.GET("/:id", h.Episode.GetEpisode)
		episodes.PUT("/:id", h.Episode.UpdateEpisode)
		episodes.DELETE("/:id", h.Episode.DeleteEpisode)

		episodes.GET("/:id/script", h.Episode.GetScript)
		episodes.PUT("/:id/script", h.Episode.UpdateScript)
		episodes.PUT("/:id/script/items/:item_id", h.Episode.UpdateScriptItem)
		episodes.DELETE("/:id/script/items/:item_id", h.Episode.DeleteScriptItem)
	}

	// 资产管理
	assets := v1.Group("/assets")
	{
		assets.GET("/:id", h.Asset.GetAsset)
		assets.DELETE("/:id", h.Asset.DeleteAsset)
	}

	// 模型凭据管理
	apiKeys := v1.Group("/api-keys")
	{
		apiKeys.GET("", h.APIKey.ListAPIKeys)
		apiKeys.POST("", h.APIKey.CreateAPIKey)
		apiKeys.GET("/:id", h.APIKey.GetAPIKey)
		apiKeys.PUT("/:id", h.APIKey.UpdateAPIKey)
		apiKeys.DELETE("/:id", h.APIKey.DeleteAPIKey)
		apiKeys.POST("/:id/test", h.APIKey.TestAPIKey)
	}
}
