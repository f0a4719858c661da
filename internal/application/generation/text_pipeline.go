package generation

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"short-director-api/internal/application/script"
	"short-director-api/internal/domain/entity"
	"short-director-api/internal/infrastructure/provider"
	"short-director-api/internal/runtrace"
	"short-director-api/internal/workflow/chain"
	"short-director-api/internal/workflow/node"
	workflowport "short-director-api/internal/workflow/port"
	workflowskill "short-director-api/internal/workflow/skill"
	apperrors "short-director-api/pkg/errors"
)

const (
	textProgressCap = 98
	// skillVarMaxRunes 注入模板的 JSON 变量上限，防止超长剧本撑爆上下文窗口
	skillVarMaxRunes = 16000
	// rawOutputSampleRunes 解析失败时随错误保留的原始输出上限
	rawOutputSampleRunes = 2000
)

// runText 文本生成管线：流式出词、思考过滤、结构化提取与剧本合并
func (e *Engine) runText(ctx context.Context, em *Emitter, req *Request, key *entity.APIKey, cfg provider.Config) error {
	sk, err := workflowskill.Resolve(req.Skill)
	if err != nil {
		return err
	}

	episode, doc, err := e.loadScript(ctx, req.EpisodeID)
	if err != nil {
		return err
	}

	// 标签解析失败不阻断文本流程，未解析标签保留原文
	refs, err := ResolveReferences(doc, req.Prompt, false)
	if err != nil {
		return err
	}

	vars, pool, err := e.buildSkillVars(ctx, req, sk, doc, refs.Prompt)
	if err != nil {
		return err
	}

	if !em.Status("Initializing AI Director...") {
		return nil
	}

	stream, err := e.chain.Stream(ctx, &chain.SkillInput{
		Skill: sk,
		Spec:  e.modelSpec(key, cfg, req),
		Vars:  vars,
	})
	if err != nil {
		return apperrors.ErrLLMCallFailed.WithError(err)
	}
	defer stream.Close()

	var sb strings.Builder
	filter := &node.ThinkFilter{}
	started := time.Now()
	lastProgress := 0

	for {
		msg, recvErr := stream.Recv()
		if recvErr == io.EOF {
			break
		}
		if recvErr != nil {
			return apperrors.ErrLLMCallFailed.WithError(recvErr)
		}
		if msg == nil || msg.Content == "" {
			continue
		}

		sb.WriteString(msg.Content)

		if visible := filter.Feed(msg.Content); visible != "" {
			if !em.Emit(runtrace.EventThought, visible) {
				return nil
			}
		}

		// 按时间推进进度，每秒 1%，封顶 98%
		if p := int(time.Since(started).Seconds()); p > lastProgress {
			lastProgress = p
			if lastProgress > textProgressCap {
				lastProgress = textProgressCap
			}
			if !em.Progress(lastProgress) {
				return nil
			}
		}
	}

	full := sb.String()
	if strings.TrimSpace(node.StripThink(full)) == "" {
		return apperrors.ErrGenerationFailed.WithDetail("No output from AI Director")
	}

	sections := node.ExtractTagSections(full, sk.TagMap)
	obj, hasJSON := node.ExtractFencedJSON(full)

	if sk.Structured {
		if !hasJSON {
			// 原始输出留给排障，事件流和错误详情各带一份截断样本
			raw := node.TruncateByRunes(strings.TrimSpace(full), rawOutputSampleRunes)
			em.BackendLog("unparseable model output: " + raw)
			return apperrors.ErrMalformedModelOutput.WithDetail(raw)
		}
		incoming := script.FromMap(obj)
		merged := script.Merge(pool, doc, incoming, sk.IDPrefixes)

		scriptMap := merged.ToMap()
		if episode != nil {
			persisted, err := e.persistScript(ctx, episode, sk, doc, merged)
			if err != nil {
				return err
			}
			scriptMap = persisted
		}

		em.Progress(100)
		em.Emit(runtrace.EventFinish, map[string]any{
			"script":   scriptMap,
			"sections": sections,
		})
		return nil
	}

	if len(sections) > 0 {
		em.Progress(100)
		em.Emit(runtrace.EventFinish, map[string]any{"sections": sections})
		return nil
	}

	plain := strings.TrimSpace(node.StripThink(full))
	em.Progress(100)
	em.Emit(runtrace.EventTextFinish, plain)
	return nil
}

// persistScript 用路径命令把结构化结果写回剧集文档树
// 分镜技能是追加语义，只把新条目补进 storyboard 列表；其余结构化技能
// 整体替换三个集合。两种写法都不触碰文档里集合之外的键。
func (e *Engine) persistScript(ctx context.Context, episode *entity.Episode, sk workflowskill.Skill, existing, merged *script.Document) (map[string]any, error) {
	raw := episode.Script
	if raw == nil {
		raw = map[string]any{}
	}

	var cmds []script.Command
	if sk.Name == workflowskill.NameStoryboardMaker {
		cmds = append(cmds, script.AppendToList{
			Path:  "storyboard",
			Items: appendedItems(existing.Storyboard, merged.Storyboard),
		})
	} else {
		cmds = append(cmds,
			script.Replace{Path: "characters", Value: itemsAsAny(merged.Characters)},
			script.Replace{Path: "scenes", Value: itemsAsAny(merged.Scenes)},
			script.Replace{Path: "storyboard", Value: itemsAsAny(merged.Storyboard)},
		)
	}
	if err := script.ApplyCommands(raw, cmds...); err != nil {
		return nil, err
	}
	if err := e.episodes.UpdateScript(ctx, episode.ID, raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// appendedItems 返回合并后相对既有列表新增的条目
func appendedItems(existing, merged []script.Item) []any {
	seen := make(map[string]struct{}, len(existing))
	for _, it := range existing {
		seen[it.ID()] = struct{}{}
	}
	out := make([]any, 0, len(merged))
	for _, it := range merged {
		if _, ok := seen[it.ID()]; ok {
			continue
		}
		out = append(out, map[string]any(it))
	}
	return out
}

func itemsAsAny(items []script.Item) []any {
	out := make([]any, 0, len(items))
	for _, it := range items {
		out = append(out, map[string]any(it))
	}
	return out
}

// buildSkillVars 按技能拼装模板变量，并为编剧技能收集跨剧集条目池
func (e *Engine) buildSkillVars(ctx context.Context, req *Request, sk workflowskill.Skill, doc *script.Document, prompt string) (map[string]any, *script.Pool, error) {
	vars := map[string]any{"prompt": prompt}
	pool := &script.Pool{}

	if req.ProjectID != "" {
		project, err := e.projects.GetByID(ctx, req.ProjectID)
		if err != nil {
			return nil, nil, err
		}
		if project != nil {
			vars["title"] = project.Title
			vars["synopsis"] = project.Synopsis
		}
	}

	switch sk.Name {
	case workflowskill.NameScreenwriter:
		var err error
		pool, err = e.collectPool(ctx, req.ProjectID)
		if err != nil {
			return nil, nil, err
		}
		existing := map[string]any{
			"characters": pool.Characters,
			"scenes":     pool.Scenes,
		}
		existingJSON, _ := json.Marshal(existing)
		vars["existing"] = node.TruncateByRunes(string(existingJSON), skillVarMaxRunes)

	case workflowskill.NameStoryboardMaker:
		scriptJSON, _ := json.Marshal(doc.ToMap())
		vars["script"] = node.TruncateByRunes(string(scriptJSON), skillVarMaxRunes)

	case workflowskill.NamePromptEngineer:
		vars["category"] = paramString(req.Params, "category")
		vars["context"] = paramString(req.Params, "context")

	case workflowskill.NameVideoPrompt:
		vars["style"] = paramString(req.Params, "style")
	}

	return vars, pool, nil
}

// modelSpec 由凭据与解析后的提供商配置构造模型规格
func (e *Engine) modelSpec(key *entity.APIKey, cfg provider.Config, req *Request) workflowport.ModelSpec {
	model := req.Model
	if model == "" {
		model = key.Model
	}
	return workflowport.ModelSpec{
		Platform: string(cfg.Platform),
		APIKey:   key.Key,
		BaseURL:  cfg.BaseURL,
		Model:    model,
		Timeout:  e.cfg.Generation.Media.RequestTimeout,
	}
}

func paramString(params map[string]any, key string) string {
	if params == nil {
		return ""
	}
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}
