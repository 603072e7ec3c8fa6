// Package analysis asks an OpenAI-compatible chat endpoint for a short
// usage report over today's statistics and the quota state. It is a
// best-effort collaborator: every failure degrades to an empty string so
// the dashboard renders without the analysis block.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/muyouzhi6/cliproxy-stats/internal/render"
	"github.com/muyouzhi6/cliproxy-stats/pkg/logger"
)

const analysisPrompt = `你是一个 API 使用分析专家。请根据以下 CLIProxyAPI 使用数据，提供精准的分析报告。

## 当前时间
%s

## 今日使用数据
- 日期: %s
- 总请求数: %d
- 总 Token: %s
- 成功率: %s%%
- 已运行时长: 从 00:00 到现在约 %s 小时

## 各模型使用详情
%s

## 配额状态（含刷新时间）
%s

## 小时级使用分布
%s

请提供以下分析：

### 1. 配额安全评估（最重要）
对于每个配额紧张的模型（剩余 < 80%%）：
- 计算：当前消耗速率 = 已用配额 / 已运行小时数
- 计算：预计耗尽时间 = 剩余配额 / 消耗速率
- **关键判断**：在该模型的刷新时间之前，配额是否会耗尽？
  - 如果刷新时间在耗尽之前 → ✅ 安全，无需担心
  - 如果耗尽在刷新之前 → ⚠️ 预警，给出预计耗尽时间
- 配额充足（> 80%%）的模型不需要预警

### 2. 模型使用分析
- 哪个模型是主力？占比多少？
- 各模型的平均单次 Token 消耗
- 是否有异常高消耗的模型？

### 3. 优化建议（仅在必要时给出）
- **只有当配额确实会在刷新前耗尽时**，才建议切换模型
- 如果配额安全，明确说"当前使用模式可持续，无需调整"
- 不要为了建议而建议

请用中文回答，数据要准确，结论要明确。`

// Analyzer calls a chat-completion endpoint.
type Analyzer struct {
	apiURL string
	apiKey string
	model  string
	http   *http.Client
	now    func() time.Time
}

// New builds an analyzer against an OpenAI-compatible base URL.
func New(apiURL, apiKey, model string) *Analyzer {
	return &Analyzer{
		apiURL: strings.TrimRight(apiURL, "/"),
		apiKey: apiKey,
		model:  model,
		http:   &http.Client{Timeout: 120 * time.Second},
		now:    time.Now,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Analyze produces the dashboard analysis text, empty on any failure.
func (a *Analyzer) Analyze(ctx context.Context, today *render.Today, quota *render.Quota) string {
	if a.apiURL == "" || today == nil {
		return ""
	}

	prompt := a.buildPrompt(today, quota)

	payload, err := json.Marshal(chatRequest{
		Model:    a.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.apiURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return ""
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		logger.Warn("analysis: chat completion request failed", logger.WithError(err))
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("analysis: chat completion returned non-200", logger.Fields{"status": resp.StatusCode})
		return ""
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		logger.Warn("analysis: decoding chat completion failed", logger.WithError(err))
		return ""
	}
	if len(cr.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(cr.Choices[0].Message.Content)
}

func (a *Analyzer) buildPrompt(today *render.Today, quota *render.Quota) string {
	now := a.now()
	hoursElapsed := float64(now.Hour()) + float64(now.Minute())/60

	return fmt.Sprintf(analysisPrompt,
		now.Format("2006-01-02 15:04"),
		today.Subtitle,
		today.TodayRequests,
		today.TodayTokens,
		formatRate(today.SuccessRate),
		fmt.Sprintf("%.1f", hoursElapsed),
		modelStatsText(today),
		quotaStatsText(quota),
		hourlyText(today.TimeSlots),
	)
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// modelStatsText lists each model with share, tokens and average per-call
// consumption parsed back out of the formatted token string.
func modelStatsText(today *render.Today) string {
	if len(today.ModelStats) == 0 {
		return "暂无模型使用数据"
	}

	var sb strings.Builder
	models := today.ModelStats
	if len(models) > 15 {
		models = models[:15]
	}
	for _, m := range models {
		pct := 0.0
		if today.TodayRequests > 0 {
			pct = float64(m.Requests) / float64(today.TodayRequests) * 100
		}

		avg := ""
		if m.Requests > 0 {
			if tokens, ok := ParseTokens(m.Tokens); ok {
				per := tokens / float64(m.Requests)
				if per >= 1000 {
					avg = fmt.Sprintf(", 平均 %.1fK/次", per/1000)
				} else {
					avg = fmt.Sprintf(", 平均 %d/次", int(per))
				}
			}
		}

		fail := ""
		if m.Failed > 0 {
			fail = fmt.Sprintf(", 失败 %d", m.Failed)
		}
		fmt.Fprintf(&sb, "- %s: %d 次 (%.1f%%), %s tokens%s%s\n", m.Name, m.Requests, pct, m.Tokens, avg, fail)
	}
	return sb.String()
}

func quotaStatsText(quota *render.Quota) string {
	if quota == nil || len(quota.Accounts) == 0 {
		return "暂无配额数据"
	}

	var sb strings.Builder
	accounts := quota.Accounts
	if len(accounts) > 8 {
		accounts = accounts[:8]
	}
	for _, account := range accounts {
		if len(account.Quotas) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n账号 %s:\n", account.Email)
		quotas := account.Quotas
		if len(quotas) > 8 {
			quotas = quotas[:8]
		}
		for _, q := range quotas {
			reset := q.ResetTime
			if reset == "" {
				reset = "未知"
			}
			fmt.Fprintf(&sb, "  - %s: 剩余 %d%% (已用 %d%%), 刷新时间: %s\n", q.Label, q.Percent, 100-q.Percent, reset)
		}
	}
	if sb.Len() == 0 {
		return "暂无配额数据"
	}
	return sb.String()
}

func hourlyText(slots []render.TimeSlot) string {
	if len(slots) == 0 {
		return "暂无时段数据"
	}
	var sb strings.Builder
	for _, s := range slots {
		fmt.Fprintf(&sb, "- %s: %d 次\n", s.Label, s.Count)
	}
	return sb.String()
}

// ParseTokens reverses the compact token formatting ("1.23M", "45.30K",
// "512") back into a number.
func ParseTokens(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	mult := 1.0
	switch {
	case strings.HasSuffix(s, "M"):
		mult = 1_000_000
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "K"):
		mult = 1_000
		s = strings.TrimSuffix(s, "K")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v * mult, true
}
