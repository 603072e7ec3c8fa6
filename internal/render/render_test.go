package render

import (
	"fmt"
	"image"
	"testing"
)

func sampleQuota() *Quota {
	accounts := make([]Account, 5)
	for i := range accounts {
		accounts[i] = Account{
			Active:       i%2 == 0,
			Email:        fmt.Sprintf("user%d@example.com", i),
			Provider:     "antigravity",
			ProviderName: "Antigravity",
			ProviderIcon: "🚀",
			Quotas: []QuotaBar{
				{Label: "Gemini 3 Pro", Percent: 72, ResetTime: "08/24 08:00"},
				{Label: "Fast 请求", Percent: 15, ResetTime: "08/24 08:00"},
			},
		}
	}
	return &Quota{
		Title:          "OAuth 配额状态",
		Subtitle:       "共 5 个账号",
		Accounts:       accounts,
		ProviderGroups: []string{"antigravity"},
		QueryTime:      "2026-08-23 14:00:05",
	}
}

func sampleToday() *Today {
	return &Today{
		Subtitle:      "2026-08-23",
		TodayRequests: 312,
		TodayTokens:   "1.2M",
		SuccessRate:   97.4,
		ModelStats: []ModelStat{
			{Name: "gemini-2.5-pro", Requests: 200, Tokens: "900K"},
			{Name: "claude-sonnet-4", Requests: 80, Tokens: "250K", Failed: 2},
		},
		TimeSlots: []TimeSlot{
			{Label: "凌晨", Count: 3},
			{Label: "上午", Count: 120},
			{Label: "下午", Count: 150},
			{Label: "晚上", Count: 39},
		},
		AuthStats:      []AuthStat{{AuthIndex: "gemini-user0", Requests: 150, Tokens: "600K"}},
		TokenBreakdown: &TokenBreakdown{Input: "800K", Output: "300K", Reasoning: "80K", Cached: "20K"},
		QueryTime:      "2026-08-23 14:00:05",
	}
}

func TestRenderDispatch(t *testing.T) {
	r := New(Options{})

	payloads := []Payload{
		&Overview{Title: "t", TotalRequests: 10, SuccessRate: 99},
		sampleToday(),
		sampleQuota(),
		&Dashboard{Today: *sampleToday(), Quota: *sampleQuota(), Analysis: "### 总结\n一切正常。"},
	}
	for _, p := range payloads {
		if img := r.Render(p); img == nil {
			t.Errorf("Render(%T) returned nil", p)
		}
	}

	if img := r.Render(nil); img != nil {
		t.Error("Render(nil) should return nil")
	}
}

func TestRenderScale(t *testing.T) {
	if got := New(Options{}).Scale(); got != 2 {
		t.Errorf("default scale = %d, want 2", got)
	}
	if got := New(Options{HighResolution: true}).Scale(); got != 3 {
		t.Errorf("high-res scale = %d, want 3", got)
	}
}

func TestOverviewHeightMonotonic(t *testing.T) {
	base := &Overview{TotalRequests: 1}
	prev := overviewHeight(base)

	for n := 1; n <= 8; n++ {
		p := &Overview{TotalRequests: 1, APIs: make([]APIStat, n)}
		h := overviewHeight(p)
		if h <= prev {
			t.Fatalf("height with %d api rows (%d) not above previous (%d)", n, h, prev)
		}
		prev = h
	}

	// Past the drawn cap the height freezes.
	capped := overviewHeight(&Overview{TotalRequests: 1, APIs: make([]APIStat, 8)})
	over := overviewHeight(&Overview{TotalRequests: 1, APIs: make([]APIStat, 30)})
	if capped != over {
		t.Errorf("height grew past the row cap: %d vs %d", capped, over)
	}

	withAuth := &Overview{TotalRequests: 1, AuthInfo: &AuthInfo{Active: 1, Total: 2, Providers: []ProviderCount{{Name: "gemini", Active: 1, Total: 2}}}}
	if overviewHeight(withAuth) <= overviewHeight(base) {
		t.Error("auth section did not increase the height")
	}
}

func TestTodayRenderedSize(t *testing.T) {
	r := New(Options{})

	full := r.Render(sampleToday())
	minimal := r.Render(&Today{TodayRequests: 1})
	if full == nil || minimal == nil {
		t.Fatal("today render returned nil")
	}

	if full.Bounds().Dx() != todayWidth {
		t.Errorf("today card width = %d, want %d", full.Bounds().Dx(), todayWidth)
	}
	if full.Bounds().Dy() <= minimal.Bounds().Dy() {
		t.Errorf("full payload (%d) not taller than minimal (%d)", full.Bounds().Dy(), minimal.Bounds().Dy())
	}
}

func TestAccountHeight(t *testing.T) {
	if got := accountHeight(&Account{Error: "token expired"}); got != 70 {
		t.Errorf("error account height = %d, want 70", got)
	}
	if got := accountHeight(&Account{Quotas: make([]QuotaBar, 3)}); got != 48+3*44 {
		t.Errorf("3-quota account height = %d, want %d", got, 48+3*44)
	}
}

func TestPairAccountsGrid(t *testing.T) {
	p := sampleQuota()
	p.Accounts[2].Error = "refresh failed"
	p.Accounts[2].Quotas = nil

	_, groups := groupAccounts(p)
	rows := pairAccounts(groups["antigravity"])

	if len(rows) != 3 {
		t.Fatalf("5 accounts paired into %d rows, want 3", len(rows))
	}
	if rows[2].right != nil {
		t.Error("odd trailing account should leave the right slot empty")
	}

	// Row 1 pairs an error account with a 2-quota account; the taller wins.
	if want := accountHeight(rows[1].right); rows[1].height != want {
		t.Errorf("row height = %d, want max of pair %d", rows[1].height, want)
	}

	sum := 0
	for _, row := range rows {
		sum += row.height + 16
	}
	wantHeight := 90 + 44 + sum + 12 + 50
	if got := quotaHeight(p); got != wantHeight {
		t.Errorf("quotaHeight = %d, want %d", got, wantHeight)
	}
}

func TestQuotaTruncatedFootnoteHeight(t *testing.T) {
	p := sampleQuota()
	without := quotaHeight(p)

	p.Truncated = map[string]int{"antigravity": 4}
	with := quotaHeight(p)

	if with != without+32 {
		t.Errorf("footnote delta = %d, want 32", with-without)
	}
}

func TestGroupAccountsOrder(t *testing.T) {
	p := &Quota{
		ProviderGroups: []string{"codex", "antigravity"},
		Accounts: []Account{
			{Provider: "antigravity", Email: "a"},
			{Provider: "gemini", Email: "b"},
			{Provider: "codex", Email: "c"},
		},
	}

	order, groups := groupAccounts(p)

	want := []string{"codex", "antigravity", "gemini"}
	if len(order) != len(want) {
		t.Fatalf("group order %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("group order %v, want %v", order, want)
		}
	}
	if len(groups["antigravity"]) != 1 || groups["antigravity"][0].Email != "a" {
		t.Error("accounts lost during grouping")
	}
}

func TestCropAndDownscale(t *testing.T) {
	scale := 2
	img := image.NewRGBA(image.Rect(0, 0, 400, 2000))

	cropped := cropToContent(img, 900, 32, scale)
	if got := cropped.Bounds().Dy(); got != 932 {
		t.Errorf("cropped height = %d, want 932", got)
	}

	// Below the minimum the crop is clamped.
	tiny := cropToContent(img, 10, 0, scale)
	if got := tiny.Bounds().Dy(); got != minCardHeight*scale {
		t.Errorf("clamped height = %d, want %d", got, minCardHeight*scale)
	}

	final := downscale(cropped, scale)
	if got := final.Bounds().Dx(); got != 200 {
		t.Errorf("downscaled width = %d, want 200", got)
	}
	if got := final.Bounds().Dy(); got != 466 {
		t.Errorf("downscaled height = %d, want 466", got)
	}
}

func TestFontFaceNeverNil(t *testing.T) {
	for _, px := range []float64{10, 24, 48, 72} {
		if fontFace(px) == nil {
			t.Fatalf("fontFace(%v) returned nil", px)
		}
	}
}
