package main

import (
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/muyouzhi6/cliproxy-stats/cmd/routes"
	"github.com/muyouzhi6/cliproxy-stats/internal/analysis"
	"github.com/muyouzhi6/cliproxy-stats/internal/cards"
	"github.com/muyouzhi6/cliproxy-stats/internal/config"
	"github.com/muyouzhi6/cliproxy-stats/internal/cpa"
	"github.com/muyouzhi6/cliproxy-stats/internal/render"
	"github.com/muyouzhi6/cliproxy-stats/internal/stats"
	"github.com/muyouzhi6/cliproxy-stats/pkg/logger"
)

func main() {
	root := &cobra.Command{
		Use:   "statscard",
		Short: "Render CLIProxyAPI usage statistics as PNG cards",
	}

	root.AddCommand(newServeCommand(), newRenderCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the card rendering HTTP service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			logger.Init(cfg.AppEnv)
			defer logger.Sync()

			if cfg.CPAURL == "" {
				return fmt.Errorf("CPA_URL is not set")
			}

			client := cpa.NewClient(cfg.CPAURL, cfg.CPAPassword, cfg.CPAVerifySSL)
			builder := stats.NewBuilder(client, cfg.MaxRenderCount)
			renderer := render.New(render.Options{HighResolution: cfg.HighResRender})

			var analyzer *analysis.Analyzer
			if cfg.EnableLLMAnalysis {
				analyzer = analysis.New(cfg.LLMAPIURL, cfg.LLMAPIKey, cfg.LLMModel)
			}

			svc := cards.NewService(builder, renderer, analyzer, cards.NewStore(cfg.CacheDir))
			router := routes.SetUpRoutes(svc, client, cfg)

			logger.Info("server starting", logger.Fields{
				"port":     cfg.Port,
				"env":      cfg.AppEnv,
				"upstream": cfg.CPAURL,
			})
			return http.ListenAndServe(":"+cfg.Port, router)
		},
	}
}

// payloadFile is the on-disk card payload: the stats_type tag selects the
// variant, the remaining fields are the payload itself.
type payloadFile struct {
	StatsType string `json:"stats_type"`
}

func decodePayload(data []byte) (render.Payload, error) {
	var tag payloadFile
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("parsing payload: %w", err)
	}

	var p render.Payload
	switch tag.StatsType {
	case cards.KindOverview:
		p = &render.Overview{}
	case cards.KindToday:
		p = &render.Today{}
	case cards.KindQuota:
		p = &render.Quota{}
	case cards.KindDashboard:
		p = &render.Dashboard{}
	default:
		return nil, fmt.Errorf("unknown stats_type %q", tag.StatsType)
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parsing %s payload: %w", tag.StatsType, err)
	}
	return p, nil
}

func newRenderCommand() *cobra.Command {
	var (
		in      string
		out     string
		highRes bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one card from a payload JSON file, without upstream access",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger.Init("development")
			defer logger.Sync()

			data, err := os.ReadFile(in)
			if err != nil {
				return err
			}
			payload, err := decodePayload(data)
			if err != nil {
				return err
			}

			img := render.New(render.Options{HighResolution: highRes}).Render(payload)
			if img == nil {
				return fmt.Errorf("nothing to render")
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := png.Encode(f, img); err != nil {
				return err
			}

			logger.Info("card rendered", logger.Fields{"in": in, "out": out})
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "payload JSON file (required)")
	cmd.Flags().StringVar(&out, "out", "card.png", "output PNG path")
	cmd.Flags().BoolVar(&highRes, "high-res", true, "render with 3x supersampling")
	cmd.MarkFlagRequired("in")

	return cmd
}
