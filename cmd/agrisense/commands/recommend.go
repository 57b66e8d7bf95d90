package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agrisense/agrisense/internal/cache"
	"github.com/agrisense/agrisense/internal/genai"
	"github.com/agrisense/agrisense/internal/recommend"
	"github.com/agrisense/agrisense/internal/weather"
)

var (
	// weatherPath is the hourly forecast JSON file, "-" for stdin.
	weatherPath string

	// quick skips the generation backend for an instant heuristic
	// answer.
	quick bool

	// noCache bypasses the TTL cache for this request.
	noCache bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <location>",
	Short: "Recommend crops for a location's forecast",
	Long: `Recommend reads an hourly forecast (JSON with temperature,
precipitation, windSpeed and uvIndex arrays) and prints a ranked crop
list. With a generation backend configured the list comes from the
model, falling back to the built-in heuristic on any failure.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

// hourlyInput is the forecast JSON accepted on the command line.
type hourlyInput struct {
	Temperature   []float64 `json:"temperature"`
	Precipitation []float64 `json:"precipitation"`
	WindSpeed     []float64 `json:"windSpeed"`
	UVIndex       []float64 `json:"uvIndex"`
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := newLogger()
	location := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	series, err := readWeather(weatherPath)
	if err != nil {
		return err
	}

	ttl, err := cfg.cacheTTL()
	if err != nil {
		return fmt.Errorf("parse cache_ttl: %w", err)
	}

	var gen genai.Generator
	useQuick := quick
	if cfg.GenerationEndpoint != "" {
		gen = genai.NewRateLimitedGenerator(
			genai.NewHTTPGenerator(cfg.GenerationEndpoint, nil),
			cfg.GenerationRPS, cfg.GenerationBurst,
		)
	} else {
		// No backend configured: answer instantly from the
		// heuristic instead of failing into it.
		gen = genai.GeneratorFunc(func(
			_ context.Context, _ string,
		) (string, error) {
			return "", fmt.Errorf("no generation endpoint " +
				"configured")
		})
		useQuick = true
	}

	cacheSvc := cache.NewService[*recommend.Response](
		cache.Config{TTL: ttl}, log,
	)
	resolver := recommend.NewResolver(cacheSvc, gen, log)

	resp, err := resolver.Resolve(ctx, recommend.Request{
		Weather:       series,
		Location:      location,
		UseCache:      !noCache,
		QuickFallback: useQuick,
	})
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return outputJSON(resp)
	}

	printResponse(resp)
	return nil
}

// readWeather loads the hourly series from a file or stdin.
func readWeather(path string) (weather.HourlySeries, error) {
	var raw []byte
	var err error

	switch path {
	case "", "-":
		raw, err = io.ReadAll(os.Stdin)
	default:
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return weather.HourlySeries{}, fmt.Errorf("read weather "+
			"data: %w", err)
	}

	var input hourlyInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return weather.HourlySeries{}, fmt.Errorf("parse weather "+
			"data: %w", err)
	}

	return weather.HourlySeries{
		Temperature:   input.Temperature,
		Precipitation: input.Precipitation,
		WindSpeed:     input.WindSpeed,
		UVIndex:       input.UVIndex,
	}, nil
}

// printResponse renders a Response as text.
func printResponse(resp *recommend.Response) {
	fmt.Printf("%s: %s\n", resp.LocationName, resp.WeatherSummary)
	if resp.Source == recommend.SourceHeuristic {
		fmt.Println("(heuristic recommendations)")
	}
	fmt.Println()

	for i, rec := range resp.Recommendations {
		fmt.Printf("%d. %s (%d/100)\n", i+1, rec.Crop.Name,
			rec.SuitabilityScore)
		fmt.Printf("   %s\n", rec.Reasoning)
		for _, w := range rec.Warnings {
			fmt.Printf("   ⚠ %s\n", w)
		}
	}

	if resp.GeneralAdvice != "" {
		fmt.Printf("\n%s\n", wrapAdvice(resp.GeneralAdvice))
	}
}

// wrapAdvice keeps the advice block visually separate.
func wrapAdvice(advice string) string {
	return "Advice: " + strings.TrimSpace(advice)
}

func init() {
	recommendCmd.Flags().StringVarP(
		&weatherPath, "weather", "w", "",
		"Hourly forecast JSON file (default: stdin)",
	)
	recommendCmd.Flags().BoolVar(
		&quick, "quick", false,
		"Skip the generation backend for an instant heuristic answer",
	)
	recommendCmd.Flags().BoolVar(
		&noCache, "no-cache", false,
		"Bypass the recommendation cache",
	)
}
