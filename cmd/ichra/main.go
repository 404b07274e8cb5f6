package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/glovehealth/ichra-engine/internal/affordability"
	"github.com/glovehealth/ichra-engine/internal/calculation"
	"github.com/glovehealth/ichra-engine/internal/census"
	"github.com/glovehealth/ichra-engine/internal/config"
	"github.com/glovehealth/ichra-engine/internal/domain"
	"github.com/glovehealth/ichra-engine/internal/fitscore"
	"github.com/glovehealth/ichra-engine/internal/output"
	"github.com/glovehealth/ichra-engine/internal/ratestore"
)

// simpleCLILogger implements calculation.Logger using the standard log package
type simpleCLILogger struct{}

func (simpleCLILogger) Debugf(format string, args ...any) { log.Printf("DEBUG: "+format, args...) }
func (simpleCLILogger) Infof(format string, args ...any)  { log.Printf("INFO: "+format, args...) }
func (simpleCLILogger) Warnf(format string, args ...any)  { log.Printf("WARN: "+format, args...) }
func (simpleCLILogger) Errorf(format string, args ...any) { log.Printf("ERROR: "+format, args...) }

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "ichra",
	Short: "ICHRA premium rating and fit scoring CLI",
	Long:  "Prices employee censuses against marketplace, cooperative and Sedera rates and scores ICHRA suitability",
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "ichra %s (commit %s, built %s)\n", version, commit, date)
			if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
				fmt.Fprintln(os.Stdout, bi.String())
			}
		},
	}
}

// loadAll resolves the shared inputs of every pricing command: the config
// file, the census and the rate store (cached when Redis is configured).
func loadAll(cmd *cobra.Command) (*config.Config, *census.Census, ratestore.Store, func(), error) {
	configFile, _ := cmd.Flags().GetString("config")
	censusFile, _ := cmd.Flags().GetString("census")

	cfg, err := config.NewParser().LoadFromFile(configFile)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	c, err := census.LoadFile(censusFile)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	for _, w := range c.Warnings {
		log.Printf("WARN: census: %s", w)
	}

	pg, err := ratestore.NewPostgresStore(cmd.Context(), cfg.Store.DatabaseURL)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	var store ratestore.Store = pg
	if cfg.Store.RedisAddr != "" {
		ttl := time.Duration(cfg.Store.CacheTTLMinutes) * time.Minute
		store = ratestore.NewCachedStore(pg, &redis.Options{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		}, ttl)
	}

	return cfg, c, store, pg.Close, nil
}

func newEngine(cfg *config.Config, cmd *cobra.Command, store ratestore.Store) *calculation.Engine {
	var logger calculation.Logger
	if debugMode, _ := cmd.Flags().GetBool("debug"); debugMode {
		logger = simpleCLILogger{}
	}
	return calculation.NewEngineWithConfig(store, cfg.RatedTierMultipliers(), cfg.EstimateTierMultipliers(), logger)
}

func emit(cmd *cobra.Command, result *domain.ScenarioResult, title string) error {
	format, _ := cmd.Flags().GetString("format")
	rg := output.NewReportGenerator(os.Stdout)
	switch format {
	case "json":
		return rg.WriteJSON(result)
	case "csv":
		data, err := output.ScenarioCSV(result)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	default:
		rg.ScenarioConsole(title, result)
		return nil
	}
}

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Price the census under the configured plan selections",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, c, store, closeStore, err := loadAll(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		engine := newEngine(cfg, cmd, store)
		scenarioName, _ := cmd.Flags().GetString("scenario")

		for _, sc := range cfg.Scenarios {
			if scenarioName != "" && sc.Name != scenarioName {
				continue
			}
			result, err := engine.ScenarioTotals(cmd.Context(), c, sc.Selections)
			if err != nil {
				return err
			}
			if err := emit(cmd, result, "SCENARIO: "+sc.Name); err != nil {
				return err
			}
		}

		format, _ := cmd.Flags().GetString("format")
		if format == "console" {
			rg := output.NewReportGenerator(os.Stdout)
			rg.BaselineConsole(calculation.CurrentTotals(c), calculation.ProjectedRenewalTotals(c))
		}
		return nil
	},
}

var lcspCmd = &cobra.Command{
	Use:   "lcsp",
	Short: "Project workforce cost at the lowest-cost plan per location",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, c, store, closeStore, err := loadAll(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		metalName, _ := cmd.Flags().GetString("metal")
		metal := domain.MetalLevel(metalName)

		engine := newEngine(cfg, cmd, store)
		result, err := engine.LCSPScenario(cmd.Context(), c, metal)
		if err != nil {
			return err
		}
		return emit(cmd, result, fmt.Sprintf("LOWEST COST %s PROJECTION", metal))
	},
}

var multiMetalCmd = &cobra.Command{
	Use:   "multimetal",
	Short: "Project workforce cost across Bronze, Silver and Gold at once",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, c, store, closeStore, err := loadAll(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		engine := newEngine(cfg, cmd, store)
		results, err := engine.MultiMetalScenario(cmd.Context(), c)
		if err != nil {
			return err
		}

		for _, metal := range []domain.MetalLevel{domain.MetalBronze, domain.MetalSilver, domain.MetalGold} {
			if err := emit(cmd, results[metal], fmt.Sprintf("LOWEST COST %s PROJECTION", metal)); err != nil {
				return err
			}
		}
		return nil
	},
}

var fitScoreCmd = &cobra.Command{
	Use:   "fitscore",
	Short: "Score ICHRA suitability for the census",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, c, store, closeStore, err := loadAll(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		weights, err := cfg.FitScoreWeights()
		if err != nil {
			return err
		}
		calc, err := fitscore.NewCalculator(weights, store)
		if err != nil {
			return err
		}

		// The cost-advantage category compares the Silver projection to the
		// census-supplied current employer spend.
		engine := newEngine(cfg, cmd, store)
		scenario, err := engine.LCSPScenario(cmd.Context(), c, domain.MetalSilver)
		if err != nil {
			return err
		}

		result, err := calc.Calculate(cmd.Context(), c, &fitscore.FinancialInputs{
			Scenario: scenario,
			Current:  calculation.CurrentTotals(c),
		})
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		rg := output.NewReportGenerator(os.Stdout)
		if format == "json" {
			return rg.WriteJSON(result)
		}
		rg.FitScoreConsole(result, weights)
		return nil
	},
}

var affordabilityCmd = &cobra.Command{
	Use:   "affordability",
	Short: "Run the IRS safe-harbor affordability analysis",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, c, store, closeStore, err := loadAll(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		result, err := affordability.NewAnalyzer(store).WorkforceAffordability(cmd.Context(), c)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		rg := output.NewReportGenerator(os.Stdout)
		if format == "json" {
			return rg.WriteJSON(result)
		}
		rg.AffordabilityConsole(result)
		return nil
	},
}

var groupPricingCmd = &cobra.Command{
	Use:   "grouppricing",
	Short: "Price the census against cooperative and Sedera group rate tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, c, store, closeStore, err := loadAll(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		engine := newEngine(cfg, cmd, store)
		coop, coopErrs, err := engine.CooperativeTotals(cmd.Context(), c)
		if err != nil {
			return err
		}
		sedera, sederaErrs, err := engine.SederaTotals(cmd.Context(), c)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		rg := output.NewReportGenerator(os.Stdout)
		if format == "json" {
			return rg.WriteJSON(map[string]any{
				"cooperative":        coop,
				"cooperative_errors": coopErrs,
				"sedera":             sedera,
				"sedera_errors":      sederaErrs,
			})
		}
		rg.GroupPricingConsole("COOPERATIVE (HAS) GROUP PRICING", "Deductible", domain.CooperativeDeductibles, coop, coopErrs)
		rg.GroupPricingConsole("SEDERA GROUP PRICING", "IUA", domain.SederaIUALevels, sedera, sederaErrs)
		return nil
	},
}

var censusCmd = &cobra.Command{
	Use:   "census",
	Short: "Census utilities",
}

var censusTemplateCmd = &cobra.Command{
	Use:   "template",
	Short: "Print an empty census upload template",
	RunE: func(cmd *cobra.Command, args []string) error {
		return census.WriteTemplate(os.Stdout)
	},
}

func main() {
	for _, cmd := range []*cobra.Command{calculateCmd, lcspCmd, multiMetalCmd, fitScoreCmd, affordabilityCmd, groupPricingCmd} {
		cmd.Flags().String("config", "ichra.yaml", "Path to the engine configuration file")
		cmd.Flags().String("census", "", "Path to the census CSV")
		cmd.Flags().String("format", "console", "Output format (console, json, csv)")
		cmd.Flags().Bool("debug", false, "Enable debug logging")
		_ = cmd.MarkFlagRequired("census")
	}
	calculateCmd.Flags().String("scenario", "", "Run only the named scenario")
	lcspCmd.Flags().String("metal", string(domain.MetalSilver), "Metal level (Bronze, Silver, Gold)")

	censusCmd.AddCommand(censusTemplateCmd)
	rootCmd.AddCommand(calculateCmd, lcspCmd, multiMetalCmd, fitScoreCmd, affordabilityCmd, groupPricingCmd, censusCmd, versionCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}
