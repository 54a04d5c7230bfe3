// Command planctl computes a daily budget and meal plan from the command
// line, using the same configuration and catalog sources as the API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/alchemorsel/nutriplan/internal/application/planner"
	"github.com/alchemorsel/nutriplan/internal/domain/mealplan"
	"github.com/alchemorsel/nutriplan/internal/domain/nutrition"
	"github.com/alchemorsel/nutriplan/internal/infrastructure/catalog"
	"github.com/alchemorsel/nutriplan/internal/infrastructure/config"
	"github.com/alchemorsel/nutriplan/internal/infrastructure/container"
	"github.com/alchemorsel/nutriplan/internal/ports/inbound"
	apperrors "github.com/alchemorsel/nutriplan/pkg/errors"
	"github.com/alchemorsel/nutriplan/pkg/logger"
)

const (
	exitCodeSuccess = 0
	exitCodeFailure = 1
	exitCodeUsage   = 2
)

type options struct {
	profile    nutrition.ProfileInput
	seed       uint64
	hasSeed    bool
	budgetOnly bool
	jsonOut    bool
	configPath string
	catalog    string
	verbose    bool
}

func main() {
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	var allergens, restrictions string

	fs := flag.NewFlagSet("planctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&opts.profile.Age, "age", 0, "Age in years")
	fs.StringVar(&opts.profile.Sex, "sex", "", "male, female or other")
	fs.Float64Var(&opts.profile.HeightCM, "height", 0, "Height in cm")
	fs.Float64Var(&opts.profile.WeightKG, "weight", 0, "Weight in kg")
	fs.StringVar(&opts.profile.Activity, "activity", "moderate", "sedentary, light, moderate, active or very_active")
	fs.StringVar(&opts.profile.Goal, "goal", "maintain", "weight_loss, maintain or muscle_gain")
	fs.StringVar(&opts.profile.Diet, "diet", "non_vegetarian", "non_vegetarian, vegetarian, eggetarian, pescatarian or vegan")
	fs.StringVar(&allergens, "allergens", "", "Comma separated allergens to avoid")
	fs.StringVar(&restrictions, "restrictions", "", "Comma separated restrictions (no_dairy, no_nuts, ...)")
	fs.Uint64Var(&opts.seed, "seed", 0, "Tie-break seed for a reproducible plan")
	fs.BoolVar(&opts.budgetOnly, "budget", false, "Only compute the daily budget")
	fs.BoolVar(&opts.jsonOut, "json", false, "Print JSON instead of text")
	fs.StringVar(&opts.configPath, "config", "", "Configuration file path")
	fs.StringVar(&opts.catalog, "catalog", "", "Read the catalog from this JSON file")
	fs.BoolVar(&opts.verbose, "verbose", false, "Log planner progress to stderr")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			opts.hasSeed = true
		}
	})

	opts.profile.Allergens = splitList(allergens)
	opts.profile.Restrictions = splitList(restrictions)
	return opts, nil
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return exitCodeUsage
	}

	profile, err := opts.profile.Profile()
	if err != nil {
		fmt.Fprintf(stderr, "invalid profile: %v\n", err)
		return exitCodeUsage
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load configuration: %v\n", err)
		return exitCodeFailure
	}
	if opts.catalog != "" {
		cfg.Catalog.Source = config.CatalogFile
		cfg.Catalog.Path = opts.catalog
	}

	level := "error"
	if opts.verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Config{Level: level, Format: "console", OutputPaths: []string{"stderr"}})
	if err != nil {
		fmt.Fprintf(stderr, "failed to create logger: %v\n", err)
		return exitCodeFailure
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	plans := planner.NewService(container.PlannerConfig(cfg.Planner), nil, nil, nil, log)

	if opts.budgetOnly {
		budget, err := plans.ComputeBudget(ctx, profile)
		if err != nil {
			return report(stderr, err)
		}
		return printBudget(stdout, budget, opts.jsonOut)
	}

	storage, err := container.NewStorage(cfg, log)
	if err != nil {
		fmt.Fprintf(stderr, "failed to open catalog database: %v\n", err)
		return exitCodeFailure
	}
	defer storage.Close()

	src, err := catalog.NewSource(cfg.Catalog, storage.Foods)
	if err != nil {
		fmt.Fprintf(stderr, "invalid catalog source: %v\n", err)
		return exitCodeFailure
	}
	foods, err := catalog.Load(ctx, src, log)
	if err != nil {
		return report(stderr, err)
	}

	cmd := inbound.ComputePlanCommand{Profile: profile, Catalog: foods}
	if opts.hasSeed {
		cmd.Seed = &opts.seed
	}
	result, err := plans.ComputePlan(ctx, cmd)
	if err != nil {
		return report(stderr, err)
	}
	return printPlan(stdout, result, profile.Goal, opts.jsonOut)
}

// report prints an error with its remediation and picks the exit code
func report(stderr io.Writer, err error) int {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitCodeFailure
	}

	fmt.Fprintf(stderr, "%s: %s\n", appErr.Code, appErr.Message)
	if appErr.Details != "" {
		fmt.Fprintln(stderr, appErr.Details)
	}
	if appErr.Code == apperrors.CodeInvalidProfile {
		return exitCodeUsage
	}
	return exitCodeFailure
}

type budgetOutput struct {
	Budget       nutrition.MacroBudget `json:"budget"`
	FloorApplied bool                  `json:"floorApplied"`
	BMR          float64               `json:"bmr"`
	TDEE         float64               `json:"tdee"`
}

func printBudget(w io.Writer, b nutrition.Budget, asJSON bool) int {
	if asJSON {
		return writeJSON(w, budgetOutput{Budget: b.MacroBudget, FloorApplied: b.FloorApplied, BMR: b.BMR, TDEE: b.TDEE})
	}

	fmt.Fprintf(w, "BMR %.0f kcal, TDEE %.0f kcal\n", b.BMR, b.TDEE)
	fmt.Fprintf(w, "Daily target: %.0f kcal (protein %.0fg, carbs %.0fg, fat %.0fg)\n",
		b.Calories, b.Protein, b.Carbs, b.Fat)
	if b.FloorApplied {
		fmt.Fprintln(w, "The target was raised to the minimum safe intake.")
	}
	return exitCodeSuccess
}

type planOutput struct {
	ID       string                `json:"id"`
	Seed     uint64                `json:"seed"`
	Attempts int                   `json:"attempts"`
	Budget   nutrition.MacroBudget `json:"budget"`
	Plan     mealplan.WirePlan     `json:"plan"`
}

func printPlan(w io.Writer, res *inbound.PlanResult, goal nutrition.Goal, asJSON bool) int {
	if asJSON {
		return writeJSON(w, planOutput{
			ID:       res.Plan.ID().String(),
			Seed:     res.Seed,
			Attempts: res.Attempts,
			Budget:   res.Budget.MacroBudget,
			Plan:     mealplan.ToWire(res.Plan),
		})
	}

	fmt.Fprintln(w, mealplan.Summary(res.Plan, res.Budget.MacroBudget, goal))
	fmt.Fprintf(w, "\nseed %d, %d attempt(s)\n", res.Seed, res.Attempts)
	return exitCodeSuccess
}

func writeJSON(w io.Writer, v interface{}) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return exitCodeFailure
	}
	return exitCodeSuccess
}

