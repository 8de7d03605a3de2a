package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gollh/adapters/api"
	"gollh/adapters/detsig"
	"gollh/adapters/export"
	"gollh/adapters/memory"
	"gollh/adapters/postgres"
	seededrng "gollh/adapters/rng"
	"gollh/adapters/selector"
	"gollh/adapters/teststat"
	"gollh/app"
	"gollh/domain/core"
	"gollh/domain/events"
	"gollh/domain/params"
	"gollh/domain/pdf"
	"gollh/domain/source"
	"gollh/domain/trial"
	"gollh/internal"
	"gollh/internal/config"
	"gollh/ports"
)

const (
	energyMin    = 1e2
	energyMax    = 1e7
	livetimeDays = 365.0
	// Atmospheric-like background spectral index for the demo sample.
	backgroundGamma = 3.7
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	trials := flag.Int("trials", cfg.Sweep.Trials, "number of pseudo-experiments")
	workers := flag.Int("workers", cfg.Sweep.Workers, "concurrent trial workers")
	seed := flag.Int64("seed", cfg.Sweep.Seed, "base random seed")
	injectedNS := flag.Float64("ns", cfg.Sweep.InjectedNS, "injected signal strength (0 for background-only)")
	bgMean := flag.Float64("bg-mean", cfg.Sweep.BackgroundMean, "expected background events per trial")
	excelFile := flag.String("excel", cfg.Export.ExcelFile, "write an Excel workbook to this path")
	reportFile := flag.String("report", cfg.Export.MarkdownFile, "write a markdown report to this path")
	serve := flag.Bool("serve", cfg.Server.Enabled, "serve sweep results over HTTP after the sweep")
	port := flag.String("port", cfg.Server.Port, "results server port")
	flag.Parse()

	logger := internal.NewDefaultLogger("llhtrials")
	ctx := context.Background()
	rngPort := seededrng.New()

	repo, cleanup, err := buildRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	analysis, err := buildDemoAnalysis(ctx, rngPort, *seed, *bgMean, *injectedNS)
	if err != nil {
		return fmt.Errorf("building analysis: %w", err)
	}

	service := app.NewTrialSweepService(rngPort, repo)
	result, err := service.Run(ctx, app.SweepRequest{
		SweepID:     core.SweepID(fmt.Sprintf("sweep-seed%d-ns%g", *seed, *injectedNS)),
		Trials:      *trials,
		Workers:     *workers,
		Seed:        *seed,
		InjectedNS:  *injectedNS,
		NumDatasets: 1,
		NumSources:  len(analysis.catalog),
		NewEngine:   analysis.newEngine,
	})
	if err != nil {
		return fmt.Errorf("running sweep: %w", err)
	}

	logger.Info("TS distribution: mean=%.4f median=%.4f p95=%.4f max=%.4f",
		result.Summary.TS.Mean, result.Summary.TS.Median, result.Summary.TS.P95, result.Summary.TS.Max)

	if *excelFile != "" {
		if err := export.WriteSweepWorkbook(*excelFile, result.Summary, result.TSValues); err != nil {
			return fmt.Errorf("writing workbook: %w", err)
		}
		logger.Info("Wrote workbook %s", *excelFile)
	}
	if *reportFile != "" {
		if err := os.WriteFile(*reportFile, []byte(export.MarkdownReport(result.Summary)), 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		logger.Info("Wrote report %s", *reportFile)
	}

	if *serve {
		server := api.NewServer(repo)
		return server.ListenAndServe(":" + *port)
	}
	return nil
}

// buildRepository picks PostgreSQL when DATABASE_URL is set, in-memory
// otherwise.
func buildRepository(ctx context.Context, cfg *config.Config, logger *internal.Logger) (ports.SweepResultRepository, func(), error) {
	if !cfg.Database.Enabled {
		logger.Info("No DATABASE_URL set, keeping results in memory")
		return memory.NewSweepRepository(), func() {}, nil
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	repo := postgres.NewSweepRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ensuring schema: %w", err)
	}
	logger.Info("Persisting sweep results to PostgreSQL")
	return repo, func() { db.Close() }, nil
}

// demoAnalysis carries the shared, read-only configuration every worker
// builds its private engine from.
type demoAnalysis struct {
	catalog     source.Catalog
	background  *events.Sample
	monteCarlo  *events.Sample
	weights     [][]float64 // injection weights, [source][mc event]
	signalMeans []float64
	mapper      *params.ModelMapper
	schema      events.Schema
	bgMean      float64
	injectedNS  float64
}

// buildDemoAnalysis synthesizes a toy point-source search: an isotropic
// background pool, a Monte Carlo sample clustered on two sources, and the
// detector-yield tables that turn an injected signal strength into
// per-source expected counts.
func buildDemoAnalysis(ctx context.Context, rngPort ports.RNGPort, seed int64, bgMean, injectedNS float64) (*demoAnalysis, error) {
	rng, err := rngPort.SeededStream(ctx, "synthesis", seed)
	if err != nil {
		return nil, err
	}

	catalog := source.Catalog{
		source.NewPointSource("demo-a", 1.2, 0.4),
		source.NewPointSource("demo-b", 4.0, -0.1),
	}
	flux := source.PowerLaw{Phi0: 1e-18, Gamma: 2.0, E0: 1e3}

	background := synthesizeBackground(rng, 20000)
	monteCarlo := synthesizeMonteCarlo(rng, catalog, 50000)

	set, err := params.NewSet(params.NewFitParameter("gamma", 2.0, 1.0, 4.0).Broadcast())
	if err != nil {
		return nil, err
	}
	mappings := make([]params.SourceMapping, len(catalog))
	for i := range mappings {
		mappings[i] = params.SourceMapping{Requires: []string{"gamma"}}
	}
	mapper, err := params.NewModelMapper(set, mappings)
	if err != nil {
		return nil, err
	}

	// Yield tables shared by every flux hypothesis on the spectral grid.
	builder, err := detsig.NewBuilder(monteCarlo, livetimeDays,
		[]float64{1.0, 1.5, 2.0, 2.5, 3.0, 3.5, 4.0}, 10)
	if err != nil {
		return nil, err
	}
	yields := make([]trial.DetSigYield, len(catalog))
	for i := range yields {
		y, err := builder.Build(flux)
		if err != nil {
			return nil, err
		}
		yields[i] = y
	}
	yieldWeights, err := trial.NewYieldWeights(catalog, [][]trial.DetSigYield{yields})
	if err != nil {
		return nil, err
	}

	locals, err := mapper.ToLocal(set.FitInitials())
	if err != nil {
		return nil, err
	}
	table, err := yieldWeights.Calculate(locals)
	if err != nil {
		return nil, err
	}
	signalMeans, err := table.SignalMeans(0, injectedNS)
	if err != nil {
		return nil, err
	}

	weights := make([][]float64, len(catalog))
	for i, src := range catalog {
		weights[i] = injectionWeights(monteCarlo, src, flux)
	}

	return &demoAnalysis{
		catalog:     catalog,
		background:  background,
		monteCarlo:  monteCarlo,
		weights:     weights,
		signalMeans: signalMeans,
		mapper:      mapper,
		schema:      events.Schema{"ra", "dec", "energy", "ang_err"},
		bgMean:      bgMean,
		injectedNS:  injectedNS,
	}, nil
}

// newEngine builds one worker's private generator and test statistic.
func (a *demoAnalysis) newEngine(workerRNG *rand.Rand) (*trial.MultiDatasetGenerator, ports.TestStatistic, error) {
	bg, err := trial.NewBackgroundGenerator(trial.BackgroundConfig{
		Mean:          a.bgMean,
		Poisson:       true,
		ScrambleField: "ra",
	}, a.background, workerRNG)
	if err != nil {
		return nil, nil, err
	}

	ds := trial.DatasetConfig{Name: "demo", Background: bg}
	if a.injectedNS > 0 {
		// Each generator keeps its own copy of the weight matrix so a later
		// SetSourceWeights on one worker cannot leak into another.
		weights := make([][]float64, len(a.weights))
		copy(weights, a.weights)
		sig, err := trial.NewSignalGenerator(trial.SignalConfig{Poisson: true},
			a.monteCarlo, weights, workerRNG)
		if err != nil {
			return nil, nil, err
		}
		ds.Signal = sig
		ds.SignalMeans = a.signalMeans
	}

	generator := trial.NewMultiDatasetGenerator()
	if err := generator.Configure([]trial.DatasetConfig{ds}); err != nil {
		return nil, nil, err
	}

	manager := trial.NewDataManager(selector.NewSpatialBoxSelector(0.3, 0.3), a.catalog, a.schema)
	signalPDF := pdf.Product(
		pdf.NewGaussianSpatialPDF(a.catalog),
		pdf.NewPowerLawEnergyPDF(energyMin, energyMax),
	)
	backgroundPDF := pdf.Product(
		pdf.UniformSpherePDF{},
		pdf.NewPowerLawEnergyPDF(energyMin, energyMax),
	)

	statistic := teststat.NewLikelihoodRatio(manager, a.mapper, signalPDF, backgroundPDF)
	statistic.BackgroundParams = params.LocalParams{"gamma": backgroundGamma}
	return generator, statistic, nil
}

// synthesizeBackground draws an isotropic pool with an atmospheric-like
// energy spectrum.
func synthesizeBackground(rng *rand.Rand, n int) *events.Sample {
	ra := make([]float64, n)
	dec := make([]float64, n)
	energy := make([]float64, n)
	angErr := make([]float64, n)
	for i := 0; i < n; i++ {
		ra[i] = rng.Float64() * 2 * math.Pi
		dec[i] = math.Asin(2*rng.Float64() - 1)
		energy[i] = samplePowerLaw(rng, backgroundGamma)
		angErr[i] = (0.2 + rng.Float64()) * math.Pi / 180
	}
	sample := events.NewSample(n)
	sample.SetColumn("ra", ra)
	sample.SetColumn("dec", dec)
	sample.SetColumn("energy", energy)
	sample.SetColumn("ang_err", angErr)
	return sample
}

// synthesizeMonteCarlo draws detector-response events scattered around the
// catalog positions with a hard generation spectrum.
func synthesizeMonteCarlo(rng *rand.Rand, catalog source.Catalog, n int) *events.Sample {
	ra := make([]float64, n)
	dec := make([]float64, n)
	energy := make([]float64, n)
	angErr := make([]float64, n)
	weight := make([]float64, n)
	sigma := 1.0 * math.Pi / 180
	for i := 0; i < n; i++ {
		src := catalog[rng.Intn(len(catalog))]
		ra[i] = math.Mod(src.RA+rng.NormFloat64()*sigma+2*math.Pi, 2*math.Pi)
		dec[i] = clampDec(src.Dec + rng.NormFloat64()*sigma)
		energy[i] = samplePowerLaw(rng, 2.0)
		angErr[i] = (0.2 + rng.Float64()) * math.Pi / 180
		weight[i] = 1.0 / float64(n)
	}
	sample := events.NewSample(n)
	sample.SetColumn("ra", ra)
	sample.SetColumn("dec", dec)
	sample.SetColumn("energy", energy)
	sample.SetColumn("ang_err", angErr)
	sample.SetColumn("mc_weight", weight)
	return sample
}

// injectionWeights weights each MC event by its flux value and its angular
// proximity to the source, so injected events cluster where the source sits.
func injectionWeights(mc *events.Sample, src source.Hypothesis, flux source.FluxModel) []float64 {
	ra, _ := mc.Column("ra")
	dec, _ := mc.Column("dec")
	energy, _ := mc.Column("energy")
	weight, _ := mc.Column("mc_weight")

	sigma := 1.5 * math.Pi / 180
	out := make([]float64, mc.Len())
	for i := range out {
		dra := math.Abs(ra[i] - src.RA)
		if dra > math.Pi {
			dra = 2*math.Pi - dra
		}
		dra *= math.Cos(src.Dec)
		ddec := dec[i] - src.Dec
		psi2 := dra*dra + ddec*ddec
		out[i] = weight[i] * flux.Flux(energy[i]) * math.Exp(-psi2/(2*sigma*sigma))
	}
	return out
}

// samplePowerLaw draws from E^-gamma on [energyMin, energyMax] by inverting
// the CDF.
func samplePowerLaw(rng *rand.Rand, gamma float64) float64 {
	u := rng.Float64()
	beta := 1 - gamma
	if math.Abs(beta) < 1e-9 {
		return energyMin * math.Pow(energyMax/energyMin, u)
	}
	lo := math.Pow(energyMin, beta)
	hi := math.Pow(energyMax, beta)
	return math.Pow(lo+u*(hi-lo), 1/beta)
}

func clampDec(dec float64) float64 {
	if dec > math.Pi/2 {
		return math.Pi/2 - 1e-9
	}
	if dec < -math.Pi/2 {
		return -math.Pi/2 + 1e-9
	}
	return dec
}
