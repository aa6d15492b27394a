package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/classifier"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/brainmap/signal"
	"github.com/vanikaushik1712/brain-mapping-eeg-classification/pkg/logger"
)

// Global flags
var (
	dbPath    string
	dataDir   string
	threshold float64
	seed      int64
	noStore   bool
	signals   bool
)

func init() {
	flag.StringVar(&dbPath, "db", getEnvOrDefault("EEG_DB_PATH", "brainmap.sqlite3"), "Path to the SQLite database file")
	flag.StringVar(&dataDir, "data", getEnvOrDefault("EEG_DATA_DIR", "data"), "Dataset root containing reference_signals/ and test_samples/")
	flag.Float64Var(&threshold, "threshold", getEnvFloat("EEG_THRESHOLD", classifier.DefaultThreshold), "MSE threshold separating Normal from Abnormal")
	flag.Int64Var(&seed, "seed", -1, "Random seed for signal synthesis (negative: time based)")
	flag.BoolVar(&noStore, "no-store", false, "Run without the SQLite database")
	flag.BoolVar(&signals, "signals", false, "Also export generated signals as WAV files")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		logger.Warnf("Ignoring invalid %s=%q", key, value)
	}
	return defaultValue
}

// createService creates a new brainmap service with configured options
func createService() (brainmap.Service, error) {
	opts := []brainmap.Option{
		brainmap.WithDBPath(dbPath),
		brainmap.WithDataDir(dataDir),
		brainmap.WithThreshold(threshold),
		brainmap.WithSignalExport(signals),
	}
	if seed >= 0 {
		opts = append(opts, brainmap.WithSeed(uint64(seed)))
	}
	if noStore {
		opts = append(opts, brainmap.WithoutStorage())
	}
	return brainmap.NewService(opts...)
}

func main() {
	log := logger.GetLogger()

	flag.Usage = printUsage
	flag.Parse()
	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command, rest := args[0], args[1:]
	log.Debugf("Executing command: %s", command)

	svc, err := createService()
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch command {
	case "generate":
		err = handleGenerate(ctx, svc, rest)
	case "classify":
		err = handleClassify(ctx, svc, rest)
	case "classify-signal":
		err = handleClassifySignal(ctx, svc, rest)
	case "synth":
		err = handleSynth(svc, rest)
	case "references":
		err = handleReferences(svc, rest)
	case "visualize":
		err = handleVisualize(svc, rest)
	case "validate":
		err = handleValidate(svc)
	case "evaluate":
		err = handleEvaluate(ctx, svc)
	case "history":
		err = handleHistory(svc, rest)
	case "info":
		err = handleInfo(svc)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("\n❌ %s failed: %v\n", command, err)
		log.Errorf("%s failed: %v", command, err)
		svc.Close()
		os.Exit(1)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func handleGenerate(ctx context.Context, svc brainmap.Service, args []string) error {
	dir := ""
	if len(args) > 0 {
		dir = args[0]
	}

	fmt.Println("🧠 Generating synthetic EEG dataset...")
	manifest, err := svc.GenerateDataset(ctx, dir)
	if err != nil {
		return err
	}

	fmt.Printf("\n✅ Dataset written to %s\n", manifest.Root)
	fmt.Printf("   References:   %d\n", len(manifest.References))
	fmt.Printf("   Test samples: %d\n", len(manifest.Tests))
	for _, s := range manifest.Tests {
		fmt.Printf("   - %-36s %s\n", s.Name, s.Kind)
	}
	return nil
}

func handleClassify(ctx context.Context, svc brainmap.Service, args []string) error {
	if len(args) < 1 {
		fmt.Println("Usage: eegmap classify <image>")
		os.Exit(1)
	}

	res, err := svc.ClassifyFile(ctx, args[0])
	if err != nil {
		printJSON(brainmap.NewErrorResponse(err))
		return err
	}
	return printJSON(res)
}

func handleClassifySignal(ctx context.Context, svc brainmap.Service, args []string) error {
	if len(args) < 1 {
		fmt.Println("Usage: eegmap classify-signal <signal.wav>")
		os.Exit(1)
	}

	ts, err := signal.ReadWAV(args[0])
	if err != nil {
		return err
	}
	res, err := svc.ClassifySignal(ctx, args[0], ts)
	if err != nil {
		printJSON(brainmap.NewErrorResponse(err))
		return err
	}
	return printJSON(res)
}

func handleSynth(svc brainmap.Service, args []string) error {
	if len(args) < 2 {
		fmt.Println("Usage: eegmap synth <normal|high_delta|missing_alpha|high_beta> <out.wav>")
		os.Exit(1)
	}

	ts, err := svc.Synthesize(args[0])
	if err != nil {
		return err
	}
	if err := signal.WriteWAV(args[1], ts); err != nil {
		return err
	}
	fmt.Printf("✅ Wrote %d samples at %d Hz to %s\n", ts.Len(), ts.SampleRate, args[1])
	return nil
}

func handleReferences(svc brainmap.Service, args []string) error {
	mode := "reload"
	if len(args) > 0 {
		mode = args[0]
	}

	var (
		n   int
		err error
	)
	switch mode {
	case "reload":
		n, err = svc.ReloadReferences()
	case "restore":
		n, err = svc.RestoreReferences()
	default:
		return fmt.Errorf("unknown references mode %q (want reload or restore)", mode)
	}
	if err != nil {
		return err
	}
	fmt.Printf("✅ %d reference patterns loaded\n", n)
	return nil
}

func handleVisualize(svc brainmap.Service, args []string) error {
	if len(args) < 2 {
		fmt.Println("Usage: eegmap visualize <image> <out.png>")
		os.Exit(1)
	}
	if err := svc.Visualize(args[0], args[1]); err != nil {
		return err
	}
	fmt.Printf("✅ Decomposition panel saved to %s\n", args[1])
	return nil
}

func handleValidate(svc brainmap.Service) error {
	issues := svc.Validate()
	if len(issues) == 0 {
		fmt.Println("✅ Dataset validation passed!")
		return nil
	}

	fmt.Println("Validation failed:")
	for _, issue := range issues {
		fmt.Printf("- %s\n", issue)
	}
	return fmt.Errorf("%d issue(s) found", len(issues))
}

func handleEvaluate(ctx context.Context, svc brainmap.Service) error {
	eval, err := svc.Evaluate(ctx)
	if err != nil {
		return err
	}

	for _, r := range eval.Rows {
		if r.Err != "" {
			fmt.Printf("%-36s ERROR %s\n", r.File, r.Err)
			continue
		}
		mark := " "
		if r.Expected != "" && !r.Correct {
			mark = "✗"
		}
		fmt.Printf("%-36s %-8s MSE %10.2f  confidence %6.2f%% %s\n", r.File, r.Label, r.MinMSE, r.Confidence, mark)
	}

	s := eval.Summary
	fmt.Printf("\n📊 %d/%d correct (%.1f%%), %d Normal / %d Abnormal\n", s.Correct, s.Labelled, s.Accuracy, s.Normal, s.Abnormal)
	fmt.Printf("   MSE mean %.2f ± %.2f, range [%.2f, %.2f]\n", s.MeanMSE, s.StdDevMSE, s.MinMSE, s.MaxMSE)
	return nil
}

func handleInfo(svc brainmap.Service) error {
	if _, err := svc.LoadReferences(); err != nil {
		logger.Warnf("References not loaded: %v", err)
	}
	return printJSON(svc.Info())
}

func handleHistory(svc brainmap.Service, args []string) error {
	limit := 20
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid limit: %w", err)
		}
		limit = n
	}

	history, err := svc.History(limit)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Println("📭 No classifications recorded")
		return nil
	}

	for _, h := range history {
		frame := "-"
		if h.MatchedFrame != nil {
			frame = strconv.Itoa(*h.MatchedFrame)
		}
		fmt.Printf("%s  %-36s %-8s %6.2f%%  frame %s\n",
			h.CreatedAt.Format(time.DateTime), h.TestID, h.Label, h.Confidence, frame)
	}
	return nil
}

func printUsage() {
	fmt.Println("eegmap - EEG spectrogram classification CLI")
	fmt.Println("\nGlobal Options:")
	fmt.Println("  --db <path>          Path to SQLite database (env: EEG_DB_PATH, default: brainmap.sqlite3)")
	fmt.Println("  --data <dir>         Dataset root (env: EEG_DATA_DIR, default: data)")
	fmt.Println("  --threshold <mse>    Classification threshold (env: EEG_THRESHOLD, default: 600)")
	fmt.Println("  --seed <n>           Seed for reproducible synthesis")
	fmt.Println("  --no-store           Do not open the database")
	fmt.Println("  --signals            Export generated signals as WAV")
	fmt.Println("\nUsage:")
	fmt.Println("  eegmap [global-options] generate [dir]")
	fmt.Println("  eegmap [global-options] classify <image>")
	fmt.Println("  eegmap [global-options] classify-signal <signal.wav>")
	fmt.Println("  eegmap [global-options] synth <normal|high_delta|missing_alpha|high_beta> <out.wav>")
	fmt.Println("  eegmap [global-options] references [reload|restore]")
	fmt.Println("  eegmap [global-options] visualize <image> <out.png>")
	fmt.Println("  eegmap [global-options] validate")
	fmt.Println("  eegmap [global-options] evaluate")
	fmt.Println("  eegmap [global-options] history [limit]")
	fmt.Println("  eegmap [global-options] info")
	fmt.Println("\nExamples:")
	fmt.Println("  eegmap --seed 42 generate")
	fmt.Println("  eegmap classify data/test_samples/test_abnormal_high_beta.png")
}
