package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/taxmitra/taxmitra/internal/analytics"
	"github.com/taxmitra/taxmitra/internal/logger"
	"github.com/taxmitra/taxmitra/internal/pipeline"
	"github.com/taxmitra/taxmitra/internal/receipts"
	"github.com/taxmitra/taxmitra/internal/store"
	"github.com/taxmitra/taxmitra/internal/tax"
)

const (
	defaultDataFile  = "data/transactions.json"
	defaultExportDir = "exports"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "ingest":
		runIngest(log)
	case "ingest-text":
		runIngestText(log)
	case "upload":
		runUpload(log)
	case "summary":
		runSummary(log)
	case "monthly":
		runMonthly(log)
	case "advice":
		runAdvice(log)
	case "export":
		runExport(log)
	case "export-bq":
		runExportBQ(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("TaxMitra CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  ingest       Parse and ingest a receipt from GCS")
	fmt.Println("  ingest-text  Ingest already-extracted receipt text from a file")
	fmt.Println("  upload       Upload a receipt file to GCS")
	fmt.Println("  summary      Show the tax summary for all transactions")
	fmt.Println("  monthly      Show the rollup for a single month")
	fmt.Println("  advice       Show tax advice and recommendations")
	fmt.Println("  export       Write a complete tax data export file")
	fmt.Println("  export-bq    Stream transactions to the BigQuery reporting table")
	fmt.Println("  help         Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func newStore(dataFile, exportDir string, log zerolog.Logger) *store.FileStore {
	return store.New(dataFile, exportDir, log)
}

func runIngest(log zerolog.Logger) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	gcsURI := fs.String("gcs-uri", "", "GCS URI of the receipt (e.g. gs://bucket/receipt.pdf)")
	dataFile := fs.String("data-file", defaultDataFile, "Path to the transactions data file")
	fs.Parse(os.Args[2:])

	if *gcsURI == "" {
		log.Fatal().Msg("Error: --gcs-uri is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().Str("gcs_uri", *gcsURI).Msg("Starting ingestion")

	txStore := newStore(*dataFile, defaultExportDir, log)
	ingestor := pipeline.NewIngestor(receipts.NewService(""), pipeline.NewGeminiParser(), txStore, log)

	t, err := ingestor.IngestReceiptFromGCS(ctx, *gcsURI)
	if err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}

	fmt.Printf("Ingested transaction %s: %s %s (%s)\n", t.ID, t.Type, tax.FormatCurrency(t.Amount), t.Category)
}

func runIngestText(log zerolog.Logger) {
	fs := flag.NewFlagSet("ingest-text", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to a text file with extracted receipt contents")
	dataFile := fs.String("data-file", defaultDataFile, "Path to the transactions data file")
	fs.Parse(os.Args[2:])

	if *filePath == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	text, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read text file")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	txStore := newStore(*dataFile, defaultExportDir, log)
	ingestor := pipeline.NewIngestor(receipts.NewService(""), pipeline.NewGeminiParser(), txStore, log)

	t, err := ingestor.IngestExtractedText(ctx, string(text))
	if err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}

	fmt.Printf("Ingested transaction %s: %s %s (%s)\n", t.ID, t.Type, tax.FormatCurrency(t.Amount), t.Category)
}

func runUpload(log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", "", "GCS bucket name")
	objectName := fs.String("object", "", "GCS object name (defaults to filename)")
	filePath := fs.String("file", "", "Path to local receipt file")
	fs.Parse(os.Args[2:])

	if *bucketName == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH")
	}

	if *objectName == "" {
		*objectName = filepath.Base(*filePath)
	}

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("bucket", *bucketName).
		Str("object", *objectName).
		Str("file", *filePath).
		Msg("Uploading file to GCS")

	uri, err := receipts.NewService(*bucketName).UploadFile(ctx, *objectName, *filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to %s\n", *filePath, uri)
}

func runSummary(log zerolog.Logger) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	dataFile := fs.String("data-file", defaultDataFile, "Path to the transactions data file")
	fs.Parse(os.Args[2:])

	txStore := newStore(*dataFile, defaultExportDir, log)
	txs, err := txStore.LoadAll(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load transactions")
	}

	s := tax.Summarize(txs)

	fmt.Println("\n=== Tax Summary ===")
	fmt.Printf("Total income:        %s (%d transactions)\n", tax.FormatCurrency(s.TotalIncome), s.IncomeCount)
	fmt.Printf("Total expenses:      %s (%d transactions)\n", tax.FormatCurrency(s.TotalExpenses), s.ExpenseCount)
	fmt.Printf("Calculation method:  %s\n", s.CalculationMethod)
	fmt.Printf("Taxable income:      %s\n", tax.FormatCurrency(s.TaxableIncome))
	fmt.Printf("Income tax:          %s\n", tax.FormatCurrency(s.IncomeTax))
	fmt.Printf("GST liability:       %s\n", tax.FormatCurrency(s.GSTLiability))
	fmt.Printf("Total tax liability: %s\n", tax.FormatCurrency(s.TotalTaxLiability))
	fmt.Printf("Effective tax rate:  %.1f%%\n", s.EffectiveTaxRate)
	fmt.Printf("Net profit:          %s (%.1f%% margin)\n", tax.FormatCurrency(s.NetProfit), s.ProfitMargin)

	if len(s.AdvanceTaxSchedule) > 0 {
		fmt.Println("\n=== Advance Tax Schedule ===")
		for _, inst := range s.AdvanceTaxSchedule {
			marker := " "
			if inst.IsOverdue {
				marker = "!"
			}
			fmt.Printf("%s %s  %s (%s)\n", marker, inst.DueDate, tax.FormatCurrency(inst.InstallmentAmount), inst.Description)
		}
	}
	fmt.Println()
}

func runMonthly(log zerolog.Logger) {
	fs := flag.NewFlagSet("monthly", flag.ExitOnError)
	dataFile := fs.String("data-file", defaultDataFile, "Path to the transactions data file")
	year := fs.Int("year", time.Now().Year(), "Calendar year")
	month := fs.Int("month", int(time.Now().Month()), "Calendar month (1-12)")
	fs.Parse(os.Args[2:])

	if *month < 1 || *month > 12 {
		log.Fatal().Msg("Error: --month must be between 1 and 12")
	}

	txStore := newStore(*dataFile, defaultExportDir, log)
	txs, err := txStore.LoadAll(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load transactions")
	}

	m := tax.SummarizeMonth(txs, *year, time.Month(*month))

	fmt.Printf("\n=== %s ===\n", m.Month)
	fmt.Printf("Income:       %s\n", tax.FormatCurrency(m.TotalIncome))
	fmt.Printf("Expenses:     %s\n", tax.FormatCurrency(m.TotalExpenses))
	fmt.Printf("Net profit:   %s\n", tax.FormatCurrency(m.NetProfit))
	fmt.Printf("Transactions: %d\n", m.TransactionCount)
	for i, t := range m.Transactions {
		fmt.Printf("\n%d. %s\n", i+1, t.Description)
		fmt.Printf("   Date:     %s\n", t.Date)
		fmt.Printf("   Type:     %s\n", t.Type)
		fmt.Printf("   Amount:   %s\n", tax.FormatCurrency(t.Amount))
		fmt.Printf("   Category: %s\n", t.Category)
	}
	fmt.Println()
}

func runAdvice(log zerolog.Logger) {
	fs := flag.NewFlagSet("advice", flag.ExitOnError)
	dataFile := fs.String("data-file", defaultDataFile, "Path to the transactions data file")
	fs.Parse(os.Args[2:])

	txStore := newStore(*dataFile, defaultExportDir, log)
	txs, err := txStore.LoadAll(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load transactions")
	}

	s := tax.Summarize(txs)

	advice := tax.Advice(s)
	fmt.Println("\n=== Tax Advice ===")
	if len(advice) == 0 {
		fmt.Println("No advice for the current transaction data.")
	}
	for _, a := range advice {
		fmt.Printf("- %s\n", a)
	}

	recs := tax.Recommendations(s)
	fmt.Println("\n=== Recommendations ===")
	if len(recs) == 0 {
		fmt.Println("No recommendations for the current transaction data.")
	}
	for _, r := range recs {
		fmt.Printf("- %s\n", r)
	}
	fmt.Println()
}

func runExport(log zerolog.Logger) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	dataFile := fs.String("data-file", defaultDataFile, "Path to the transactions data file")
	exportDir := fs.String("export-dir", defaultExportDir, "Directory for export files")
	fs.Parse(os.Args[2:])

	txStore := newStore(*dataFile, *exportDir, log)

	path, err := txStore.Export(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}

	fmt.Printf("Export written to %s\n", path)
}

func runExportBQ(log zerolog.Logger) {
	fs := flag.NewFlagSet("export-bq", flag.ExitOnError)
	dataFile := fs.String("data-file", defaultDataFile, "Path to the transactions data file")
	projectID := fs.String("project", os.Getenv("GCP_PROJECT"), "GCP project ID (or set GCP_PROJECT env)")
	datasetID := fs.String("dataset", analytics.DefaultDatasetID, "BigQuery dataset ID")
	tableID := fs.String("table", analytics.DefaultTableID, "BigQuery table ID")
	fs.Parse(os.Args[2:])

	if *projectID == "" {
		log.Fatal().Msg("Error: --project is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	txStore := newStore(*dataFile, defaultExportDir, log)
	txs, err := txStore.LoadAll(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load transactions")
	}

	sink := analytics.NewSink(*projectID, *datasetID, *tableID)
	if err := sink.ExportTransactions(ctx, txs); err != nil {
		log.Fatal().Err(err).Msg("BigQuery export failed")
	}

	count, err := sink.CountExported(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to count exported rows")
	}

	fmt.Printf("Exported %d transactions; table now holds %d rows\n", len(txs), count)
}
