package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperjump/fortytech/internal/cli"
	"github.com/hyperjump/fortytech/internal/models"
	"github.com/hyperjump/fortytech/internal/moviecli"
	"github.com/hyperjump/fortytech/internal/rag"
	"github.com/hyperjump/fortytech/internal/reference"
	"github.com/hyperjump/fortytech/internal/server"
	"github.com/hyperjump/fortytech/internal/sp500"
	"github.com/hyperjump/fortytech/internal/stocks"
	"github.com/hyperjump/fortytech/internal/storage"
	"github.com/hyperjump/fortytech/internal/workouts"
	"go.uber.org/zap"
)

func parseFormat(s string) cli.OutputFormat {
	format, err := cli.ParseFormat(s)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return format
}

func runMovies() {
	fs := flag.NewFlagSet("movies", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	dbPath := fs.String("db", "", "movies database path (default: storage.movies_db_path)")
	_ = fs.Parse(os.Args[2:])

	cfg, _, logger := mustSetup(*configPath, false)
	defer logger.Sync()
	path := cfg.Storage.MoviesDBPath
	if *dbPath != "" {
		path = *dbPath
	}
	store, err := storage.NewSQLiteMovieStore(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open movies database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()
	if err := moviecli.Run(context.Background(), store, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Movies failed: %v\n", err)
		os.Exit(1)
	}
}

// buildInput assembles a pipeline input from command-line values, reading filePath
// for file source types.
func buildInput(sourceType string, urls []string, filePath, text string) (rag.Input, error) {
	t, err := rag.ParseSourceType(sourceType)
	if err != nil {
		return rag.Input{}, err
	}
	in := rag.Input{Type: t, URLs: urls, Text: text}
	if !t.IsFile() {
		return in, nil
	}
	if filePath == "" {
		return rag.Input{}, fmt.Errorf("%w: -file is required for %s", rag.ErrEmptyInput, t)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return rag.Input{}, fmt.Errorf("read %s: %w", filePath, err)
	}
	in.File = &rag.Upload{Name: filepath.Base(filePath), Data: data}
	return in, nil
}

// answerLoop answers each non-blank line of in against store until in is exhausted.
// Failed questions are reported to errOut and the loop continues.
func answerLoop(ctx context.Context, p *rag.Pipeline, store *rag.VectorStore, in io.Reader, out, errOut io.Writer, format cli.OutputFormat) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		answer, err := p.Answer(ctx, store, question)
		if err != nil {
			fmt.Fprintf(errOut, "Answer failed: %v\n", err)
			continue
		}
		if err := cli.WriteAnswer(out, answer, format); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func runRAG() {
	fs := flag.NewFlagSet("rag", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	sourceType := fs.String("type", string(rag.SourceText), "input type: Web, PDF, DOCX, Text or TXT")
	filePath := fs.String("file", "", "file to upload for PDF, DOCX and TXT inputs")
	text := fs.String("text", "", "text for the Text input type")
	outputFormat := fs.String("output", "text", "output format: text or json")
	var urls stringList
	fs.Var(&urls, "url", "web page URL for the Web input type (repeatable)")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	cfg, _, logger := mustSetup(*configPath, *debug)
	defer logger.Sync()

	in, err := buildInput(*sourceType, urls.values, *filePath, *text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid input: %v\n", err)
		os.Exit(1)
	}
	pipeline, embedder, err := newPipeline(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer embedder.Close()

	ctx := context.Background()
	store, err := pipeline.Process(ctx, in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Processing failed: %v\n", err)
		os.Exit(1)
	}
	resp := models.ProcessResponse{SourceType: string(store.Source), Chunks: store.Len(), Dimensions: store.Dimensions()}
	if err := cli.WriteProcessResult(os.Stdout, resp, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, "Ask a question per line (Ctrl-D to finish):")
	if err := answerLoop(ctx, pipeline, store, os.Stdin, os.Stdout, os.Stderr, format); err != nil {
		fmt.Fprintf(os.Stderr, "Read failed: %v\n", err)
		os.Exit(1)
	}
}

func runWorkouts() {
	fs := flag.NewFlagSet("workouts", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	dataPath := fs.String("data", "", "workout history CSV or XLSX (default: workouts.data_path)")
	showOptions := fs.Bool("options", false, "print the filter options instead of the report")
	outputFormat := fs.String("output", "text", "output format: text or json")
	var years, locations, classes stringList
	fs.Var(&years, "year", "year to include (repeatable; default all)")
	fs.Var(&locations, "location", "location to include (repeatable; default all)")
	fs.Var(&classes, "class", "class to include (repeatable; default all non-excluded)")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	cfg, _, logger := mustSetup(*configPath, false)
	defer logger.Sync()
	path := cfg.Workouts.DataPath
	if *dataPath != "" {
		path = *dataPath
	}
	d, err := workouts.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load dataset: %v\n", err)
		os.Exit(1)
	}
	if *showOptions {
		_ = cli.WriteJSON(os.Stdout, d.Options(cfg.Workouts.ExcludedClasses))
		return
	}
	sel := workouts.Selection{Years: years.Selection(), Locations: locations.Selection(), Classes: classes.Selection()}
	report, err := d.Report(sel, cfg.Workouts.ExcludedClasses)
	if errors.Is(err, workouts.ErrNoRows) {
		fmt.Println(workouts.NoDataMessage)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Report failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteWorkoutReport(os.Stdout, report, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runStock() {
	fs := flag.NewFlagSet("stock", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	start := fs.String("start", "", "start date YYYY-MM-DD (default: stocks.start)")
	end := fs.String("end", "", "end date YYYY-MM-DD, exclusive (default: stocks.end)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	cfg, _, logger := mustSetup(*configPath, false)
	defer logger.Sync()
	symbol := cfg.Stocks.Symbol
	if fs.NArg() > 0 {
		symbol = strings.ToUpper(fs.Arg(0))
	}
	if *start == "" {
		*start = cfg.Stocks.Start
	}
	if *end == "" {
		*end = cfg.Stocks.End
	}
	from, to, err := stocks.ParseRange(*start, *end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid range: %v\n", err)
		os.Exit(1)
	}
	client := stocks.NewClient(cfg.Stocks.BaseURL, stocks.WithLogger(logger))
	h, err := client.History(context.Background(), symbol, from, to)
	if errors.Is(err, stocks.ErrNoData) {
		fmt.Println(stocks.NoDataMessage)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "History failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteHistory(os.Stdout, h, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func printSP500Usage() {
	fmt.Println("Usage: fortytech sp500 <sectors|companies|prices|download> [flags]")
	fmt.Println("  fortytech sp500 sectors                      List GICS sectors")
	fmt.Println("  fortytech sp500 companies [-sector S] [-q Q] [-fuzzy]  Filter or search companies")
	fmt.Println("  fortytech sp500 prices [-sector S] [-n N]    Year-to-date closes of the first N companies")
	fmt.Println("  fortytech sp500 download [-sector S] [-format csv|xlsx] [-out FILE]")
}

func runSP500() {
	if len(os.Args) < 3 {
		printSP500Usage()
		os.Exit(1)
	}
	sub := os.Args[2]
	fs := flag.NewFlagSet("sp500", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	query := fs.String("q", "", "search companies by symbol or name")
	limit := fs.Int("limit", 25, "maximum search results")
	fuzzy := fs.Bool("fuzzy", false, "retry a search without hits allowing typos")
	n := fs.Int("n", 1, "number of companies for prices")
	fileFormat := fs.String("format", "csv", "download format: csv or xlsx")
	outPath := fs.String("out", "", "download destination (default: SP500.csv or SP500.xlsx)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	var sectors stringList
	fs.Var(&sectors, "sector", "GICS sector to include (repeatable; default all)")
	_ = fs.Parse(os.Args[3:])
	format := parseFormat(*outputFormat)

	cfg, _, logger := mustSetup(*configPath, false)
	defer logger.Sync()
	stockClient := stocks.NewClient(cfg.Stocks.BaseURL, stocks.WithLogger(logger))
	svc := sp500.NewService(cfg.SP500, stockClient, sp500.WithLogger(logger))
	defer svc.Close()
	ctx := context.Background()

	var err error
	switch sub {
	case "sectors":
		var list []string
		if list, err = svc.Sectors(ctx); err == nil {
			if format == cli.OutputJSON {
				err = cli.WriteJSON(os.Stdout, map[string]interface{}{"sectors": list})
			} else {
				fmt.Println(strings.Join(list, "\n"))
			}
		}
	case "companies":
		if strings.TrimSpace(*query) != "" {
			var res *sp500.SearchResult
			if res, err = svc.Search(ctx, *query, sectors.Selection(), *limit, *fuzzy); err == nil {
				err = cli.WriteCompanies(os.Stdout, res.Table, res.Suggestion, format)
			}
		} else if t, ferr := svc.Filter(ctx, sectors.Selection()); ferr == nil {
			err = cli.WriteCompanies(os.Stdout, t, "", format)
		} else {
			err = ferr
		}
	case "prices":
		var prices []sp500.SymbolPrices
		prices, err = svc.Prices(ctx, sectors.Selection(), *n)
		if errors.Is(err, sp500.ErrNoSectors) {
			fmt.Println(sp500.NoSectorsMessage)
			return
		}
		if err == nil {
			err = cli.WritePrices(os.Stdout, prices, format)
		}
	case "download":
		err = downloadSP500(ctx, svc, sectors.Selection(), *fileFormat, *outPath)
	default:
		fmt.Printf("Unknown sp500 subcommand: %s\n", sub)
		printSP500Usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "sp500 %s failed: %v\n", sub, err)
		os.Exit(1)
	}
}

func downloadSP500(ctx context.Context, svc *sp500.Service, sectors []string, format, outPath string) error {
	name, err := sp500.FileName(format)
	if err != nil {
		return err
	}
	if outPath == "" {
		outPath = name
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := svc.Download(ctx, f, sectors, format); err != nil {
		_ = f.Close()
		_ = os.Remove(outPath)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", outPath)
	return nil
}

func runReference() {
	fs := flag.NewFlagSet("reference", flag.ExitOnError)
	outputFormat := fs.String("output", "text", "output format: text or json")
	stream := fs.Bool("stream", false, "stream the basics text word by word")
	delay := fs.Duration("delay", reference.DefaultStreamDelay, "pause between streamed words")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	if *stream {
		err := reference.StreamWords(context.Background(), reference.StreamText, *delay, func(word string) error {
			_, err := io.WriteString(os.Stdout, word)
			return err
		})
		fmt.Println()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Stream failed: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if fs.NArg() < 1 {
		fmt.Printf("Usage: fortytech reference [flags] <%s>\n", strings.Join(reference.Names(), "|"))
		os.Exit(1)
	}
	page, err := reference.Get(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if err := cli.WritePage(os.Stdout, page, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8501", "server URL (empty = report local state)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	var status *models.StatusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = res
	} else {
		cfg, _, logger := mustSetup(*configPath, false)
		defer logger.Sync()
		components := initializeComponents(cfg, logger)
		defer components.Close()
		if _, err := components.Workouts.Dataset(); err != nil {
			logger.Warn("workout dataset unavailable", zap.Error(err))
		}
		status = server.NewServer(cfg, components.Deps(), logger).Status()
	}
	if err := cli.WriteStatus(os.Stdout, status, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*models.StatusResponse, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(strings.TrimSuffix(serverURL, "/") + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s models.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}
