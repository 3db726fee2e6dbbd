// Command mtbridge runs translations and language detection in-process,
// using the same environment configuration as the shared library.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZaguanLabs/mtbridge"
	"github.com/ZaguanLabs/mtbridge/internal/config"
	"github.com/ZaguanLabs/mtbridge/internal/host"
	"github.com/ZaguanLabs/mtbridge/internal/logging"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = mtbridge.Version
	commit    = mtbridge.GitCommit
	buildDate = mtbridge.BuildDate
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("mtbridge", flag.ContinueOnError)
	fs.SetOutput(stderr)

	modelPath := fs.String("model", "", "Model configuration file (YAML)")
	key := fs.String("key", "", "Cache key for the model (default: source-target pair)")
	pivotPath := fs.String("pivot", "", "Second model configuration; translate through -model, then this")
	detect := fs.Bool("detect", false, "Detect the language of each input line")
	hint := fs.String("hint", "", "Language hint for -detect")
	jsonOutput := fs.Bool("json", false, "Output result as JSON")
	quiet := fs.Bool("quiet", false, "Suppress progress output")
	purge := fs.Bool("purge-cache", false, "Delete all shared (Redis) result cache entries and exit")
	showVersion := fs.Bool("version", false, "Show version")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintf(stdout, "%s %s\n", mtbridge.Name, version)
		if commit != "unknown" && commit != "" {
			fmt.Fprintf(stdout, "  commit:  %s\n", commit)
		}
		if buildDate != "unknown" && buildDate != "" {
			fmt.Fprintf(stdout, "  built:   %s\n", buildDate)
		}
		return nil
	}

	if *purge {
		return runPurge(stdout)
	}

	if !*detect && *modelPath == "" {
		fs.Usage()
		return fmt.Errorf("-model is required")
	}

	lines, inputName, err := readLines(fs, stdin)
	if err != nil {
		return err
	}

	h, err := newHost()
	if err != nil {
		return err
	}
	defer h.Close()

	if *detect {
		return runDetect(h.Service, lines, *hint, stdout, *jsonOutput)
	}

	ctx := context.Background()

	firstKey, err := loadModel(ctx, h.Service, *modelPath, *key)
	if err != nil {
		return err
	}

	secondKey := ""
	if *pivotPath != "" {
		secondKey, err = loadModel(ctx, h.Service, *pivotPath, "")
		if err != nil {
			return err
		}
	}

	if !*quiet {
		route := firstKey
		if secondKey != "" {
			route += " -> " + secondKey
		}
		fmt.Fprintf(stderr, "Translating %s (%d lines) with %s...\n", inputName, len(lines), route)
	}

	start := time.Now()
	var out []string
	if secondKey != "" {
		out, err = h.Service.Pivot(ctx, lines, firstKey, secondKey)
	} else {
		out, err = h.Service.Translate(ctx, lines, firstKey)
	}
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}
	elapsed := time.Since(start)

	if *jsonOutput {
		return outputJSON(stdout, JSONOutput{
			Models:    []string{firstKey, secondKey},
			Inputs:    lines,
			Outputs:   out,
			ElapsedMs: elapsed.Milliseconds(),
		})
	}

	for _, line := range out {
		fmt.Fprintln(stdout, line)
	}

	if !*quiet {
		fmt.Fprintf(stderr, "\nDone in %v\n", elapsed.Round(time.Millisecond))
	}
	return nil
}

func runPurge(stdout io.Writer) error {
	h, err := newHost()
	if err != nil {
		return err
	}
	defer h.Close()

	n, err := h.PurgeResultCache(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Purged %d cached results\n", n)
	return nil
}

func newHost() (*host.Host, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}

	return host.New(cfg, logger)
}

// readLines reads the input file named by the first argument, or stdin.
func readLines(fs *flag.FlagSet, stdin io.Reader) ([]string, string, error) {
	r := stdin
	name := "stdin"

	if fs.NArg() > 0 {
		path := fs.Arg(0)
		f, err := os.Open(path) // #nosec G304 - CLI tool reads user-specified files
		if err != nil {
			return nil, "", fmt.Errorf("reading file: %w", err)
		}
		defer f.Close()
		r = f
		name = filepath.Base(path)
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", name, err)
	}
	return lines, name, nil
}

// loadModel loads the config at path under key, or under its language pair
// when key is empty.
func loadModel(ctx context.Context, svc *mtbridge.Service, path, key string) (string, error) {
	blob, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return "", fmt.Errorf("reading model config: %w", err)
	}

	if key == "" {
		cfg, err := mtbridge.ParseModelConfig(blob, false)
		if err != nil {
			return "", err
		}
		key = cfg.PairName()
		if key == "" {
			key = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
	}

	if err := svc.LoadModel(ctx, blob, key); err != nil {
		return "", err
	}
	return key, nil
}

// DetectionOutput is one line of -detect output.
type DetectionOutput struct {
	Text       string `json:"text"`
	Language   string `json:"language"`
	Reliable   bool   `json:"reliable"`
	Confidence int    `json:"confidence"`
}

func runDetect(svc *mtbridge.Service, lines []string, hint string, stdout io.Writer, jsonOut bool) error {
	results := make([]DetectionOutput, 0, len(lines))
	for _, line := range lines {
		res, err := svc.Detect(line, hint)
		if err != nil {
			return fmt.Errorf("detection failed: %w", err)
		}
		results = append(results, DetectionOutput{
			Text:       line,
			Language:   res.Language,
			Reliable:   res.Reliable,
			Confidence: res.Confidence,
		})
	}

	if jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, r := range results {
		mark := ""
		if !r.Reliable {
			mark = "?"
		}
		fmt.Fprintf(stdout, "%s%s\t%d\t%s\n", r.Language, mark, r.Confidence, r.Text)
	}
	return nil
}

// JSONOutput represents the JSON output format.
type JSONOutput struct {
	Models    []string `json:"models"`
	Inputs    []string `json:"inputs"`
	Outputs   []string `json:"outputs"`
	ElapsedMs int64    `json:"elapsed_ms"`
}

func outputJSON(w io.Writer, out JSONOutput) error {
	models := out.Models[:0]
	for _, m := range out.Models {
		if m != "" {
			models = append(models, m)
		}
	}
	out.Models = models

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
