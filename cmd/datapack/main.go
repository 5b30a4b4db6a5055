// datapack converts JSON documents to and from datapack streams.
//
// Usage:
//
//	datapack encode [flags] <file.json>...   Write <file>.dp next to every input
//	datapack decode [flags] <file.dp>...     Print the objects of every stream as JSON lines
//
// Inputs may be JSON with comments and trailing commas. A top-level array is written as one object per element,
// anything else as a single object.
//
// Flags:
//
//	-c, --cache-size    Strings remembered for back-references (default 1024)
//	    --cache-kind    Cache implementation: auto, list, ringbuffer or ringtree
//	-j, --jobs          Files processed in parallel (default: number of CPUs)
//	    --config        JSON-with-comments file holding defaults for the flags above
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/tailscale/hujson"

	datapack "github.com/gron1987/entity-array-compressor"
	"github.com/gron1987/entity-array-compressor/cache"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command in args and returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		printUsage(stdout)
		return 0
	}

	var cmd func(o options, paths []string, stdout io.Writer) error
	switch args[0] {
	case "encode":
		cmd = encodeFiles
	case "decode":
		cmd = decodeFiles
	default:
		fmt.Fprintln(stderr, "error: unknown command:", args[0])
		printUsage(stderr)
		return 1
	}

	o, paths, err := parseOptions(args[0], args[1:])
	if errors.Is(err, flag.ErrHelp) {
		printUsage(stdout)
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	if len(paths) == 0 {
		fmt.Fprintln(stderr, "error: no input files")
		return 1
	}

	if err := cmd(o, paths, stdout); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage:
  datapack encode [flags] <file.json>...   Write <file>.dp next to every input
  datapack decode [flags] <file.dp>...     Print the objects of every stream as JSON lines

Flags:
  -c, --cache-size int     Strings remembered for back-references (default 1024)
      --cache-kind string  Cache implementation: auto, list, ringbuffer or ringtree
  -j, --jobs int           Files processed in parallel (default: number of CPUs)
      --config string      JSON-with-comments file holding defaults for the flags above
`)
}

// options are the settings shared by all commands.
type options struct {
	config datapack.Config
	jobs   int
}

// fileConfig is the format of the --config file.
type fileConfig struct {
	CacheSize int    `json:"cache_size"`
	CacheKind string `json:"cache_kind"`
	Jobs      int    `json:"jobs"`
}

func parseOptions(name string, args []string) (options, []string, error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	cacheSize := flags.IntP("cache-size", "c", datapack.DefaultCacheSize, "")
	cacheKind := flags.String("cache-kind", cache.KindAuto.String(), "")
	jobs := flags.IntP("jobs", "j", runtime.NumCPU(), "")
	configPath := flags.String("config", "", "")

	if err := flags.Parse(args); err != nil {
		return options{}, nil, err
	}

	if *configPath != "" {
		fc, err := loadConfig(*configPath)
		if err != nil {
			return options{}, nil, err
		}
		if fc.CacheSize != 0 && !flags.Changed("cache-size") {
			*cacheSize = fc.CacheSize
		}
		if fc.CacheKind != "" && !flags.Changed("cache-kind") {
			*cacheKind = fc.CacheKind
		}
		if fc.Jobs != 0 && !flags.Changed("jobs") {
			*jobs = fc.Jobs
		}
	}

	kind, err := cache.ParseKind(*cacheKind)
	if err != nil {
		return options{}, nil, err
	}
	if *cacheSize <= 0 || *cacheSize > cache.MaxCacheSize {
		return options{}, nil, fmt.Errorf("cache size must be between 1 and %d, got %d", cache.MaxCacheSize, *cacheSize)
	}
	if *jobs <= 0 {
		return options{}, nil, fmt.Errorf("jobs must be positive, got %d", *jobs)
	}

	return options{
		config: datapack.Config{CacheSize: *cacheSize, CacheKind: kind},
		jobs:   *jobs,
	}, flags.Args(), nil
}

func loadConfig(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("reading config: %w", err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("config %s: invalid JSONC: %w", path, err)
	}

	var fc fileConfig
	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return fileConfig{}, fmt.Errorf("config %s: invalid JSON: %w", path, err)
	}
	return fc, nil
}

// outputPath returns the stream path for a JSON input.
func outputPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".dp"
}
