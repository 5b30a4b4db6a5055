package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"
	"golang.org/x/sync/errgroup"

	datapack "github.com/gron1987/entity-array-compressor"
	"github.com/gron1987/entity-array-compressor/encio"
)

// forEachFile runs fn for every path, o.jobs at a time, then writes the reports fn produced to out in path order.
// It stops starting new files after the first failure.
func forEachFile(o options, paths []string, out io.Writer, fn func(path string, report io.Writer) error) error {
	reports := make([]bytes.Buffer, len(paths))

	var g errgroup.Group
	g.SetLimit(o.jobs)
	for i, path := range paths {
		g.Go(func() error {
			if err := fn(path, &reports[i]); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}
	err := g.Wait()

	for i := range reports {
		if _, werr := reports[i].WriteTo(out); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

func encodeFiles(o options, paths []string, stdout io.Writer) error {
	return forEachFile(o, paths, stdout, func(path string, report io.Writer) error {
		n, size, err := encodeFile(path, outputPath(path), &o.config)
		if err != nil {
			return err
		}
		fmt.Fprintf(report, "%s -> %s: %d objects, %d bytes\n", path, outputPath(path), n, size)
		return nil
	})
}

// encodeFile writes the JSON document at in to a new stream at out, returning the number of objects and the stream size.
func encodeFile(in, out string, config *datapack.Config) (objects, size int, err error) {
	data, err := os.ReadFile(in)
	if err != nil {
		return 0, 0, err
	}
	doc, err := parseJSON(data)
	if err != nil {
		return 0, 0, err
	}

	buff := new(encio.Buffer)
	w, err := datapack.NewWriter(buff, config)
	if err != nil {
		return 0, 0, err
	}

	values := []any{doc}
	if arr, ok := doc.([]any); ok {
		values = arr
	}
	for _, v := range values {
		if err := w.WriteObject(v); err != nil {
			return 0, 0, err
		}
	}
	if err := w.Close(); err != nil {
		return 0, 0, err
	}

	size = buff.Len()
	if err := atomic.WriteFile(out, buff); err != nil {
		return 0, 0, err
	}
	return len(values), size, nil
}

// parseJSON decodes a JSON-with-comments document.
// Integral numbers become int64, other numbers float64.
func parseJSON(data []byte) (any, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONC: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return convertNumbers(doc), nil
}

func convertNumbers(v any) any {
	switch v := v.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		f, _ := v.Float64()
		return f
	case []any:
		for i := range v {
			v[i] = convertNumbers(v[i])
		}
		return v
	case map[string]any:
		for k := range v {
			v[k] = convertNumbers(v[k])
		}
		return v
	default:
		return v
	}
}

func decodeFiles(o options, paths []string, stdout io.Writer) error {
	return forEachFile(o, paths, stdout, func(path string, report io.Writer) error {
		return decodeFile(path, report, &o.config)
	})
}

// decodeFile writes every object of the stream at path to out as a JSON line.
func decodeFile(path string, out io.Writer, config *datapack.Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	r, err := datapack.NewReader(f, config)
	if err != nil {
		f.Close()
		return err
	}
	defer r.Close()

	enc := json.NewEncoder(out)
	for {
		more, err := r.HasNext()
		if err != nil || !more {
			return err
		}

		v, err := r.ReadObject(nil)
		if err != nil {
			return err
		}
		if v == nil {
			// a null id as the last byte ends the stream, anywhere else it is a JSON null.
			more, err := r.HasNext()
			if err != nil || !more {
				return err
			}
		}

		if err := enc.Encode(v); err != nil {
			return err
		}
	}
}
