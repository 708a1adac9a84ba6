package io

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/williampepple1/trip-extractor/internal/config"
)

// SourceReader collects the pages a batch run extracts from: saved HTML
// files or list page URLs
type SourceReader struct {
	Config *config.IOConfig
}

// NewSourceReader creates a new source reader
func NewSourceReader(config *config.IOConfig) *SourceReader {
	return &SourceReader{
		Config: config,
	}
}

// ReadFromFile reads sources from a file, one per line. Blank lines and
// lines starting with # are skipped.
func (r *SourceReader) ReadFromFile(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open source list: %w", err)
	}
	defer file.Close()

	var sources []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		source := strings.TrimSpace(scanner.Text())
		if source != "" && !strings.HasPrefix(source, "#") {
			sources = append(sources, source)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read source list: %w", err)
	}

	return sources, nil
}

// GetSources returns args followed by the sources of the configured input
// file, without duplicates
func (r *SourceReader) GetSources(args []string) ([]string, error) {
	sources := append([]string(nil), args...)
	if r.Config.InputFile != "" {
		fromFile, err := r.ReadFromFile(r.Config.InputFile)
		if err != nil {
			return nil, err
		}
		sources = append(sources, fromFile...)
	}

	seen := make(map[string]bool, len(sources))
	out := sources[:0]
	for _, s := range sources {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, ErrNoSources
	}
	return out, nil
}
