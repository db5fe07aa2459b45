// Package source discovers and parses meter export files into daily readings.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/theirongolddev/kburn/internal/model"
)

var patType = []byte(`"type"`)

// ParseResult holds the output of parsing a single export file.
type ParseResult struct {
	Samples     []model.UsageSample
	ParseErrors int
	Err         error
}

// ParseFile reads an export file and produces deduplicated readings sorted
// by day. A later line for the same day replaces an earlier one (meters
// re-export corrected totals). Malformed lines are counted, not fatal.
//
// JSONL lines carry {"day":N,"kwh":X}; lines with a "type" other than
// "reading" are skipped. CSV lines are "day,kwh" with an optional header,
// recognised by a non-numeric first column.
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	byDay := make(map[int]float64)
	var parseErrors int

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	first := true
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		var (
			s   model.UsageSample
			ok  bool
			err error
		)
		switch df.Format {
		case FormatCSV:
			if first && isCSVHeader(line) {
				first = false
				continue
			}
			s, err = parseCSVLine(line)
			ok = err == nil
		default:
			s, ok, err = parseJSONLine(line)
		}
		first = false

		if err != nil {
			parseErrors++
			continue
		}
		if !ok {
			continue
		}
		byDay[s.Day] = s.KWh
	}
	if err := scanner.Err(); err != nil {
		return ParseResult{ParseErrors: parseErrors, Err: err}
	}

	return ParseResult{Samples: sortedSamples(byDay), ParseErrors: parseErrors}
}

// parseJSONLine returns ok=false for entries that are not readings.
func parseJSONLine(line []byte) (model.UsageSample, bool, error) {
	var raw RawReading
	if err := json.Unmarshal(line, &raw); err != nil {
		return model.UsageSample{}, false, err
	}
	if bytes.Contains(line, patType) && raw.Type != "reading" {
		return model.UsageSample{}, false, nil
	}
	if raw.Day == nil || raw.KWh == nil {
		return model.UsageSample{}, false, fmt.Errorf("reading missing day or kwh")
	}
	s := model.UsageSample{Day: *raw.Day, KWh: *raw.KWh}
	return s, true, checkSample(s)
}

func parseCSVLine(line []byte) (model.UsageSample, error) {
	dayField, kwhField, found := bytes.Cut(line, []byte(","))
	if !found {
		return model.UsageSample{}, fmt.Errorf("expected day,kwh")
	}
	day, err := strconv.Atoi(string(bytes.TrimSpace(dayField)))
	if err != nil {
		return model.UsageSample{}, err
	}
	kwh, err := strconv.ParseFloat(string(bytes.TrimSpace(kwhField)), 64)
	if err != nil {
		return model.UsageSample{}, err
	}
	s := model.UsageSample{Day: day, KWh: kwh}
	return s, checkSample(s)
}

// isCSVHeader reports whether the day column is not a number.
func isCSVHeader(line []byte) bool {
	dayField, _, _ := bytes.Cut(line, []byte(","))
	_, err := strconv.Atoi(string(bytes.TrimSpace(dayField)))
	return err != nil
}

func checkSample(s model.UsageSample) error {
	if s.Day <= 0 {
		return fmt.Errorf("day %d must be positive", s.Day)
	}
	if math.IsNaN(s.KWh) || math.IsInf(s.KWh, 0) || s.KWh < 0 {
		return fmt.Errorf("kwh %g must be a non-negative number", s.KWh)
	}
	return nil
}

func sortedSamples(byDay map[int]float64) []model.UsageSample {
	samples := make([]model.UsageSample, 0, len(byDay))
	for day, kwh := range byDay {
		samples = append(samples, model.UsageSample{Day: day, KWh: kwh})
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].Day < samples[j].Day })
	return samples
}

// Merge combines results from several files. Files later in the slice win
// for duplicate days.
func Merge(results []ParseResult) ([]model.UsageSample, int) {
	byDay := make(map[int]float64)
	var parseErrors int
	for _, r := range results {
		parseErrors += r.ParseErrors
		for _, s := range r.Samples {
			byDay[s.Day] = s.KWh
		}
	}
	return sortedSamples(byDay), parseErrors
}
