package dataset

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads records from path, dispatching on the file extension.
// Supported: .json (array of objects), .jsonl/.ndjson (one object per line),
// .csv (header row required), .yaml/.yml (sequence of mappings).
func LoadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return DecodeJSON(f)
	case ".jsonl", ".ndjson":
		return DecodeJSONL(f)
	case ".csv":
		return DecodeCSV(f)
	case ".yaml", ".yml":
		return DecodeYAML(f)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", filepath.Ext(path))
	}
}

// DecodeJSON decodes a JSON array of objects.
func DecodeJSON(r io.Reader) ([]Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	records := make([]Record, 0, len(raw))
	for i, fields := range raw {
		records = append(records, Record{ID: assignID(fields, i), Fields: normalizeNumbers(fields)})
	}
	return records, nil
}

// DecodeJSONL decodes newline-delimited JSON objects. Blank lines are skipped;
// a malformed line fails the whole load so silent truncation cannot happen.
func DecodeJSONL(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text))
		dec.UseNumber()
		var fields map[string]any
		if err := dec.Decode(&fields); err != nil {
			return nil, fmt.Errorf("decode jsonl line %d: %w", line, err)
		}
		records = append(records, Record{ID: assignID(fields, len(records)), Fields: normalizeNumbers(fields)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read jsonl: %w", err)
	}
	return records, nil
}

// DecodeCSV decodes CSV with the first row as header. All values are strings;
// the evaluation engine coerces numerics on demand.
func DecodeCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	var records []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		fields := make(map[string]any, len(header))
		for i, name := range header {
			if i < len(row) {
				fields[name] = row[i]
			}
		}
		records = append(records, Record{ID: assignID(fields, len(records)), Fields: fields})
	}
	return records, nil
}

// DecodeYAML decodes a YAML sequence of mappings.
func DecodeYAML(r io.Reader) ([]Record, error) {
	var raw []map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	records := make([]Record, 0, len(raw))
	for i, fields := range raw {
		records = append(records, Record{ID: assignID(fields, i), Fields: fields})
	}
	return records, nil
}

// normalizeNumbers converts json.Number values to float64 so the engine's
// numeric coercion sees one representation regardless of source format.
func normalizeNumbers(fields map[string]any) map[string]any {
	for k, v := range fields {
		if n, ok := v.(json.Number); ok {
			if f, err := n.Float64(); err == nil {
				fields[k] = f
			} else {
				fields[k] = n.String()
			}
		}
	}
	return fields
}
