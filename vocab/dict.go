// Package vocab loads the word and label dictionaries of a sequence tagging
// model and maps text and label names to model ids.
package vocab

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Dict is a bidirectional mapping between string values and integer ids.
type Dict struct {
	ids    map[string]int64
	values map[int64]string
}

// NewDict builds a Dict from values indexed by position.
func NewDict(values []string) *Dict {
	d := &Dict{
		ids:    make(map[string]int64, len(values)),
		values: make(map[int64]string, len(values)),
	}
	for i, v := range values {
		d.add(int64(i), v)
	}
	return d
}

func (d *Dict) add(id int64, value string) {
	d.ids[value] = id
	d.values[id] = value
}

// LoadDict reads a dictionary file with one "id<TAB>value" entry per line.
// Lines without exactly two fields are skipped.
func LoadDict(path string) (*Dict, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dict: %w", err)
	}
	defer func() { _ = f.Close() }()

	d, err := ReadDict(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return d, nil
}

// ReadDict parses dictionary entries from r.
func ReadDict(r io.Reader) (*Dict, error) {
	d := &Dict{
		ids:    make(map[string]int64),
		values: make(map[int64]string),
	}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Split(strings.TrimRight(scanner.Text(), "\r\n"), "\t")
		if len(fields) != 2 {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid id %q", line, fields[0])
		}
		d.add(id, fields[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan dict: %w", err)
	}

	return d, nil
}

// ID returns the id of value.
func (d *Dict) ID(value string) (int64, bool) {
	id, ok := d.ids[value]
	return id, ok
}

// Value returns the value stored under id.
func (d *Dict) Value(id int64) (string, bool) {
	v, ok := d.values[id]
	return v, ok
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	return len(d.values)
}
