//go:build ignore

// Process UD English Web Treebank CoNLL-U files into the lexical analysis
// training format: one sentence per line, characters tagged UPOS-B/UPOS-I,
// spaces between words tagged O.
// Usage: go run ./scripts/process-ud-ewt.go
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/go-seqtag/internal/dataset"
)

func main() {
	inDir := "testdata/ud-ewt"
	outDir := "testdata/ud-ewt"

	splits := []string{"train", "dev", "test"}
	var all []dataset.Sample

	for _, split := range splits {
		inFile := filepath.Join(inDir, fmt.Sprintf("en_ewt-ud-%s.conllu", split))
		outFile := filepath.Join(outDir, fmt.Sprintf("%s.tsv", split))

		fmt.Printf("Processing %s...\n", split)
		samples, err := processCoNLLU(inFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inFile, err)
			continue
		}

		if err := writeSamples(outFile, samples); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outFile, err)
			continue
		}

		all = append(all, samples...)
		chars := 0
		for _, s := range samples {
			chars += s.Len()
		}
		fmt.Printf("  -> %s (%d sentences, %d chars)\n", outFile, len(samples), chars)
	}

	tagFile := filepath.Join(outDir, "tag.dic")
	if err := writeTagDict(tagFile, dataset.IOBLabels(all)); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", tagFile, err)
		os.Exit(1)
	}

	fmt.Println("\nDone! Corpus files created in testdata/ud-ewt/")
}

func processCoNLLU(path string) ([]dataset.Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	var (
		samples []dataset.Sample
		current dataset.Sample
		space   bool // previous word wants a trailing space
	)

	flush := func() {
		if current.Len() > 0 {
			samples = append(samples, current)
		}
		current = dataset.Sample{}
		space = false
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			flush()
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 10 {
			continue
		}
		// Multiword ranges (1-2) and empty nodes (1.1) carry no surface text of their own.
		if strings.ContainsAny(fields[0], "-.") {
			continue
		}

		form, upos, misc := fields[1], fields[3], fields[9]
		if space {
			current.Tokens = append(current.Tokens, " ")
			current.Labels = append(current.Labels, "O")
		}
		for i, r := range []rune(form) {
			tag := upos + "-I"
			if i == 0 {
				tag = upos + "-B"
			}
			current.Tokens = append(current.Tokens, string(r))
			current.Labels = append(current.Labels, tag)
		}
		space = !strings.Contains(misc, "SpaceAfter=No")
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning file: %w", err)
	}

	// Don't forget last sentence if no trailing blank
	flush()

	return samples, nil
}

func writeSamples(path string, samples []dataset.Sample) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintln(w, "text_a\tlabel")
	for _, s := range samples {
		fmt.Fprintln(w, dataset.FormatLine(s))
	}
	return w.Flush()
}

// writeTagDict writes labels in order as "id<TAB>label" lines.
func writeTagDict(path string, labels []string) error {
	var b strings.Builder
	for i, l := range labels {
		fmt.Fprintf(&b, "%d\t%s\n", i, l)
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
