package table

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// TabulaExtractor converts a PDF to CSV with an external tabula command and
// reads the result. The CSV is written next to the PDF with the same base
// name, so the last conversion stays on disk for inspection.
type TabulaExtractor struct {
	command []string
	csv     *CSVExtractor
}

// NewTabulaExtractor creates an extractor running command. The output and
// input paths are appended as "--outfile <csv> <pdf>".
func NewTabulaExtractor(command []string) *TabulaExtractor {
	return &TabulaExtractor{
		command: command,
		csv:     NewCSVExtractor(),
	}
}

// CSVPath returns the path the extract of pdfPath is written to.
func CSVPath(pdfPath string) string {
	if base, ok := strings.CutSuffix(pdfPath, ".pdf"); ok {
		return base + ".csv"
	}

	return pdfPath + ".csv"
}

// Extract runs tabula on path and reads the produced CSV.
func (e *TabulaExtractor) Extract(ctx context.Context, path string) (*Table, error) {
	csvPath := CSVPath(path)

	args := append([]string{}, e.command[1:]...)
	args = append(args, "--outfile", csvPath, path)

	cmd := exec.CommandContext(ctx, e.command[0], args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("tabula failed on %s: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}

	return e.csv.Extract(ctx, csvPath)
}
