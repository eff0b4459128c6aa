package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SimpleJSONFormat is a manifest for replaying receipts that were not
// captured by this tool
// Example:
//
//	{
//	  "receipts": [
//	    {"id": "4711", "date": "01/15/2025", "amount": "5.50", "file": "scans/jan15.png"}
//	  ]
//	}
//
// Relative file paths are resolved against the manifest's directory.
type SimpleJSONFormat struct {
	Receipts []SimpleJSONReceipt `json:"receipts"`
}

type SimpleJSONReceipt struct {
	ID     string `json:"id"`
	Date   string `json:"date"`   // MM/DD/YYYY or YYYY/MM/DD
	Amount string `json:"amount"` // decimal string, e.g. "5.50"
	File   string `json:"file"`   // receipt image
}

// ParseSimpleJSON parses a manifest in the simple JSON format
func ParseSimpleJSON(path string) ([]Receipt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var manifest SimpleJSONFormat
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	var receipts []Receipt
	for _, r := range manifest.Receipts {
		tx, err := NewTransaction(r.ID, r.Date, displayDateSep, r.Amount)
		if err != nil {
			return nil, fmt.Errorf("receipt %q: %w", r.ID, err)
		}
		if r.File == "" {
			return nil, fmt.Errorf("receipt %q: missing file", r.ID)
		}
		file := r.File
		if !filepath.IsAbs(file) {
			file = filepath.Join(base, file)
		}
		receipts = append(receipts, Receipt{Transaction: tx, Path: file})
	}

	return receipts, nil
}

func init() {
	RegisterParser("simple-json", ParserFunc(ParseSimpleJSON))
}
