package internal

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

const (
	receiptExt       = ".png"
	fieldSep         = "_"
	fileDateSep      = "-"
	fileDecimalSep   = "-"
	displayDateSep   = "/"
	amountDecimalSep = "."
)

var amountPattern = regexp.MustCompile(`^-?\d+\.\d+$`)

// Transaction is one order, identified by ID.
type Transaction struct {
	ID     string
	Date   CalendarDate
	Amount string // decimal string with exactly one '.', e.g. "5.50"
}

// Receipt is a transaction whose image has been materialized on disk.
type Receipt struct {
	Transaction
	Path string
}

// NewTransaction validates and normalizes the raw fields of a scraped row.
func NewTransaction(id, date, dateSep, amount string) (Transaction, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Transaction{}, fmt.Errorf("empty transaction id")
	}
	if strings.Contains(id, fieldSep) {
		return Transaction{}, fmt.Errorf("transaction id %q contains %q", id, fieldSep)
	}
	// the id becomes a file name inside the output directory
	if id == "." || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") || filepath.Base(id) != id {
		return Transaction{}, fmt.Errorf("transaction id %q is not a plain file name", id)
	}
	d, err := ParseCalendarDate(date, dateSep)
	if err != nil {
		return Transaction{}, err
	}
	amt, err := NormalizeAmount(amount)
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{ID: id, Date: d, Amount: amt}, nil
}

// NormalizeAmount strips currency symbols, thousands separators and blanks and
// guarantees exactly one fractional separator. "$1,234.5" -> "1234.5",
// "7" -> "7.00".
func NormalizeAmount(s string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, s)
	if cleaned != "" && !strings.Contains(cleaned, amountDecimalSep) {
		cleaned += ".00"
	}
	if !amountPattern.MatchString(cleaned) {
		return "", fmt.Errorf("amount %q is not a decimal number", s)
	}
	return cleaned, nil
}

// AmountValue returns the amount as a float, for totals only.
func (t Transaction) AmountValue() float64 {
	v, _ := strconv.ParseFloat(t.Amount, 64)
	return v
}

// Filename renders the receipt file name: {id}_{MM-DD-YYYY}_{amount with '-'}.png
func (t Transaction) Filename() string {
	amount := strings.Replace(t.Amount, amountDecimalSep, fileDecimalSep, 1)
	return t.ID + fieldSep + t.Date.Format(fileDateSep) + fieldSep + amount + receiptExt
}

// ParseReceiptFilename is the inverse of Transaction.Filename.
func ParseReceiptFilename(name string) (Transaction, error) {
	base, ok := strings.CutSuffix(name, receiptExt)
	if !ok {
		return Transaction{}, fmt.Errorf("%s: not a %s file", name, receiptExt)
	}
	parts := strings.Split(base, fieldSep)
	if len(parts) != 3 {
		return Transaction{}, fmt.Errorf("%s: expected 3 %q-separated fields, got %d", name, fieldSep, len(parts))
	}
	id, date, amount := parts[0], parts[1], parts[2]

	// the amount's decimal point is the last dash; a leading dash is a sign
	if i := strings.LastIndex(amount, fileDecimalSep); i > 0 {
		amount = amount[:i] + amountDecimalSep + amount[i+1:]
	}
	date = strings.ReplaceAll(date, fileDateSep, displayDateSep)

	tx, err := NewTransaction(id, date, displayDateSep, amount)
	if err != nil {
		return Transaction{}, fmt.Errorf("%s: %w", name, err)
	}
	return tx, nil
}

// ReadReceiptDir lists the receipts in dir. Files that do not follow the
// naming scheme (OS metadata, stray downloads) are skipped and returned
// separately so callers can report them.
func ReadReceiptDir(dir string) (receipts []Receipt, skipped []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading receipt directory: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving %s: %w", dir, err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		tx, err := ParseReceiptFilename(e.Name())
		if err != nil {
			skipped = append(skipped, e.Name())
			continue
		}
		receipts = append(receipts, Receipt{Transaction: tx, Path: filepath.Join(abs, e.Name())})
	}
	return receipts, skipped, nil
}

// CompareIDs orders identifiers numerically when both are digit strings and
// lexically otherwise.
func CompareIDs(a, b string) int {
	if isDigits(a) && isDigits(b) {
		ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
		if c := cmp.Compare(len(ta), len(tb)); c != 0 {
			return c
		}
		return cmp.Compare(ta, tb)
	}
	return cmp.Compare(a, b)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func compareChronological(a, b Transaction) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	return CompareIDs(a.ID, b.ID)
}

// SortOldestFirst orders receipts ascending by (date, id).
func SortOldestFirst(receipts []Receipt) {
	slices.SortStableFunc(receipts, func(a, b Receipt) int {
		return compareChronological(a.Transaction, b.Transaction)
	})
}

// LatestDate returns the newest date among the receipts.
func LatestDate(receipts []Receipt) (CalendarDate, bool) {
	if len(receipts) == 0 {
		return CalendarDate{}, false
	}
	latest := receipts[0].Date
	for _, r := range receipts[1:] {
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	return latest, true
}
