package internal

import (
	"fmt"
	"slices"
	"strings"
)

// Parser loads the receipts to replay from a path
type Parser interface {
	Parse(path string) ([]Receipt, error)
}

// ParserFunc is a function that implements Parser
type ParserFunc func(path string) ([]Receipt, error)

func (f ParserFunc) Parse(path string) ([]Receipt, error) {
	return f(path)
}

// DefaultSource is used when a path carries no format prefix
const DefaultSource = "receipt-dir"

// parsers is the registry of available receipt sources
var parsers = map[string]Parser{}

// RegisterParser registers a parser with the given name
func RegisterParser(name string, p Parser) {
	parsers[name] = p
}

// GetParser returns the parser for the given source type
func GetParser(source string) (Parser, error) {
	p, ok := parsers[source]
	if !ok {
		return nil, fmt.Errorf("unknown source type: %s (available: %v)", source, AvailableSources())
	}
	return p, nil
}

// AvailableSources returns the registered source types, sorted
func AvailableSources() []string {
	var sources []string
	for name := range parsers {
		sources = append(sources, name)
	}
	slices.Sort(sources)
	return sources
}

// IsKnownParser returns true if the name is a registered parser
func IsKnownParser(name string) bool {
	_, ok := parsers[name]
	return ok
}

// ParseFileArg parses a path argument that may have a format prefix.
// Returns (format, path). If no valid prefix, format is empty.
// Example: "simple-json:receipts.json" → ("simple-json", "receipts.json")
// Example: "~/receipts" → ("", "~/receipts")
// Example: "C:\receipts" → ("", "C:\receipts") // Windows path
func ParseFileArg(arg string) (format, path string) {
	idx := strings.Index(arg, ":")
	if idx == -1 {
		return "", arg
	}
	prefix := arg[:idx]
	if IsKnownParser(prefix) {
		return prefix, arg[idx+1:]
	}
	return "", arg // Not a known parser, treat whole thing as path
}

// LoadReceipts resolves the source of arg and parses it
func LoadReceipts(arg string) ([]Receipt, error) {
	format, path := ParseFileArg(arg)
	if format == "" {
		format = DefaultSource
	}
	p, err := GetParser(format)
	if err != nil {
		return nil, err
	}
	return p.Parse(path)
}

func parseReceiptDir(path string) ([]Receipt, error) {
	receipts, _, err := ReadReceiptDir(path)
	return receipts, err
}

func init() {
	RegisterParser(DefaultSource, ParserFunc(parseReceiptDir))
}
