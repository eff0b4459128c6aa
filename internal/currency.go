package internal

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// FallbackCurrency is used when neither the config nor the locale names one.
// Both built-in vendors bill in US dollars.
const FallbackCurrency = "USD"

// Currency formats receipt amounts for display
type Currency struct {
	Code    string // "USD", "EUR", "SEK"
	unit    currency.Unit
	tag     language.Tag
	printer *message.Printer
	digits  int // minor units, 2 for cents
}

// symbolOverrides provides custom symbols where x/text defaults aren't ideal
var symbolOverrides = map[string]string{
	"SEK": "kr",
	"NOK": "kr",
	"DKK": "kr",
}

// defaultLocaleForCurrency is the "home" locale of a currency, used when the
// currency is configured but no system locale was detected.
var defaultLocaleForCurrency = map[string]language.Tag{
	"USD": language.AmericanEnglish,
	"CAD": language.CanadianFrench,
	"EUR": language.German,
	"GBP": language.BritishEnglish,
	"SEK": language.Swedish,
	"NOK": language.Norwegian,
	"DKK": language.Danish,
	"CHF": language.German,
	"JPY": language.Japanese,
	"BRL": language.BrazilianPortuguese,
	"AUD": language.MustParse("en-AU"),
	"INR": language.MustParse("en-IN"),
}

// detectedLocale stores the system locale when auto-detected
var detectedLocale language.Tag

// GetCurrency returns the Currency for a given code. Unknown codes format
// like dollars but print the code as symbol.
func GetCurrency(code string) Currency {
	code = strings.ToUpper(code)

	tag := language.English
	if detectedLocale != language.Und {
		tag = detectedLocale
	} else if t, ok := defaultLocaleForCurrency[code]; ok {
		tag = t
	}
	return GetCurrencyWithLocale(code, tag)
}

// GetCurrencyWithLocale returns a Currency with a specific locale for formatting.
func GetCurrencyWithLocale(code string, tag language.Tag) Currency {
	code = strings.ToUpper(code)

	unit, err := currency.ParseISO(code)
	if err != nil {
		unit = currency.USD
		symbolOverrides[code] = code
	}
	scale, _ := currency.Standard.Rounding(unit)

	return Currency{
		Code:    code,
		unit:    unit,
		tag:     tag,
		printer: message.NewPrinter(tag),
		digits:  scale,
	}
}

// ResolveCurrency picks the display currency: the configured code, else the
// one implied by the system locale, else FallbackCurrency.
func ResolveCurrency(code string) Currency {
	if code == "" {
		code = DetectSystemCurrency()
	}
	if code == "" {
		code = FallbackCurrency
	}
	return GetCurrency(code)
}

// DetectSystemCurrency derives a currency from the locale environment
// variables and remembers the locale for formatting. Returns "" when no
// locale with a region is set.
func DetectSystemCurrency() string {
	locale := detectSystemLocale()
	if locale == "" {
		return ""
	}

	currCode, tag := parseCurrencyFromLocale(locale)
	if currCode != "" {
		detectedLocale = tag
		return currCode
	}
	return ""
}

// parseCurrencyFromLocale extracts currency code and language tag from a locale string.
// Examples: "sv_SE.UTF-8" -> ("SEK", sv-SE), "en_US" -> ("USD", en-US)
func parseCurrencyFromLocale(locale string) (string, language.Tag) {
	base := locale
	if idx := strings.Index(base, "."); idx != -1 {
		base = base[:idx]
	}
	if idx := strings.Index(base, "@"); idx != -1 {
		base = base[:idx]
	}

	tag, err := language.Parse(strings.Replace(base, "_", "-", 1))
	if err != nil {
		return "", language.Und
	}

	_, _, region := tag.Raw()
	if region.String() == "" || region.String() == "ZZ" {
		return "", language.Und
	}

	unit, ok := currency.FromRegion(region)
	if !ok {
		return "", language.Und
	}
	return unit.String(), tag
}

func (c Currency) getSymbol() string {
	if sym, ok := symbolOverrides[c.Code]; ok {
		return sym
	}
	return c.printer.Sprint(currency.NarrowSymbol(c.unit))
}

// isPrefix returns true if this currency symbol goes before the amount.
// x/text does not expose CLDR symbol placement, hence the list.
func (c Currency) isPrefix() bool {
	switch c.Code {
	case "USD", "GBP", "JPY", "CAD", "AUD", "INR":
		return true
	default:
		return false
	}
}

func (c Currency) number(amount float64) string {
	return c.printer.Sprint(number.Decimal(amount,
		number.MinFractionDigits(c.digits),
		number.MaxFractionDigits(c.digits)))
}

// Format formats a single amount with the currency symbol, keeping the
// currency's minor units ("$5.50", "1.234,00 €").
func (c Currency) Format(amount float64) string {
	formatted := c.number(amount)
	symbol := c.getSymbol()

	if c.isPrefix() {
		return symbol + formatted
	}
	return formatted + " " + symbol
}

// FormatRange formats a min-max range with the currency symbol
func (c Currency) FormatRange(min, max float64) string {
	minStr, maxStr := c.number(min), c.number(max)
	symbol := c.getSymbol()

	if c.isPrefix() {
		return symbol + minStr + "-" + symbol + maxStr
	}
	return minStr + "-" + maxStr + " " + symbol
}
