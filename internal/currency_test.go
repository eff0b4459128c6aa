package internal

import (
	"testing"

	"golang.org/x/text/language"
)

// resetDetectedLocale resets the global detectedLocale for testing
func resetDetectedLocale() {
	detectedLocale = language.Und
}

func TestGetCurrency_CaseInsensitive(t *testing.T) {
	resetDetectedLocale()
	for _, code := range []string{"usd", "Usd", "USD"} {
		c := GetCurrency(code)
		if c.Code != "USD" {
			t.Errorf("GetCurrency(%q).Code = %q, want USD", code, c.Code)
		}
	}
}

func TestGetCurrency_Unknown(t *testing.T) {
	resetDetectedLocale()
	c := GetCurrency("XYZ")
	if c.Code != "XYZ" {
		t.Errorf("Code = %q, want XYZ", c.Code)
	}
	formatted := c.Format(100)
	if formatted != "100.00 XYZ" {
		t.Errorf("Format(100) = %q, want %q", formatted, "100.00 XYZ")
	}
}

func TestCurrency_Format(t *testing.T) {
	resetDetectedLocale()
	nbsp := "\u00a0" // x/text uses non-breaking space for Swedish thousands

	tests := []struct {
		name   string
		code   string
		amount float64
		want   string
	}{
		{"USD parking", "USD", 5.5, "$5.50"},
		{"USD whole", "USD", 9, "$9.00"},
		{"USD thousands", "USD", 1234, "$1,234.00"},
		{"EUR thousands", "EUR", 1234, "1.234,00 €"},
		{"GBP small", "GBP", 100, "£100.00"},
		{"SEK thousands", "SEK", 1234, "1" + nbsp + "234,00 kr"},
		{"JPY has no minor units", "JPY", 1000, "￥1,000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := GetCurrency(tt.code)
			got := c.Format(tt.amount)
			if got != tt.want {
				t.Errorf("Format(%v) = %q, want %q", tt.amount, got, tt.want)
			}
		})
	}
}

func TestCurrency_FormatRange(t *testing.T) {
	resetDetectedLocale()

	tests := []struct {
		name string
		code string
		min  float64
		max  float64
		want string
	}{
		{"USD", "USD", 5.5, 9, "$5.50-$9.00"},
		{"EUR", "EUR", 50, 75, "50,00-75,00 €"},
		{"Unknown", "XYZ", 10, 20, "10.00-20.00 XYZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := GetCurrency(tt.code)
			got := c.FormatRange(tt.min, tt.max)
			if got != tt.want {
				t.Errorf("FormatRange(%v, %v) = %q, want %q", tt.min, tt.max, got, tt.want)
			}
		})
	}
}

func TestParseCurrencyFromLocale(t *testing.T) {
	tests := []struct {
		locale       string
		wantCurrency string
		wantTag      string
	}{
		{"sv_SE.UTF-8", "SEK", "sv-SE"},
		{"en_US.UTF-8", "USD", "en-US"},
		{"de_DE", "EUR", "de-DE"},
		{"en_GB.UTF-8@euro", "GBP", "en-GB"},
		{"C", "", ""},
		{"en", "", ""}, // no region
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			gotCurrency, gotTag := parseCurrencyFromLocale(tt.locale)
			if gotCurrency != tt.wantCurrency {
				t.Errorf("parseCurrencyFromLocale(%q) currency = %q, want %q", tt.locale, gotCurrency, tt.wantCurrency)
			}
			if tt.wantTag != "" && gotTag.String() != tt.wantTag {
				t.Errorf("parseCurrencyFromLocale(%q) tag = %q, want %q", tt.locale, gotTag.String(), tt.wantTag)
			}
		})
	}
}

func TestDetectSystemCurrency(t *testing.T) {
	tests := []struct {
		name         string
		lcMonetary   string
		lcAll        string
		lang         string
		wantCurrency string
	}{
		{"LC_MONETARY takes priority", "sv_SE.UTF-8", "en_US.UTF-8", "de_DE.UTF-8", "SEK"},
		{"LC_ALL when LC_MONETARY empty", "", "en_US.UTF-8", "de_DE.UTF-8", "USD"},
		{"LANG as fallback", "", "", "de_DE.UTF-8", "EUR"},
		{"No detection when all empty", "", "", "", ""},
		{"Skip C locale", "C", "POSIX", "sv_SE.UTF-8", "SEK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetDetectedLocale()
			t.Cleanup(resetDetectedLocale)
			t.Setenv("LC_MONETARY", tt.lcMonetary)
			t.Setenv("LC_ALL", tt.lcAll)
			t.Setenv("LANG", tt.lang)

			got := DetectSystemCurrency()
			if got != tt.wantCurrency {
				t.Errorf("DetectSystemCurrency() = %q, want %q", got, tt.wantCurrency)
			}
		})
	}
}

func TestResolveCurrency(t *testing.T) {
	t.Cleanup(resetDetectedLocale)

	t.Run("configured code wins", func(t *testing.T) {
		resetDetectedLocale()
		t.Setenv("LC_MONETARY", "sv_SE.UTF-8")
		if got := ResolveCurrency("eur").Code; got != "EUR" {
			t.Errorf("ResolveCurrency(eur) = %q, want EUR", got)
		}
	})

	t.Run("locale when not configured", func(t *testing.T) {
		resetDetectedLocale()
		t.Setenv("LC_MONETARY", "sv_SE.UTF-8")
		if got := ResolveCurrency("").Code; got != "SEK" {
			t.Errorf("ResolveCurrency() = %q, want SEK", got)
		}
	})

	t.Run("fallback", func(t *testing.T) {
		resetDetectedLocale()
		t.Setenv("LC_MONETARY", "")
		t.Setenv("LC_ALL", "")
		t.Setenv("LANG", "C")
		if got := ResolveCurrency("").Code; got != FallbackCurrency {
			t.Errorf("ResolveCurrency() = %q, want %s", got, FallbackCurrency)
		}
	})
}
