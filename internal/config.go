package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// BrowserConfig controls how the browser session is obtained
type BrowserConfig struct {
	Headless    bool   `yaml:"headless"`
	RemoteURL   string `yaml:"remote_url,omitempty"`    // attach to a running DevTools endpoint instead of launching
	UserDataDir string `yaml:"user_data_dir,omitempty"` // persistent profile, keeps vendor logins between runs
	Width       int    `yaml:"width,omitempty"`
	Height      int    `yaml:"height,omitempty"`
}

// TimeoutConfig holds the budget of each kind of wait point
type TimeoutConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	Element      time.Duration `yaml:"element"`  // ordinary UI element readiness
	Login        time.Duration `yaml:"login"`    // operator signs in by hand
	Optional     time.Duration `yaml:"optional"` // pop-ups that may never appear
}

// ElementTiming returns the timing for ordinary element waits
func (t TimeoutConfig) ElementTiming() Timing {
	return Timing{Interval: t.PollInterval, Timeout: t.Element}
}

// LoginTiming returns the timing for the manual login gate
func (t TimeoutConfig) LoginTiming() Timing {
	return Timing{Interval: t.PollInterval, Timeout: t.Login}
}

// OptionalTiming returns the timing for optional elements
func (t TimeoutConfig) OptionalTiming() Timing {
	return Timing{Interval: t.PollInterval, Timeout: t.Optional}
}

// CaptureSelectors locate the parts of the vendor's order-history listing.
// ID, Date and Price are looked up inside each row and must be CSS.
type CaptureSelectors struct {
	LoggedIn         Locator   `yaml:"logged_in"`
	Listing          Locator   `yaml:"listing"`
	Row              Locator   `yaml:"row"`
	ID               Locator   `yaml:"id"`
	Date             Locator   `yaml:"date"`
	Price            Locator   `yaml:"price"`
	NextPage         Locator   `yaml:"next_page"`
	NextPageDisabled Locator   `yaml:"next_page_disabled,omitempty"`
	Hide             []Locator `yaml:"hide,omitempty"` // overlays hidden before taking row screenshots
}

// CaptureConfig configures workflow A
type CaptureConfig struct {
	LoginURL      string           `yaml:"login_url"`
	OrdersURL     string           `yaml:"orders_url"`
	DateSeparator string           `yaml:"date_separator"`
	Prices        []string         `yaml:"prices,omitempty"` // default price allow-list, empty accepts all
	Selectors     CaptureSelectors `yaml:"selectors"`
}

// ReplaySelectors locate the controls of the expense-management UI
type ReplaySelectors struct {
	LoggedIn    Locator   `yaml:"logged_in"`
	StartReport Locator   `yaml:"start_report"`
	Dismiss     []Locator `yaml:"dismiss,omitempty"` // walk-throughs and tours, clicked when present
	ReportName  Locator   `yaml:"report_name"`
	AddExpense  Locator   `yaml:"add_expense"`
	Category    Locator   `yaml:"category,omitempty"` // derived from replay.category when empty
	Date        Locator   `yaml:"date"`
	Amount      Locator   `yaml:"amount"`
	DropTarget  Locator   `yaml:"drop_target"`
	Detach      Locator   `yaml:"detach"`
	Save        Locator   `yaml:"save"`
}

// ReplayConfig configures workflow B
type ReplayConfig struct {
	LoginURL   string          `yaml:"login_url"`
	ReportName string          `yaml:"report_name"`
	Category   string          `yaml:"category"`
	Selectors  ReplaySelectors `yaml:"selectors"`
}

// EntrySelectors returns the selectors with the category menu item derived
// from Category unless selectors.category is set explicitly.
func (r ReplayConfig) EntrySelectors() ReplaySelectors {
	sel := r.Selectors
	if sel.Category.IsZero() && r.Category != "" {
		sel.Category = CSS(fmt.Sprintf(`button.menu-category-item__button[data-nuiexp="TRANS-listItem-%s"]`, r.Category))
	}
	return sel
}

// OutputConfig controls how receipts are displayed
type OutputConfig struct {
	Currency string `yaml:"currency,omitempty"` // ISO code; detected from the locale when empty
}

// LogConfig controls diagnostics on stderr
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

type Config struct {
	Browser         BrowserConfig `yaml:"browser"`
	Timeouts        TimeoutConfig `yaml:"timeouts"`
	Capture         CaptureConfig `yaml:"capture"`
	Replay          ReplayConfig  `yaml:"replay"`
	Output          OutputConfig  `yaml:"output,omitempty"`
	Log             LogConfig     `yaml:"log"`
	ErrorScreenshot string        `yaml:"error_screenshot"`
}

// DefaultConfigPath returns the default config file path (~/.receipt-relay/config.yaml)
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".receipt-relay", "config.yaml")
}

// DefaultConfig targets the Caltrain rider portal and SAP Concur as they
// looked when the selectors were last checked. Vendors change their markup;
// override the selectors in the config file when they go stale.
func DefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{
			Width:  1440,
			Height: 900,
		},
		Timeouts: TimeoutConfig{
			PollInterval: DefaultPollInterval,
			Element:      60 * time.Second,
			Login:        10 * time.Minute,
			Optional:     5 * time.Second,
		},
		Capture: CaptureConfig{
			LoginURL:      "https://caltrain.transitsherpa.com/rider-web/login",
			OrdersURL:     "https://caltrain.transitsherpa.com/rider-web/account/history",
			DateSeparator: "/",
			Selectors: CaptureSelectors{
				LoggedIn:         CSS("div.store-logo"),
				Listing:          CSS("div.ngCanvas"),
				Row:              CSS("div.ngCanvas > div.ngRow"),
				ID:               CSS("div.col0"),
				Date:             CSS("div.col1"),
				Price:            CSS("div.col2"),
				NextPage:         CSS(`button[title="Next Page"]`),
				NextPageDisabled: CSS(`button[title="Next Page"][disabled="disabled"]`),
				Hide:             []Locator{CSS("footer")},
			},
		},
		Replay: ReplayConfig{
			LoginURL:   "https://www.concursolutions.com/",
			ReportName: "Palo Alto CalTrain Parking",
			Category:   "Parking",
			Selectors: ReplaySelectors{
				LoggedIn:    XPath(`//a[normalize-space()="Start a Report"]`),
				StartReport: XPath(`//a[normalize-space()="Start a Report"]`),
				Dismiss: []Locator{
					CSS("span.walkme-custom-balloon-button-text"),
					CSS("button.notification_cancel"),
				},
				ReportName: CSS("input#name"),
				AddExpense: CSS(`span[data-trans-id="Expense.addExpense"]`),
				Date:       CSS(`input[data-nuiexp="field-transactionDate"]`),
				Amount:     CSS(`input[data-nuiexp="field-transactionAmount"]`),
				DropTarget: CSS("button.spend-common__drag-n-drop__button"),
				Detach:     CSS(`button[data-nuiexp="receipt-viewer__detach"]`),
				Save:       CSS(`button[data-nuiexp="save-expense"]`),
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		ErrorScreenshot: filepath.Join(os.TempDir(), "receipt-relay-error.png"),
	}
}

// LoadConfig reads a config file on top of DefaultConfig. Keys missing from
// the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values a run cannot do without
func (c *Config) Validate() error {
	var errs []error
	positive := map[string]time.Duration{
		"timeouts.poll_interval": c.Timeouts.PollInterval,
		"timeouts.element":       c.Timeouts.Element,
		"timeouts.login":         c.Timeouts.Login,
		"timeouts.optional":      c.Timeouts.Optional,
	}
	for field, d := range positive {
		if d <= 0 {
			errs = append(errs, &ConfigError{Field: field, Value: d.String(), Err: errors.New("must be positive")})
		}
	}

	if c.Capture.DateSeparator == "" {
		errs = append(errs, &ConfigError{Field: "capture.date_separator", Err: errors.New("must not be empty")})
	}
	for _, p := range c.Capture.Prices {
		if _, err := NormalizeAmount(p); err != nil {
			errs = append(errs, &ConfigError{Field: "capture.prices", Value: p, Err: err})
		}
	}

	for _, loc := range []struct {
		field string
		loc   Locator
	}{
		{"capture.selectors.id", c.Capture.Selectors.ID},
		{"capture.selectors.date", c.Capture.Selectors.Date},
		{"capture.selectors.price", c.Capture.Selectors.Price},
	} {
		if loc.loc.By == ByXPath {
			errs = append(errs, &ConfigError{Field: loc.field, Value: loc.loc.Query, Err: errors.New("row cells must use CSS")})
		}
	}

	if c.Replay.EntrySelectors().Category.IsZero() {
		errs = append(errs, &ConfigError{Field: "replay.category", Err: errors.New("set a category name or selectors.category")})
	}

	switch c.Log.Format {
	case "", "console", "json":
	default:
		errs = append(errs, &ConfigError{Field: "log.format", Value: c.Log.Format, Err: errUnknownLogFormat})
	}

	return errors.Join(errs...)
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// Create parent directories if they don't exist
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// UnmarshalYAML accepts either a plain string (a CSS selector) or a mapping
// with exactly one of css or xpath.
func (l *Locator) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*l = CSS(node.Value)
		return nil
	case yaml.MappingNode:
		var raw struct {
			CSS   string `yaml:"css"`
			XPath string `yaml:"xpath"`
		}
		if err := node.Decode(&raw); err != nil {
			return fmt.Errorf("parsing locator: %w", err)
		}
		switch {
		case raw.CSS != "" && raw.XPath != "":
			return fmt.Errorf("line %d: locator has both css and xpath", node.Line)
		case raw.XPath != "":
			*l = XPath(raw.XPath)
		default:
			*l = CSS(raw.CSS)
		}
		return nil
	default:
		return fmt.Errorf("line %d: invalid locator format", node.Line)
	}
}

// MarshalYAML writes CSS locators as plain strings
func (l Locator) MarshalYAML() (any, error) {
	if l.By == ByXPath {
		return map[string]string{"xpath": l.Query}, nil
	}
	return l.Query, nil
}
