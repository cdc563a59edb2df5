// Package config defines core configuration types for inkloom.
// These types are pure data structures with no external dependencies on Viper or other config loaders.
package config

// Severity represents the severity level of a lint diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// RuleConfig holds per-rule configuration options.
type RuleConfig struct {
	Enabled  *bool          `mapstructure:"enabled" yaml:"enabled"`
	Severity *string        `mapstructure:"severity" yaml:"severity"`
	AutoFix  *bool          `mapstructure:"auto_fix" yaml:"auto_fix"`
	Options  map[string]any `mapstructure:"options" yaml:"options"`
}

// BackupsConfig controls backup behavior when fixing files.
type BackupsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Mode    string `mapstructure:"mode" yaml:"mode"` // "sidecar", "xdg", etc.
}

// OutputFormat specifies the output format for diagnostics.
type OutputFormat string

const (
	FormatText    OutputFormat = "text"
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatSARIF   OutputFormat = "sarif"
	FormatDiff    OutputFormat = "diff"
	FormatSummary OutputFormat = "summary"
)

// RuleFormat controls how rule identifiers appear in output.
type RuleFormat string

const (
	RuleFormatName     RuleFormat = "name"     // "no-trailing-spaces"
	RuleFormatID       RuleFormat = "id"       // "MD009"
	RuleFormatCombined RuleFormat = "combined" // "MD009/no-trailing-spaces"
)

// SummaryOrder controls the order of tables in summary output.
type SummaryOrder string

const (
	// SummaryOrderRules shows rules table first (default).
	SummaryOrderRules SummaryOrder = "rules"
	// SummaryOrderFiles shows files table first.
	SummaryOrderFiles SummaryOrder = "files"
)

// IsValid returns true if the summary order is valid.
func (s SummaryOrder) IsValid() bool {
	switch s {
	case SummaryOrderRules, SummaryOrderFiles:
		return true
	default:
		return false
	}
}

// Flavor specifies the Markdown flavor to use for parsing.
type Flavor string

const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
	FlavorMkDocs     Flavor = "mkdocs"
	FlavorMDX        Flavor = "mdx"
	FlavorQuarto     Flavor = "quarto"
	FlavorRMarkdown  Flavor = "rmarkdown"
	FlavorObsidian   Flavor = "obsidian"
	FlavorKramdown   Flavor = "kramdown"
)

// flavorAliases maps alternate spellings to their canonical Flavor.
var flavorAliases = map[string]Flavor{
	"github":  FlavorGFM,
	"qmd":     FlavorQuarto,
	"rmd":     FlavorRMarkdown,
	"jekyll":  FlavorKramdown,
	"default": FlavorCommonMark,
}

// ResolveFlavor normalizes a raw flavor string (as read from config or a
// per-file-flavor table) to its canonical Flavor, applying known aliases.
// Unknown input is returned unchanged so callers can decide how to report it.
func ResolveFlavor(raw string) Flavor {
	if canonical, ok := flavorAliases[raw]; ok {
		return canonical
	}
	return Flavor(raw)
}

// IsValid reports whether f is one of the known flavors.
func (f Flavor) IsValid() bool {
	switch f {
	case FlavorCommonMark, FlavorGFM, FlavorMkDocs, FlavorMDX, FlavorQuarto, FlavorRMarkdown, FlavorObsidian, FlavorKramdown:
		return true
	default:
		return false
	}
}

// AnchorStyle selects the heading-anchor slug algorithm a document uses.
type AnchorStyle string

const (
	AnchorStyleGitHub   AnchorStyle = "github"
	AnchorStyleKramdown AnchorStyle = "kramdown"
)

// Config is the root configuration structure for inkloom.
type Config struct {
	// Flavor specifies the Markdown flavor (one of the Flavor constants above).
	Flavor Flavor `mapstructure:"flavor" yaml:"flavor"`

	// SeverityDefault is the default severity for rules that don't specify one.
	SeverityDefault string `mapstructure:"severity_default" yaml:"severity_default"`

	// Rules contains per-rule configuration keyed by rule ID.
	Rules map[string]RuleConfig `mapstructure:"rules" yaml:"rules"`

	// Ignore contains glob patterns for files to ignore.
	Ignore []string `mapstructure:"ignore" yaml:"ignore"`

	// Backups configures backup behavior when fixing.
	Backups BackupsConfig `mapstructure:"backups" yaml:"backups"`

	// PerFileFlavor maps glob patterns to a flavor override, evaluated with
	// the longest literal-prefix glob winning on overlap. PerFileFlavorOrder,
	// when set, gives the tie-break order; the config loader leaves it empty,
	// and flavorsel then breaks ties by lexical order of the patterns.
	PerFileFlavor      map[string]Flavor `mapstructure:"per_file_flavor" yaml:"per_file_flavor"`
	PerFileFlavorOrder []string          `mapstructure:"-" yaml:"-"`

	// PerFileIgnores maps glob patterns to rule IDs ignored for matching files.
	PerFileIgnores map[string][]string `mapstructure:"per_file_ignores" yaml:"per_file_ignores"`

	// Cache enables the content-addressed result cache.
	Cache bool `mapstructure:"cache" yaml:"cache"`

	// CacheDir overrides the cache's base directory. Empty means the
	// platform-default location (see pkg/cache).
	CacheDir string `mapstructure:"cache_dir" yaml:"cache_dir"`

	// Fixable restricts auto-fixing to this set of rule IDs when non-empty.
	Fixable []string `mapstructure:"fixable" yaml:"fixable"`

	// Unfixable excludes these rule IDs from auto-fixing even if otherwise fixable.
	Unfixable []string `mapstructure:"unfixable" yaml:"unfixable"`

	// ForceExclude applies Ignore patterns even to files passed explicitly
	// on the command line (normally explicit paths bypass ignore rules).
	ForceExclude bool `mapstructure:"force_exclude" yaml:"force_exclude"`

	// LineLength is the default MD013 line-length budget.
	LineLength int `mapstructure:"line_length" yaml:"line_length"`

	// AnchorStyle selects the heading-anchor slug algorithm.
	AnchorStyle AnchorStyle `mapstructure:"anchor_style" yaml:"anchor_style"`

	// CLI-level options (not persisted to config files).

	// Fix enables auto-fixing of issues.
	Fix bool `mapstructure:"-" yaml:"-"`

	// DryRun shows what would be fixed without making changes.
	DryRun bool `mapstructure:"-" yaml:"-"`

	// Format specifies the output format.
	Format OutputFormat `mapstructure:"-" yaml:"-"`

	// RuleFormat controls how rule identifiers appear in output.
	RuleFormat RuleFormat `mapstructure:"-" yaml:"-"`

	// Jobs specifies the number of parallel workers.
	Jobs int `mapstructure:"-" yaml:"-"`

	// EnableRules contains rule IDs to explicitly enable.
	EnableRules []string `mapstructure:"-" yaml:"-"`

	// DisableRules contains rule IDs to explicitly disable.
	DisableRules []string `mapstructure:"-" yaml:"-"`

	// FixRules limits auto-fixing to specific rule IDs.
	FixRules []string `mapstructure:"-" yaml:"-"`

	// NoBackups disables backup creation when fixing.
	NoBackups bool `mapstructure:"-" yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Flavor:          FlavorCommonMark,
		SeverityDefault: string(SeverityWarning),
		Rules:           make(map[string]RuleConfig),
		Ignore:          nil,
		Backups: BackupsConfig{
			Enabled: true,
			Mode:    "sidecar",
		},
		Format:      FormatText,
		RuleFormat:  RuleFormatName,
		Jobs:        0, // 0 means use GOMAXPROCS
		LineLength:  80,
		AnchorStyle: AnchorStyleGitHub,
	}
}
