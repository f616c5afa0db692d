package types

import "time"

// HTTPConfig holds shared HTTP settings used by every network call.
type HTTPConfig struct {
	// Timeout is the client-level request timeout.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// SourceTimeout bounds a single source call, including body decoding (default 10s).
	SourceTimeout time.Duration `mapstructure:"source_timeout" yaml:"source_timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "doi-metadata/0.1").
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`

	// ContactEmail is sent to registries that ask for a polite contact
	// (CrossRef mailto, NCBI email parameter).
	ContactEmail string `mapstructure:"contact_email" yaml:"contact_email"`

	// RateLimit is the maximum requests per second across all sources
	// (default 5). A negative value disables spacing.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// Endpoint overrides the base URL of one external service.
type Endpoint struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// SourcesConfig holds per-service endpoints. Empty base URLs fall back to
// the public services.
type SourcesConfig struct {
	CrossRef  Endpoint `mapstructure:"crossref" yaml:"crossref"`
	Zenodo    Endpoint `mapstructure:"zenodo" yaml:"zenodo"`
	Arxiv     Endpoint `mapstructure:"arxiv" yaml:"arxiv"`
	Rxiv      Endpoint `mapstructure:"rxiv" yaml:"rxiv"`
	EuropePMC Endpoint `mapstructure:"europepmc" yaml:"europepmc"`
	IDConv    Endpoint `mapstructure:"idconv" yaml:"idconv"`
}

// OutputFormat selects the files written for a resolved record.
type OutputFormat string

const (
	OutputJSON OutputFormat = "json"
	OutputCSL  OutputFormat = "csl"
)

// ResolveConfig holds settings for a single resolution run.
type ResolveConfig struct {
	HTTPConfig `mapstructure:"http" yaml:",inline"`

	Sources SourcesConfig `mapstructure:"sources" yaml:"sources"`

	// NCBITool is the tool name reported to the PMC ID converter.
	NCBITool string `mapstructure:"ncbi_tool" yaml:"ncbi_tool"`

	// NCBIAPIKey raises the NCBI request allowance when set.
	NCBIAPIKey string `mapstructure:"ncbi_api_key" yaml:"ncbi_api_key,omitempty"`

	// OutputDir is where the record file is written.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// Format adds extra renderings next to the JSON record.
	Format OutputFormat `mapstructure:"format" yaml:"format"`
}

// PackageSource maps one filesystem path into the archive.
type PackageSource struct {
	// Path is a file or directory on disk.
	Path string `mapstructure:"path" yaml:"path"`

	// Name is the destination folder (or file name) inside the archive root.
	Name string `mapstructure:"name" yaml:"name"`

	// Registry marks a JSON registry file whose entries carry
	// publication.pmcid values for the manifest.
	Registry bool `mapstructure:"registry" yaml:"registry"`
}

// PackageConfig holds settings for the packaging collaborator.
type PackageConfig struct {
	// Root is the top-level folder inside the archive.
	Root string `mapstructure:"root" yaml:"root"`

	// Manifest is the CSV file name written under Root.
	Manifest string `mapstructure:"manifest" yaml:"manifest"`

	Sources []PackageSource `mapstructure:"sources" yaml:"sources"`
}
