package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "lambelambe/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// RequestInterval is the minimum spacing between requests to the same host.
	RequestInterval time.Duration `json:"request_interval" yaml:"request_interval"`
}

// ColumnConfig maps record fields to CSV header names.
type ColumnConfig struct {
	Name          string `json:"name" yaml:"name"`
	ProfileURL    string `json:"profile_url" yaml:"profile_url"`
	Date          string `json:"date" yaml:"date"`
	Affiliation   string `json:"affiliation" yaml:"affiliation"`
	Location      string `json:"location" yaml:"location"`
	Circumstances string `json:"circumstances" yaml:"circumstances"`
}

// DefaultColumns returns the header names used by the CPJ people export.
func DefaultColumns() ColumnConfig {
	return ColumnConfig{
		Name:          "Name",
		ProfileURL:    "cpj.org URL",
		Date:          "Date",
		Affiliation:   "Journalist or Media Worker",
		Location:      "Location",
		Circumstances: "Type of Death",
	}
}

// RenderMode selects how profile pages are fetched.
type RenderMode string

const (
	// RenderBrowser executes page JavaScript in headless Chrome.
	RenderBrowser RenderMode = "browser"
	// RenderStatic fetches the served HTML only.
	RenderStatic RenderMode = "static"
)

// AcquisitionConfig holds settings for the image acquisition stage.
type AcquisitionConfig struct {
	HTTPConfig `yaml:",inline"`

	// CacheDir is the directory downloaded images are written to.
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`

	// Selector is the CSS selector of the profile photo element.
	Selector string `json:"selector" yaml:"selector"`

	// Render selects browser or static page fetching.
	Render RenderMode `json:"render" yaml:"render"`

	// RenderTimeout bounds loading one profile page in the browser.
	RenderTimeout time.Duration `json:"render_timeout" yaml:"render_timeout"`

	// SettleTimeout bounds the wait for the photo element after page load.
	SettleTimeout time.Duration `json:"settle_timeout" yaml:"settle_timeout"`

	// BrowserBin is an explicit Chrome/Chromium binary path.
	BrowserBin string `json:"browser_bin,omitempty" yaml:"browser_bin,omitempty"`

	// AutoDownloadBrowser lets the renderer fetch a Chromium build when none is installed.
	AutoDownloadBrowser bool `json:"auto_download_browser" yaml:"auto_download_browser"`

	// LeadImageFallback uses the page's lead image when the selector finds nothing.
	LeadImageFallback bool `json:"lead_image_fallback" yaml:"lead_image_fallback"`
}

// GalleryConfig holds settings for harvesting portraits from a saved gallery page.
type GalleryConfig struct {
	HTTPConfig `yaml:",inline"`

	// CacheDir is the directory downloaded images are written to.
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`

	// BaseURL resolves relative image URLs found in the saved page.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// MatchConfig holds settings for fuzzy image lookup during assembly.
type MatchConfig struct {
	// Enabled turns on fuzzy matching when no exact cache file exists.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Threshold is the similarity a candidate must exceed (default 0.7).
	Threshold float64 `json:"threshold" yaml:"threshold"`

	// AutoAccept is the similarity accepted without confirmation (default 0.85).
	AutoAccept float64 `json:"auto_accept" yaml:"auto_accept"`

	// CrossRefPath is the CSV file recording accepted and rejected matches.
	CrossRefPath string `json:"crossref_path" yaml:"crossref_path"`
}

// AssemblyConfig holds settings for the document assembly stage.
type AssemblyConfig struct {
	// CacheDir is the directory cached images are read from.
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`

	// OutputPath is the PDF file written by the stage.
	OutputPath string `json:"output_path" yaml:"output_path"`

	// ImageHeight is the maximum photo height in inches (default 7.5).
	// Font sizes scale with it.
	ImageHeight float64 `json:"image_height" yaml:"image_height"`

	// FontFile is an optional UTF-8 TrueType font used instead of Helvetica.
	FontFile string `json:"font_file,omitempty" yaml:"font_file,omitempty"`

	// Verify re-reads the written PDF and checks its page count.
	Verify bool `json:"verify" yaml:"verify"`

	// Match configures fuzzy image lookup.
	Match MatchConfig `json:"match" yaml:"match"`
}

// LedgerConfig holds settings for the acquisition ledger.
type LedgerConfig struct {
	// Path is the SQLite database file. Empty disables the ledger.
	Path string `json:"path" yaml:"path"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	CSVPath     string            `json:"csv" yaml:"csv"`
	Columns     ColumnConfig      `json:"columns" yaml:"columns"`
	Acquisition AcquisitionConfig `json:"acquisition" yaml:"acquisition"`
	Gallery     GalleryConfig     `json:"gallery" yaml:"gallery"`
	Assembly    AssemblyConfig    `json:"assembly" yaml:"assembly"`
	Ledger      LedgerConfig      `json:"ledger" yaml:"ledger"`
}
