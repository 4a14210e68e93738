// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "lims2db/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// LIMSConfig holds settings for the LIMS gateway client.
type LIMSConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the root of the LIMS HTTP API.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Username and Password authenticate against the gateway. Usually
	// supplied through .secrets/ rather than the config file.
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
}

// StatusDBConfig holds settings for the status document store.
type StatusDBConfig struct {
	HTTPConfig `yaml:",inline"`

	// URL is the base URL of the document store.
	URL string `json:"url" yaml:"url"`

	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`

	// ProjectsDB and SamplesDB name the databases holding project
	// documents and sample-run-metrics documents.
	ProjectsDB string `json:"projects_db" yaml:"projects_db"`
	SamplesDB  string `json:"samples_db" yaml:"samples_db"`
}

// CatalogConfig selects the process category catalog.
type CatalogConfig struct {
	// Path points to a YAML catalog file. When empty the built-in
	// catalog is used.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// SyncConfig holds settings for multi-project synchronization.
type SyncConfig struct {
	// Workers is the number of concurrent project workers (default 4).
	Workers int `json:"workers" yaml:"workers"`

	// LockDir is the directory holding per-project lock files. A held
	// lock means another run is updating the project; the project is
	// skipped, not queued.
	LockDir string `json:"lock_dir" yaml:"lock_dir"`

	// Hours limits --all runs to projects modified within the window.
	// Zero means no limit.
	Hours int `json:"hours,omitempty" yaml:"hours,omitempty"`
}

// SnapshotConfig holds settings for the local snapshot archive.
type SnapshotConfig struct {
	// Dir is the directory holding the snapshot SQLite database.
	Dir string `json:"dir" yaml:"dir"`
}

// NotifyConfig holds settings for operational failure mail.
type NotifyConfig struct {
	// SMTPAddr is the host:port of the SMTP relay (default "localhost:25").
	SMTPAddr string `json:"smtp_addr" yaml:"smtp_addr"`

	// From is the sender address; Receiver the operator address.
	// Notification is disabled when Receiver is empty.
	From     string `json:"from" yaml:"from"`
	Receiver string `json:"receiver,omitempty" yaml:"receiver,omitempty"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	LIMS     LIMSConfig     `json:"lims" yaml:"lims"`
	StatusDB StatusDBConfig `json:"statusdb" yaml:"statusdb"`
	Catalog  CatalogConfig  `json:"catalog" yaml:"catalog"`
	Sync     SyncConfig     `json:"sync" yaml:"sync"`
	Snapshot SnapshotConfig `json:"snapshot" yaml:"snapshot"`
	Notify   NotifyConfig   `json:"notify" yaml:"notify"`
}
