// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/doi-metadata/internal/httputil"
	"github.com/pdiddy/doi-metadata/internal/idconv"
	"github.com/pdiddy/doi-metadata/internal/secrets"
	"github.com/pdiddy/doi-metadata/internal/sources"
	"github.com/pdiddy/doi-metadata/pkg/types"
)

// envKeyReplacer maps "http.rate_limit" to DOI_METADATA_HTTP_RATE_LIMIT.
var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// sourceNames are the keys under sources.* that accept a base_url.
var sourceNames = []string{"crossref", "zenodo", "arxiv", "rxiv", "europepmc", "idconv"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.timeout", httputil.DefaultTimeout)
	v.SetDefault("http.source_timeout", sources.DefaultTimeout)
	v.SetDefault("http.user_agent", httputil.DefaultUserAgent)
	v.SetDefault("http.rate_limit", httputil.DefaultRateLimit)
	v.SetDefault("ncbi.tool", idconv.DefaultTool)
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.format", string(types.OutputJSON))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	for _, name := range sourceNames {
		v.SetDefault("sources."+name+".base_url", "")
	}
}

// resolveConfig assembles a ResolveConfig from v, filling the contact email
// and NCBI key from creds when configuration leaves them empty.
func resolveConfig(v *viper.Viper, creds secrets.Credentials) (types.ResolveConfig, error) {
	format := types.OutputFormat(strings.ToLower(v.GetString("output.format")))
	switch format {
	case "", types.OutputJSON:
		format = types.OutputJSON
	case types.OutputCSL:
	default:
		return types.ResolveConfig{}, fmt.Errorf("unknown output format %q (want json or csl)", format)
	}

	email := v.GetString("contact.email")
	if email == "" {
		email = creds.ContactEmail
	}
	apiKey := v.GetString("ncbi.api_key")
	if apiKey == "" {
		apiKey = creds.NCBIAPIKey
	}

	return types.ResolveConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:       durationOr(v.GetDuration("http.timeout"), httputil.DefaultTimeout),
			SourceTimeout: durationOr(v.GetDuration("http.source_timeout"), sources.DefaultTimeout),
			UserAgent:     v.GetString("http.user_agent"),
			ContactEmail:  email,
			RateLimit:     v.GetFloat64("http.rate_limit"),
		},
		Sources: types.SourcesConfig{
			CrossRef:  types.Endpoint{BaseURL: v.GetString("sources.crossref.base_url")},
			Zenodo:    types.Endpoint{BaseURL: v.GetString("sources.zenodo.base_url")},
			Arxiv:     types.Endpoint{BaseURL: v.GetString("sources.arxiv.base_url")},
			Rxiv:      types.Endpoint{BaseURL: v.GetString("sources.rxiv.base_url")},
			EuropePMC: types.Endpoint{BaseURL: v.GetString("sources.europepmc.base_url")},
			IDConv:    types.Endpoint{BaseURL: v.GetString("sources.idconv.base_url")},
		},
		NCBITool:   v.GetString("ncbi.tool"),
		NCBIAPIKey: apiKey,
		OutputDir:  v.GetString("output.dir"),
		Format:     format,
	}, nil
}

// packageConfig reads the package.* keys.
func packageConfig(v *viper.Viper) (types.PackageConfig, error) {
	var cfg types.PackageConfig
	if err := v.UnmarshalKey("package", &cfg); err != nil {
		return cfg, fmt.Errorf("reading package configuration: %w", err)
	}
	// Nested unmarshaling does not see values bound to flags.
	if root := v.GetString("package.root"); root != "" {
		cfg.Root = root
	}
	return cfg, nil
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
