package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/inhuren/agency-scraper/internal/config"
	"github.com/inhuren/agency-scraper/internal/model"
)

// WriteProfile writes a finished profile to <dir>/<agency-key>.json and
// returns the path written.
func WriteProfile(cfg config.OutputConfig, agencyKey string, profile *model.AgencyProfile) (string, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "profiles"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrap(err, "output: create dir")
	}

	path := filepath.Join(dir, agencyKey+".json")
	data, err := marshalJSON(profile, cfg.Pretty)
	if err != nil {
		return "", eris.Wrap(err, "output: marshal profile")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", eris.Wrap(err, "output: write profile")
	}
	return path, nil
}

// WriteDiscoveryReport writes a discovery report to
// <dir>/<agency-key>-discovery.json and returns the path written.
func WriteDiscoveryReport(cfg config.OutputConfig, agencyKey string, result *model.DiscoveryResult) (string, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "profiles"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrap(err, "output: create dir")
	}

	path := filepath.Join(dir, agencyKey+"-discovery.json")
	data, err := marshalJSON(result, cfg.Pretty)
	if err != nil {
		return "", eris.Wrap(err, "output: marshal report")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", eris.Wrap(err, "output: write report")
	}
	return path, nil
}

func marshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
