package model

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// artifactFiles is the full artifact set a trained model publishes.
var artifactFiles = []string{
	primaryFile,
	decisionTreeFile,
	svmFile,
	svmScalerFile,
	featureNamesFile,
}

// FetchArtifacts downloads the artifact set from baseURL into dir before
// loading. The download is best-effort per file: a file that cannot be
// fetched is logged and skipped, leaving whatever already exists on disk
// in place. Returns the number of files fetched.
func FetchArtifacts(baseURL, dir string, timeout time.Duration) int {
	if baseURL == "" {
		return 0
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Warn().Err(err).Str("models_dir", dir).Msg("cannot create models directory")
		return 0
	}

	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	} else {
		client.SetTimeout(30 * time.Second)
	}

	fetched := 0
	for _, name := range artifactFiles {
		url := fmt.Sprintf("%s/%s", baseURL, name)
		resp, err := client.R().Get(url)
		if err != nil {
			log.Warn().Err(err).Str("url", url).Msg("artifact fetch failed")
			continue
		}
		if resp.StatusCode() != 200 {
			log.Warn().Int("status", resp.StatusCode()).Str("url", url).Msg("artifact fetch failed")
			continue
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, resp.Body(), 0o600); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("artifact write failed")
			continue
		}
		fetched++
	}

	if fetched > 0 {
		log.Info().Int("fetched", fetched).Str("base_url", baseURL).Msg("model artifacts downloaded")
	}
	return fetched
}
