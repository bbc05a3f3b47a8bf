// Package updater checks GitHub for newer releases.
package updater

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	version "github.com/hashicorp/go-version"

	"aria-downloader/internal/config"
	"aria-downloader/internal/shared"
)

const (
	defaultRepo    = "aria-music/aria-downloader"
	githubAPI      = "https://api.github.com"
	requestTimeout = 10 * time.Second
)

type githubRelease struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// CheckForUpdates reports whether a newer release exists. Development
// builds and failures stay quiet apart from a short notice; an update
// check must never get in the way of a rip.
func CheckForUpdates(cfg *config.Config, currentVersion string) {
	if cfg.DisableUpdateCheck || currentVersion == "dev" {
		return
	}

	repo := defaultRepo
	if cfg.UpdateRepo != "" {
		repo = cfg.UpdateRepo
	}

	latest, releaseURL, err := latestRelease(githubAPI, repo)
	if err != nil {
		shared.ColorWarning.Printf("⚠️ Could not check for updates: %v\n", err)
		return
	}

	if isNewerVersion(latest, currentVersion) {
		shared.ColorWarning.Printf("A new version (%s) is available, you are running %s.\n", latest, currentVersion)
		shared.ColorInfo.Printf("Get it at %s\n", releaseURL)
	}
}

// latestRelease fetches the newest release tag for a GitHub repo.
func latestRelease(baseURL, repo string) (string, string, error) {
	client := &http.Client{Timeout: requestTimeout}
	resp, err := client.Get(fmt.Sprintf("%s/repos/%s/releases/latest", baseURL, repo))
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", "", fmt.Errorf("failed to decode release response: %w", err)
	}
	if release.TagName == "" {
		return "", "", fmt.Errorf("release response carried no tag")
	}

	return release.TagName, release.HTMLURL, nil
}

// isNewerVersion compares two versions using semantic versioning
func isNewerVersion(latest, current string) bool {
	vLatest, err := version.NewVersion(latest)
	if err != nil {
		return false
	}
	vCurrent, err := version.NewVersion(current)
	if err != nil {
		return false
	}
	return vLatest.GreaterThan(vCurrent)
}
