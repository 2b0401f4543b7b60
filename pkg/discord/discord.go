// Package discord publishes the rendered report payload to the chat
// webhook and advances the last-processed timestamp on success.
package discord

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/mvarnah/wingman/internal/utils"
	"github.com/mvarnah/wingman/pkg/state"
	"github.com/mvarnah/wingman/pkg/whttp"
)

type Options struct {
	WebhookURL string

	// Debug prints the payload to stdout instead of posting it. No
	// network call is made and the state file is not advanced.
	Debug bool

	// DumpDir, when set and existing, receives a timestamped copy of
	// every payload before the POST. An absent directory is skipped
	// silently.
	DumpDir string

	// StatePath is the last-upload timestamp file, written only after
	// a successful POST. Empty disables the update.
	StatePath string

	// HTTP overrides the transport in tests.
	HTTP *http.Client

	// Now is the clock used for dump filenames and the state update.
	// Nil means time.Now.
	Now func() time.Time
}

// Publish delivers one rendered payload. Debug mode short-circuits
// before any side effect. Otherwise the dump file (if enabled) is
// written first, then the POST; a transport failure or non-2xx status
// is fatal and leaves the state file untouched.
func Publish(payload string, opts Options) error {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	if opts.Debug {
		fmt.Println(payload)
		return nil
	}

	if opts.DumpDir != "" {
		if utils.DirExists(opts.DumpDir) {
			name := "report-" + now().Format("20060102-150405") + ".json"
			path := filepath.Join(opts.DumpDir, utils.SanitizeFilename(name))
			if err := os.WriteFile(path, []byte(payload), 0644); err != nil {
				return fmt.Errorf("writing payload dump: %w", err)
			}
			utils.Log.Debugf("Wrote payload dump to %s", path)
		} else {
			utils.Log.Debugf("Dump directory %s does not exist, skipping", opts.DumpDir)
		}
	}

	res, err := whttp.SendHTTPRequest(&whttp.WHTTPReq{
		Method:  "POST",
		URL:     opts.WebhookURL,
		Body:    payload,
		Headers: []whttp.WHTTPHeader{{Name: "Content-Type", Value: "application/json"}},
	}, opts.HTTP)
	if err != nil {
		return fmt.Errorf("webhook POST failed: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("webhook POST failed: status %d", res.StatusCode)
	}

	if opts.StatePath != "" {
		if err := state.Write(opts.StatePath, now().Unix()); err != nil {
			return fmt.Errorf("updating state file: %w", err)
		}
	}
	return nil
}
