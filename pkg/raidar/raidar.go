// Package raidar is a thin client for the encounter-analysis API. It
// resolves the area catalog and pages through the "encounters since"
// listing, newest first, exactly as the server returns them.
package raidar

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"

	"github.com/mvarnah/wingman/pkg/whttp"
	"github.com/tidwall/gjson"
)

// PageSize is the fixed page size for the encounter listing.
const PageSize = 15

type Client struct {
	APIURL string
	Token  string

	// HTTP overrides the transport in tests; nil means whttp's default
	// single-attempt client.
	HTTP *http.Client
}

// Encounter is one page item from the remote listing. It is consumed
// during reconciliation and not kept afterwards.
type Encounter struct {
	AreaID    int64
	URLID     string
	StartedAt int64
	Tags      []string
}

func (c *Client) get(ctx context.Context, rawURL string) (string, error) {
	res, err := whttp.SendHTTPRequest(&whttp.WHTTPReq{
		Method:  "GET",
		URL:     rawURL,
		Headers: []whttp.WHTTPHeader{{Name: "Authorization", Value: "Token " + c.Token}},
	}, c.HTTP)
	if err != nil {
		return "", err
	}
	if res.StatusCode == http.StatusUnauthorized {
		return "", fmt.Errorf("invalid API token")
	}
	if res.StatusCode != http.StatusOK {
		if res.HTTPTitle != "" {
			return "", fmt.Errorf("GET %s: status %d (%s)", rawURL, res.StatusCode, res.HTTPTitle)
		}
		return "", fmt.Errorf("GET %s: status %d", rawURL, res.StatusCode)
	}
	return res.BodyString, nil
}

// FetchAreas returns the raw /areas listing body. Called once per run;
// the catalog package does the name-to-id filing.
func (c *Client) FetchAreas(ctx context.Context) (string, error) {
	return c.get(ctx, c.APIURL+"/api/v2/areas")
}

// ListEncountersSince pages through /encounters with the fixed page size,
// following the server-supplied next reference. fn is invoked once per
// record in page order; returning false stops pagination early. A record
// whose tags match no element of tagGlob is skipped before fn. Any
// transport or HTTP failure aborts the listing.
func (c *Client) ListEncountersSince(ctx context.Context, since int64, tagGlob string, fn func(Encounter) bool) error {
	next := fmt.Sprintf("%s/api/v2/encounters?limit=%d&since=%d", c.APIURL, PageSize, since)

	for next != "" {
		body, err := c.get(ctx, next)
		if err != nil {
			return err
		}

		results := gjson.Get(body, "results").Array()
		if len(results) == 0 {
			return nil
		}

		for _, rec := range results {
			enc := Encounter{
				AreaID:    rec.Get("area_id").Int(),
				URLID:     rec.Get("url_id").String(),
				StartedAt: rec.Get("started_at").Int(),
			}
			for _, tag := range rec.Get("tags").Array() {
				enc.Tags = append(enc.Tags, tag.String())
			}

			if !matchesTagGlob(enc.Tags, tagGlob) {
				continue
			}
			if !fn(enc) {
				return nil
			}
		}

		next = gjson.Get(body, "next").String()
	}
	return nil
}

// EncounterURL builds the shareable remote link for a listed encounter.
func (c *Client) EncounterURL(urlID string) string {
	return c.APIURL + "/encounter/" + urlID
}

// RequestToken exchanges credentials for an API token with a single POST.
func (c *Client) RequestToken(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	res, err := whttp.SendHTTPRequest(&whttp.WHTTPReq{
		Method: "POST",
		URL:    c.APIURL + "/api/v2/token",
		Body:   form.Encode(),
		Headers: []whttp.WHTTPHeader{
			{Name: "Content-Type", Value: "application/x-www-form-urlencoded"},
		},
	}, c.HTTP)
	if err != nil {
		return "", err
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed: status %d", res.StatusCode)
	}

	token := gjson.Get(res.BodyString, "token").String()
	if token == "" {
		return "", fmt.Errorf("token request failed: no token in response")
	}
	return token, nil
}

func matchesTagGlob(tags []string, glob string) bool {
	if glob == "" {
		return true
	}
	for _, tag := range tags {
		if ok, err := path.Match(glob, tag); err == nil && ok {
			return true
		}
	}
	return false
}
