// Package report renders reconciled boss results into the chat webhook
// payload: one embed per calendar date, one field per encounter, plus a
// trailing roster field.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mvarnah/wingman/pkg/reconcile"
	"github.com/tidwall/sjson"
)

// The four reserved glyphs. Field text carries the placeholder tokens
// until serialization is done; RestoreGlyphs swaps in the literal
// characters afterwards, never before.
const (
	GlyphZWSP      = "\u200b"
	GlyphBoxDash   = "\u2500"
	GlyphEmDash    = "\u2014"
	GlyphMiddleDot = "\u00b7"

	tokenZWSP      = "{{ZWSP}}"
	tokenBoxDash   = "{{BOXDASH}}"
	tokenEmDash    = "{{EMDASH}}"
	tokenMiddleDot = "{{MIDDOT}}"
)

const defaultColor = 0xB33EE2

type Config struct {
	TitlePrefix  string
	ThumbnailURL string
	FooterText   string

	// Emojis maps encounter display names to the symbol reference
	// prefixed to each field name.
	Emojis map[string]string

	Color int

	// Location is the timezone used for calendar-date grouping. Nil
	// means the process-local timezone.
	Location *time.Location
}

type dateGroup struct {
	date    time.Time
	results []reconcile.BossResult
}

// Render builds the webhook payload document. empty reports that no
// result carried any link, which callers treat as a normal
// nothing-to-report exit.
func Render(results []reconcile.BossResult, cfg Config) (payload string, empty bool) {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	groups := groupByDate(results, loc)
	if len(groups) == 0 {
		return "", true
	}

	color := cfg.Color
	if color == 0 {
		color = defaultColor
	}

	payload = `{"embeds":[]}`
	for gi, g := range groups {
		prefix := fmt.Sprintf("embeds.%d", gi)
		payload, _ = sjson.Set(payload, prefix+".title", groupTitle(g, cfg.TitlePrefix))
		payload, _ = sjson.Set(payload, prefix+".color", color)

		fi := 0
		for _, res := range g.results {
			payload, _ = sjson.Set(payload, fmt.Sprintf("%s.fields.%d.name", prefix, fi), fieldName(res, cfg.Emojis))
			payload, _ = sjson.Set(payload, fmt.Sprintf("%s.fields.%d.value", prefix, fi), fieldValue(res))
			payload, _ = sjson.Set(payload, fmt.Sprintf("%s.fields.%d.inline", prefix, fi), true)
			fi++
		}

		// Invisible-name divider row, then the roster.
		payload, _ = sjson.Set(payload, fmt.Sprintf("%s.fields.%d.name", prefix, fi), tokenZWSP)
		payload, _ = sjson.Set(payload, fmt.Sprintf("%s.fields.%d.value", prefix, fi), strings.Repeat(tokenBoxDash, 18))
		payload, _ = sjson.Set(payload, fmt.Sprintf("%s.fields.%d.inline", prefix, fi), false)
		fi++

		payload, _ = sjson.Set(payload, fmt.Sprintf("%s.fields.%d.name", prefix, fi), "Raiders")
		payload, _ = sjson.Set(payload, fmt.Sprintf("%s.fields.%d.value", prefix, fi), roster(g.results))
		payload, _ = sjson.Set(payload, fmt.Sprintf("%s.fields.%d.inline", prefix, fi), false)

		if cfg.ThumbnailURL != "" {
			payload, _ = sjson.Set(payload, prefix+".thumbnail.url", cfg.ThumbnailURL)
		}
		footer := cfg.FooterText
		if footer == "" {
			footer = "wingman " + tokenEmDash + " raid clears"
		}
		payload, _ = sjson.Set(payload, prefix+".footer.text", footer)
	}

	return RestoreGlyphs(payload), false
}

// RestoreGlyphs substitutes the literal reserved glyphs for their
// placeholder tokens in an already-serialized document. This is the
// single substitution point; nothing replaces tokens before
// serialization.
func RestoreGlyphs(serialized string) string {
	r := strings.NewReplacer(
		tokenZWSP, GlyphZWSP,
		tokenBoxDash, GlyphBoxDash,
		tokenEmDash, GlyphEmDash,
		tokenMiddleDot, GlyphMiddleDot,
	)
	return r.Replace(serialized)
}

func groupByDate(results []reconcile.BossResult, loc *time.Location) []dateGroup {
	byDate := make(map[string]*dateGroup)
	for _, res := range results {
		if res.RemoteLink == "" && res.Permalink == "" {
			continue
		}
		local := res.StartTime.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		key := day.Format("2006-01-02")
		g, ok := byDate[key]
		if !ok {
			g = &dateGroup{date: day}
			byDate[key] = g
		}
		g.results = append(g.results, res)
	}

	groups := make([]dateGroup, 0, len(byDate))
	for _, g := range byDate {
		sort.SliceStable(g.results, func(i, j int) bool {
			return g.results[i].StartTime.Before(g.results[j].StartTime)
		})
		groups = append(groups, *g)
	}

	// Upstream ordering quirk, kept on purpose: groups sort by weekday,
	// most recent day of the reset week first, not by calendar date.
	sort.SliceStable(groups, func(i, j int) bool {
		return weekdayKey(groups[i].date) > weekdayKey(groups[j].date)
	})
	return groups
}

// weekdayKey is the Monday-based weekday index of d.
func weekdayKey(d time.Time) int {
	return (int(d.Weekday()) + 6) % 7
}

func groupTitle(g dateGroup, prefix string) string {
	seen := make(map[int]bool)
	var wings []string
	for _, res := range g.results {
		if !seen[res.Type.Wing] {
			seen[res.Type.Wing] = true
			wings = append(wings, fmt.Sprintf("%d", res.Type.Wing))
		}
	}
	return fmt.Sprintf("%s Wings: %s | %s", prefix, strings.Join(wings, ", "), g.date.Format("Jan 2, 2006"))
}

func fieldName(res reconcile.BossResult, emojis map[string]string) string {
	emoji := emojis[res.Type.Name]
	if emoji == "" {
		// viper hands config maps back with lowercased keys.
		emoji = emojis[strings.ToLower(res.Type.Name)]
	}
	if emoji != "" {
		return emoji + " " + res.Type.Name
	}
	return res.Type.Name
}

func fieldValue(res reconcile.BossResult) string {
	var links []string
	if res.Permalink != "" {
		links = append(links, mdLink("dps.report", res.Permalink))
	}
	if res.RemoteLink != "" {
		links = append(links, mdLink("gw2raidar", res.RemoteLink))
	}
	return strings.Join(links, " "+tokenMiddleDot+" ")
}

// mdLink renders a markdown reference with the URL duplicated into the
// hover text.
func mdLink(label, url string) string {
	return fmt.Sprintf("[%s](%s \"%s\")", label, url, url)
}

func roster(results []reconcile.BossResult) string {
	seen := make(map[string]bool)
	var names []string
	for _, res := range results {
		for _, name := range res.Accounts {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	if len(names) == 0 {
		return tokenZWSP
	}
	return strings.Join(names, " "+tokenMiddleDot+" ")
}
