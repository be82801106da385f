// Package normalize turns raw extraction frames into typed per-source row
// sets. Each source has its own normalizer; all share one accounting
// discipline: a row is either kept (possibly with individual fields nulled)
// or dropped, and every null and every drop lands in the Report under a
// stable reason string. Nothing is silently lost.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// currencyRe extracts the amount from price text like "$1,234.56". Group 1
// is the numeric part without the dollar sign.
var currencyRe = regexp.MustCompile(`\$([\d,]+\.?\d*)`)

// parseCurrency reads a money amount from cell text. Dollar-sign values go
// through the currency pattern; anything else is tried as a plain number
// after comma removal. ok=false when no amount can be read.
func parseCurrency(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if m := currencyRe.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// round2 rounds half away from zero to two decimals, matching the
// NUMERIC(10,2) columns the values land in.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func parseIntField(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseFloatField(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// timestampLayouts are tried in order. The events source writes day-first
// "31/12/2023 14:05"; seconds-bearing and RFC 3339 forms show up in
// hand-maintained exports.
var timestampLayouts = []string{
	"2/1/2006 15:04",
	"2/1/2006 15:04:05",
	time.RFC3339,
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// cleanString trims a cell and returns nil for empty.
func cleanString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// canonEnum matches s case-insensitively against the allowed values and
// returns the canonical spelling. ok=false means s is outside the enum;
// the caller decides whether to keep it.
func canonEnum(s string, allowed []string) (string, bool) {
	for _, a := range allowed {
		if strings.EqualFold(s, a) {
			return a, true
		}
	}
	return s, false
}
