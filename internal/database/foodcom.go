// SaveEat - Recipe Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saveeat

package database

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var errMalformedList = errors.New("malformed R list")

// parseRList parses the R vector encoding used by the Food.com export,
// e.g. c("a", "b"). A single quoted string is a one-element list, and NA,
// character(0) and empty cells are empty lists. Escaped quotes (\") inside
// elements are unescaped.
func parseRList(cell string) ([]string, error) {
	s := strings.TrimSpace(cell)
	switch s {
	case "", "NA", "character(0)", "c()":
		return nil, nil
	}

	if strings.HasPrefix(s, "c(") {
		if !strings.HasSuffix(s, ")") {
			return nil, errMalformedList
		}
		s = strings.TrimSpace(s[2 : len(s)-1])
	}

	var out []string
	for len(s) > 0 {
		if strings.HasPrefix(s, "NA") {
			s = strings.TrimSpace(s[2:])
		} else {
			if s[0] != '"' {
				return nil, errMalformedList
			}
			elem, rest, ok := readQuoted(s)
			if !ok {
				return nil, errMalformedList
			}
			if elem = strings.TrimSpace(elem); elem != "" {
				out = append(out, elem)
			}
			s = strings.TrimSpace(rest)
		}
		if s == "" {
			break
		}
		if s[0] != ',' {
			return nil, errMalformedList
		}
		s = strings.TrimSpace(s[1:])
		if s == "" {
			return nil, errMalformedList
		}
	}
	return out, nil
}

// readQuoted reads a double-quoted string at the start of s and returns its
// content and the remainder after the closing quote.
func readQuoted(s string) (elem, rest string, ok bool) {
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			}
		case '"':
			return b.String(), s[i+1:], true
		default:
			b.WriteByte(s[i])
		}
	}
	return "", "", false
}

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseISODuration converts an ISO-8601 duration such as PT1H30M to whole
// minutes. Seconds are dropped. ok is false for unparsable or zero
// durations.
func parseISODuration(s string) (minutes int, ok bool) {
	m := isoDuration.FindStringSubmatch(strings.TrimSpace(strings.ToUpper(s)))
	if m == nil {
		return 0, false
	}
	parts := [3]int{}
	for i, factor := range []int{24 * 60, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		v, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, false
		}
		parts[i] = v * factor
	}
	minutes = parts[0] + parts[1] + parts[2]
	return minutes, minutes > 0
}

// parseOptionalFloat parses a numeric cell; empty and NA cells are absent.
func parseOptionalFloat(s string) (*float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "NA" {
		return nil, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}
