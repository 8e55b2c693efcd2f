// Copyright 2017 Santhosh Kumar Tekuri. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package formats is the registry of named "format" keyword checkers
// consulted by a compiled schema's format assertion.
package formats

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/secure/precis"
)

// Checker validates the string form of an instance value; it is never
// called for non-string instances, since format only constrains strings.
type Checker func(s string) bool

var registry = map[string]Checker{
	"date-time":             IsDateTime,
	"date":                  IsDate,
	"time":                  IsTime,
	"duration":              IsDuration,
	"hostname":               IsHostname,
	"idn-hostname":          IsIDNHostname,
	"email":                 IsEmail,
	"idn-email":             IsIDNEmail,
	"ip-address":            IsIPV4,
	"ipv4":                  IsIPV4,
	"ipv6":                  IsIPV6,
	"uri":                   IsURI,
	"uriref":                IsURIRef,
	"uri-reference":         IsURIRef,
	"iri":                   IsURI,
	"iri-reference":         IsURIRef,
	"uri-template":          IsURITemplate,
	"regex":                 IsRegex,
	"json-pointer":          IsJSONPointer,
	"relative-json-pointer": IsRelativeJSONPointer,
	"uuid":                  IsUUID,
}

func init() {
	registry["format"] = IsFormat
}

// Register adds or replaces a named format checker.
func Register(name string, c Checker) { registry[name] = c }

// IsFormat reports whether name is a known registered format.
func IsFormat(name string) bool {
	_, ok := registry[name]
	return ok
}

// Get returns a validation function usable as a compiled Schema's format
// check: it is a no-op (nil error) for anything but a string, matching the
// json-schema rule that "format" only constrains string instances.
func Get(name string) (func(v any) error, bool) {
	c, ok := registry[name]
	if !ok {
		return nil, false
	}
	return func(v any) error {
		s, ok := v.(string)
		if !ok {
			return nil
		}
		if !c(s) {
			return fmt.Errorf("not a valid %s", name)
		}
		return nil
	}, true
}

func IsDateTime(s string) bool {
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339Nano, s)
	return err == nil
}

func IsDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func IsTime(s string) bool {
	for _, layout := range []string{"15:04:05Z07:00", "15:04:05.999999999Z07:00"} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

var durationPattern = regexp.MustCompile(`^P(\d+W|(\d+Y)?(\d+M)?(\d+D)?(T(\d+H)?(\d+M)?(\d+(\.\d+)?S)?)?)$`)

// IsDuration checks the ISO 8601 duration grammar used by draft 2019-09's
// "duration" format; it rejects the empty "P" with nothing after it.
func IsDuration(s string) bool {
	if s == "P" || s == "" {
		return false
	}
	return durationPattern.MatchString(s)
}

// https://en.wikipedia.org/wiki/Hostname#Restrictions_on_valid_host_names
func IsHostname(s string) bool {
	s = strings.TrimSuffix(s, ".")
	strLen := len(s)
	if strLen > 253 || strLen == 0 {
		return false
	}

	for _, label := range strings.Split(s, ".") {
		if labelLen := len(label); labelLen < 1 || labelLen > 63 {
			return false
		}
		if first := label[0]; (first >= '0' && first <= '9') || first == '-' {
			return false
		}
		if label[len(label)-1] == '-' {
			return false
		}
		for _, c := range label {
			valid := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-'
			if !valid {
				return false
			}
		}
	}
	return true
}

// IsIDNHostname is "hostname" generalized to internationalized labels: the
// whole name (minus a trailing dot) is at most 253 runes, and each label is
// non-empty, accepted by PRECIS's NicknameCaseMapped profile and at most 63
// runes once folded. The ASCII hostname character and hyphen rules are not
// applied to the labels.
func IsIDNHostname(s string) bool {
	s = strings.TrimSuffix(s, ".")
	strLen := len([]rune(s))
	if strLen > 253 || strLen == 0 {
		return false
	}
	for _, label := range strings.Split(s, ".") {
		if label == "" {
			return false
		}
		folded, err := precis.NicknameCaseMapped.String(label)
		if err != nil {
			return false
		}
		if len([]rune(folded)) > 63 {
			return false
		}
	}
	return true
}

// https://en.wikipedia.org/wiki/Email_address
func IsEmail(s string) bool {
	if len(s) > 254 {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	if at == -1 {
		return false
	}
	local := s[0:at]
	domain := s[at+1:]
	if len(local) == 0 || len(local) > 64 {
		return false
	}
	if len(domain) > 255 {
		return false
	}
	return IsHostname(domain)
}

// IsIDNEmail is "email" generalized so the domain part is validated with
// IsIDNHostname and the local part is folded through PRECIS's UsernameCaseMapped
// profile instead of being restricted to ASCII.
func IsIDNEmail(s string) bool {
	at := strings.LastIndexByte(s, '@')
	if at == -1 {
		return false
	}
	local := s[0:at]
	domain := s[at+1:]
	if local == "" {
		return false
	}
	if _, err := precis.UsernameCaseMapped.String(local); err != nil {
		return false
	}
	return IsIDNHostname(domain)
}

func IsIPV4(s string) bool {
	groups := strings.Split(s, ".")
	if len(groups) != 4 {
		return false
	}
	for _, group := range groups {
		if len(group) > 1 && group[0] == '0' {
			return false
		}
		n, err := strconv.Atoi(group)
		if err != nil || n < 0 || n > 255 {
			return false
		}
	}
	return true
}

func IsIPV6(s string) bool {
	if !strings.Contains(s, ":") {
		return false
	}
	return net.ParseIP(s) != nil
}

func IsURI(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs()
}

func IsURIRef(s string) bool {
	_, err := url.Parse(s)
	return err == nil
}

var uriTemplatePattern = regexp.MustCompile(`\{[^{}]+\}`)

// IsURITemplate checks RFC 6570 syntax loosely: every {...} expression must
// be well-formed (balanced, non-empty operator/varname) and the literal
// portions must themselves be a valid URI reference once expressions are
// stripped out.
func IsURITemplate(s string) bool {
	if strings.Count(s, "{") != strings.Count(s, "}") {
		return false
	}
	stripped := uriTemplatePattern.ReplaceAllString(s, "")
	if strings.ContainsAny(stripped, "{}") {
		return false
	}
	_, err := url.Parse(stripped)
	return err == nil
}

func IsRegex(s string) bool {
	_, err := regexp.Compile(s)
	return err == nil
}

// IsJSONPointer checks RFC 6901 syntax: empty, or a sequence of "/"-prefixed
// tokens where every "~" is immediately followed by "0" or "1".
func IsJSONPointer(s string) bool {
	if s == "" {
		return true
	}
	if s[0] != '/' {
		return false
	}
	return validPointerTokens(s)
}

// IsRelativeJSONPointer checks the draft 2019-09 "relative-json-pointer"
// format: a non-negative integer (how many levels up), optionally followed
// by either "#" or a json pointer.
func IsRelativeJSONPointer(s string) bool {
	i := 0
	if i >= len(s) || s[i] < '0' || s[i] > '9' {
		return false
	}
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	rest := s[i:]
	if rest == "" || rest == "#" {
		return true
	}
	if rest[0] != '/' {
		return false
	}
	return validPointerTokens(rest)
}

func validPointerTokens(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '~' {
			if i+1 >= len(s) || (s[i+1] != '0' && s[i+1] != '1') {
				return false
			}
		}
	}
	return true
}

var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

func IsUUID(s string) bool { return uuidPattern.MatchString(s) }
