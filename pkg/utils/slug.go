package utils

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile("[^a-z0-9]+")

// Slugify lowercases s and joins its alphanumeric runs with sep.
func Slugify(s, sep string) string {
	s = strings.ToLower(s)
	s = nonAlnum.ReplaceAllString(s, sep)
	return strings.Trim(s, sep)
}
