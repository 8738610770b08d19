// Package enceladus enriches Enceladus standardisation and conformance runs
// with their classification and the matching Menas run documents.
package enceladus

import (
	"strconv"
	"strings"
)

// Run types.
const (
	TypeStandardization = "standardization"
	TypeConformance     = "conformance"
)

const (
	standardizationPrefix = "Standardisation "
	conformancePrefix     = "Dynamic Conformance "
)

// Classification is parsed from an application name such as
// "Standardisation 2.1.0 sales 3 2020-01-31 1".
type Classification struct {
	Project        string
	App            string
	Type           string
	AppVersion     string
	Dataset        string
	DatasetVersion string
	InfoDate       string
	InfoVersion    string
}

// IsEnceladusRun reports whether name is a standardisation or conformance run.
func IsEnceladusRun(name string) bool {
	_, ok := Classify(name)
	return ok
}

// Classify parses name. It returns false for names of other applications.
func Classify(name string) (Classification, bool) {
	values := strings.Split(name, " ")
	var typ string
	switch {
	case strings.HasPrefix(name, standardizationPrefix) && len(values) == 6:
		typ = TypeStandardization
	case strings.HasPrefix(name, conformancePrefix) && len(values) == 7:
		typ = TypeConformance
		values = values[1:]
	default:
		return Classification{}, false
	}
	return Classification{
		Project:        "enceladus",
		App:            "enceladus",
		Type:           typ,
		AppVersion:     values[1],
		Dataset:        values[2],
		DatasetVersion: values[3],
		InfoDate:       values[4],
		InfoVersion:    values[5],
	}, true
}

// Tag groups runs of one job definition: "{type}_{app_version}_{dataset}_{dataset_version}".
func (c Classification) Tag() string {
	return strings.Join([]string{c.Type, c.AppVersion, c.Dataset, c.DatasetVersion}, "_")
}

// Map is the stored form; digit-only versions become integers.
func (c Classification) Map() map[string]any {
	return map[string]any{
		"project":         c.Project,
		"app":             c.App,
		"type":            c.Type,
		"app_version":     c.AppVersion,
		"dataset":         c.Dataset,
		"dataset_version": CastValue(c.DatasetVersion),
		"info_date":       c.InfoDate,
		"info_version":    CastValue(c.InfoVersion),
	}
}

// ParseInt parses a digit-only string. Signs, spaces and empty strings are rejected.
func ParseInt(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// CastValue returns s as an int64 if it is digit-only, else s.
func CastValue(s string) any {
	if n, ok := ParseInt(s); ok {
		return n
	}
	return s
}
