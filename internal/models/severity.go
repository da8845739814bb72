package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSeverity is returned when a severity is outside the known set.
var ErrInvalidSeverity = errors.New("invalid severity")

// ErrInvalidStatus is returned when a finding status is outside the known set.
var ErrInvalidStatus = errors.New("invalid finding status")

// Severity ranks the impact of a dork, result or finding.
type Severity string

// Known severities, most severe first.
const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
	SeverityInfo     Severity = "Info"
)

// Severities lists every severity from most to least severe.
var Severities = []Severity{
	SeverityCritical,
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
	SeverityInfo,
}

// ParseSeverity returns the canonical severity for s, ignoring letter case.
func ParseSeverity(s string) (Severity, error) {
	for _, sev := range Severities {
		if strings.EqualFold(strings.TrimSpace(s), string(sev)) {
			return sev, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSeverity, s)
}

// Valid reports whether s is one of the canonical severities.
func (s Severity) Valid() bool {
	for _, sev := range Severities {
		if s == sev {
			return true
		}
	}
	return false
}

// FindingStatus is the lifecycle state of a finding.
type FindingStatus string

// Finding states. A finding starts open and can only move to remediated.
const (
	FindingOpen       FindingStatus = "open"
	FindingRemediated FindingStatus = "remediated"
)

// ParseFindingStatus validates a finding status string.
func ParseFindingStatus(s string) (FindingStatus, error) {
	switch FindingStatus(strings.ToLower(strings.TrimSpace(s))) {
	case FindingOpen:
		return FindingOpen, nil
	case FindingRemediated:
		return FindingRemediated, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}
