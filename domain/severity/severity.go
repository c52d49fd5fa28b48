// Package severity provides the ordered severity scale shared by the
// quality gate and the ops controller.
package severity

import (
	"fmt"
	"strings"
)

// Severity is an ordered level: INFO < LOW < MEDIUM < HIGH < CRITICAL.
type Severity string

// Severity values, lowest to highest.
const (
	Info     Severity = "INFO"
	Low      Severity = "LOW"
	Medium   Severity = "MEDIUM"
	High     Severity = "HIGH"
	Critical Severity = "CRITICAL"
)

// All returns every severity in ascending order.
func All() []Severity {
	return []Severity{Info, Low, Medium, High, Critical}
}

// rank maps each severity to its position on the scale.
var rank = map[Severity]int{
	Info:     0,
	Low:      1,
	Medium:   2,
	High:     3,
	Critical: 4,
}

// Parse converts a string to a Severity, case-insensitively.
func Parse(s string) (Severity, error) {
	sev := Severity(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := rank[sev]; !ok {
		return "", fmt.Errorf("unknown severity %q", s)
	}
	return sev, nil
}

// IsValid reports whether the severity is one of the known levels.
func (s Severity) IsValid() bool {
	_, ok := rank[s]
	return ok
}

// AtLeast reports whether s is at or above the given threshold.
func (s Severity) AtLeast(threshold Severity) bool {
	return rank[s] >= rank[threshold]
}

// String returns the canonical upper-case form.
func (s Severity) String() string { return string(s) }
