package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// planPrefix starts the purpose of every transaction booked for a plan.
const planPrefix = "Plan-Id: "

// FormatPlanPurpose returns a transaction purpose like "Plan-Id: 5f0c...".
func FormatPlanPurpose(planID uuid.UUID) string {
	return planPrefix + planID.String()
}

// ParsePlanPurpose extracts the plan id from a purpose written by
// FormatPlanPurpose.
func ParsePlanPurpose(purpose string) (uuid.UUID, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(purpose), planPrefix)
	if !ok {
		return uuid.Nil, fmt.Errorf("purpose %q does not reference a plan", purpose)
	}
	planID, err := uuid.Parse(rest)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid plan id in purpose %q: %w", purpose, err)
	}
	return planID, nil
}

// IsPlanPurpose reports whether purpose references a plan.
func IsPlanPurpose(purpose string) bool {
	_, err := ParsePlanPurpose(purpose)
	return err == nil
}

// Parse parses a uuid given on the command line or in a URL, naming the
// kind of object in the error.
func Parse(kind, s string) (uuid.UUID, error) {
	u, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q: %w", kind, s, err)
	}
	return u, nil
}
