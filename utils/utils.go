package utils

import (
	"fmt"
	"math"
	"strings"
)

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func IntPtr(v int) *int {
	return &v
}

func FloatPtr(v float64) *float64 {
	return &v
}

// OwnerLabel returns the display name, or a label built from the owner id when
// the feed has no name for the owner.
func OwnerLabel(displayName, ownerID string) string {
	if name := strings.TrimSpace(displayName); name != "" {
		return name
	}
	if ownerID == "" {
		return "Unknown Owner"
	}
	return fmt.Sprintf("Owner %s", ownerID)
}

// CompareSeeds orders seeds ascending with missing seeds last.
func CompareSeeds(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}
