package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

func sortedNames(m map[string]float64) []string {
	return slices.Sorted(maps.Keys(m))
}

func formatParams(m map[string]float64) string {
	if len(m) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(m))
	for _, name := range sortedNames(m) {
		parts = append(parts, fmt.Sprintf("%s=%g", name, m[name]))
	}
	return strings.Join(parts, " ")
}
