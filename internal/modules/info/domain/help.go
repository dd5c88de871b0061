package domain

import (
	"cmp"
	"slices"
)

// CommandSummary is one line of the /help listing.
type CommandSummary struct {
	Name        string
	Description string
}

// SortCommands returns the commands ordered by name.
func SortCommands(commands []CommandSummary) []CommandSummary {
	sorted := slices.Clone(commands)
	slices.SortFunc(sorted, func(a, b CommandSummary) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return sorted
}
