package services

import "strings"

// Known region names recognized inside usernames. The label is cosmetic: it
// feeds the login welcome message only.
var regionNames = []string{"seoul", "busan", "incheon", "daegu"}

// InferRegion returns a region label when the username contains one of the
// known region names (case-insensitive substring match), or "" when none
// matches. The first match in regionNames order wins.
func InferRegion(username string) string {
	lower := strings.ToLower(username)
	for _, region := range regionNames {
		if strings.Contains(lower, region) {
			return region
		}
	}
	return ""
}
