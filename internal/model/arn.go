package model

import (
	"fmt"
	"strconv"
	"strings"
)

// QuickSight ARNs have the shape
// arn:aws:quicksight:<region>:<account>:<kind>/<id>[/version/<n>].

// IDFromARN returns the trailing resource ID of an ARN.
func IDFromARN(arn string) string {
	parts := strings.Split(arn, "/")
	return parts[len(parts)-1]
}

// AccountFromARN returns the account ID segment of an ARN.
// Returns an empty string if the ARN is malformed.
func AccountFromARN(arn string) string {
	parts := strings.Split(arn, ":")
	if len(parts) < 5 {
		return ""
	}
	return parts[4]
}

// RegionFromARN returns the region segment of an ARN.
// Returns an empty string if the ARN is malformed.
func RegionFromARN(arn string) string {
	parts := strings.Split(arn, ":")
	if len(parts) < 4 {
		return ""
	}
	return parts[3]
}

// ReplaceAccountID returns the ARN with its account segment replaced.
func ReplaceAccountID(arn, accountID string) string {
	current := AccountFromARN(arn)
	if current == "" {
		return arn
	}
	return strings.Replace(arn, current, accountID, 1)
}

// DashboardVersionFromARN extracts the version number from a dashboard
// version ARN (…:dashboard/<id>/version/<n>).
func DashboardVersionFromARN(versionARN string) (int64, error) {
	id := IDFromARN(versionARN)
	version, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid dashboard version ARN %q: %w", versionARN, err)
	}
	return version, nil
}
