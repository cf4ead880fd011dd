package analysis

import (
	"fmt"
	"strings"
)

// SlowRequestThresholdMS flags a request as suspicious above this duration.
const SlowRequestThresholdMS = 5000

// sensitivePaths are URI substrings that flag a request as touching a
// sensitive endpoint.
var sensitivePaths = []string{
	"/admin",
	"/api/admin",
	"/dashboard/admin",
	"/user/delete",
	"/config",
}

// SuspiciousReasons classifies one request/activity row. A row is suspicious
// when any condition matches; every matching reason is reported.
func SuspiciousReasons(status int, uri string, durationMS float64) []string {
	var reasons []string
	if status >= 400 && status < 500 {
		reasons = append(reasons, fmt.Sprintf("client error response (HTTP %d)", status))
	}
	for _, path := range sensitivePaths {
		if strings.Contains(uri, path) {
			reasons = append(reasons, fmt.Sprintf("sensitive endpoint (%s)", path))
			break
		}
	}
	if durationMS > SlowRequestThresholdMS {
		reasons = append(reasons, fmt.Sprintf("slow response (%.0f ms)", durationMS))
	}
	return reasons
}
