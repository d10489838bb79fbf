package syncyoutubecontent

import (
	"regexp"
	"strconv"
)

var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISODurationMinutes converts a YouTube ISO 8601 duration such as
// "PT1H2M30S" to whole minutes, rounding leftover seconds up.
// Empty or unrecognised input yields 0.
func ParseISODurationMinutes(duration string) int {
	m := isoDurationPattern.FindStringSubmatch(duration)
	if m == nil {
		return 0
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	return hours*60 + minutes + (seconds+59)/60
}
