package anomaly

import (
	"strings"

	"github.com/logsift/logsift/pkg/classify"
)

// featureCount is the fixed width of the per-entry feature vector:
// hour-of-day, day-of-week, ordinal level, message length, error-keyword flag.
const featureCount = 5

var errorKeywords = []string{"error", "exception", "failed", "timeout", "deadlock", "crash"}

// featureMatrix engineers one fixed-order feature vector per entry. Entries
// without a timestamp default to hour 12 and weekday 0.
func featureMatrix(entries []classify.Entry) [][]float64 {
	matrix := make([][]float64, len(entries))
	for i, e := range entries {
		hour, weekday := 12.0, 0.0
		if e.Timestamp != nil {
			hour = float64(e.Timestamp.Hour())
			weekday = float64(e.Timestamp.Weekday())
		}

		matrix[i] = []float64{
			hour,
			weekday,
			levelOrdinal(e.Level),
			float64(len(e.Message)),
			keywordFlag(e.Message),
		}
	}
	return matrix
}

func levelOrdinal(level classify.Level) float64 {
	switch level {
	case classify.LevelError:
		return 3
	case classify.LevelWarning:
		return 2
	case classify.LevelInfo:
		return 1
	default:
		return 0
	}
}

func keywordFlag(message string) float64 {
	lower := strings.ToLower(message)
	for _, kw := range errorKeywords {
		if strings.Contains(lower, kw) {
			return 1
		}
	}
	return 0
}
