package patterns

import (
	"regexp"
	"sort"
	"strings"

	"github.com/logsift/logsift/pkg/classify"
)

// RecordType identifies one of the structural extractors.
type RecordType string

const (
	TypeURL         RecordType = "url"
	TypeIP          RecordType = "ip"
	TypeHTTPStatus  RecordType = "http_status"
	TypeSQL         RecordType = "sql"
	TypeAPIEndpoint RecordType = "api_endpoint"
	TypeException   RecordType = "exception"
)

// ValueCount is a distinct extracted value with its occurrence count.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Record is the tally of one structural pattern across a batch of messages.
// Examples holds up to 5 deduplicated sample values for url, ip, and sql
// records; TopValues holds the 5 most frequent (value, count) pairs for
// http_status, api_endpoint, and exception records.
type Record struct {
	Type      RecordType   `json:"type"`
	Label     string       `json:"label"`
	Count     int          `json:"count"`
	Examples  []string     `json:"examples,omitempty"`
	TopValues []ValueCount `json:"top_values,omitempty"`
}

const maxExamples = 5

var (
	urlRe = regexp.MustCompile(`https?://\S+`)
	ipRe  = regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)
	// Any bare 3-digit run counts as a status code candidate; recall is
	// preferred over precision here.
	statusRe    = regexp.MustCompile(`\b(?:HTTP/\d\.\d\s+)?(\d{3})\b`)
	endpointRe  = regexp.MustCompile(`(?:GET|POST|PUT|DELETE|PATCH)\s+([/\w\-]+)`)
	exceptionRe = regexp.MustCompile(`(\w+Exception|\w+Error|\w+Warning)`)
)

var sqlKeywords = []string{"SELECT", "INSERT", "UPDATE", "DELETE", "CREATE", "DROP", "ALTER"}

// Extract scans entry messages with six independent extractors and returns
// one Record per pattern type that matched at least once. An extractor with
// zero matches contributes no Record. Callers are expected to pre-filter
// entries to ERROR/WARNING; Extract itself does not look at levels.
func Extract(entries []classify.Entry) []Record {
	messages := make([]string, len(entries))
	for i, e := range entries {
		messages[i] = e.Message
	}

	var records []Record

	if urls := findAll(messages, urlRe); len(urls) > 0 {
		records = append(records, Record{
			Type:     TypeURL,
			Label:    "URL pattern",
			Count:    len(urls),
			Examples: dedupe(urls, maxExamples),
		})
	}

	if ips := findAll(messages, ipRe); len(ips) > 0 {
		records = append(records, Record{
			Type:     TypeIP,
			Label:    "IP address pattern",
			Count:    len(ips),
			Examples: dedupe(ips, maxExamples),
		})
	}

	if codes := findAllGroup(messages, statusRe); len(codes) > 0 {
		records = append(records, Record{
			Type:      TypeHTTPStatus,
			Label:     "HTTP status codes",
			Count:     len(codes),
			TopValues: topValues(codes, maxExamples),
		})
	}

	var sqlMessages []string
	for _, msg := range messages {
		upper := strings.ToUpper(msg)
		for _, kw := range sqlKeywords {
			if strings.Contains(upper, kw) {
				sqlMessages = append(sqlMessages, truncateRunes(msg, 100))
				break
			}
		}
	}
	if len(sqlMessages) > 0 {
		records = append(records, Record{
			Type:     TypeSQL,
			Label:    "SQL-related errors",
			Count:    len(sqlMessages),
			Examples: dedupe(sqlMessages, maxExamples),
		})
	}

	if endpoints := findAllGroup(messages, endpointRe); len(endpoints) > 0 {
		records = append(records, Record{
			Type:      TypeAPIEndpoint,
			Label:     "API endpoints",
			Count:     len(endpoints),
			TopValues: topValues(endpoints, maxExamples),
		})
	}

	if exceptions := findAllGroup(messages, exceptionRe); len(exceptions) > 0 {
		records = append(records, Record{
			Type:      TypeException,
			Label:     "Exception types",
			Count:     len(exceptions),
			TopValues: topValues(exceptions, maxExamples),
		})
	}

	return records
}

func findAll(messages []string, re *regexp.Regexp) []string {
	var all []string
	for _, msg := range messages {
		all = append(all, re.FindAllString(msg, -1)...)
	}
	return all
}

func findAllGroup(messages []string, re *regexp.Regexp) []string {
	var all []string
	for _, msg := range messages {
		for _, m := range re.FindAllStringSubmatch(msg, -1) {
			all = append(all, m[1])
		}
	}
	return all
}

// dedupe returns up to n distinct values in first-seen order.
func dedupe(values []string, n int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
		if len(out) == n {
			break
		}
	}
	return out
}

// topValues returns the n most frequent values with their counts, ties
// broken by first appearance.
func topValues(values []string, n int) []ValueCount {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	var keys []string
	for _, v := range values {
		if _, ok := counts[v]; !ok {
			firstSeen[v] = len(keys)
			keys = append(keys, v)
		}
		counts[v]++
	}

	sort.SliceStable(keys, func(i, j int) bool {
		ci, cj := counts[keys[i]], counts[keys[j]]
		if ci != cj {
			return ci > cj
		}
		return firstSeen[keys[i]] < firstSeen[keys[j]]
	})

	if len(keys) > n {
		keys = keys[:n]
	}
	out := make([]ValueCount, 0, len(keys))
	for _, k := range keys {
		out = append(out, ValueCount{Value: k, Count: counts[k]})
	}
	return out
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
