package status

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"
)

// scheduleSeparator is the vendor boilerplate sentence that terminates each
// embedded maintenance entry when several are concatenated in one schedule
// element.
const scheduleSeparator = " Regards, Ex Libris Cloud Services"

var (
	whitespaceRuns = regexp.MustCompile(`\s{2,}`)
	anchorTags     = regexp.MustCompile(`<a[^<]+?>|</a>`)
)

// Normalize strips the HTML noise the vendor embeds in the feed: line
// breaks, bold tags, escaped and literal newlines, anchor tags, and runs of
// whitespace.
func Normalize(raw string) string {
	replacer := strings.NewReplacer(
		"<br />", "",
		"<b>", "",
		"</b>", "",
		`\n`, " ",
		"\n", " ",
		`\r`, "",
		"\r", "",
	)
	s := strings.TrimSpace(replacer.Replace(raw))
	s = whitespaceRuns.ReplaceAllString(s, " ")
	return anchorTags.ReplaceAllString(s, "")
}

// Document is a parsed exlibriscloudstatus feed document.
type Document struct {
	XMLName  xml.Name `xml:"exlibriscloudstatus"`
	Instance Instance `xml:"instance"`

	// Text is the normalized document text the instance was parsed from.
	Text string `xml:"-"`
}

// Instance is the single instance element of the feed.
type Instance struct {
	ID        string   `xml:"id,attr"`
	Service   string   `xml:"service,attr"`
	Status    string   `xml:"status,attr"`
	Messages  []string `xml:"message"`
	Schedules []string `xml:"schedule"`
}

// ParseDocument parses a normalized feed document. Malformed XML is a hard
// error: the stored record must never be rebuilt from unparseable input.
func ParseDocument(normalized string) (*Document, error) {
	var doc Document
	if err := xml.Unmarshal([]byte(normalized), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
	}
	doc.Text = normalized
	return &doc, nil
}

// DedupSchedule splits a schedule blob on the vendor boilerplate separator,
// trims and drops empty segments, and deduplicates textually identical
// entries preserving first-seen order.
func DedupSchedule(schedule string) []string {
	segments := strings.Split(schedule, scheduleSeparator)
	seen := make(map[string]struct{}, len(segments))
	entries := make([]string, 0, len(segments))
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		if _, dup := seen[seg]; dup {
			continue
		}
		seen[seg] = struct{}{}
		entries = append(entries, seg)
	}
	return entries
}

// RenumberSchedule substitutes the schedule blob in doc with the
// deduplicated entries rewrapped in synthetic numbered tags
// (<match1>…<matchN>), yielding a document with distinguishable schedule
// entries instead of one opaque blob.
//
// The system this replaces populated every tag with the first entry's text.
// That was a defect, not a format anyone depends on, so each tag here
// carries its own entry.
func RenumberSchedule(doc, schedule string, entries []string) string {
	var b strings.Builder
	for i, entry := range entries {
		fmt.Fprintf(&b, "<match%d>%s</match%d>", i+1, entry, i+1)
	}
	return strings.Replace(doc, schedule, b.String(), 1)
}
