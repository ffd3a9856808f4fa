package status_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SydneyUniLibrary/exlibris-status-api/internal/status"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips html noise",
			in:   "<b>Primo</b> status<br />line",
			want: "Primo statusline",
		},
		{
			name: "collapses newlines and whitespace runs",
			in:   "one\ntwo\r\n  three\\nfour",
			want: "one two three four",
		},
		{
			name: "strips anchor tags",
			in:   `see <a href="https://example.org/x">the notice</a> here`,
			want: "see the notice here",
		},
		{
			name: "trims surrounding whitespace",
			in:   "  padded  ",
			want: "padded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status.Normalize(tt.in))
		})
	}
}

func TestParseDocument(t *testing.T) {
	doc, err := status.ParseDocument(
		`<exlibriscloudstatus><instance id="1290" service="Primo" status="OK">` +
			`<message>hello</message><schedule>later</schedule>` +
			`</instance></exlibriscloudstatus>`,
	)
	require.NoError(t, err)

	assert.Equal(t, "1290", doc.Instance.ID)
	assert.Equal(t, "Primo", doc.Instance.Service)
	assert.Equal(t, "OK", doc.Instance.Status)
	assert.Equal(t, []string{"hello"}, doc.Instance.Messages)
	assert.Equal(t, []string{"later"}, doc.Instance.Schedules)
}

func TestParseDocument_MalformedXML(t *testing.T) {
	_, err := status.ParseDocument(`<exlibriscloudstatus><instance`)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrMalformedXML)
}

func TestDedupSchedule(t *testing.T) {
	t.Run("identical entries collapse preserving order", func(t *testing.T) {
		schedule := "first entry" + sep + "second entry" + sep + "first entry" + sep

		entries := status.DedupSchedule(schedule)

		assert.Equal(t, []string{"first entry", "second entry"}, entries)
	})

	t.Run("empty segments dropped", func(t *testing.T) {
		assert.Empty(t, status.DedupSchedule(sep+"   "+sep))
	})

	t.Run("no separator yields one entry", func(t *testing.T) {
		assert.Equal(t, []string{"solo"}, status.DedupSchedule("  solo  "))
	})
}

func TestRenumberSchedule(t *testing.T) {
	schedule := "alpha" + sep + "beta" + sep
	doc := "<exlibriscloudstatus><instance status=\"OK\"><schedule>" + schedule +
		"</schedule></instance></exlibriscloudstatus>"
	entries := status.DedupSchedule(schedule)

	out := status.RenumberSchedule(doc, schedule, entries)

	// Each numbered tag carries its own entry's text.
	assert.Contains(t, out, "<match1>alpha</match1>")
	assert.Contains(t, out, "<match2>beta</match2>")
	assert.NotContains(t, out, sep)
}
