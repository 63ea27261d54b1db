package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCDN   []string
		wantZones []EdgeZone
	}{
		{
			name:  "empty input",
			input: "",
		},
		{
			name:  "blank lines only",
			input: "\n   \n\t\n",
		},
		{
			name:    "cdn domains across lines",
			input:   "a.example.com b.example.com\nc.example.com",
			wantCDN: []string{"a.example.com", "b.example.com", "c.example.com"},
		},
		{
			name:    "zone line isolation",
			input:   "zone-a d1.example.com d2.example.com\nd3.example.com d4.example.com",
			wantCDN: []string{"d3.example.com", "d4.example.com"},
			wantZones: []EdgeZone{
				{ZoneID: "zone-a", Domains: []string{"d1.example.com", "d2.example.com"}},
			},
		},
		{
			name:    "duplicates collapse within and across lines",
			input:   "a.example.com a.example.com\na.example.com b.example.com",
			wantCDN: []string{"a.example.com", "b.example.com"},
		},
		{
			name:  "same zone accumulates across lines",
			input: "zone-a d1.example.com\nzone-a d2.example.com d1.example.com",
			wantZones: []EdgeZone{
				{ZoneID: "zone-a", Domains: []string{"d1.example.com", "d2.example.com"}},
			},
		},
		{
			name:  "multiple zones keep their own domains",
			input: "zone-a d1.example.com\nzone-b d2.example.com",
			wantZones: []EdgeZone{
				{ZoneID: "zone-a", Domains: []string{"d1.example.com"}},
				{ZoneID: "zone-b", Domains: []string{"d2.example.com"}},
			},
		},
		{
			name:      "zone line without domains",
			input:     "zone-a",
			wantZones: []EdgeZone{{ZoneID: "zone-a"}},
		},
		{
			name:    "leading and trailing whitespace",
			input:   "  a.example.com  \n\t zone-a \t d1.example.com ",
			wantCDN: []string{"a.example.com"},
			wantZones: []EdgeZone{
				{ZoneID: "zone-a", Domains: []string{"d1.example.com"}},
			},
		},
		{
			name:    "zone token not at line start stays cdn",
			input:   "a.example.com zone-a",
			wantCDN: []string{"a.example.com", "zone-a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			assert.Equal(t, tt.wantCDN, got.CDNDomains)
			assert.Equal(t, tt.wantZones, got.EdgeZones)
		})
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"a.example.com b.example.com a.example.com",
		"zone-a d1.example.com\nb.example.com\nzone-a d2.example.com\nzone-b d3.example.com",
		"  \n zone-a \nc.example.com c.example.com",
	}

	for _, input := range inputs {
		first := Parse(input)
		second := Parse(first.Format())
		assert.Equal(t, first, second, "输入: %q", input)
	}
}

func TestTargetsHelpers(t *testing.T) {
	empty := Parse("")
	assert.True(t, empty.IsEmpty())
	assert.False(t, empty.HasEdgeDomains())

	zoneOnly := Parse("zone-a")
	assert.False(t, zoneOnly.IsEmpty())
	assert.False(t, zoneOnly.HasEdgeDomains())

	full := Parse("zone-a d1.example.com")
	assert.True(t, full.HasEdgeDomains())
}
