package domain_test

import (
	"reflect"
	"testing"

	"slow_travel/internal/domain"
)

func TestHeaderDrift(t *testing.T) {
	cases := []struct {
		name   string
		tab    string
		header []string
		want   []string
	}{
		{"exact", domain.TabSettings, []string{"Key", "Value"}, nil},
		{"case-insensitive", domain.TabSettings, []string{" key ", "VALUE"}, nil},
		{"missing named column", domain.TabJourneys,
			[]string{"slug", "title", "duration", "description", "heroImage", "published"},
			[]string{"destinations"}},
		{"positional ignores wording", domain.TabPlaceImages,
			[]string{"Place Slug", "Order", "Image URL", "Caption"}, nil},
		{"positional too narrow", domain.TabPlaceImages,
			[]string{"Place Slug", "Order"}, []string{"image_url", "caption"}},
		{"unknown tab", "Scratch", []string{"anything"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := domain.HeaderDrift(tc.tab, tc.header); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("HeaderDrift = %v want %v", got, tc.want)
			}
		})
	}
}

func TestSchema_CoversContentTabs(t *testing.T) {
	for _, tab := range domain.ContentTabs {
		if len(domain.Schema[tab]) == 0 {
			t.Errorf("no schema for %s", tab)
		}
	}
}
