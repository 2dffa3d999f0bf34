package content

import (
	"testing"
	"time"
)

func TestDefaultRegistryLookups(t *testing.T) {
	if groups := DefaultRegistry.Groups("news.html"); groups != nil {
		t.Fatalf("expected no schema for news.html, got %d groups", len(groups))
	}
	if DefaultRegistry.Editable("news.html") {
		t.Fatal("expected news.html to be non-editable")
	}
	if !DefaultRegistry.Editable("index.html") {
		t.Fatal("expected index.html to be editable")
	}

	groups := DefaultRegistry.Groups("index.html")
	if groups[0].ID != "hero" || !groups[0].HasHeroImage {
		t.Fatalf("expected hero group first, got %+v", groups[0])
	}

	field, ok := DefaultRegistry.Field("index.html", "home_cta_btn1_link")
	if !ok || field.Type != FieldPage {
		t.Fatalf("expected page link field, got %+v %v", field, ok)
	}
	if _, ok := DefaultRegistry.Field("about.html", "home_cta_btn1_link"); ok {
		t.Fatal("expected fields to be scoped per page")
	}
	if _, ok := DefaultRegistry.RepeatableGroup("index.html", RepeatableStatsKey); !ok {
		t.Fatal("expected homepage stats to be repeatable")
	}
}

func TestRegistryKindOf(t *testing.T) {
	tests := []struct {
		slug, name string
		want       Kind
		ok         bool
	}{
		{"index.html", "home_hero_title", KindText, true},
		{"index.html", "home_challenge_content", KindRich, true},
		{"index.html", "home_cta_btn2_link", KindLink, true},
		{"index.html", RepeatableStatsKey, KindList, true},
		{"index.html", "legacy_banner", "", false},
	}
	for _, tt := range tests {
		got, ok := DefaultRegistry.KindOf(tt.slug, tt.name)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("KindOf(%s, %s) = %s, %v; want %s, %v", tt.slug, tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestEveryPageHasOneHeroGroup(t *testing.T) {
	for slug, groups := range DefaultRegistry {
		heroes := 0
		seen := map[string]bool{}
		for _, group := range groups {
			if group.HasHeroImage {
				heroes++
			}
			for _, field := range group.Fields {
				if seen[field.Key] {
					t.Fatalf("%s declares %s twice", slug, field.Key)
				}
				seen[field.Key] = true
			}
		}
		if heroes != 1 {
			t.Fatalf("%s has %d hero groups", slug, heroes)
		}
	}
}

func TestStaleness(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	if !IsStale(now.Add(-181*24*time.Hour), now) {
		t.Fatal("expected 181 day old section to be stale")
	}
	if IsStale(now.Add(-179*24*time.Hour), now) {
		t.Fatal("expected 179 day old section to be fresh")
	}
}
