package tsvprobe

import (
	"strings"
	"testing"
)

func TestProbe(t *testing.T) {
	t.Parallel()

	in := "1\t1.65\t2001-08-24\tGhosts of Mars\t\n" +
		"2\t1.80\t1999-03-01\tGetting Away with Murder\tx\n" +
		"3\t\t2000-06-15\tThe Naked Gun\t\n"

	cols, err := Probe(strings.NewReader(in), Options{})
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if len(cols) != 5 {
		t.Fatalf("columns = %d, want 5", len(cols))
	}

	wantKinds := []string{KindInteger, KindFloat, KindDate, KindText, KindText}
	for i, k := range wantKinds {
		if cols[i].Kind != k {
			t.Fatalf("col %d kind = %s, want %s", i+1, cols[i].Kind, k)
		}
	}
	if cols[0].Label != "col_1" {
		t.Fatalf("label = %q, want col_1", cols[0].Label)
	}
	if cols[1].FillRate < 0.66 || cols[1].FillRate > 0.67 {
		t.Fatalf("fill rate = %v, want 2/3", cols[1].FillRate)
	}
	if cols[4].FillRate < 0.33 || cols[4].FillRate > 0.34 {
		t.Fatalf("sparse fill rate = %v, want 1/3", cols[4].FillRate)
	}
}

func TestProbeWithHeader(t *testing.T) {
	t.Parallel()

	in := "Wikipedia ID\tAnnée de sortie\n" +
		"975900\t2001\n"

	cols, err := Probe(strings.NewReader(in), Options{HasHeader: true})
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if cols[0].Label != "wikipedia_id" {
		t.Fatalf("label = %q, want wikipedia_id", cols[0].Label)
	}
	if cols[1].Label != "annee_de_sortie" {
		t.Fatalf("label = %q, want annee_de_sortie (diacritics folded)", cols[1].Label)
	}
	if cols[0].Kind != KindInteger {
		t.Fatalf("kind = %s, want integer", cols[0].Kind)
	}
}

func TestProbeMixedColumnDegradesToText(t *testing.T) {
	t.Parallel()

	in := "1\n" + "hello\n"
	cols, err := Probe(strings.NewReader(in), Options{})
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if cols[0].Kind != KindText {
		t.Fatalf("kind = %s, want text for mixed column", cols[0].Kind)
	}
}

func TestProbeSamplesAreDistinctAndCapped(t *testing.T) {
	t.Parallel()

	in := "a\na\nb\nc\nd\n"
	cols, err := Probe(strings.NewReader(in), Options{MaxSamples: 2})
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if len(cols[0].Samples) != 2 || cols[0].Samples[0] != "a" || cols[0].Samples[1] != "b" {
		t.Fatalf("samples = %v, want [a b]", cols[0].Samples)
	}
}

func TestFoldLabel(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Wikipedia movie ID": "wikipedia_movie_id",
		"Année":              "annee",
		"  Box-Office ($) ":  "box_office",
		"":                   "col",
	}
	for in, want := range cases {
		if got := FoldLabel(in); got != want {
			t.Fatalf("FoldLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	out := Render([]Column{{Index: 1, Label: "col_1", Kind: KindInteger, FillRate: 1, Samples: []string{"7"}}})
	if !strings.Contains(out, "col_1") || !strings.Contains(out, "integer") {
		t.Fatalf("render = %q", out)
	}
}
