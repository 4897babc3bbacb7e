package dataset

import (
	"reflect"
	"testing"
)

func TestParseCategoryString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "typical genre string",
			in:   `{"/m/01jfsb": "Thriller", "/m/06n90": "Science Fiction", "/m/03npn": "Horror"}`,
			want: []string{"Thriller", "Science Fiction", "Horror"},
		},
		{
			name: "single pair",
			in:   `{"/m/02h40lc": "English Language"}`,
			want: []string{"English Language"},
		},
		{
			name: "empty set",
			in:   `{}`,
			want: nil,
		},
		{
			name: "empty string",
			in:   "",
			want: nil,
		},
		{
			name: "duplicate names collapse",
			in:   `{"/m/01": "Drama", "/m/02": "Drama"}`,
			want: []string{"Drama"},
		},
		{
			name: "escaped quote in name",
			in:   `{"/m/0x": "The \"Quoted\" Genre"}`,
			want: []string{`The "Quoted" Genre`},
		},
		{
			name: "identifiers are discarded even without names",
			in:   `{"/m/01jfsb": "/m/06n90"}`,
			want: nil,
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			got := ParseCategoryString(c.in)
			if !reflect.DeepEqual(got, c.want) {
				t.Fatalf("ParseCategoryString(%q) = %#v, want %#v", c.in, got, c.want)
			}
		})
	}
}

// First-appearance order must be preserved; genre frequency ties break on it.
func TestParseCategoryStringOrder(t *testing.T) {
	t.Parallel()

	in := `{"/m/0c": "Zulu Cinema", "/m/0a": "Action", "/m/0b": "Musical"}`
	want := []string{"Zulu Cinema", "Action", "Musical"}
	if got := ParseCategoryString(in); !reflect.DeepEqual(got, want) {
		t.Fatalf("order not preserved: got %v, want %v", got, want)
	}
}
