package entries

import (
	"reflect"
	"testing"
)

func TestParseBulkTags(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "plain lines",
			in:   "Romance\nComedy\nSlice of Life",
			want: []string{"romance", "comedy", "slice of life"},
		},
		{
			name: "pure count lines dropped",
			in:   "185K\nromance\n2301\ncomedy",
			want: []string{"romance", "comedy"},
		},
		{
			name: "count tokens stripped from mixed lines",
			in:   "160K big breasts\n89K sole female",
			want: []string{"big breasts", "sole female"},
		},
		{
			name: "duplicates case folded",
			in:   "Romance\nROMANCE\nromance",
			want: []string{"romance"},
		},
		{
			name: "comma separated",
			in:   "romance, comedy,drama",
			want: []string{"romance", "comedy", "drama"},
		},
		{
			name: "million suffix and decimals",
			in:   "1.2M full color\n3,401 glasses",
			want: []string{"full color", "glasses"},
		},
		{
			name: "numeric-looking words kept",
			in:   "4-koma\nK-On",
			want: []string{"4-koma", "k-on"},
		},
		{
			name: "empty input",
			in:   "   \n\n",
			want: []string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseBulkTags(tc.in)
			if len(got) == 0 && len(tc.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParseBulkTags(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Romance ", "comedy", "ROMANCE", "", "comedy"})
	want := []string{"romance", "comedy"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeTags = %v, want %v", got, want)
	}
}

func TestIsCountToken(t *testing.T) {
	for _, tok := range []string{"185K", "185k", "160K", "1234", "1.2M", "3,401"} {
		if !isCountToken(tok) {
			t.Errorf("isCountToken(%q) = false, want true", tok)
		}
	}
	for _, tok := range []string{"K", "romance", "4-koma", "k-on", "", "12a"} {
		if isCountToken(tok) {
			t.Errorf("isCountToken(%q) = true, want false", tok)
		}
	}
}
