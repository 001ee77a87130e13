package tokenizer

import "testing"

func TestNormalizeIdentityUnderEmptyMaps(t *testing.T) {
	texts := []string{"", "hello world", "no substitutions here"}
	for _, text := range texts {
		if got := normalize(text, "", nil); got != text {
			t.Errorf("normalize(%q) with empty sentinel and maps = %q, want identity", text, got)
		}
	}
}

func TestNormalizeSentinelSubstitution(t *testing.T) {
	got := normalize("a b  c", "_", nil)
	want := "a_b__c"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalizeForwardSubstitutionLongestFirst(t *testing.T) {
	forward := sortedSubstitutions(map[string]string{
		"ab":  "X",
		"abc": "Y",
	})

	got := normalize("abcd", "", forward)
	want := "Yd"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSortedSubstitutionsOrder(t *testing.T) {
	subs := sortedSubstitutions(map[string]string{
		"a":   "1",
		"abc": "2",
		"ab":  "3",
	})

	if len(subs) != 3 {
		t.Fatalf("got %d substitutions, want 3", len(subs))
	}
	if subs[0].original != "abc" || subs[1].original != "ab" || subs[2].original != "a" {
		t.Errorf("got order %v, want descending by length", subs)
	}
}
