package pricing

import "testing"

func testRules() []CategoryRule {
	return []CategoryRule{
		{Category: "Sunglasses", Keywords: []string{"sunglass", "shades"}},
		{Category: "Bottles", Keywords: []string{"bottle", "thermos"}},
		{Category: "Notebooks", Keywords: []string{"notebook", "journal"}},
	}
}

func TestClassify_SingleKeywordMatch(t *testing.T) {
	c := NewClassifier(testRules())

	cases := []struct {
		name string
		want string
	}{
		{"Bamboo Sunglasses Black", "Sunglasses"},
		{"THERMOS FLASK 500ML", "Bottles"},
		{"Handmade journal A5", "Notebooks"},
	}
	for _, tc := range cases {
		if got := c.Classify(tc.name); got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestClassify_NoMatchReturnsDefault(t *testing.T) {
	c := NewClassifier(testRules())
	if got := c.Classify("Ceramic Vase"); got != DefaultCategory {
		t.Errorf("Classify(no match) = %q, want %q", got, DefaultCategory)
	}
}

func TestClassify_DeclarationOrderBreaksTies(t *testing.T) {
	// Name matches both Sunglasses and Bottles; Sunglasses is declared first.
	c := NewClassifier(testRules())
	if got := c.Classify("Sunglass case with bottle opener"); got != "Sunglasses" {
		t.Errorf("Classify(tie) = %q, want Sunglasses", got)
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	c := NewClassifier([]CategoryRule{{Category: "Scarves", Keywords: []string{"SCARF"}}})
	if got := c.Classify("silk scarf"); got != "Scarves" {
		t.Errorf("Classify(lower vs upper keyword) = %q, want Scarves", got)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := NewClassifier(testRules())
	first := c.Classify("Eri silk bottle warmer")
	for i := 0; i < 10; i++ {
		if got := c.Classify("Eri silk bottle warmer"); got != first {
			t.Fatalf("Classify changed between calls: %q vs %q", got, first)
		}
	}
}
