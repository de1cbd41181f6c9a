package nlp

import "testing"

func TestPatternEntities(t *testing.T) {
	text := "Inflation hit 9.1 percent in June 2022, costing households $3 billion."
	got := PatternEntities(text)

	want := map[string]string{
		"9.1 percent": LabelPercent,
		"June 2022":   LabelDate,
		"$3 billion":  LabelMoney,
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d entities, got %d: %+v", len(want), len(got), got)
	}
	for _, ent := range got {
		label, ok := want[ent.Text]
		if !ok {
			t.Errorf("Unexpected entity %q (%s)", ent.Text, ent.Label)
			continue
		}
		if ent.Label != label {
			t.Errorf("Entity %q: expected label %s, got %s", ent.Text, label, ent.Label)
		}
	}
}

func TestPatternEntities_OrderedByPosition(t *testing.T) {
	got := PatternEntities("On 2021-03-04 at 10:30 the first 200 people arrived.")
	if len(got) < 3 {
		t.Fatalf("Expected at least 3 entities, got %+v", got)
	}
	if got[0].Label != LabelDate || got[0].Text != "2021-03-04" {
		t.Errorf("Expected first entity to be the ISO date, got %+v", got[0])
	}
	if got[1].Label != LabelTime {
		t.Errorf("Expected second entity to be a time, got %+v", got[1])
	}
}

func TestPatternEntities_NoSpanReuse(t *testing.T) {
	// "$5 million" must not also yield a CARDINAL for "5"
	for _, ent := range PatternEntities("The fund raised $5 million.") {
		if ent.Label == LabelCardinal {
			t.Errorf("Unexpected overlapping cardinal %q", ent.Text)
		}
	}
}

func TestPatternEntities_Empty(t *testing.T) {
	if got := PatternEntities("no numbers here at all"); len(got) != 0 {
		t.Errorf("Expected no entities, got %+v", got)
	}
}
