package bodymap

import "testing"

func TestClassifyCanonical(t *testing.T) {
	cases := []struct {
		x, y float64
		want string
	}{
		{45, 5, "Head"},
		{95, 95, "Body"},
		{50, 14, "Neck"},
		{25, 26, "Left Upper Arm"},
		{60, 96, "Right Foot"},
		{50, 50, "Pelvis"},
		{-10, -10, "Body"},
		{50, 120, "Body"},
	}
	for _, c := range cases {
		if got := Classify(c.x, c.y); got != c.want {
			t.Fatalf("Classify(%v,%v)=%q, want %q", c.x, c.y, got, c.want)
		}
	}
}

func TestClassifyOverlapPicksNearestCenter(t *testing.T) {
	// (40, 21) is inside Upper Chest (center 50,20) and Left Chest (center 40,25).
	if got := Classify(40, 21); got != "Left Chest" {
		t.Fatalf("got %q, want Left Chest", got)
	}
	// (50, 20) sits on Upper Chest's center.
	if got := Classify(50, 20); got != "Upper Chest" {
		t.Fatalf("got %q, want Upper Chest", got)
	}
}

func TestClassifySharedBoundary(t *testing.T) {
	c, err := NewClassifier([]Region{
		{Name: "A", XMin: 0, XMax: 10, YMin: 0, YMax: 10},
		{Name: "B", XMin: 10, XMax: 30, YMin: 0, YMax: 10},
	})
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	// x=10 belongs to both; A's center (5,5) is closer than B's (20,5).
	if got := c.Classify(10, 5); got != "A" {
		t.Fatalf("boundary point got %q, want A", got)
	}
}

func TestClassifyEquidistantUsesTableOrder(t *testing.T) {
	regions := []Region{
		{Name: "First", XMin: 0, XMax: 20, YMin: 0, YMax: 20},
		{Name: "Second", XMin: 10, XMax: 30, YMin: 0, YMax: 20},
	}
	c, err := NewClassifier(regions)
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	// Centers (10,10) and (20,10); x=15 is equidistant.
	if got := c.Classify(15, 10); got != "First" {
		t.Fatalf("got %q, want First", got)
	}
	rev, _ := NewClassifier([]Region{regions[1], regions[0]})
	if got := rev.Classify(15, 10); got != "Second" {
		t.Fatalf("reversed table got %q, want Second", got)
	}
}

func TestClassifyEveryRegionCenter(t *testing.T) {
	for _, r := range CanonicalRegions() {
		cx, cy := r.Center()
		if got := Classify(cx, cy); got != r.Name {
			t.Fatalf("center of %q classified as %q", r.Name, got)
		}
	}
}

func TestNewClassifierValidation(t *testing.T) {
	if _, err := NewClassifier(nil); err == nil {
		t.Fatalf("expected error for empty table")
	}
	if _, err := NewClassifier([]Region{{Name: " ", XMax: 1, YMax: 1}}); err == nil {
		t.Fatalf("expected error for blank name")
	}
	if _, err := NewClassifier([]Region{{Name: "bad", XMin: 5, XMax: 1, YMax: 1}}); err == nil {
		t.Fatalf("expected error for inverted bounds")
	}
}

func TestParseVariant(t *testing.T) {
	cases := map[string]Variant{
		"male":    Male,
		" Female": Female,
		"":        DefaultVariant,
		"robot":   DefaultVariant,
	}
	for in, want := range cases {
		if got := ParseVariant(in); got != want {
			t.Fatalf("ParseVariant(%q)=%q, want %q", in, got, want)
		}
	}
	if got := Female.AssetPath(); got != "/silhouettes/female.svg" {
		t.Fatalf("asset path = %q", got)
	}
}
