package catalog

import "testing"

func TestLookupForms(t *testing.T) {
	for _, in := range []string{"06_sdcard", "sdcard", "6", "06", " SDCARD "} {
		e, ok := Lookup(in)
		if !ok || e.Slug != "sdcard" {
			t.Fatalf("Lookup(%q) = %+v, %v", in, e, ok)
		}
	}
	if _, ok := Lookup("floppy"); ok {
		t.Fatal("unexpected match")
	}
	if _, ok := Lookup(""); ok {
		t.Fatal("empty name must not match")
	}
}

func TestNamesAreOrderedAndUnique(t *testing.T) {
	names := Names()
	if len(names) != 12 {
		t.Fatalf("got %d examples", len(names))
	}
	if names[0] != "01_display_basic" || names[11] != "12_rs485_serial" {
		t.Fatalf("unexpected order: %v", names)
	}
	seen := map[string]bool{}
	for _, n := range names {
		if seen[n] {
			t.Fatalf("duplicate %s", n)
		}
		seen[n] = true
	}
}
