package taxonomy

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultTaxonomy(t *testing.T) {
	tx := Default()
	if len(tx.Categories()) == 0 || len(tx.Modes()) == 0 {
		t.Fatalf("expected default options")
	}
	if tag, ok := tx.Necessity("food"); !ok || tag != Need {
		t.Fatalf("expected Food to be a need, got %q %v", tag, ok)
	}
	if tag, ok := tx.Necessity("Travel"); !ok || tag != Want {
		t.Fatalf("expected Travel to be a want, got %q %v", tag, ok)
	}
	if _, ok := tx.Necessity("Others"); ok {
		t.Fatalf("Others should have no necessity tag")
	}
}

func TestNewFromFilesSeedsAndDedupe(t *testing.T) {
	dir := t.TempDir()
	// No files -> defaults
	tx := NewFromFiles(dir)
	if len(tx.Categories()) != len(DefaultCategories()) {
		t.Fatalf("expected defaults when files missing")
	}

	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite("categories.txt", "# header\nPets|paw\nCoffee|coffee\npets|dog\n\n")
	mustWrite("modes.txt", "Cash\nCheque|checkbook\n")
	mustWrite("necessity.txt", "# category=tag\nPets=Need\nCoffee = Want\nbroken line\n")

	tx = NewFromFiles(dir)
	cats := tx.Categories()
	if len(cats) != 2 || cats[0] != (Option{Name: "Pets", Icon: "paw"}) || cats[1].Name != "Coffee" {
		t.Fatalf("unexpected categories: %+v", cats)
	}
	modes := tx.Modes()
	if len(modes) != 2 || modes[0].Icon != "" || modes[1].Icon != "checkbook" {
		t.Fatalf("unexpected modes: %+v", modes)
	}
	if tag, _ := tx.Necessity("coffee"); tag != Want {
		t.Fatalf("unexpected coffee tag %q", tag)
	}
	if _, ok := tx.Necessity("Food"); ok {
		t.Fatalf("file necessity should replace the defaults")
	}
}

func TestAddOptions(t *testing.T) {
	tx := Default()
	before := len(tx.Categories())
	tx.AddCategory(Option{Name: "Pets", Icon: "paw"}, Need)
	tx.AddCategory(Option{Name: "food", Icon: "x"}, "")
	if len(tx.Categories()) != before+1 {
		t.Fatalf("expected one new category, got %d", len(tx.Categories())-before)
	}
	if tag, ok := tx.Necessity("Pets"); !ok || tag != Need {
		t.Fatalf("expected Pets tagged, got %q", tag)
	}
	tx.AddMode(Option{Name: "Crypto"})
	if got := tx.Modes(); got[len(got)-1].Name != "Crypto" {
		t.Fatalf("expected Crypto mode appended: %+v", got)
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    Option
		tag     string
		wantErr bool
	}{
		{in: "Pets|paw=Need", want: Option{Name: "Pets", Icon: "paw"}, tag: "Need"},
		{in: " Coffee ", want: Option{Name: "Coffee"}},
		{in: "Books|book", want: Option{Name: "Books", Icon: "book"}},
		{in: "|icon=Want", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, tag, err := ParseCategory(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidOption) {
					t.Fatalf("expected ErrInvalidOption, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want || tag != tt.tag {
				t.Fatalf("got %+v %q, want %+v %q", got, tag, tt.want, tt.tag)
			}
		})
	}
}

func TestSaveFilesRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "taxonomy")
	tx := Default()
	tx.AddCategory(Option{Name: "Pets", Icon: "paw"}, Need)
	tx.AddMode(Option{Name: "Cheque"})
	if err := tx.SaveFiles(dir); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := NewFromFiles(dir)
	if got, want := len(loaded.Categories()), len(DefaultCategories())+1; got != want {
		t.Fatalf("expected %d categories, got %d", want, got)
	}
	if last := loaded.Modes()[len(loaded.Modes())-1]; last != (Option{Name: "Cheque"}) {
		t.Fatalf("unexpected last mode %+v", last)
	}
	if tag, _ := loaded.Necessity("pets"); tag != Need {
		t.Fatalf("expected Pets to be a need, got %q", tag)
	}
	if tag, _ := loaded.Necessity("Travel"); tag != Want {
		t.Fatalf("default necessity lost, got %q", tag)
	}
	data, err := os.ReadFile(filepath.Join(dir, "necessity.txt"))
	if err != nil {
		t.Fatalf("read necessity: %v", err)
	}
	if !strings.Contains(string(data), "Pets=Need\n") {
		t.Fatalf("necessity.txt should keep the category's spelling:\n%s", data)
	}
}
