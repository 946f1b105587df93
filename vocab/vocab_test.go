package vocab

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeVocab creates a small vocabulary directory for tests.
func writeVocab(t *testing.T, withQ2B bool) string {
	t.Helper()
	dir := t.TempDir()

	words := "0\tOOV\n1\t我\n2\t爱\n3\t北\n4\t京\n5\ta\n6\t1\n"
	labels := "0\tLOC-B\n1\tLOC-I\n2\tv-B\n3\tv-I\n4\tO\n"
	files := map[string]string{
		WordFile:  words,
		LabelFile: labels,
	}
	if withQ2B {
		files[Q2BFile] = "A\ta\nbad line\n"
	}

	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return dir
}

func TestReadDict(t *testing.T) {
	input := "0\tfoo\n1\tbar\nmalformed\n3\tbaz\textra\n2\tqux\n"
	d, err := ReadDict(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadDict failed: %v", err)
	}

	if d.Len() != 3 {
		t.Errorf("Len() = %d, want 3", d.Len())
	}
	if id, ok := d.ID("qux"); !ok || id != 2 {
		t.Errorf("ID(qux) = %d, %v", id, ok)
	}
	if v, ok := d.Value(1); !ok || v != "bar" {
		t.Errorf("Value(1) = %q, %v", v, ok)
	}
	if _, ok := d.ID("baz"); ok {
		t.Error("expected three-field line to be skipped")
	}
}

func TestReadDict_InvalidID(t *testing.T) {
	_, err := ReadDict(strings.NewReader("x\tfoo\n"))
	if err == nil {
		t.Error("expected error for non-numeric id")
	}
}

func TestLoadDict_FileNotFound(t *testing.T) {
	_, err := LoadDict(filepath.Join(t.TempDir(), "missing.dic"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	v, err := Load(writeVocab(t, false))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if v.NumLabels() != 5 {
		t.Errorf("NumLabels() = %d, want 5", v.NumLabels())
	}
	if v.NumWords() != 7 {
		t.Errorf("NumWords() = %d, want 7", v.NumWords())
	}
	if v.OOVID() != 0 {
		t.Errorf("OOVID() = %d, want 0", v.OOVID())
	}
	if v.OutsideID() != 4 {
		t.Errorf("OutsideID() = %d, want 4", v.OutsideID())
	}
}

func TestLoad_MissingEntries(t *testing.T) {
	dir := t.TempDir()
	_ = os.WriteFile(filepath.Join(dir, WordFile), []byte("0\tx\n"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, LabelFile), []byte("0\tO\n"), 0o644)

	if _, err := Load(dir); err == nil {
		t.Error("expected error when OOV entry is missing")
	}
}

func TestVocab_WordIDs(t *testing.T) {
	v, err := Load(writeVocab(t, false))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		name string
		text string
		want []int64
	}{
		{"known", "我爱北京", []int64{1, 2, 3, 4}},
		{"unknown", "我们", []int64{1, 0}},
		{"full width digit", "１", []int64{6}},
		{"full width letter", "ａ", []int64{5}},
		{"empty", "", []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.WordIDs(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("WordIDs(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("WordIDs(%q)[%d] = %d, want %d", tt.text, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestVocab_Q2BOverride(t *testing.T) {
	v, err := Load(writeVocab(t, true))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Full-width Ａ narrows to A, then q2b maps A to a.
	if got := v.WordID('Ａ'); got != 5 {
		t.Errorf("WordID('Ａ') = %d, want 5", got)
	}
	if got := v.Normalize("Ａ１"); got != "a1" {
		t.Errorf("Normalize = %q, want %q", got, "a1")
	}
}

func TestVocab_TokenIDs(t *testing.T) {
	v, err := Load(writeVocab(t, false))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	got := v.TokenIDs([]string{"北", "北京", "１"})
	want := []int64{3, 0, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("TokenIDs[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestVocab_Labels(t *testing.T) {
	v, err := Load(writeVocab(t, false))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	ids := v.LabelIDs([]string{"LOC-B", "LOC-I", "nope", "O"})
	want := []int64{0, 1, 4, 4}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("LabelIDs[%d] = %d, want %d", i, ids[i], want[i])
		}
	}

	if got := v.Label(2); got != "v-B" {
		t.Errorf("Label(2) = %q", got)
	}
	if got := v.Label(99); got != OutsideLabel {
		t.Errorf("Label(99) = %q, want %q", got, OutsideLabel)
	}
}

func TestVocab_ChunkTypes(t *testing.T) {
	v, err := Load(writeVocab(t, false))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	got := v.ChunkTypes(2)
	want := []string{"LOC", "v"}
	if len(got) != len(want) {
		t.Fatalf("ChunkTypes(2) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ChunkTypes(2)[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestChunkType(t *testing.T) {
	tests := map[string]string{
		"PER-B": "PER",
		"B-PER": "PER",
		"n-I":   "n",
		"I-ORG": "ORG",
		"S-LOC": "LOC",
		"O":     "O",
	}
	for in, want := range tests {
		if got := ChunkType(in); got != want {
			t.Errorf("ChunkType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitLabel(t *testing.T) {
	tests := []struct {
		in, typ, tag string
	}{
		{"PER-B", "PER", "B"},
		{"B-PER", "PER", "B"},
		{"n-I", "n", "I"},
		{"LOC-E", "LOC", "E"},
		{"S-LOC", "LOC", "S"},
		{"O", "O", ""},
		{"PER", "PER", ""},
	}
	for _, tt := range tests {
		typ, tag := SplitLabel(tt.in)
		if typ != tt.typ || tag != tt.tag {
			t.Errorf("SplitLabel(%q) = (%q, %q), want (%q, %q)", tt.in, typ, tag, tt.typ, tt.tag)
		}
	}
}
