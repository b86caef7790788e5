package vocab

import (
	"bytes"
	"testing"
)

func TestSpecialTokensAssignedFirst(t *testing.T) {
	v := New()
	if got := v.IDOf("<pad>"); got != PAD {
		t.Fatalf("<pad> id = %d, want %d", got, PAD)
	}
	if got := v.IDOf("<unk>"); got != UNK {
		t.Fatalf("<unk> id = %d, want %d", got, UNK)
	}
	if got := v.IDOf("<bos>"); got != BOS {
		t.Fatalf("<bos> id = %d, want %d", got, BOS)
	}
	if got := v.IDOf("<eos>"); got != EOS {
		t.Fatalf("<eos> id = %d, want %d", got, EOS)
	}
}

func TestUnknownSymbolMapsToUNK(t *testing.T) {
	v := New()
	if got := v.IDOf("z"); got != UNK {
		t.Fatalf("unknown symbol id = %d, want UNK (%d)", got, UNK)
	}
}

func TestSymbolOfRoundTrip(t *testing.T) {
	v := New()
	id := v.Add("ka")
	sym := v.SymbolOf(id)
	// For all t, symbol_of(id_of(t)) is either t or (when id_of(t)==UNK) any symbol.
	if sym != "ka" {
		t.Fatalf("symbol_of(id_of(%q)) = %q, want %q", "ka", sym, "ka")
	}
}

func TestFromCorpusOrdersSpecialsFirstThenSorted(t *testing.T) {
	v := FromCorpus([]string{"zo", "a", "ka", "a"})
	if v.IDOf("<pad>") != PAD || v.IDOf("<unk>") != UNK || v.IDOf("<bos>") != BOS || v.IDOf("<eos>") != EOS {
		t.Fatalf("special tokens not at reserved ids")
	}
	if v.IDOf("a") != 4 {
		t.Fatalf("first sorted symbol id = %d, want 4", v.IDOf("a"))
	}
	if v.IDOf("ka") != 5 {
		t.Fatalf("second sorted symbol id = %d, want 5", v.IDOf("ka"))
	}
	if v.IDOf("zo") != 6 {
		t.Fatalf("third sorted symbol id = %d, want 6", v.IDOf("zo"))
	}
	if v.Size() != 7 {
		t.Fatalf("size = %d, want 7", v.Size())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	v := FromCorpus([]string{"ka", "shi", "tsu"})
	var buf bytes.Buffer
	if err := v.Save(&buf); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Size() != v.Size() {
		t.Fatalf("size mismatch: got %d, want %d", loaded.Size(), v.Size())
	}
	for sym := range v.symToID {
		if loaded.IDOf(sym) != v.IDOf(sym) {
			t.Fatalf("id mismatch for %q: got %d, want %d", sym, loaded.IDOf(sym), v.IDOf(sym))
		}
	}
}

func TestLoadTwoColumnTextForm(t *testing.T) {
	text := "<pad>\t0\n<unk>\t1\n<bos>\t2\n<eos>\t3\nka\t4\n"
	v, err := Load(bytes.NewBufferString(text))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if v.IDOf("ka") != 4 {
		t.Fatalf("ka id = %d, want 4", v.IDOf("ka"))
	}
}

func TestAddAssignsNextFreeID(t *testing.T) {
	v := New()
	first := v.Add("ka")
	second := v.Add("shi")
	if second != first+1 {
		t.Fatalf("expected consecutive ids, got %d then %d", first, second)
	}
	// Adding the same symbol again must not allocate a new id.
	if again := v.Add("ka"); again != first {
		t.Fatalf("re-adding known symbol changed id: %d != %d", again, first)
	}
}
