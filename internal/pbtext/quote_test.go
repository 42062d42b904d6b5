package pbtext

import "testing"

func TestQuoteBasic(t *testing.T) {
	got := Quote("hello")
	want := `"hello"`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

// TestQuoteEscaping is scenario S6 from the specification.
func TestQuoteEscaping(t *testing.T) {
	in := "Hello~World\r\n\t\x01"
	got := Quote(in)
	want := `"Hello~~World~r~n~th01"`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestQuoteDoubleQuote(t *testing.T) {
	got := Quote(`a"b`)
	want := `"a~"b"`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestQuoteDel(t *testing.T) {
	got := Quote("\x7f")
	want := `"~h7f"`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
