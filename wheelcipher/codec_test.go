package wheelcipher

import (
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fixedSource always picks the same wheel.
type fixedSource int

func (f fixedSource) IntN(n int) int { return int(f) % n }

// cycleSource walks the wheels in order.
type cycleSource struct{ next int }

func (c *cycleSource) IntN(n int) int {
	v := c.next % n
	c.next++
	return v
}

func TestDecodeReferenceMessages(t *testing.T) {
	tests := []struct {
		key     string
		message string
		want    string
	}{
		{"U 14 48 56 V2", "22 V2 11 02 76 00 70 55 18", "curiosity"},
		{"J 11 42 60 (INQ)", "33 15 98 95 20 77 13 73 02 26 51 88 09 95 64 79 87 07 47 68 91 02 52 04 40 V3 46 V1", "andasalwaysthanksforwatching"},
		{"Q 17 44 61 79", "04 53 07 75 46 82 09 V3 14 29 93 77 36 V2 81 97 41 20 78 75 V1 V3 65 82 08", "digestionbeginsinthemouth"},
		{"D 05 31 78 91", "20 77 96 32 62 04 92", "science"},
		{"E 09 33 53 95", "06 95 23 85 22 33 24 19 78 22 57 18 V1 03 43 69 66 79 50 29 16 48 99 (INQ) 09", "besuretodrinkyourovaltine"},
		{"M 10 33 78 94", "(INQ) 73 82 V1 90 03 70 42 51 15 80 35 11 02 07 V2 33 13 86 01 24 17 54 95 49 02", "whatifeveryonejumpedatonce"},
		{"W 21 49 65 79", "72 13 71 00 25 84 V1 62 76 91 40 53 88 77 17 34 27 16 03 32 10 81 07 56 33", "docrabsthinkfishareflying"},
		{"a 01 27 53 79", "01 27 53 79 26 52 78 v4", "aaaazzzz"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			res, err := Decode(tt.key, tt.message)
			if err != nil {
				t.Fatalf("Decode returned error: %v", err)
			}
			if res.Text != tt.want {
				t.Errorf("Decode(%q) = %q, want %q", tt.message, res.Text, tt.want)
			}
			if !res.OK() {
				t.Errorf("unexpected skipped tokens: %v", res.Skipped)
			}
		})
	}
}

func TestDecodeInqAlias(t *testing.T) {
	ws, err := Build("E 09 33 53 95")
	if err != nil {
		t.Fatal(err)
	}
	withAlias, _ := ws.Decode("48 99 (INQ) 09")
	withToken, _ := ws.Decode("48 99 v4 09")
	if withAlias.Text != withToken.Text {
		t.Errorf("(INQ) decoded to %q, v4 decoded to %q", withAlias.Text, withToken.Text)
	}
}

func TestDecodeUnrecognizedToken(t *testing.T) {
	ws, err := Build("U 14 48 56 V2")
	if err != nil {
		t.Fatal(err)
	}

	res, err := ws.Decode("22 xx V2")
	if err != nil {
		t.Fatalf("lenient Decode returned error: %v", err)
	}
	if res.Text != "cu" {
		t.Errorf("Text = %q, want %q", res.Text, "cu")
	}
	want := []Diagnostic{{Position: 2, Token: "xx", Kind: ErrUnrecognizedToken}}
	if diff := cmp.Diff(want, res.Skipped, cmp.Comparer(func(a, b error) bool { return a == b })); diff != "" {
		t.Errorf("Skipped mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeTrailingCharacter(t *testing.T) {
	ws, err := Build("U 14 48 56 V2")
	if err != nil {
		t.Fatal(err)
	}

	res, err := ws.Decode("22 V2 1")
	if err != nil {
		t.Fatalf("lenient Decode returned error: %v", err)
	}
	if res.Text != "cu" {
		t.Errorf("Text = %q, want %q", res.Text, "cu")
	}
	if len(res.Skipped) != 1 || !errors.Is(res.Skipped[0], ErrTrailingCharacter) || res.Skipped[0].Token != "1" {
		t.Errorf("Skipped = %v, want one trailing character", res.Skipped)
	}
}

func TestDecodeStrict(t *testing.T) {
	ws, err := Build("U 14 48 56 V2")
	if err != nil {
		t.Fatal(err)
	}

	res, err := ws.Decode("22 xx V2", WithStrict())
	if !errors.Is(err, ErrUnrecognizedToken) {
		t.Fatalf("strict Decode error = %v, want ErrUnrecognizedToken", err)
	}
	var d Diagnostic
	if !errors.As(err, &d) || d.Position != 2 {
		t.Errorf("error %v should carry position 2", err)
	}
	if res.Text != "c" {
		t.Errorf("partial Text = %q, want %q", res.Text, "c")
	}

	if _, err := ws.Decode("22 V2 1", WithStrict()); !errors.Is(err, ErrTrailingCharacter) {
		t.Errorf("strict Decode of odd message error = %v, want ErrTrailingCharacter", err)
	}
	if _, err := ws.Decode("  ", WithStrict()); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("strict Decode of empty message error = %v, want ErrEmptyMessage", err)
	}
}

func TestDecodeEmptyLenient(t *testing.T) {
	ws, err := Build("U 14 48 56 V2")
	if err != nil {
		t.Fatal(err)
	}
	res, err := ws.Decode("")
	if err != nil || res.Text != "" || !res.OK() {
		t.Errorf("Decode(\"\") = %+v, %v; want empty result", res, err)
	}
}

func TestEncodeFixedWheel(t *testing.T) {
	ws, err := Build("U 14 48 56 V2")
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"22 ", "30 ", "64 ", "84 "}
	for n, w := range want {
		res, err := ws.Encode("C", WithRandom(fixedSource(n)))
		if err != nil {
			t.Fatal(err)
		}
		if res.Text != w {
			t.Errorf("Encode(c) on wheel %d = %q, want %q", n+1, res.Text, w)
		}
	}
}

func TestEncodeUsesEveryWheel(t *testing.T) {
	ws, err := Build("U 14 48 56 V2")
	if err != nil {
		t.Fatal(err)
	}
	res, err := ws.Encode("cccc", WithRandom(&cycleSource{}))
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "22 30 64 84 " {
		t.Errorf("Encode = %q, want %q", res.Text, "22 30 64 84 ")
	}
}

func TestEncodeUnsupportedCharacter(t *testing.T) {
	ws, err := Build("U 14 48 56 V2")
	if err != nil {
		t.Fatal(err)
	}

	res, err := ws.Encode("c, 3a", WithRandom(fixedSource(0)))
	if err != nil {
		t.Fatalf("lenient Encode returned error: %v", err)
	}
	if res.Text != "22 20 " {
		t.Errorf("Text = %q, want %q", res.Text, "22 20 ")
	}
	if len(res.Skipped) != 2 {
		t.Fatalf("Skipped = %v, want 2 entries", res.Skipped)
	}
	if res.Skipped[0].Token != "," || res.Skipped[0].Position != 1 {
		t.Errorf("first skip = %+v", res.Skipped[0])
	}
	if res.Skipped[1].Token != "3" || res.Skipped[1].Position != 2 {
		t.Errorf("second skip = %+v", res.Skipped[1])
	}

	if _, err := ws.Encode("c,", WithStrict()); !errors.Is(err, ErrUnsupportedCharacter) {
		t.Errorf("strict Encode error = %v, want ErrUnsupportedCharacter", err)
	}
}

func TestEncodeDoesNotExpandInqAlias(t *testing.T) {
	ws, err := Build("U 14 48 56 V2")
	if err != nil {
		t.Fatal(err)
	}
	res, err := ws.Encode("(INQ)", WithRandom(fixedSource(0)))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Skipped) != 2 {
		t.Errorf("parentheses should be skipped, got %v", res.Skipped)
	}
	back, _ := ws.Decode(res.Text)
	if back.Text != "inq" {
		t.Errorf("round trip of (INQ) = %q, want %q", back.Text, "inq")
	}
}

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	messages := []string{
		"Comment ca va Vsause",
		"the quick brown fox jumps over the lazy dog",
		"z",
		"",
	}

	for _, key := range append(wellFormedKeys(), "U 14 48 56 V2", "J 11 42 60 (INQ)") {
		ws, err := Build(key)
		if err != nil {
			t.Fatal(err)
		}
		for _, m := range messages {
			enc, err := ws.Encode(m, WithRandom(r))
			if err != nil {
				t.Fatal(err)
			}
			dec, err := ws.Decode(enc.Text)
			if err != nil {
				t.Fatal(err)
			}
			if want := normalizeText(m); dec.Text != want {
				t.Errorf("key %q: round trip of %q = %q, want %q", key, m, dec.Text, want)
			}
		}
	}
}

func TestRoundTripWithKey(t *testing.T) {
	enc, err := Encode("U 14 48 56 V2", "Comment ca va Vsause")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(enc.Text, " ") != len("commentcavavsause") {
		t.Errorf("expected one code per letter, got %q", enc.Text)
	}
	dec, err := Decode("u144856v2", enc.Text)
	if err != nil {
		t.Fatal(err)
	}
	if dec.Text != "commentcavavsause" {
		t.Errorf("Decode = %q", dec.Text)
	}
}

func TestCodecInvalidKey(t *testing.T) {
	if _, err := Encode("123456789", "abc"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Encode with bad key error = %v", err)
	}
	if _, err := Decode("", "01"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Decode with bad key error = %v", err)
	}
}

func TestWheelSetSharedAcrossGoroutines(t *testing.T) {
	ws, err := Build("Q 17 44 61 79")
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			enc, _ := ws.Encode("digestionbeginsinthemouth")
			dec, _ := ws.Decode(enc.Text)
			if dec.Text != "digestionbeginsinthemouth" {
				errs <- dec.Text
			}
		}()
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Errorf("concurrent round trip = %q", got)
	}
}
