package wheelcipher

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"U 14 48 56 V2", "u144856v2"},
		{"J 11 42 60 (INQ)", "j114260v4"},
		{"  q\t17\n44 61 79 ", "q17446179"},
		{"u144856v2", "u144856v2"},
		{"", ""},
	}

	for _, tt := range tests {
		got := NormalizeKey(tt.in)
		if got != tt.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if again := NormalizeKey(got); again != got {
			t.Errorf("NormalizeKey is not idempotent: %q -> %q", got, again)
		}
	}
}

func TestNormalizeMessageIdempotent(t *testing.T) {
	msgs := []string{
		"22 V2 11 02 76 00 70 55 18",
		"(INQ) 73 82 V1 90",
		"Comment ca va Vsause",
	}
	for _, m := range msgs {
		once := NormalizeMessage(m)
		if twice := NormalizeMessage(once); twice != once {
			t.Errorf("NormalizeMessage(%q) not idempotent: %q then %q", m, once, twice)
		}
		text := normalizeText(m)
		if again := normalizeText(text); again != text {
			t.Errorf("normalizeText(%q) not idempotent: %q then %q", m, text, again)
		}
	}
}

func TestCanonicalCodeWheels(t *testing.T) {
	w1 := CanonicalCodeWheel(0)
	if w1[0] != "01" || w1[25] != "26" {
		t.Errorf("wheel1 = %v, want 01..26", w1)
	}
	w2 := CanonicalCodeWheel(1)
	if w2[0] != "27" || w2[25] != "52" {
		t.Errorf("wheel2 = %v, want 27..52", w2)
	}
	w3 := CanonicalCodeWheel(2)
	if w3[0] != "53" || w3[25] != "78" {
		t.Errorf("wheel3 = %v, want 53..78", w3)
	}
	w4 := CanonicalCodeWheel(3)
	wantTail := []string{"99", "00", "v1", "v2", "v3", "v4"}
	if diff := cmp.Diff(wantTail, w4[20:]); diff != "" {
		t.Errorf("wheel4 tail mismatch (-want +got):\n%s", diff)
	}
	if w4[0] != "79" {
		t.Errorf("wheel4 starts with %q, want 79", w4[0])
	}
}

func TestRotate(t *testing.T) {
	w := CanonicalAlphabet()
	got, ok := w.Rotate("x")
	if !ok {
		t.Fatal("Rotate(x) not found")
	}
	if got.String() != "x y z a b c d e f g h i j k l m n o p q r s t u v w" {
		t.Errorf("Rotate(x) = %q", got.String())
	}

	if _, ok := w.Rotate("7"); ok {
		t.Error("Rotate of a missing value should fail")
	}

	same, _ := w.Rotate("a")
	if same != w {
		t.Error("Rotate to the first entry should be a no-op")
	}
}

func TestBuildReferenceKey(t *testing.T) {
	ws, err := Build("U 14 48 56 V2")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if ws.Key() != "u144856v2" {
		t.Errorf("Key() = %q, want u144856v2", ws.Key())
	}

	alpha := ws.Alphabet()
	if alpha[0] != "u" || alpha[6] != "a" || alpha[25] != "t" {
		t.Errorf("alphabet = %v", alpha)
	}

	want := map[int][]string{
		1: {"14", "15", "16", "17", "18", "19", "20", "21", "22", "23", "24", "25", "26", "01", "02", "03", "04", "05", "06", "07", "08", "09", "10", "11", "12", "13"},
		2: {"48", "49", "50", "51", "52", "27", "28", "29", "30", "31", "32", "33", "34", "35", "36", "37", "38", "39", "40", "41", "42", "43", "44", "45", "46", "47"},
		3: {"56", "57", "58", "59", "60", "61", "62", "63", "64", "65", "66", "67", "68", "69", "70", "71", "72", "73", "74", "75", "76", "77", "78", "53", "54", "55"},
		4: {"v2", "v3", "v4", "79", "80", "81", "82", "83", "84", "85", "86", "87", "88", "89", "90", "91", "92", "93", "94", "95", "96", "97", "98", "99", "00", "v1"},
	}
	for n, w := range want {
		got := ws.CodeWheel(n)
		if diff := cmp.Diff(w, got[:]); diff != "" {
			t.Errorf("wheel%d mismatch (-want +got):\n%s", n, diff)
		}
	}
}

func TestBuildInvalidKey(t *testing.T) {
	keys := []string{
		"",
		"123456789",
		"u14",
		"u1448567",
		"u 00 48 56 v2",
		"u 14 14 56 v2",
		"u 14 48 99 v2",
		"u 14 48 56 27",
		"u 14 48 56 v5",
		"é14485600",
		"(INQ)1448560",
		"a0102v103",
	}

	for _, k := range keys {
		ws, err := Build(k)
		if err == nil {
			t.Errorf("Build(%q) = %v, want error", k, ws.Key())
			continue
		}
		if !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Build(%q) error %v does not wrap ErrInvalidKey", k, err)
		}
		var ke *KeyError
		if !errors.As(err, &ke) {
			t.Errorf("Build(%q) error %T is not a *KeyError", k, err)
		}
	}
}

func TestKeyErrorOmitsKey(t *testing.T) {
	_, err := Build("u 14 48 99 v2")
	if err == nil {
		t.Fatal("expected an error")
	}
	msg := err.Error()
	if strings.Contains(msg, "u144899v2") || strings.Contains(msg, "u14") {
		t.Errorf("error %q leaks the key", msg)
	}
	if !strings.Contains(msg, `"99"`) || !strings.Contains(msg, "wheel 3") {
		t.Errorf("error %q should name the failing slice and wheel", msg)
	}
}

func TestBuildIgnoresExtraCharacters(t *testing.T) {
	a, err := Build("u144856v2")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build("u144856v2 and more")
	if err != nil {
		t.Fatal(err)
	}
	if a.Render() != b.Render() {
		t.Error("characters after the ninth should not change the wheels")
	}
}

// wellFormedKeys rotates every wheel by the same position, which visits each
// entry of each wheel once.
func wellFormedKeys() []string {
	alpha := CanonicalAlphabet()
	var keys []string
	for i := 0; i < WheelSize; i++ {
		var sb strings.Builder
		sb.WriteString(alpha[(i*7)%WheelSize])
		for n := 0; n < CodeWheels; n++ {
			sb.WriteString(CanonicalCodeWheel(n)[i])
		}
		keys = append(keys, sb.String())
	}
	return keys
}

func isRotationOf(got, base Wheel) bool {
	start := base.Index(got[0])
	if start < 0 {
		return false
	}
	for i := range got {
		if got[i] != base[(start+i)%WheelSize] {
			return false
		}
	}
	return true
}

func TestWheelWellFormedness(t *testing.T) {
	for _, key := range wellFormedKeys() {
		ws, err := Build(key)
		if err != nil {
			t.Fatalf("Build(%q) failed: %v", key, err)
		}

		wheels := []Wheel{ws.Alphabet()}
		bases := []Wheel{CanonicalAlphabet()}
		for n := 1; n <= CodeWheels; n++ {
			wheels = append(wheels, ws.CodeWheel(n))
			bases = append(bases, CanonicalCodeWheel(n-1))
		}

		for i, w := range wheels {
			seen := make(map[string]bool, WheelSize)
			for _, e := range w {
				if seen[e] {
					t.Errorf("key %q wheel %d has duplicate %q", key, i, e)
				}
				seen[e] = true
			}
			if len(seen) != WheelSize {
				t.Errorf("key %q wheel %d has %d distinct entries", key, i, len(seen))
			}
			if !isRotationOf(w, bases[i]) {
				t.Errorf("key %q wheel %d is not a rotation of its base: %v", key, i, w)
			}
		}
	}
}

func TestPositionalAlignment(t *testing.T) {
	for _, key := range wellFormedKeys() {
		ws, err := Build(key)
		if err != nil {
			t.Fatal(err)
		}
		alpha := ws.Alphabet()
		for i := 0; i < WheelSize; i++ {
			for n := 1; n <= CodeWheels; n++ {
				code := ws.CodeWheel(n)[i]
				got, ok := ws.Letter(code)
				if !ok || got != alpha[i] {
					t.Errorf("key %q: code %q on wheel %d decodes to %q, want %q", key, code, n, got, alpha[i])
				}
			}
		}
	}
}

func TestRender(t *testing.T) {
	ws, err := Build("U 14 48 56 V2")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(ws.Render(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("Render produced %d lines, want 5:\n%s", len(lines), ws.Render())
	}
	if !strings.HasPrefix(lines[0], "     u  v  w") {
		t.Errorf("alphabet row = %q", lines[0])
	}
	if !strings.HasPrefix(lines[4], "w4  v2 v3 v4 79") {
		t.Errorf("wheel4 row = %q", lines[4])
	}
}
