package handle

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Classification
	}{
		{"simple", "Alice#1234", Valid},
		{"surrounding whitespace", "  Alice#1234\n", Valid},
		{"spaces in name", "Alice Smith#0001", Valid},
		{"punctuation allowed", "a.l-i_c!e#9999", Valid},
		{"unicode name", "Ålîçé#4321", Valid},
		{"two char minimum", "ab#0000", Valid},
		{"one char name", "a#1234", Invalid},
		{"thirty two chars", strings.Repeat("x", 32) + "#1234", Valid},
		{"thirty three chars", strings.Repeat("x", 33) + "#1234", Invalid},
		{"three digits", "Alice#123", Invalid},
		{"five digits", "Alice#12345", Invalid},
		{"non ascii digits", "Alice#١٢٣٤", Invalid},
		{"missing discriminator", "Alice", Invalid},
		{"at sign", "@Alice#1234", Invalid},
		{"colon", "Al:ice#1234", Invalid},
		{"backtick", "Al`ice#1234", Invalid},
		{"double hash", "Al#ice#1234", Invalid},
		{"reserved everyone", "everyone#1234", Invalid},
		{"reserved here mixed case", "HeRe#1234", Invalid},
		{"reserved discordtag", "DiscordTag#0000", Invalid},
		{"reserved word inside name", "there#1234", Valid},
		{"free text", "not-a-handle", Invalid},
		{"empty", "", Absent},
		{"whitespace only", " \t\n ", Absent},
		{"invalid utf8", "\xff\xfe#1234", Valid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassifyReservedOnlyAsWholeName(t *testing.T) {
	for _, h := range []string{"Everyone#1234", "here#0000"} {
		if IsValid(h) {
			t.Errorf("IsValid(%q) = true", h)
		}
	}
	for _, h := range []string{"everyone1#1234", "hereford#0000"} {
		if !IsValid(h) {
			t.Errorf("IsValid(%q) = false", h)
		}
	}
}

func TestSplit(t *testing.T) {
	name, disc, ok := Split(" Carl#0001 ")
	if !ok || name != "Carl" || disc != "0001" {
		t.Errorf("Split() = %q, %q, %v", name, disc, ok)
	}
	if _, _, ok := Split("nope"); ok {
		t.Error("Split(nope) should fail")
	}
}

func TestSameAuthor(t *testing.T) {
	if !SameAuthor("Alice", " alice ") {
		t.Error("author comparison should ignore case and padding")
	}
	if SameAuthor("alice", "bob") {
		t.Error("different authors matched")
	}
}

func FuzzClassify(f *testing.F) {
	for _, seed := range []string{"Alice#1234", "", "here#0000", "\x00#1234", "💥💥#9999"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		first := Classify(s)
		if again := Classify(s); again != first {
			t.Fatalf("Classify(%q) not deterministic: %v then %v", s, first, again)
		}
		if first == Valid && !strings.Contains(s, "#") {
			t.Fatalf("Classify(%q) valid without discriminator", s)
		}
	})
}
