package analyzer

import "testing"

func TestWordsOffsets(t *testing.T) {
	text := "Go is fun"
	words := Words(text)
	if len(words) != 3 {
		t.Fatalf("expected 3 words, got %d", len(words))
	}
	for _, w := range words {
		if text[w.Start:w.End] != w.Text {
			t.Errorf("offset mismatch: %q != %q", text[w.Start:w.End], w.Text)
		}
	}
	if words[2].Text != "fun" {
		t.Errorf("expected 'fun', got %q", words[2].Text)
	}
}

func TestCountTokensEmpty(t *testing.T) {
	if n := CountTokens(""); n != 0 {
		t.Errorf("expected 0 tokens for empty text, got %d", n)
	}
	if n := CountTokens("   \n\t"); n != 0 {
		t.Errorf("expected 0 tokens for whitespace, got %d", n)
	}
}

func TestSentencesBasic(t *testing.T) {
	text := "This is one. This is two! Is this three? Yes."
	sentences := Sentences(text)
	if len(sentences) != 4 {
		t.Fatalf("expected 4 sentences, got %d: %v", len(sentences), sentences)
	}
	if sentences[0].Text != "This is one." {
		t.Errorf("unexpected first sentence: %q", sentences[0].Text)
	}
	for _, s := range sentences {
		if text[s.Start:s.End] != s.Text {
			t.Errorf("offset mismatch: %q != %q", text[s.Start:s.End], s.Text)
		}
	}
}

func TestSentencesDecimalAndAbbreviation(t *testing.T) {
	text := "Dr. Smith measured 3.14 units. The result held."
	sentences := Sentences(text)
	if len(sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %v", len(sentences), sentences)
	}
}

func TestSentencesParagraphBreak(t *testing.T) {
	text := "A heading without punctuation\n\nThen a sentence."
	sentences := Sentences(text)
	if len(sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %v", len(sentences), sentences)
	}
	if sentences[0].Text != "A heading without punctuation" {
		t.Errorf("unexpected first span: %q", sentences[0].Text)
	}
}

func TestParagraphs(t *testing.T) {
	text := "First paragraph here.\n\nSecond one.\n\n\n\nThird."
	paras := Paragraphs(text)
	if len(paras) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", len(paras))
	}
	for _, p := range paras {
		if text[p.Start:p.End] != p.Text {
			t.Errorf("offset mismatch: %q != %q", text[p.Start:p.End], p.Text)
		}
	}
}

func TestSyllableCount(t *testing.T) {
	cases := []struct {
		word string
		want int
	}{
		{"cat", 1},
		{"table", 2},
		{"make", 1},
		{"beautiful", 3},
		{"university", 5},
		{"", 0},
		{"a", 1},
	}
	for _, tc := range cases {
		if got := SyllableCount(tc.word); got != tc.want {
			t.Errorf("SyllableCount(%q) = %d, want %d", tc.word, got, tc.want)
		}
	}
}

func TestContentWordsDropsStopwords(t *testing.T) {
	words := ContentWords("The cat sat on the mat")
	for _, w := range words {
		if w == "the" || w == "on" {
			t.Errorf("stopword %q not removed", w)
		}
	}
	if len(words) != 3 {
		t.Errorf("expected 3 content words, got %d: %v", len(words), words)
	}
}
