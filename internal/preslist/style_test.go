package preslist

import "testing"

func TestSentenceCase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"Machine Learning For Materials", "Machine learning for materials"},
		{"the PDF method in {Monte Carlo} Studies", "The PDF method in Monte Carlo studies"},
		{"The {DNA} Repair Story", "The DNA repair story"},
		{"{dft} Meets {Machine learning}", "dft meets Machine learning"},
		{"  leading space", "  Leading space"},
		{"\"Quoted\" Title", "\"Quoted\" title"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SentenceCase(tt.in); got != tt.want {
			t.Errorf("SentenceCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
