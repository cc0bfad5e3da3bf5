package llm

import "testing"

func TestContainsURL(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"Tell me about goroutines.", false},
		{"See https://example.com/answer for details.", true},
		{"see HTTP://EXAMPLE.COM", true},
		{"check www.example.com please", true},
		{"the ratio http of requests", false},
	}
	for _, c := range cases {
		if got := ContainsURL(c.in); got != c.want {
			t.Errorf("ContainsURL(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestStripURLs(t *testing.T) {
	in := "Read https://example.com/a and then www.example.org next."
	got := StripURLs(in)
	if ContainsURL(got) {
		t.Fatalf("URLs survived stripping: %q", got)
	}
	if got != "Read and then next." {
		t.Fatalf("got %q", got)
	}
}
