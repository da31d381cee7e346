package match

import (
	"math"
	"testing"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "the quick brown fox", "the quick brown fox", 1.0},
		{"both empty", "", "", 1.0},
		{"one empty", "abc", "", 0.0},
		{"disjoint", "abc", "xyz", 0.0},
		// 2*3/(4+4): longest block "bcd".
		{"partial overlap", "abcd", "bcde", 0.75},
		{"single word typo", "jumps", "jumbs", 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Ratio(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRatioSymmetricRange(t *testing.T) {
	pairs := [][2]string{
		{"the quick brown fox", "a quick brown dog"},
		{"hello world", "world hello"},
		{"aaaa", "aa"},
		{"completely different", "nothing alike here"},
	}
	for _, p := range pairs {
		ab := Ratio(p[0], p[1])
		ba := Ratio(p[1], p[0])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("Ratio not symmetric for %q/%q: %v vs %v", p[0], p[1], ab, ba)
		}
		if ab < 0 || ab > 1 {
			t.Errorf("Ratio(%q, %q) = %v out of [0,1]", p[0], p[1], ab)
		}
	}
}

func TestRatioUpperBoundNeverUnderestimates(t *testing.T) {
	pairs := [][2]string{
		{"the quick brown fox", "the quick brown fox"},
		{"the quick brown fox", "fox brown quick the"},
		{"abcd", "bcde"},
		{"hello world", "goodbye moon"},
		{"", "nonempty"},
		{"repeated repeated", "repeated"},
	}
	for _, p := range pairs {
		bound := RatioUpperBound(p[0], p[1])
		actual := Ratio(p[0], p[1])
		if bound < actual-1e-9 {
			t.Errorf("RatioUpperBound(%q, %q) = %v below Ratio %v", p[0], p[1], bound, actual)
		}
	}
}

func TestLongestCommonBlockPrefersEarliest(t *testing.T) {
	// Two equally long common blocks; the earlier one in a must win.
	ai, bi, size := longestCommonBlock([]rune("xxabyyab"), []rune("ab"))
	if size != 2 || ai != 2 || bi != 0 {
		t.Errorf("longestCommonBlock = (%d, %d, %d), want (2, 0, 2)", ai, bi, size)
	}
}
