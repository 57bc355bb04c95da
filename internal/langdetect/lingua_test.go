package langdetect

import "testing"

func TestDetectSource(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"The quick brown fox jumps over the lazy dog near the river bank.": "en",
		"今日はとても良い天気ですね。散歩に行きましょう。":                                         "ja",
		"El perro corre rápidamente por el parque todas las mañanas.":      "es",
	}
	for text, want := range cases {
		if got := DetectSource(text); got != want {
			t.Fatalf("DetectSource(%q) = %q, want %q", text, got, want)
		}
	}
}

func TestDetectSourceReportsChineseWithRegion(t *testing.T) {
	t.Parallel()

	if got := DetectSource("我们今天下午一起去公园散步，这里的风景非常漂亮。"); got != "zh-CN" {
		t.Fatalf("expected zh-CN, got %q", got)
	}
}

func TestDetectSourceShortSample(t *testing.T) {
	t.Parallel()

	if got := DetectSource("ok"); got != "" {
		t.Fatalf("expected no detection for short sample, got %q", got)
	}
	if got := DetectSource("   "); got != "" {
		t.Fatalf("expected no detection for blank sample, got %q", got)
	}
}

func TestIsAuto(t *testing.T) {
	t.Parallel()

	if !IsAuto(" AUTO ") {
		t.Fatalf("expected AUTO to request detection")
	}
	if IsAuto("en") {
		t.Fatalf("did not expect en to request detection")
	}
}
