package evidence

import (
	"strings"
	"testing"

	"ai-fitness-be/pkg/papersearch"
)

func TestSerializeAllGroups(t *testing.T) {
	bundle := &Bundle{
		TranscriptChunks: []Chunk{
			{Text: "zone 2 training builds the aerobic base", SourceTitle: "Cardio Basics Ep. 4", SourceType: SourceTranscript, Score: 0.91},
		},
		TextbookChunks: []Chunk{
			{Text: "VO2max is the ceiling of aerobic output", SourceTitle: "Exercise Physiology, ch. 7", SourceType: SourceTextbook, Score: 0.84},
		},
		Papers: []papersearch.Paper{
			{Title: "Polarized training in endurance athletes", URL: "https://example.org/p", PublishedDate: "2022-01-10", Summary: "80/20 works."},
		},
	}

	out, err := bundle.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	for _, want := range []string{
		"Transcript Chunks:",
		"Textbook Chunks:",
		"Research Paper Summaries:",
		"zone 2 training builds the aerobic base",
		"Exercise Physiology, ch. 7",
		"Polarized training in endurance athletes",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("serialized bundle missing %q", want)
		}
	}

	if got := strings.Count(out, "\n\n"); got < 2 {
		t.Errorf("expected groups separated by blank lines, got %d separators", got)
	}
}

func TestSerializeEmptyBundle(t *testing.T) {
	bundle := &Bundle{}
	if !bundle.Empty() {
		t.Fatal("expected empty bundle")
	}

	out, err := bundle.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	// Empty groups must still appear as empty arrays, not vanish.
	if strings.Count(out, "[]") != 3 {
		t.Errorf("expected three empty arrays, got: %s", out)
	}
}

func TestSerializeParseRoundTrip(t *testing.T) {
	bundle := &Bundle{
		TranscriptChunks: []Chunk{
			{Text: "progressive overload drives hypertrophy", SourceTitle: "Hypertrophy Q&A", SourceType: SourceTranscript, Score: 0.93, SourceRef: "yt:abc123"},
			{Text: "rest 2-3 minutes between compound sets", SourceTitle: "Hypertrophy Q&A", SourceType: SourceTranscript, Score: 0.88},
		},
		TextbookChunks: []Chunk{
			{Text: "muscle protein synthesis peaks 24-48h post exercise", SourceTitle: "Sports Nutrition, ch. 3", SourceType: SourceTextbook, Score: 0.81},
		},
		Papers: []papersearch.Paper{
			{Title: "Training volume and hypertrophy: a meta-analysis", URL: "https://example.org/vol", PublishedDate: "2021-06-02", Summary: "More sets, more growth, up to a point."},
		},
	}

	out, err := bundle.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	parsed, err := Parse(out)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if len(parsed.TranscriptChunks) != 2 || len(parsed.TextbookChunks) != 1 || len(parsed.Papers) != 1 {
		t.Fatalf("counts not preserved: %d/%d/%d", len(parsed.TranscriptChunks), len(parsed.TextbookChunks), len(parsed.Papers))
	}
	if parsed.TranscriptChunks[0].SourceType != SourceTranscript || parsed.TranscriptChunks[0].SourceRef != "yt:abc123" {
		t.Errorf("transcript attribution lost: %+v", parsed.TranscriptChunks[0])
	}
	if parsed.TextbookChunks[0].SourceTitle != "Sports Nutrition, ch. 3" {
		t.Errorf("textbook attribution lost: %+v", parsed.TextbookChunks[0])
	}
	if parsed.Papers[0].URL != "https://example.org/vol" {
		t.Errorf("paper attribution lost: %+v", parsed.Papers[0])
	}
}

func TestParseIgnoresSurroundingText(t *testing.T) {
	raw := "tool result follows\n\nTranscript Chunks: \n [{\"text\":\"x\",\"source_title\":\"t\",\"source_type\":\"transcript\",\"score\":0.5}]\n\nTextbook Chunks: \n []\n\nResearch Paper Summaries: \n []"
	parsed, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(parsed.TranscriptChunks) != 1 {
		t.Fatalf("expected one transcript chunk, got %d", len(parsed.TranscriptChunks))
	}
}
