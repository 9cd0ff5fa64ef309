package analysis

import (
	"fmt"
	"strings"

	"github.com/codebuildervaibhav/video-analyzer/internal/playback"
	"github.com/codebuildervaibhav/video-analyzer/internal/types"
)

const summaryPrompt = `You are an expert at summarizing video content.
Analyze the following video transcript and provide a concise, well-structured summary
that captures the main ideas, key points, and overall message.

**Instructions:**
- Write in clear, professional language
- Highlight the most important information
- Keep it between 150-300 words
- Use bullet points for key takeaways if appropriate

**Transcript:**
%s

**Summary:**`

const analysisPrompt = `You are an expert video content analyzer. Analyze this transcript and create:

1. **CHAPTERS**: A timeline of main topics/sections with timestamps
2. **KEY NOTES**: Important points, facts, or insights with their timestamps

**Output Format** (STRICT JSON):
{
    "chapters": [
        {"timestamp": "0:00", "title": "Introduction"},
        {"timestamp": "2:30", "title": "Main Topic Begins"}
    ],
    "key_notes": [
        {"time": "0:15", "note": "Speaker introduces the main theme"},
        {"time": "3:20", "note": "Important statistic: 85%% growth"}
    ]
}

**Guidelines:**
- Create 5-10 chapters (major sections only)
- Create 8-15 key notes (most valuable insights)
- Use exact timestamp format: "M:SS" or "H:MM:SS"
- Keep titles/notes concise but descriptive
- Return ONLY valid JSON, no markdown or extra text

**Transcript with Timestamps:**
%s

**JSON Output:**`

// TimestampedText renders one "[M:SS] text" line per segment
func TimestampedText(segments []types.Segment) string {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		lines = append(lines, fmt.Sprintf("[%s] %s", playback.FormatTimestamp(seg.Start), seg.Text))
	}
	return strings.Join(lines, "\n")
}

func buildSummaryPrompt(segments []types.Segment) string {
	return fmt.Sprintf(summaryPrompt, types.PlainText(segments))
}

func buildAnalysisPrompt(segments []types.Segment) string {
	return fmt.Sprintf(analysisPrompt, TimestampedText(segments))
}
