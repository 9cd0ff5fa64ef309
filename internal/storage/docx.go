package storage

import (
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/codebuildervaibhav/video-analyzer/internal/playback"
)

const (
	fontName = "Times New Roman"
	fontSize = 12
)

var (
	reHeading = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet  = regexp.MustCompile(`^[\-\*]\s+(.+)$`)
)

// writeDocx renders summary, chapters, notes and transcript into a Word document
func writeDocx(exp Export, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	title := exp.Title
	if title == "" {
		title = "Video " + exp.VideoID
	}
	addStyledRun(doc.AddParagraph(""), title, true, 16)

	if exp.Summary != "" {
		addStyledRun(doc.AddParagraph(""), "Summary", true, 14)
		for _, line := range strings.Split(exp.Summary, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if m := reHeading.FindStringSubmatch(trimmed); m != nil {
				addStyledRun(doc.AddParagraph(""), m[2], true, fontSize+1)
				continue
			}
			if m := reBullet.FindStringSubmatch(trimmed); m != nil {
				trimmed = "• " + m[1]
			}
			addRichText(doc.AddParagraph(""), trimmed)
		}
	}

	if exp.Analysis != nil {
		if len(exp.Analysis.Chapters) > 0 {
			addStyledRun(doc.AddParagraph(""), "Chapters", true, 14)
			for _, ch := range exp.Analysis.Chapters {
				p := doc.AddParagraph("")
				p.AddText(ch.Timestamp + "  ").Font(fontName).Size(fontSize).Color("000000").Bold(true)
				p.AddText(ch.Title).Font(fontName).Size(fontSize).Color("000000")
			}
		}
		if len(exp.Analysis.KeyNotes) > 0 {
			addStyledRun(doc.AddParagraph(""), "Key notes", true, 14)
			for _, n := range exp.Analysis.KeyNotes {
				p := doc.AddParagraph("")
				p.AddText(n.Time + "  ").Font(fontName).Size(fontSize).Color("000000").Bold(true)
				p.AddText(n.Note).Font(fontName).Size(fontSize).Color("000000")
			}
		}
	}

	addStyledRun(doc.AddParagraph(""), "Transcript", true, 14)
	for _, seg := range exp.Segments {
		p := doc.AddParagraph("")
		p.AddText("[" + playback.FormatTimestamp(seg.Start) + "] ").Font(fontName).Size(fontSize).Color("555555")
		p.AddText(seg.Text).Font(fontName).Size(fontSize).Color("000000")
		if seg.Original != "" {
			p.AddText(" (" + seg.Original + ")").Font(fontName).Size(fontSize - 2).Color("777777")
		}
	}

	return doc.SaveTo(outputPath)
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(cleanMarkdownInline(text)).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}

func addRichText(p *docx.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(cleanMarkdownInline(part)).Font(fontName).Size(fontSize).Color("000000")
		}
		if i < len(matches) {
			p.AddText(cleanMarkdownInline(matches[i][1])).Font(fontName).Size(fontSize).Color("000000").Bold(true)
		}
	}
}

func cleanMarkdownInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
