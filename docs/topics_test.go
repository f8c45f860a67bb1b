package docs

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/etnz/fiscal"
	"github.com/etnz/fiscal/date"
	"github.com/phuslu/log"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// feedBlock is the info string of fenced blocks holding an operations feed.
const feedBlock = "jsonl feed"

// TestTopics checks that every topic listed in readme.md can be loaded and
// that every topic file is listed in readme.md.
func TestTopics(t *testing.T) {
	file, err := os.Open("readme.md")
	if err != nil {
		t.Fatalf("failed to open readme.md: %v", err)
	}
	defer file.Close()

	var listed []string
	scanner := bufio.NewScanner(file)
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	for scanner.Scan() {
		if matches := topicRegex.FindStringSubmatch(scanner.Text()); len(matches) > 1 {
			listed = append(listed, strings.TrimSpace(matches[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("error scanning readme.md: %v", err)
	}

	for _, topic := range listed {
		if _, err := GetTopic(topic); err != nil {
			t.Errorf("GetTopic(%q) failed: %v", topic, err)
		}
	}

	all, err := GetAllTopics()
	if err != nil {
		t.Fatalf("GetAllTopics() failed: %v", err)
	}
	for _, topic := range all {
		if !slices.Contains(listed, topic) {
			t.Errorf("topic %q is not listed in readme.md", topic)
		}
	}
}

func TestGetAllTopicsContent(t *testing.T) {
	got, err := GetTopic("*")
	if err != nil {
		t.Fatalf("GetTopic(*) failed: %v", err)
	}
	for _, want := range []string{"# Operations Feed", "# FIFO Matching", "# Wash Sales", "# Currency Conversion"} {
		if !strings.Contains(got, want) {
			t.Errorf("GetTopic(*) does not contain %q", want)
		}
	}
	if _, err := GetTopic("missing"); err == nil {
		t.Error("GetTopic(missing) succeeded, want an error")
	}
}

// TestFeedBlocks checks that every feed example in the topics is a valid
// feed the calculator accepts.
func TestFeedBlocks(t *testing.T) {
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	calc := fiscal.Calculator{
		Rates:  sameRate{},
		Logger: &log.Logger{Writer: &log.IOWriter{Writer: io.Discard}},
		Now:    func() time.Time { return time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC) },
	}
	for _, file := range files {
		for _, block := range parseMarkdown(t, file) {
			ops, err := fiscal.DecodeOperations(strings.NewReader(block.Content))
			if err != nil {
				t.Errorf("%s:%d: invalid feed: %v", block.File, block.Line, err)
				continue
			}
			if len(ops) == 0 {
				t.Errorf("%s:%d: empty feed", block.File, block.Line)
				continue
			}
			report, err := calc.Calculate(context.Background(), "docs", ops)
			if err != nil {
				t.Errorf("%s:%d: Calculate() failed: %v", block.File, block.Line, err)
				continue
			}
			if len(report.Years) == 0 {
				t.Errorf("%s:%d: example realizes nothing", block.File, block.Line)
			}
			if len(report.Degradations) > 0 {
				t.Errorf("%s:%d: example is degraded: %v", block.File, block.Line, report.Degradations)
			}
		}
	}
}

// sameRate converts every currency at 1.
type sameRate struct{}

func (sameRate) Rate(context.Context, string, string, date.Date) (decimal.Decimal, bool, error) {
	return decimal.NewFromInt(1), true, nil
}

// Block is a fenced code block of a markdown file.
type Block struct {
	Content string
	File    string
	Line    int
}

// parseMarkdown returns the feed blocks of a markdown file.
func parseMarkdown(t *testing.T, file string) []*Block {
	t.Helper()

	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("failed to read %s: %v", file, err)
	}
	root := goldmark.DefaultParser().Parse(text.NewReader(content))

	var blocks []*Block
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok || fcb.Info == nil {
			return ast.WalkContinue, nil
		}
		if string(fcb.Info.Segment.Value(content)) != feedBlock {
			return ast.WalkContinue, nil
		}
		var b strings.Builder
		for i := 0; i < fcb.Lines().Len(); i++ {
			line := fcb.Lines().At(i)
			b.Write(line.Value(content))
		}
		blocks = append(blocks, &Block{
			Content: b.String(),
			File:    file,
			Line:    lineNumber(content, fcb.Info.Segment.Start),
		})
		return ast.WalkContinue, nil
	})
	return blocks
}

// lineNumber returns the line of an offset in source.
func lineNumber(source []byte, offset int) int {
	return bytes.Count(source[:offset], []byte{'\n'}) + 1
}
