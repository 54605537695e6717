package worker

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/newsgate/internal/model"
)

// Analyzer runs the full two-stage analysis for one article
type Analyzer interface {
	Analyze(ctx context.Context, content, sourceURL string) (*model.AnalysisReport, error)
}

// Item is one article of a batch input file
type Item struct {
	ID        string `json:"id,omitempty"`
	Content   string `json:"content"`
	SourceURL string `json:"sourceUrl,omitempty"`
}

// AnalyzeJob analyzes one batch item
type AnalyzeJob struct {
	Item     Item
	Analyzer Analyzer
}

// Execute runs the analysis
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	report, err := j.Analyzer.Analyze(ctx, j.Item.Content, j.Item.SourceURL)
	return &ItemResult{Item: j.Item, Report: report, Error: err}
}

// ItemResult is the outcome for one batch item
type ItemResult struct {
	Item   Item
	Report *model.AnalysisReport
	Error  error
}

// GetError returns the analysis error
func (r *ItemResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes many articles concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// Process analyzes items and returns one result per item, in input order
func (b *BatchProcessor) Process(ctx context.Context, items []Item) []*ItemResult {
	if len(items) == 0 {
		return []*ItemResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, item := range items {
		pool.Submit(&AnalyzeJob{Item: item, Analyzer: b.analyzer})
	}

	results := pool.Wait()

	out := make([]*ItemResult, len(items))
	for i, item := range items {
		if i < len(results) && results[i] != nil {
			out[i] = results[i].(*ItemResult)
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = fmt.Errorf("not processed")
		}
		out[i] = &ItemResult{Item: item, Error: err}
	}
	return out
}

// ProcessFile reads items from a file and processes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ItemResult, error) {
	items, err := ReadItemsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}

	return b.Process(ctx, items), nil
}

// ReadItemsFromFile reads batch items. A file whose first non-blank line
// starts with "{" is JSON lines; otherwise it is plain-text articles
// separated by lines containing only "---". Items get sequential IDs when
// none are given.
func ReadItemsFromFile(filePath string) ([]Item, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	var items []Item
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		items, err = readJSONLines(data)
	} else {
		items, err = readTextBlocks(data)
	}
	if err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].ID == "" {
			items[i].ID = fmt.Sprintf("item-%03d", i+1)
		}
	}
	return items, nil
}

func readJSONLines(data []byte) ([]Item, error) {
	var items []Item

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		var item Item
		if err := json.Unmarshal([]byte(text), &item); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		items = append(items, item)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return items, nil
}

func readTextBlocks(data []byte) ([]Item, error) {
	var items []Item
	var block []string

	flush := func() {
		content := strings.TrimSpace(strings.Join(block, "\n"))
		if content != "" {
			items = append(items, Item{Content: content})
		}
		block = block[:0]
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "---" {
			flush()
			continue
		}
		block = append(block, line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return items, nil
}
