package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet names expected in the source workbook.
const (
	sheetSEOKeywords = "SEO - Keywords"
	sheetLLMKeywords = "LLM - Keywords"
	sheetWebsite     = "Website"
	sheetTopics      = "key topics"
)

// Corpus is the immutable record set one run operates on: two keyword
// sheets, the internal-link list, and the topic list.
type Corpus struct {
	SEOKeywords KeywordSet
	LLMKeywords KeywordSet
	Links       []LinkRecord
	Topics      []TopicRecord
}

// LoadCorpus reads the four expected sheets from an Excel workbook. A
// missing sheet is logged and yields an empty collection; a missing or
// unreadable workbook is an error. Callers must treat an empty topic list
// as fatal before starting generation.
func LoadCorpus(path string) (*Corpus, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()

	corpus := &Corpus{
		SEOKeywords: readKeywordSheet(f, sheetSEOKeywords),
		LLMKeywords: readKeywordSheet(f, sheetLLMKeywords),
		Links:       readLinkSheet(f, sheetWebsite),
		Topics:      readTopicSheet(f, sheetTopics),
	}

	log.Printf("Loaded corpus: %d topics, %d links, %d SEO categories, %d LLM categories",
		len(corpus.Topics), len(corpus.Links),
		len(corpus.SEOKeywords.Categories), len(corpus.LLMKeywords.Categories))

	return corpus, nil
}

// readKeywordSheet reads one keyword sheet. The header row names the
// categories; each column's non-empty cells below it are that category's
// keywords, in row order.
func readKeywordSheet(f *excelize.File, name string) KeywordSet {
	rows, err := f.GetRows(name)
	if err != nil {
		log.Printf("✗ Sheet %q not found, continuing with no keywords", name)
		return KeywordSet{}
	}
	if len(rows) == 0 {
		return KeywordSet{}
	}

	var set KeywordSet
	for col, category := range rows[0] {
		if strings.TrimSpace(category) == "" {
			continue
		}
		kc := KeywordCategory{Name: strings.TrimSpace(category)}
		for _, row := range rows[1:] {
			if kw := cellAt(row, col); kw != "" {
				kc.Keywords = append(kc.Keywords, kw)
			}
		}
		set.Categories = append(set.Categories, kc)
	}
	return set
}

// readLinkSheet reads the website sheet into link records. Rows with
// neither a name nor a URL are skipped; a row with a URL but no name gets
// the generic "Link" label the prompt falls back to.
func readLinkSheet(f *excelize.File, name string) []LinkRecord {
	rows, err := f.GetRows(name)
	if err != nil {
		log.Printf("✗ Sheet %q not found, continuing with no links", name)
		return nil
	}
	if len(rows) < 2 {
		return nil
	}

	nameCol := columnIndex(rows[0], "Name")
	urlCol := columnIndex(rows[0], "URL")

	var links []LinkRecord
	for _, row := range rows[1:] {
		link := LinkRecord{Name: cellAt(row, nameCol), URL: cellAt(row, urlCol)}
		if link.Name == "" && link.URL == "" {
			continue
		}
		if link.Name == "" {
			link.Name = "Link"
		}
		links = append(links, link)
	}
	return links
}

// readTopicSheet reads the topic sheet. Rows without a topic cell are
// skipped; missing description or source cells default to "".
func readTopicSheet(f *excelize.File, name string) []TopicRecord {
	rows, err := f.GetRows(name)
	if err != nil {
		log.Printf("✗ Sheet %q not found, continuing with no topics", name)
		return nil
	}
	if len(rows) < 2 {
		return nil
	}

	topicCol := columnIndex(rows[0], "Topic")
	descCol := columnIndex(rows[0], "Description")
	srcCol := columnIndex(rows[0], "Source & URL")

	var topics []TopicRecord
	for _, row := range rows[1:] {
		t := TopicRecord{
			Topic:       cellAt(row, topicCol),
			Description: cellAt(row, descCol),
			SourceURL:   cellAt(row, srcCol),
		}
		if t.Topic == "" {
			continue
		}
		topics = append(topics, t)
	}
	return topics
}

// columnIndex finds a header column by case-insensitive name, -1 if absent.
func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// cellAt returns the trimmed cell value, tolerating short rows. Excel rows
// drop trailing empty cells, so out-of-range reads are normal.
func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
