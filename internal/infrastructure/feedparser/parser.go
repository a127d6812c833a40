// Package feedparser turns uploaded product feed files into product rows.
package feedparser

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	catalogapp "github.com/marketplace/backend/internal/application/catalog"
	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/integration"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var _ catalogapp.FeedParser = (*CSVParser)(nil)

var (
	// ErrEmptyFile is returned when the feed file has no content
	ErrEmptyFile = errors.New("feed file is empty")

	// ErrMissingHeader is returned when the feed file has no header row
	ErrMissingHeader = errors.New("feed file missing header row")

	// ErrMissingColumns is returned when a required column is absent
	ErrMissingColumns = errors.New("feed file missing required columns")
)

// requiredColumns are the columns every Facebook feed carries
var requiredColumns = []string{"id", "title"}

const utf8BOM = "\xEF\xBB\xBF"

// CSVParser reads comma or tab separated product feeds with a header row.
// Files that are not valid UTF-8 are decoded as Windows-1252.
type CSVParser struct {
	lazyQuotes bool
}

// Option configures a CSVParser
type Option func(*CSVParser)

// WithLazyQuotes enables lazy quote handling (default true)
func WithLazyQuotes(lazy bool) Option {
	return func(p *CSVParser) {
		p.lazyQuotes = lazy
	}
}

// NewCSVParser creates a new feed parser
func NewCSVParser(opts ...Option) *CSVParser {
	p := &CSVParser{lazyQuotes: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse returns one row per non-empty data line. Unknown columns are ignored.
func (p *CSVParser) Parse(ctx context.Context, file integration.FeedFile) ([]catalog.ProductRow, error) {
	data := bytes.TrimPrefix(file.Data, []byte(utf8BOM))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	var src io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		src = transform.NewReader(src, charmap.Windows1252.NewDecoder())
	}
	buf := bufio.NewReader(src)

	reader := csv.NewReader(buf)
	reader.Comma = delimiterFor(file, data)
	reader.LazyQuotes = p.lazyQuotes
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := columns[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var rows []catalog.ProductRow
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("error reading row %d: %w", line, err)
		}
		if isEmpty(record) {
			continue
		}

		get := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		rows = append(rows, catalog.ProductRow{
			ID:           get("id"),
			Title:        get("title"),
			Description:  get("description"),
			Availability: get("availability"),
			Condition:    get("condition"),
			Price:        get("price"),
			SalePrice:    get("sale_price"),
			Link:         get("link"),
			ImageLink:    get("image_link"),
			Brand:        get("brand"),
		})
	}
	return rows, nil
}

// delimiterFor picks tab for TSV uploads, comma otherwise
func delimiterFor(file integration.FeedFile, data []byte) rune {
	if strings.EqualFold(path.Ext(file.Name), ".tsv") || strings.HasPrefix(file.ContentType, "text/tab-separated-values") {
		return '\t'
	}
	first, _, _ := bytes.Cut(data, []byte("\n"))
	if bytes.IndexByte(first, '\t') >= 0 && bytes.IndexByte(first, ',') < 0 {
		return '\t'
	}
	return ','
}

func isEmpty(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
