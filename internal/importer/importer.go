package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// Columns of a catalog export. Unknown columns are ignored; id, name and price are required.
const (
	colID          = "id"
	colName        = "name"
	colDescription = "description"
	colPrice       = "price"
	colCategory    = "category"
	colImageURL    = "imageUrl"
	colInStock     = "inStock"
)

// CSVImporter reads catalog CSV exports and upserts one product per row.
type CSVImporter struct {
	reader *csv.Reader
	writer ProductWriter
	logger *zap.Logger
}

func NewCSVImporter(r io.Reader, writer ProductWriter, logger *zap.Logger) *CSVImporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader: csvr,
		writer: writer,
		logger: logger.Named("importer"),
	}
}

// Run stops at the first invalid row; products before it stay imported.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, required := range []string{colID, colName, colPrice} {
		if _, ok := index[required]; !ok {
			return 0, fmt.Errorf("missing %q column", required)
		}
	}

	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line, _ := i.reader.FieldPos(0)

		p, skip, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		if skip {
			continue
		}
		if _, err := i.writer.Upsert(ctx, p); err != nil {
			return imported, fmt.Errorf("upsert product %q: %w", p.ID, err)
		}
		i.logger.Debug("product imported", zap.String("product_id", p.ID))
		imported++
	}
	return imported, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

// parseRow reports skip for blank rows.
func parseRow(record []string, index map[string]int) (domain.Product, bool, error) {
	id := pick(record, index, colID)
	name := pick(record, index, colName)
	priceStr := pick(record, index, colPrice)
	if id == "" && name == "" && priceStr == "" {
		return domain.Product{}, true, nil
	}
	if id == "" || name == "" || priceStr == "" {
		return domain.Product{}, false, fmt.Errorf("id, name and price are required (id %q)", id)
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return domain.Product{}, false, fmt.Errorf("price %q for %q: %w", priceStr, id, err)
	}

	p := domain.Product{
		ID:          id,
		Name:        name,
		Description: pick(record, index, colDescription),
		Price:       price,
		Category:    pick(record, index, colCategory),
		ImageURL:    pick(record, index, colImageURL),
	}
	if raw := pick(record, index, colInStock); raw != "" {
		inStock, err := strconv.ParseBool(raw)
		if err != nil {
			return domain.Product{}, false, fmt.Errorf("inStock %q for %q: %w", raw, id, err)
		}
		p.InStock = &inStock
	}
	return p, false, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
