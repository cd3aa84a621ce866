/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package catalog

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"

	"gocollector/internal/domain"
)

// Source formats.
const (
	FormatAuto = "auto"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatHTML = "html"
)

// ErrNoIDColumn is returned when no row carries an "id" header cell.
var ErrNoIDColumn = errors.New("catalog: no id column found")

// DecodeRows reads a table in the given format. Cells are trimmed.
func DecodeRows(format string, r io.Reader) ([][]string, error) {
	switch format {
	case FormatCSV, "", FormatAuto:
		return decodeCSV(r)
	case FormatXLSX:
		return decodeXLSX(r)
	case FormatHTML:
		return decodeHTML(r)
	default:
		return nil, fmt.Errorf("catalog: unknown format %q", format)
	}
}

func decodeCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return trimRows(rows), nil
}

func decodeXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("xlsx has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return trimRows(rows), nil
}

func decodeHTML(r io.Reader) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, errors.New("html has no table")
	}
	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var row []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			row = append(row, cell.Text())
		})
		if len(row) > 0 {
			rows = append(rows, row)
		}
	})
	return trimRows(rows), nil
}

func trimRows(rows [][]string) [][]string {
	for _, row := range rows {
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
	}
	return rows
}

var columns = map[string]func(*domain.Item, string){
	"id":        func(it *domain.Item, v string) { it.ID = v },
	"nameko":    func(it *domain.Item, v string) { it.Name = v },
	"price":     func(it *domain.Item, v string) { it.Price = v },
	"image":     func(it *domain.Item, v string) { it.Image = v },
	"country":   func(it *domain.Item, v string) { it.Country = v },
	"character": func(it *domain.Item, v string) { it.Character = v },
	"company":   func(it *domain.Item, v string) { it.Company = v },
	"group":     func(it *domain.Item, v string) { it.Group = v },
	"subgroup":  func(it *domain.Item, v string) { it.SubGroup = v },
}

// ItemsFromRows maps rows to items. The header is the first row with an "id"
// cell; unknown columns are ignored and absent fields stay empty. Blank rows
// and rows without an id are skipped.
func ItemsFromRows(rows [][]string) ([]domain.Item, error) {
	head := -1
	for i, row := range rows {
		for _, c := range row {
			if strings.EqualFold(strings.TrimSpace(c), "id") {
				head = i
				break
			}
		}
		if head >= 0 {
			break
		}
	}
	if head < 0 {
		return nil, ErrNoIDColumn
	}
	setters := make([]func(*domain.Item, string), len(rows[head]))
	for i, h := range rows[head] {
		setters[i] = columns[strings.ToLower(strings.TrimSpace(h))]
	}
	var items []domain.Item
	for _, row := range rows[head+1:] {
		var it domain.Item
		for i, v := range row {
			if i < len(setters) && setters[i] != nil {
				setters[i](&it, v)
			}
		}
		if strings.TrimSpace(it.ID) == "" {
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

// Parse decodes data and builds a catalog. dropped counts rows removed for a
// duplicate id.
func Parse(format string, data []byte) (*domain.Catalog, int, error) {
	rows, err := DecodeRows(format, bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}
	items, err := ItemsFromRows(rows)
	if err != nil {
		return nil, 0, err
	}
	cat, dropped := domain.NewCatalog(items)
	cat.Format = format
	return cat, dropped, nil
}
