// Package service implements spreadsheet import and export of leads.
package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	leadstransport "leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Leads"

var exportHeaders = []string{
	"Name", "Email", "Phone", "Company", "Stage", "Assigned To", "Notes", "Created At", "Last Contact",
}

// LeadWriter is the slice of the leads service the importer needs. Each
// imported row goes through the same create path as the API, so duplicate
// detection applies to spreadsheet rows too.
type LeadWriter interface {
	Create(ctx context.Context, req leadstransport.CreateLeadRequest) (leadstransport.CreateLeadResponse, error)
}

// LeadReader yields the rows the exporter writes out.
type LeadReader interface {
	ExportAll(ctx context.Context) ([]leadstransport.LeadResponse, error)
}

// ImportResult summarizes one import run.
type ImportResult struct {
	Imported   int      `json:"imported"`
	Duplicates int      `json:"duplicates"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
}

// Service handles spreadsheet operations.
type Service struct {
	writer LeadWriter
	reader LeadReader
	log    *logger.Logger
}

// New creates a new spreadsheet service.
func New(writer LeadWriter, reader LeadReader, log *logger.Logger) *Service {
	return &Service{writer: writer, reader: reader, log: log}
}

// Import reads an .xlsx upload and creates a lead per data row. Rows that
// match an existing lead are still created, flagged Duplicate by the create
// path, and counted separately. A row failure skips the row, never the file.
func (s *Service) Import(ctx context.Context, file io.Reader) (ImportResult, error) {
	book, err := excelize.OpenReader(file)
	if err != nil {
		return ImportResult{}, apperr.Validation("file is not a readable spreadsheet")
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return ImportResult{}, apperr.Validation("spreadsheet has no sheets")
	}

	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return ImportResult{}, apperr.Validation("failed to read spreadsheet rows")
	}
	if len(rows) < 2 {
		return ImportResult{}, apperr.Validation("spreadsheet has no data rows")
	}

	columns := MapHeader(rows[0])
	if _, ok := columns["name"]; !ok {
		return ImportResult{}, apperr.Validation("spreadsheet is missing a Name column")
	}

	result := ImportResult{}
	for i, row := range rows[1:] {
		req, ok := RowToRequest(columns, row)
		if !ok {
			continue // fully blank row
		}
		if req.Name == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: name is required", i+2))
			continue
		}

		created, err := s.writer.Create(ctx, req)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}

		result.Imported++
		if created.Duplicate != nil {
			result.Duplicates++
		}
	}

	s.log.Info("spreadsheet import finished",
		"imported", result.Imported,
		"duplicates", result.Duplicates,
		"skipped", result.Skipped,
	)
	return result, nil
}

// Export writes all active leads into an .xlsx workbook.
func (s *Service) Export(ctx context.Context) (*bytes.Buffer, error) {
	leads, err := s.reader.ExportAll(ctx)
	if err != nil {
		return nil, err
	}

	book := excelize.NewFile()
	defer book.Close()

	index, err := book.NewSheet(sheetName)
	if err != nil {
		return nil, apperr.Internal("failed to create sheet")
	}
	book.DeleteSheet("Sheet1")

	headerStyle, err := book.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, apperr.Internal("failed to create style")
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		book.SetCellValue(sheetName, cell, header)
		book.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, lead := range leads {
		row := rowIdx + 2
		values := []interface{}{
			lead.Name, lead.Email, lead.Phone, lead.Company, lead.Stage,
			lead.AssignedTo, lead.Notes,
			lead.CreatedAt.Format("2006-01-02 15:04"),
			lead.LastContact.Format("2006-01-02 15:04"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			book.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range exportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		book.SetColWidth(sheetName, col, col, 18)
	}
	book.SetActiveSheet(index)

	buf, err := book.WriteToBuffer()
	if err != nil {
		return nil, apperr.Internal("failed to write workbook")
	}
	return buf, nil
}

// MapHeader maps normalized header labels to their column index. Unknown
// columns are ignored.
func MapHeader(header []string) map[string]int {
	aliases := map[string]string{
		"name":         "name",
		"email":        "email",
		"e-mail":       "email",
		"phone":        "phone",
		"mobile":       "phone",
		"phone number": "phone",
		"company":      "company",
		"stage":        "stage",
		"status":       "stage",
		"assigned to":  "assignedTo",
		"assignee":     "assignedTo",
		"notes":        "notes",
		"comments":     "notes",
	}

	columns := make(map[string]int)
	for i, label := range header {
		key := strings.ToLower(strings.TrimSpace(label))
		if field, ok := aliases[key]; ok {
			if _, dup := columns[field]; !dup {
				columns[field] = i
			}
		}
	}
	return columns
}

// RowToRequest builds a create request from one data row. It reports false
// for rows whose mapped cells are all blank.
func RowToRequest(columns map[string]int, row []string) (leadstransport.CreateLeadRequest, bool) {
	cell := func(field string) string {
		idx, ok := columns[field]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	req := leadstransport.CreateLeadRequest{
		Name:       cell("name"),
		Email:      cell("email"),
		Phone:      cell("phone"),
		Company:    cell("company"),
		Stage:      cell("stage"),
		AssignedTo: cell("assignedTo"),
		Notes:      cell("notes"),
	}

	if req.Name == "" && req.Email == "" && req.Phone == "" && req.Company == "" {
		return leadstransport.CreateLeadRequest{}, false
	}
	return req, true
}
