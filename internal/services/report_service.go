package services

import (
	"fmt"
	"io"

	"vestiaire_backend/internal/models"
	"vestiaire_backend/internal/repositories"
	"vestiaire_backend/pkg/utils"

	"github.com/xuri/excelize/v2"
)

// StatsResponse carries the three dashboard aggregates. The field names are
// part of the API contract consumed by the existing front-end.
type StatsResponse struct {
	StockTotal int `json:"stock_total"`
	OpenLoans  int `json:"prets_ouverts"`
	Volunteers int `json:"benevoles"`
}

var stockExportHeader = []string{"Antenne", "Type", "Taille", "Quantité", "Tags"}
var loanExportHeader = []string{"Bénévole", "Type", "Taille", "Antenne", "Quantité", "Depuis", "Rendu"}

// ReportService produces the dashboard aggregates and the spreadsheet
// exports. Export column sets and the ';' delimiter are an external
// contract: downstream spreadsheet tooling depends on them.
type ReportService interface {
	Stats() (*StatsResponse, error)
	ExportStockCSV(w io.Writer, filters models.StockFilters) error
	ExportLoansCSV(w io.Writer, openOnly bool) error
	ExportStockXLSX(w io.Writer, filters models.StockFilters) error
	WriteVolunteerTemplate(w io.Writer) error
}

type reportService struct {
	stockRepo     repositories.StockRepository
	loanRepo      repositories.LoanRepository
	volunteerRepo repositories.VolunteerRepository
}

// NewReportService creates a new instance of ReportService.
func NewReportService(
	stockRepo repositories.StockRepository,
	loanRepo repositories.LoanRepository,
	volunteerRepo repositories.VolunteerRepository,
) ReportService {
	return &reportService{stockRepo: stockRepo, loanRepo: loanRepo, volunteerRepo: volunteerRepo}
}

func (s *reportService) Stats() (*StatsResponse, error) {
	stockTotal, err := s.stockRepo.TotalQuantity()
	if err != nil {
		return nil, fmt.Errorf("failed to total stock: %w", err)
	}
	openLoans, err := s.loanRepo.CountOpenLoans()
	if err != nil {
		return nil, fmt.Errorf("failed to count open loans: %w", err)
	}
	volunteers, err := s.volunteerRepo.CountVolunteers()
	if err != nil {
		return nil, fmt.Errorf("failed to count volunteers: %w", err)
	}
	return &StatsResponse{StockTotal: stockTotal, OpenLoans: openLoans, Volunteers: volunteers}, nil
}

func (s *reportService) stockRows(filters models.StockFilters) ([][]string, error) {
	filters.Page = 0
	filters.PageSize = 0 // exports are never paginated
	items, _, err := s.stockRepo.GetStockItems(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock for export: %w", err)
	}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.Antenna,
			item.GarmentType,
			item.Size,
			fmt.Sprintf("%d", item.Quantity),
			models.SerializeTags(item.Tags),
		})
	}
	return rows, nil
}

func (s *reportService) ExportStockCSV(w io.Writer, filters models.StockFilters) error {
	rows, err := s.stockRows(filters)
	if err != nil {
		return err
	}
	cw, err := utils.NewExportWriter(w)
	if err != nil {
		return fmt.Errorf("failed to start stock export: %w", err)
	}
	if err := cw.Write(stockExportHeader); err != nil {
		return fmt.Errorf("failed to write stock export header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write stock export row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *reportService) ExportLoansCSV(w io.Writer, openOnly bool) error {
	loans, err := s.loanRepo.GetLoanViews(openOnly)
	if err != nil {
		return fmt.Errorf("failed to list loans for export: %w", err)
	}
	cw, err := utils.NewExportWriter(w)
	if err != nil {
		return fmt.Errorf("failed to start loans export: %w", err)
	}
	if err := cw.Write(loanExportHeader); err != nil {
		return fmt.Errorf("failed to write loans export header: %w", err)
	}
	for _, loan := range loans {
		returned := ""
		if loan.ReturnedAt != nil {
			returned = loan.ReturnedAt.Format("2006-01-02 15:04")
		}
		row := []string{
			loan.Volunteer,
			loan.GarmentType,
			loan.Size,
			loan.Antenna,
			fmt.Sprintf("%d", loan.Qty),
			loan.Since.Format("2006-01-02 15:04"),
			returned,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write loans export row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportStockXLSX writes the stock ledger as a spreadsheet workbook, same
// columns as the CSV export.
func (s *reportService) ExportStockXLSX(w io.Writer, filters models.StockFilters) error {
	rows, err := s.stockRows(filters)
	if err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Stock"
	f.SetSheetName("Sheet1", sheet)

	header := make([]interface{}, len(stockExportHeader))
	for i, h := range stockExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write workbook header: %w", err)
	}
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute workbook cell: %w", err)
		}
		if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
			return fmt.Errorf("failed to write workbook row: %w", err)
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteVolunteerTemplate writes the empty CSV volunteers can be imported
// from.
func (s *reportService) WriteVolunteerTemplate(w io.Writer) error {
	cw, err := utils.NewExportWriter(w)
	if err != nil {
		return fmt.Errorf("failed to start template: %w", err)
	}
	if err := cw.Write([]string{"Nom", "Prénom", "Note"}); err != nil {
		return fmt.Errorf("failed to write template header: %w", err)
	}
	cw.Flush()
	return cw.Error()
}
