package services

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"vestiaire_backend/internal/models"
	"vestiaire_backend/pkg/utils"
)

func newReportFixture() (ReportService, *fakeStockRepo, *fakeLoanRepo, *fakeVolunteerRepo) {
	stockRepo := newFakeStockRepo()
	loanRepo := newFakeLoanRepo()
	volunteerRepo := newFakeVolunteerRepo()
	svc := NewReportService(stockRepo, loanRepo, volunteerRepo)
	return svc, stockRepo, loanRepo, volunteerRepo
}

func TestStats(t *testing.T) {
	svc, stockRepo, loanRepo, volunteerRepo := newReportFixture()
	stockRepo.add(&models.StockItem{Quantity: 4})
	stockRepo.add(&models.StockItem{Quantity: 6})
	_, err := loanRepo.CreateLoan(nil, &models.Loan{VolunteerID: 1, StockItemID: 1, Qty: 1})
	require.NoError(t, err)
	_, err = volunteerRepo.CreateVolunteer(nil, &models.Volunteer{FirstName: "Marie", LastName: "Durand"})
	require.NoError(t, err)

	stats, err := svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, 10, stats.StockTotal)
	assert.Equal(t, 1, stats.OpenLoans)
	assert.Equal(t, 1, stats.Volunteers)
}

func TestExportStockCSV(t *testing.T) {
	svc, stockRepo, _, _ := newReportFixture()
	stockRepo.add(&models.StockItem{
		GarmentType: "Manteau", Antenna: "Paris 11e", Size: "M", Quantity: 4, Tags: []string{"hiver"},
	})

	var buf bytes.Buffer
	require.NoError(t, svc.ExportStockCSV(&buf, models.StockFilters{}))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, utils.UTF8BOM))
	lines := strings.Split(strings.TrimSpace(utils.StripBOM(out)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Antenne;Type;Taille;Quantité;Tags", lines[0])
	assert.Equal(t, "Paris 11e;Manteau;M;4;hiver", lines[1])
}

func TestExportLoansCSV(t *testing.T) {
	svc, _, loanRepo, _ := newReportFixture()
	since := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	loanRepo.views = []models.OpenLoanView{{
		Volunteer: "Durand Marie", GarmentType: "Manteau", Size: "M",
		Antenna: "Paris 11e", Qty: 2, Since: since,
	}}

	var buf bytes.Buffer
	require.NoError(t, svc.ExportLoansCSV(&buf, true))

	lines := strings.Split(strings.TrimSpace(utils.StripBOM(buf.String())), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Bénévole;Type;Taille;Antenne;Quantité;Depuis;Rendu", lines[0])
	assert.Equal(t, "Durand Marie;Manteau;M;Paris 11e;2;2026-03-14 10:30;", lines[1])
}

func TestExportStockXLSX(t *testing.T) {
	svc, stockRepo, _, _ := newReportFixture()
	stockRepo.add(&models.StockItem{
		GarmentType: "Manteau", Antenna: "Paris 11e", Size: "M", Quantity: 4,
	})

	var buf bytes.Buffer
	require.NoError(t, svc.ExportStockXLSX(&buf, models.StockFilters{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Stock")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Antenne", "Type", "Taille", "Quantité", "Tags"}, rows[0])
	assert.Equal(t, "Paris 11e", rows[1][0])
	assert.Equal(t, "4", rows[1][3])
}

func TestWriteVolunteerTemplate(t *testing.T) {
	svc, _, _, _ := newReportFixture()

	var buf bytes.Buffer
	require.NoError(t, svc.WriteVolunteerTemplate(&buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, utils.UTF8BOM))
	assert.Contains(t, out, "Nom;Prénom;Note")
}
