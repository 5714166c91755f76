package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vestiaire_backend/internal/models"
)

func newLoanFixture(t *testing.T) (LoanService, *fakeLoanRepo, *fakeStockRepo, *fakeVolunteerRepo, *recorderAudit) {
	t.Helper()
	loanRepo := newFakeLoanRepo()
	stockRepo := newFakeStockRepo()
	volunteerRepo := newFakeVolunteerRepo()
	audit := &recorderAudit{}
	svc := NewLoanService(loanRepo, stockRepo, volunteerRepo, audit, &fakeTxRunner{})
	return svc, loanRepo, stockRepo, volunteerRepo, audit
}

func TestCreateLoanDecrementsStock(t *testing.T) {
	svc, _, stockRepo, volunteerRepo, audit := newLoanFixture(t)
	_, err := volunteerRepo.CreateVolunteer(nil, &models.Volunteer{FirstName: "Marie", LastName: "Durand"})
	require.NoError(t, err)
	item := stockRepo.add(&models.StockItem{GarmentTypeID: 1, AntennaID: 1, Quantity: 5})

	loan, err := svc.CreateLoan("staff@pc.fr", CreateLoanRequest{VolunteerID: 1, StockItemID: item.ID, Qty: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, loan.Qty)
	assert.Nil(t, loan.ReturnedAt)
	assert.Equal(t, 3, stockRepo.items[item.ID].Quantity)
	assert.True(t, audit.has("loan.create"))
}

func TestCreateLoanDefaultsQuantityToOne(t *testing.T) {
	svc, _, stockRepo, volunteerRepo, _ := newLoanFixture(t)
	_, err := volunteerRepo.CreateVolunteer(nil, &models.Volunteer{FirstName: "Marie", LastName: "Durand"})
	require.NoError(t, err)
	item := stockRepo.add(&models.StockItem{GarmentTypeID: 1, AntennaID: 1, Quantity: 5})

	loan, err := svc.CreateLoan("staff@pc.fr", CreateLoanRequest{VolunteerID: 1, StockItemID: item.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, loan.Qty)
	assert.Equal(t, 4, stockRepo.items[item.ID].Quantity)
}

func TestCreateLoanNegativeQuantity(t *testing.T) {
	svc, _, _, _, _ := newLoanFixture(t)
	_, err := svc.CreateLoan("staff@pc.fr", CreateLoanRequest{VolunteerID: 1, StockItemID: 1, Qty: -3})
	assert.ErrorIs(t, err, ErrLoanValidation)
}

func TestCreateLoanInsufficientStock(t *testing.T) {
	svc, _, stockRepo, volunteerRepo, _ := newLoanFixture(t)
	_, err := volunteerRepo.CreateVolunteer(nil, &models.Volunteer{FirstName: "Marie", LastName: "Durand"})
	require.NoError(t, err)
	item := stockRepo.add(&models.StockItem{GarmentTypeID: 1, AntennaID: 1, Quantity: 1})

	_, err = svc.CreateLoan("staff@pc.fr", CreateLoanRequest{VolunteerID: 1, StockItemID: item.ID, Qty: 2})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 1, stockRepo.items[item.ID].Quantity)
}

func TestCreateLoanUnknownVolunteer(t *testing.T) {
	svc, _, stockRepo, _, _ := newLoanFixture(t)
	item := stockRepo.add(&models.StockItem{GarmentTypeID: 1, AntennaID: 1, Quantity: 5})

	_, err := svc.CreateLoan("staff@pc.fr", CreateLoanRequest{VolunteerID: 42, StockItemID: item.ID, Qty: 1})
	assert.ErrorIs(t, err, ErrVolunteerNotFound)
	assert.Equal(t, 5, stockRepo.items[item.ID].Quantity)
}

func TestCreateLoanUnknownStockItem(t *testing.T) {
	svc, _, _, volunteerRepo, _ := newLoanFixture(t)
	_, err := volunteerRepo.CreateVolunteer(nil, &models.Volunteer{FirstName: "Marie", LastName: "Durand"})
	require.NoError(t, err)

	_, err = svc.CreateLoan("staff@pc.fr", CreateLoanRequest{VolunteerID: 1, StockItemID: 99, Qty: 1})
	assert.ErrorIs(t, err, ErrStockItemNotFound)
}

func TestReturnLoanIsIdempotent(t *testing.T) {
	svc, _, stockRepo, volunteerRepo, audit := newLoanFixture(t)
	_, err := volunteerRepo.CreateVolunteer(nil, &models.Volunteer{FirstName: "Marie", LastName: "Durand"})
	require.NoError(t, err)
	item := stockRepo.add(&models.StockItem{GarmentTypeID: 1, AntennaID: 1, Quantity: 5})

	loan, err := svc.CreateLoan("staff@pc.fr", CreateLoanRequest{VolunteerID: 1, StockItemID: item.ID, Qty: 2})
	require.NoError(t, err)
	require.Equal(t, 3, stockRepo.items[item.ID].Quantity)

	first, err := svc.ReturnLoan("staff@pc.fr", loan.ID)
	require.NoError(t, err)
	assert.False(t, first.AlreadyReturned)
	assert.NotNil(t, first.Loan.ReturnedAt)
	assert.Equal(t, 5, stockRepo.items[item.ID].Quantity)
	assert.True(t, audit.has("loan.return"))

	// Second return reports the state without touching stock again.
	auditCount := len(audit.actions)
	second, err := svc.ReturnLoan("staff@pc.fr", loan.ID)
	require.NoError(t, err)
	assert.True(t, second.AlreadyReturned)
	assert.Equal(t, 5, stockRepo.items[item.ID].Quantity)
	assert.Len(t, audit.actions, auditCount)
}

func TestReturnLoanUnknown(t *testing.T) {
	svc, _, _, _, _ := newLoanFixture(t)
	_, err := svc.ReturnLoan("staff@pc.fr", 123)
	assert.ErrorIs(t, err, ErrLoanNotFound)
}
