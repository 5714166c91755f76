package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vestiaire_backend/internal/models"
)

func newStockFixture(blockHistoricLoans bool) (StockService, *fakeStockRepo, *recorderAudit) {
	repo := newFakeStockRepo()
	audit := &recorderAudit{}
	svc := NewStockService(repo, audit, &fakeTxRunner{}, blockHistoricLoans)
	return svc, repo, audit
}

func TestRestockCreatesThenIncrements(t *testing.T) {
	svc, repo, audit := newStockFixture(true)

	item, err := svc.Restock("staff@pc.fr", RestockRequest{
		GarmentTypeID: 1, AntennaID: 2, Size: "M", Quantity: 3, Tags: []string{"Hiver"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)
	assert.Equal(t, []string{"Hiver"}, item.Tags)
	assert.True(t, audit.has("stock.restock"))

	// Same (type, antenna, size) triple lands on the same row and unions tags.
	again, err := svc.Restock("staff@pc.fr", RestockRequest{
		GarmentTypeID: 1, AntennaID: 2, Size: "M", Quantity: 2, Tags: []string{"enfant", "hiver"},
	})
	require.NoError(t, err)
	assert.Equal(t, item.ID, again.ID)
	assert.Equal(t, 5, again.Quantity)
	assert.Equal(t, []string{"Hiver", "enfant"}, again.Tags)
	assert.Len(t, repo.items, 1)
}

func TestRestockValidation(t *testing.T) {
	svc, _, _ := newStockFixture(true)

	_, err := svc.Restock("staff@pc.fr", RestockRequest{GarmentTypeID: 1, AntennaID: 1, Quantity: 0})
	assert.ErrorIs(t, err, ErrStockValidation)

	_, err = svc.Restock("staff@pc.fr", RestockRequest{GarmentTypeID: 0, AntennaID: 1, Quantity: 3})
	assert.ErrorIs(t, err, ErrStockValidation)
}

func TestRestockUnknownReference(t *testing.T) {
	svc, repo, _ := newStockFixture(true)
	repo.restockFKViolation = true

	_, err := svc.Restock("staff@pc.fr", RestockRequest{GarmentTypeID: 9, AntennaID: 9, Quantity: 1})
	assert.ErrorIs(t, err, ErrUnknownReference)
}

func TestUpdateStockItemPartial(t *testing.T) {
	svc, repo, audit := newStockFixture(true)
	item := repo.add(&models.StockItem{GarmentTypeID: 1, AntennaID: 1, Size: "M", Quantity: 4, Tags: []string{"hiver"}})

	size := "L"
	qty := 7
	tags := []string{"ete"}
	updated, err := svc.UpdateStockItem("staff@pc.fr", item.ID, UpdateStockItemRequest{
		Size: &size, Quantity: &qty, Tags: &tags,
	})
	require.NoError(t, err)
	assert.Equal(t, "L", updated.Size)
	assert.Equal(t, 7, updated.Quantity)
	// Tags are replaced on update, not merged.
	assert.Equal(t, []string{"ete"}, updated.Tags)
	assert.Equal(t, int64(1), updated.GarmentTypeID)
	assert.True(t, audit.has("stock.update"))
}

func TestUpdateStockItemNegativeQuantity(t *testing.T) {
	svc, repo, _ := newStockFixture(true)
	item := repo.add(&models.StockItem{GarmentTypeID: 1, AntennaID: 1, Quantity: 4})

	qty := -1
	_, err := svc.UpdateStockItem("staff@pc.fr", item.ID, UpdateStockItemRequest{Quantity: &qty})
	assert.ErrorIs(t, err, ErrStockValidation)
	assert.Equal(t, 4, repo.items[item.ID].Quantity)
}

func TestUpdateStockItemNotFound(t *testing.T) {
	svc, _, _ := newStockFixture(true)
	_, err := svc.UpdateStockItem("staff@pc.fr", 99, UpdateStockItemRequest{})
	assert.ErrorIs(t, err, ErrStockItemNotFound)
}

func TestDeleteStockItemBlockedByHistoricLoans(t *testing.T) {
	svc, repo, _ := newStockFixture(true)
	item := repo.add(&models.StockItem{GarmentTypeID: 1, AntennaID: 1, Quantity: 0})
	repo.totalLoans[item.ID] = 2 // all returned

	err := svc.DeleteStockItem("staff@pc.fr", item.ID)
	assert.ErrorIs(t, err, ErrStockItemInUse)
	assert.Contains(t, repo.items, item.ID)
}

func TestDeleteStockItemAllowsHistoricLoansWhenConfigured(t *testing.T) {
	svc, repo, audit := newStockFixture(false)
	item := repo.add(&models.StockItem{GarmentTypeID: 1, AntennaID: 1, Quantity: 0})
	repo.totalLoans[item.ID] = 2
	repo.openLoans[item.ID] = 0

	err := svc.DeleteStockItem("staff@pc.fr", item.ID)
	require.NoError(t, err)
	assert.NotContains(t, repo.items, item.ID)
	assert.True(t, audit.has("stock.delete"))
}

func TestDeleteStockItemBlockedByOpenLoans(t *testing.T) {
	svc, repo, _ := newStockFixture(false)
	item := repo.add(&models.StockItem{GarmentTypeID: 1, AntennaID: 1, Quantity: 0})
	repo.openLoans[item.ID] = 1
	repo.totalLoans[item.ID] = 1

	err := svc.DeleteStockItem("staff@pc.fr", item.ID)
	assert.ErrorIs(t, err, ErrStockItemInUse)
	assert.Contains(t, repo.items, item.ID)
}

func TestGetPublicStockHidesEmptyRows(t *testing.T) {
	svc, repo, _ := newStockFixture(true)
	repo.add(&models.StockItem{GarmentTypeID: 1, AntennaID: 1, Quantity: 3})
	repo.add(&models.StockItem{GarmentTypeID: 2, AntennaID: 1, Quantity: 0})

	items, err := svc.GetPublicStock()
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}
