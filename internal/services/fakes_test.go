package services

import (
	"time"

	"vestiaire_backend/internal/models"
	"vestiaire_backend/internal/repositories"
)

// fakeTxRunner satisfies repositories.TxRunner without a database. The
// callback gets a nil executor, which the in-memory fakes below ignore.
type fakeTxRunner struct {
	calls int
}

func (r *fakeTxRunner) WithinTx(fn func(tx repositories.SQLExecutor) error) error {
	r.calls++
	return fn(nil)
}

// recorderAudit captures recorded actions for assertions.
type recorderAudit struct {
	actions []string
}

func (a *recorderAudit) Record(actor, action, entityType string, entityID int64, detail string) {
	a.actions = append(a.actions, action)
}

func (a *recorderAudit) has(action string) bool {
	for _, recorded := range a.actions {
		if recorded == action {
			return true
		}
	}
	return false
}

// --- stock ---

type fakeStockRepo struct {
	items  map[int64]*models.StockItem
	nextID int64

	// loan counts per item, split so tests can exercise the historic-loan
	// deletion knob.
	openLoans  map[int64]int
	totalLoans map[int64]int

	restockFKViolation bool
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{
		items:      make(map[int64]*models.StockItem),
		openLoans:  make(map[int64]int),
		totalLoans: make(map[int64]int),
	}
}

func (r *fakeStockRepo) add(item *models.StockItem) *models.StockItem {
	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = item
	return item
}

func (r *fakeStockRepo) Restock(tx repositories.SQLExecutor, garmentTypeID, antennaID int64, size string, qty int, tags []string) (int64, error) {
	if r.restockFKViolation {
		return 0, repositories.ErrForeignKeyViolation
	}
	for _, item := range r.items {
		if item.GarmentTypeID == garmentTypeID && item.AntennaID == antennaID && item.Size == size {
			item.Quantity += qty
			item.Tags = models.MergeTags(item.Tags, tags)
			return item.ID, nil
		}
	}
	item := r.add(&models.StockItem{
		GarmentTypeID: garmentTypeID,
		AntennaID:     antennaID,
		Size:          size,
		Quantity:      qty,
		Tags:          models.MergeTags(nil, tags),
	})
	return item.ID, nil
}

func (r *fakeStockRepo) GetStockItemByID(id int64) (*models.StockItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *fakeStockRepo) GetStockItemForUpdate(tx repositories.SQLExecutor, id int64) (*models.StockItem, error) {
	return r.GetStockItemByID(id)
}

func (r *fakeStockRepo) UpdateStockItem(tx repositories.SQLExecutor, item *models.StockItem) error {
	if _, ok := r.items[item.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *fakeStockRepo) AddQuantity(tx repositories.SQLExecutor, id int64, delta int) error {
	item, ok := r.items[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if item.Quantity+delta < 0 {
		return repositories.ErrCheckViolation
	}
	item.Quantity += delta
	return nil
}

func (r *fakeStockRepo) SetQuantity(tx repositories.SQLExecutor, id int64, qty int) error {
	item, ok := r.items[id]
	if !ok {
		return repositories.ErrNotFound
	}
	item.Quantity = qty
	return nil
}

func (r *fakeStockRepo) DeleteStockItem(tx repositories.SQLExecutor, id int64) error {
	if _, ok := r.items[id]; !ok {
		return repositories.ErrNotFound
	}
	// Mirror the loans FK: any remaining reference blocks the delete.
	if r.totalLoans[id] > 0 {
		return repositories.ErrForeignKeyViolation
	}
	delete(r.items, id)
	return nil
}

func (r *fakeStockRepo) PurgeReturnedLoansForItem(tx repositories.SQLExecutor, id int64) error {
	r.totalLoans[id] = r.openLoans[id]
	return nil
}

func (r *fakeStockRepo) CountLoansForItem(id int64, openOnly bool) (int, error) {
	if openOnly {
		return r.openLoans[id], nil
	}
	return r.totalLoans[id], nil
}

func (r *fakeStockRepo) GetStockItems(filters models.StockFilters) ([]models.StockItem, int, error) {
	var items []models.StockItem
	for _, item := range r.items {
		items = append(items, *item)
	}
	return items, len(items), nil
}

func (r *fakeStockRepo) GetPublicStock() ([]models.StockItem, error) {
	var items []models.StockItem
	for _, item := range r.items {
		if item.Quantity > 0 {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (r *fakeStockRepo) TotalQuantity() (int, error) {
	total := 0
	for _, item := range r.items {
		total += item.Quantity
	}
	return total, nil
}

// --- loans ---

type fakeLoanRepo struct {
	loans  map[int64]*models.Loan
	nextID int64
	views  []models.OpenLoanView
}

func newFakeLoanRepo() *fakeLoanRepo {
	return &fakeLoanRepo{loans: make(map[int64]*models.Loan)}
}

func (r *fakeLoanRepo) CreateLoan(tx repositories.SQLExecutor, loan *models.Loan) (int64, error) {
	r.nextID++
	loan.ID = r.nextID
	loan.CreatedAt = time.Now()
	copied := *loan
	r.loans[loan.ID] = &copied
	return loan.ID, nil
}

func (r *fakeLoanRepo) GetLoanByID(id int64) (*models.Loan, error) {
	loan, ok := r.loans[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *loan
	return &copied, nil
}

func (r *fakeLoanRepo) MarkReturned(tx repositories.SQLExecutor, id int64) (*models.Loan, bool, error) {
	loan, ok := r.loans[id]
	if !ok {
		return nil, false, repositories.ErrNotFound
	}
	if loan.ReturnedAt != nil {
		copied := *loan
		return &copied, false, nil
	}
	now := time.Now()
	loan.ReturnedAt = &now
	copied := *loan
	return &copied, true, nil
}

func (r *fakeLoanRepo) GetLoanViews(openOnly bool) ([]models.OpenLoanView, error) {
	return r.views, nil
}

func (r *fakeLoanRepo) CountOpenLoans() (int, error) {
	count := 0
	for _, loan := range r.loans {
		if loan.ReturnedAt == nil {
			count++
		}
	}
	return count, nil
}

// --- volunteers ---

type fakeVolunteerRepo struct {
	volunteers map[int64]*models.Volunteer
	nextID     int64
	openLoans  map[int64]bool
}

func newFakeVolunteerRepo() *fakeVolunteerRepo {
	return &fakeVolunteerRepo{
		volunteers: make(map[int64]*models.Volunteer),
		openLoans:  make(map[int64]bool),
	}
}

func (r *fakeVolunteerRepo) CreateVolunteer(executor repositories.SQLExecutor, volunteer *models.Volunteer) (int64, error) {
	r.nextID++
	volunteer.ID = r.nextID
	volunteer.CreatedAt = time.Now()
	copied := *volunteer
	r.volunteers[volunteer.ID] = &copied
	return volunteer.ID, nil
}

func (r *fakeVolunteerRepo) GetVolunteerByID(id int64) (*models.Volunteer, error) {
	volunteer, ok := r.volunteers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *volunteer
	return &copied, nil
}

func (r *fakeVolunteerRepo) GetVolunteerByName(firstName, lastName string) (*models.Volunteer, error) {
	key := repositories.NameKey(firstName, lastName)
	for _, volunteer := range r.volunteers {
		if repositories.NameKey(volunteer.FirstName, volunteer.LastName) == key {
			copied := *volunteer
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeVolunteerRepo) GetVolunteers(page, pageSize int, searchTerm *string) ([]models.Volunteer, int, error) {
	var volunteers []models.Volunteer
	for _, volunteer := range r.volunteers {
		volunteers = append(volunteers, *volunteer)
	}
	return volunteers, len(volunteers), nil
}

func (r *fakeVolunteerRepo) UpdateVolunteer(executor repositories.SQLExecutor, volunteer *models.Volunteer) error {
	if _, ok := r.volunteers[volunteer.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *volunteer
	r.volunteers[volunteer.ID] = &copied
	return nil
}

func (r *fakeVolunteerRepo) DeleteVolunteer(executor repositories.SQLExecutor, id int64) error {
	if _, ok := r.volunteers[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.volunteers, id)
	return nil
}

func (r *fakeVolunteerRepo) HasOpenLoans(id int64) (bool, error) {
	return r.openLoans[id], nil
}

func (r *fakeVolunteerRepo) ExistingNameKeys() (map[string]struct{}, error) {
	keys := make(map[string]struct{}, len(r.volunteers))
	for _, volunteer := range r.volunteers {
		keys[repositories.NameKey(volunteer.FirstName, volunteer.LastName)] = struct{}{}
	}
	return keys, nil
}

func (r *fakeVolunteerRepo) CountVolunteers() (int, error) {
	return len(r.volunteers), nil
}

// --- catalog ---

type fakeAntennaRepo struct {
	antennas map[int64]*models.Antenna
	nextID   int64
	hasStock map[int64]bool
}

func newFakeAntennaRepo() *fakeAntennaRepo {
	return &fakeAntennaRepo{antennas: make(map[int64]*models.Antenna), hasStock: make(map[int64]bool)}
}

func (r *fakeAntennaRepo) CreateAntenna(executor repositories.SQLExecutor, antenna *models.Antenna) (int64, error) {
	for _, existing := range r.antennas {
		if existing.Name == antenna.Name {
			return 0, repositories.ErrDuplicateKey
		}
	}
	r.nextID++
	antenna.ID = r.nextID
	copied := *antenna
	r.antennas[antenna.ID] = &copied
	return antenna.ID, nil
}

func (r *fakeAntennaRepo) GetAntennaByID(id int64) (*models.Antenna, error) {
	antenna, ok := r.antennas[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *antenna
	return &copied, nil
}

func (r *fakeAntennaRepo) GetAntennas() ([]models.Antenna, error) {
	var antennas []models.Antenna
	for _, antenna := range r.antennas {
		antennas = append(antennas, *antenna)
	}
	return antennas, nil
}

func (r *fakeAntennaRepo) UpdateAntenna(executor repositories.SQLExecutor, antenna *models.Antenna) error {
	if _, ok := r.antennas[antenna.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *antenna
	r.antennas[antenna.ID] = &copied
	return nil
}

func (r *fakeAntennaRepo) DeleteAntenna(executor repositories.SQLExecutor, id int64) error {
	if _, ok := r.antennas[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.antennas, id)
	return nil
}

func (r *fakeAntennaRepo) HasStock(id int64) (bool, error) {
	return r.hasStock[id], nil
}

type fakeGarmentTypeRepo struct {
	types    map[int64]*models.GarmentType
	nextID   int64
	hasStock map[int64]bool
}

func newFakeGarmentTypeRepo() *fakeGarmentTypeRepo {
	return &fakeGarmentTypeRepo{types: make(map[int64]*models.GarmentType), hasStock: make(map[int64]bool)}
}

func (r *fakeGarmentTypeRepo) CreateGarmentType(executor repositories.SQLExecutor, gt *models.GarmentType) (int64, error) {
	for _, existing := range r.types {
		if existing.Label == gt.Label {
			return 0, repositories.ErrDuplicateKey
		}
	}
	r.nextID++
	gt.ID = r.nextID
	copied := *gt
	r.types[gt.ID] = &copied
	return gt.ID, nil
}

func (r *fakeGarmentTypeRepo) GetGarmentTypeByID(id int64) (*models.GarmentType, error) {
	gt, ok := r.types[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *gt
	return &copied, nil
}

func (r *fakeGarmentTypeRepo) GetGarmentTypes() ([]models.GarmentType, error) {
	var types []models.GarmentType
	for _, gt := range r.types {
		types = append(types, *gt)
	}
	return types, nil
}

func (r *fakeGarmentTypeRepo) UpdateGarmentType(executor repositories.SQLExecutor, gt *models.GarmentType) error {
	if _, ok := r.types[gt.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *gt
	r.types[gt.ID] = &copied
	return nil
}

func (r *fakeGarmentTypeRepo) DeleteGarmentType(executor repositories.SQLExecutor, id int64) error {
	if _, ok := r.types[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.types, id)
	return nil
}

func (r *fakeGarmentTypeRepo) HasStock(id int64) (bool, error) {
	return r.hasStock[id], nil
}

// --- inventory ---

type lineKey struct {
	sessionID   int64
	stockItemID int64
}

type fakeInventoryRepo struct {
	sessions map[int64]*models.InventorySession
	lines    map[lineKey]*models.InventoryLine
	nextID   int64

	// stock backs UpsertLine's freeze of previous_qty at first count.
	stock *fakeStockRepo
}

func newFakeInventoryRepo(stock *fakeStockRepo) *fakeInventoryRepo {
	return &fakeInventoryRepo{
		sessions: make(map[int64]*models.InventorySession),
		lines:    make(map[lineKey]*models.InventoryLine),
		stock:    stock,
	}
}

func (r *fakeInventoryRepo) CreateSession(executor repositories.SQLExecutor, session *models.InventorySession) (int64, error) {
	r.nextID++
	session.ID = r.nextID
	session.StartedAt = time.Now()
	copied := *session
	r.sessions[session.ID] = &copied
	return session.ID, nil
}

func (r *fakeInventoryRepo) GetSessionByID(id int64) (*models.InventorySession, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *fakeInventoryRepo) GetSessionForUpdate(tx repositories.SQLExecutor, id int64) (*models.InventorySession, error) {
	return r.GetSessionByID(id)
}

func (r *fakeInventoryRepo) UpsertLine(tx repositories.SQLExecutor, sessionID, stockItemID int64, countedQty int) error {
	key := lineKey{sessionID: sessionID, stockItemID: stockItemID}
	if line, ok := r.lines[key]; ok {
		line.CountedQty = countedQty
		return nil
	}
	item, ok := r.stock.items[stockItemID]
	if !ok {
		return repositories.ErrNotFound
	}
	r.lines[key] = &models.InventoryLine{
		SessionID:   sessionID,
		StockItemID: stockItemID,
		PreviousQty: item.Quantity,
		CountedQty:  countedQty,
	}
	return nil
}

func (r *fakeInventoryRepo) GetLines(executor repositories.SQLExecutor, sessionID int64) ([]models.InventoryLine, error) {
	var lines []models.InventoryLine
	for key, line := range r.lines {
		if key.sessionID != sessionID {
			continue
		}
		copied := *line
		copied.Delta = copied.CountedQty - copied.PreviousQty
		lines = append(lines, copied)
	}
	return lines, nil
}

func (r *fakeInventoryRepo) LockSessionStock(tx repositories.SQLExecutor, sessionID int64) error {
	return nil
}

func (r *fakeInventoryRepo) CloseSession(tx repositories.SQLExecutor, id int64) error {
	session, ok := r.sessions[id]
	if !ok || session.ClosedAt != nil {
		return repositories.ErrNotFound
	}
	now := time.Now()
	session.ClosedAt = &now
	return nil
}

// --- users ---

type fakeUserRepo struct {
	users  map[int64]*models.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*models.User)}
}

func (r *fakeUserRepo) CreateUser(executor repositories.SQLExecutor, user *models.User) (int64, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return 0, repositories.ErrDuplicateKey
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	copied := *user
	r.users[user.ID] = &copied
	return user.ID, nil
}

func (r *fakeUserRepo) GetUserByID(id int64) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetUserByEmail(email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) GetUsers() ([]models.User, error) {
	var users []models.User
	for _, user := range r.users {
		users = append(users, *user)
	}
	return users, nil
}

func (r *fakeUserRepo) UpdateUser(executor repositories.SQLExecutor, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) DeleteUser(executor repositories.SQLExecutor, id int64) error {
	if _, ok := r.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.users, id)
	return nil
}
