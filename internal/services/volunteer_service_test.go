package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vestiaire_backend/internal/models"
)

func newVolunteerFixture() (VolunteerService, *fakeVolunteerRepo, *recorderAudit) {
	repo := newFakeVolunteerRepo()
	audit := &recorderAudit{}
	svc := NewVolunteerService(repo, audit, nil)
	return svc, repo, audit
}

func TestCreateVolunteerTrimsAndRecords(t *testing.T) {
	svc, _, audit := newVolunteerFixture()

	volunteer, err := svc.CreateVolunteer("staff@pc.fr", CreateVolunteerRequest{
		FirstName: "  Marie ", LastName: " Durand", Note: "mardi matin",
	})
	require.NoError(t, err)
	assert.Equal(t, "Marie", volunteer.FirstName)
	assert.Equal(t, "Durand", volunteer.LastName)
	assert.True(t, audit.has("volunteer.create"))
}

func TestCreateVolunteerDuplicateName(t *testing.T) {
	svc, _, _ := newVolunteerFixture()

	_, err := svc.CreateVolunteer("staff@pc.fr", CreateVolunteerRequest{FirstName: "Marie", LastName: "Durand"})
	require.NoError(t, err)

	// The uniqueness check is case-insensitive.
	_, err = svc.CreateVolunteer("staff@pc.fr", CreateVolunteerRequest{FirstName: "marie", LastName: "DURAND"})
	assert.ErrorIs(t, err, ErrVolunteerExists)
}

func TestCreateVolunteerValidation(t *testing.T) {
	svc, _, _ := newVolunteerFixture()
	_, err := svc.CreateVolunteer("staff@pc.fr", CreateVolunteerRequest{FirstName: "  ", LastName: "Durand"})
	assert.ErrorIs(t, err, ErrVolunteerValidation)
}

func TestDeleteVolunteerBlockedByOpenLoans(t *testing.T) {
	svc, repo, _ := newVolunteerFixture()
	id, err := repo.CreateVolunteer(nil, &models.Volunteer{FirstName: "Marie", LastName: "Durand"})
	require.NoError(t, err)
	repo.openLoans[id] = true

	err = svc.DeleteVolunteer("staff@pc.fr", id)
	assert.ErrorIs(t, err, ErrVolunteerHasLoans)
	assert.Contains(t, repo.volunteers, id)
}

func TestImportCSVSemicolonSeparated(t *testing.T) {
	svc, repo, audit := newVolunteerFixture()

	content := "Nom;Prénom;Note\nDurand;Marie;mardi\nMartin;Paul;\n"
	result, err := svc.ImportCSV("staff@pc.fr", []byte(content))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 2, result.Total)
	assert.Len(t, repo.volunteers, 2)
	assert.True(t, audit.has("volunteer.import"))
}

func TestImportCSVCommaSeparatedWithBOM(t *testing.T) {
	svc, repo, _ := newVolunteerFixture()

	content := "\uFEFFlast name,first name\nDurand,Marie\n"
	result, err := svc.ImportCSV("staff@pc.fr", []byte(content))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)
	assert.Len(t, repo.volunteers, 1)
}

func TestImportCSVMissingColumns(t *testing.T) {
	svc, _, _ := newVolunteerFixture()

	_, err := svc.ImportCSV("staff@pc.fr", []byte("Nom;Ville\nDurand;Paris\n"))
	assert.ErrorIs(t, err, ErrCSVColumnsMissing)

	_, err = svc.ImportCSV("staff@pc.fr", []byte(""))
	assert.ErrorIs(t, err, ErrCSVColumnsMissing)
}

func TestImportCSVSkipsDuplicatesAndBlanks(t *testing.T) {
	svc, repo, _ := newVolunteerFixture()
	_, err := repo.CreateVolunteer(nil, &models.Volunteer{FirstName: "Marie", LastName: "Durand"})
	require.NoError(t, err)

	content := "Nom;Prénom\n" +
		"Durand;Marie\n" + // already registered
		";;\n" + // blank row, not counted
		"Martin;Paul\n" +
		"MARTIN;paul\n" + // duplicate within the file
		"SansPrenom;\n" // missing first name
	result, err := svc.ImportCSV("staff@pc.fr", []byte(content))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 3, result.Skipped)
	assert.Equal(t, 4, result.Total)
	assert.Len(t, repo.volunteers, 2)
}

func TestFindVolunteerByName(t *testing.T) {
	svc, repo, _ := newVolunteerFixture()
	_, err := repo.CreateVolunteer(nil, &models.Volunteer{FirstName: "Marie", LastName: "Durand"})
	require.NoError(t, err)

	found, err := svc.FindVolunteerByName("marie", "durand")
	require.NoError(t, err)
	assert.Equal(t, "Marie", found.FirstName)

	_, err = svc.FindVolunteerByName("Paul", "Martin")
	assert.ErrorIs(t, err, ErrVolunteerNotFound)

	_, err = svc.FindVolunteerByName("", "Martin")
	assert.ErrorIs(t, err, ErrVolunteerValidation)
}
