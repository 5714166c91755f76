package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"vestiaire_backend/internal/models"
	"vestiaire_backend/internal/repositories"
)

// --- Custom Service Errors for the catalog ---
var (
	ErrAntennaNotFound   = errors.New("antenna not found")
	ErrAntennaNameExists = errors.New("antenna name already exists")
	ErrAntennaInUse      = errors.New("antenna is referenced by stock and cannot be deleted")
	ErrTypeNotFound      = errors.New("garment type not found")
	ErrTypeLabelExists   = errors.New("garment type label already exists")
	ErrTypeInUse         = errors.New("garment type is referenced by stock and cannot be deleted")
	ErrCatalogValidation = errors.New("catalog data validation error")
)

// --- Catalog DTOs ---
type CreateAntennaRequest struct {
	Name              string   `json:"name" binding:"required"`
	Address           string   `json:"address"`
	LowStockThreshold *int     `json:"low_stock_threshold"`
	Lat               *float64 `json:"lat"`
	Lng               *float64 `json:"lng"`
}

type UpdateAntennaRequest struct {
	Name              *string  `json:"name"`
	Address           *string  `json:"address"`
	LowStockThreshold *int     `json:"low_stock_threshold"`
	Lat               *float64 `json:"lat"`
	Lng               *float64 `json:"lng"`
}

type CreateGarmentTypeRequest struct {
	Label   string `json:"label" binding:"required"`
	HasSize *bool  `json:"has_size"`
}

type UpdateGarmentTypeRequest struct {
	Label   *string `json:"label"`
	HasSize *bool   `json:"has_size"`
}

// --- CatalogService Interface ---
type CatalogService interface {
	CreateAntenna(actor string, req CreateAntennaRequest) (*models.Antenna, error)
	GetAntennas() ([]models.Antenna, error)
	GetAntennaByID(id int64) (*models.Antenna, error)
	UpdateAntenna(actor string, id int64, req UpdateAntennaRequest) (*models.Antenna, error)
	DeleteAntenna(actor string, id int64) error

	CreateGarmentType(actor string, req CreateGarmentTypeRequest) (*models.GarmentType, error)
	GetGarmentTypes() ([]models.GarmentType, error)
	GetGarmentTypeByID(id int64) (*models.GarmentType, error)
	UpdateGarmentType(actor string, id int64, req UpdateGarmentTypeRequest) (*models.GarmentType, error)
	DeleteGarmentType(actor string, id int64) error
}

type catalogService struct {
	antennaRepo repositories.AntennaRepository
	typeRepo    repositories.GarmentTypeRepository
	audit       AuditRecorder
	db          *sql.DB
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(
	antennaRepo repositories.AntennaRepository,
	typeRepo repositories.GarmentTypeRepository,
	audit AuditRecorder,
	db *sql.DB,
) CatalogService {
	return &catalogService{antennaRepo: antennaRepo, typeRepo: typeRepo, audit: audit, db: db}
}

func (s *catalogService) CreateAntenna(actor string, req CreateAntennaRequest) (*models.Antenna, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrCatalogValidation)
	}
	antenna := &models.Antenna{
		Name:              strings.TrimSpace(req.Name),
		Address:           req.Address,
		LowStockThreshold: req.LowStockThreshold,
		Lat:               req.Lat,
		Lng:               req.Lng,
	}
	if _, err := s.antennaRepo.CreateAntenna(s.db, antenna); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrAntennaNameExists
		}
		return nil, fmt.Errorf("failed to create antenna: %w", err)
	}
	s.audit.Record(actor, "antenna.create", "antenna", antenna.ID, antenna.Name)
	return antenna, nil
}

func (s *catalogService) GetAntennas() ([]models.Antenna, error) {
	return s.antennaRepo.GetAntennas()
}

func (s *catalogService) GetAntennaByID(id int64) (*models.Antenna, error) {
	antenna, err := s.antennaRepo.GetAntennaByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAntennaNotFound
		}
		return nil, fmt.Errorf("failed to get antenna: %w", err)
	}
	return antenna, nil
}

func (s *catalogService) UpdateAntenna(actor string, id int64, req UpdateAntennaRequest) (*models.Antenna, error) {
	antenna, err := s.GetAntennaByID(id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrCatalogValidation)
		}
		antenna.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		antenna.Address = *req.Address
	}
	if req.LowStockThreshold != nil {
		antenna.LowStockThreshold = req.LowStockThreshold
	}
	if req.Lat != nil {
		antenna.Lat = req.Lat
	}
	if req.Lng != nil {
		antenna.Lng = req.Lng
	}
	if err := s.antennaRepo.UpdateAntenna(s.db, antenna); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrAntennaNameExists
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAntennaNotFound
		}
		return nil, fmt.Errorf("failed to update antenna: %w", err)
	}
	s.audit.Record(actor, "antenna.update", "antenna", antenna.ID, antenna.Name)
	return antenna, nil
}

func (s *catalogService) DeleteAntenna(actor string, id int64) error {
	inUse, err := s.antennaRepo.HasStock(id)
	if err != nil {
		return fmt.Errorf("failed to check antenna references: %w", err)
	}
	if inUse {
		return ErrAntennaInUse
	}
	if err := s.antennaRepo.DeleteAntenna(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrAntennaNotFound
		}
		if errors.Is(err, repositories.ErrForeignKeyViolation) {
			return ErrAntennaInUse
		}
		return fmt.Errorf("failed to delete antenna: %w", err)
	}
	s.audit.Record(actor, "antenna.delete", "antenna", id, "")
	return nil
}

func (s *catalogService) CreateGarmentType(actor string, req CreateGarmentTypeRequest) (*models.GarmentType, error) {
	if strings.TrimSpace(req.Label) == "" {
		return nil, fmt.Errorf("%w: label cannot be empty", ErrCatalogValidation)
	}
	hasSize := true
	if req.HasSize != nil {
		hasSize = *req.HasSize
	}
	gt := &models.GarmentType{Label: strings.TrimSpace(req.Label), HasSize: hasSize}
	if _, err := s.typeRepo.CreateGarmentType(s.db, gt); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrTypeLabelExists
		}
		return nil, fmt.Errorf("failed to create garment type: %w", err)
	}
	s.audit.Record(actor, "garment_type.create", "garment_type", gt.ID, gt.Label)
	return gt, nil
}

func (s *catalogService) GetGarmentTypes() ([]models.GarmentType, error) {
	return s.typeRepo.GetGarmentTypes()
}

func (s *catalogService) GetGarmentTypeByID(id int64) (*models.GarmentType, error) {
	gt, err := s.typeRepo.GetGarmentTypeByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTypeNotFound
		}
		return nil, fmt.Errorf("failed to get garment type: %w", err)
	}
	return gt, nil
}

func (s *catalogService) UpdateGarmentType(actor string, id int64, req UpdateGarmentTypeRequest) (*models.GarmentType, error) {
	gt, err := s.GetGarmentTypeByID(id)
	if err != nil {
		return nil, err
	}
	if req.Label != nil {
		if strings.TrimSpace(*req.Label) == "" {
			return nil, fmt.Errorf("%w: label cannot be empty", ErrCatalogValidation)
		}
		gt.Label = strings.TrimSpace(*req.Label)
	}
	if req.HasSize != nil {
		gt.HasSize = *req.HasSize
	}
	if err := s.typeRepo.UpdateGarmentType(s.db, gt); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrTypeLabelExists
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTypeNotFound
		}
		return nil, fmt.Errorf("failed to update garment type: %w", err)
	}
	s.audit.Record(actor, "garment_type.update", "garment_type", gt.ID, gt.Label)
	return gt, nil
}

func (s *catalogService) DeleteGarmentType(actor string, id int64) error {
	inUse, err := s.typeRepo.HasStock(id)
	if err != nil {
		return fmt.Errorf("failed to check garment type references: %w", err)
	}
	if inUse {
		return ErrTypeInUse
	}
	if err := s.typeRepo.DeleteGarmentType(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTypeNotFound
		}
		if errors.Is(err, repositories.ErrForeignKeyViolation) {
			return ErrTypeInUse
		}
		return fmt.Errorf("failed to delete garment type: %w", err)
	}
	s.audit.Record(actor, "garment_type.delete", "garment_type", id, "")
	return nil
}
