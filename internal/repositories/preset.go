package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/cinex/internal/models"
	"github.com/desertthunder/cinex/internal/shared"
)

// FilterPresetRepository implements [models.Repository] for [models.FilterPreset] persistence.
type FilterPresetRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.FilterPreset] = (*FilterPresetRepository)(nil)

// NewFilterPresetRepository creates a new [FilterPresetRepository] with the given database connection
func NewFilterPresetRepository(db *sql.DB) *FilterPresetRepository {
	return &FilterPresetRepository{db: db}
}

// Create inserts a new preset with a generated ID. Names are unique.
func (r *FilterPresetRepository) Create(p *models.FilterPreset) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	p.SetID(shared.GenerateID())

	query := `INSERT INTO filter_presets (id, name, query, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.Exec(query, p.ID(), p.Name(), p.Filters().Encode(), p.CreatedAt(), p.UpdatedAt()); err != nil {
		return fmt.Errorf("failed to insert preset %q: %w", p.Name(), err)
	}
	return nil
}

// Get retrieves a preset by ID.
func (r *FilterPresetRepository) Get(id string) (*models.FilterPreset, error) {
	return r.queryOne("WHERE id = ?", id)
}

// GetByName retrieves a preset by its unique name.
func (r *FilterPresetRepository) GetByName(name string) (*models.FilterPreset, error) {
	return r.queryOne("WHERE name = ?", name)
}

// Update stores new filters for an existing preset.
func (r *FilterPresetRepository) Update(p *models.FilterPreset) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	now := time.Now()
	result, err := r.db.Exec(`UPDATE filter_presets SET query = ?, updated_at = ? WHERE id = ?`, p.Filters().Encode(), now, p.ID())
	if err != nil {
		return fmt.Errorf("failed to update preset: %w", err)
	}

	if err := expectRow(result, fmt.Errorf("%w: %s", shared.ErrPresetNotFound, p.ID())); err != nil {
		return err
	}
	p.SetUpdatedAt(now)
	return nil
}

// Save creates the preset or, when the name already exists, replaces its filters.
func (r *FilterPresetRepository) Save(p *models.FilterPreset) error {
	existing, err := r.GetByName(p.Name())
	switch {
	case errors.Is(err, shared.ErrPresetNotFound):
		return r.Create(p)
	case err != nil:
		return err
	}

	p.SetID(existing.ID())
	p.SetCreatedAt(existing.CreatedAt())
	return r.Update(p)
}

// Delete removes a preset by ID.
func (r *FilterPresetRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM filter_presets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete preset: %w", err)
	}
	return expectRow(result, fmt.Errorf("%w: %s", shared.ErrPresetNotFound, id))
}

// DeleteByName removes a preset by name.
func (r *FilterPresetRepository) DeleteByName(name string) error {
	result, err := r.db.Exec(`DELETE FROM filter_presets WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete preset: %w", err)
	}
	return expectRow(result, fmt.Errorf("%w: %s", shared.ErrPresetNotFound, name))
}

// List retrieves all presets ordered by name.
func (r *FilterPresetRepository) List() ([]*models.FilterPreset, error) {
	rows, err := r.db.Query(`SELECT id, name, query, created_at, updated_at FROM filter_presets ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query presets: %w", err)
	}
	defer rows.Close()

	var presets []*models.FilterPreset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return presets, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *FilterPresetRepository) queryOne(where string, arg any) (*models.FilterPreset, error) {
	row := r.db.QueryRow(`SELECT id, name, query, created_at, updated_at FROM filter_presets `+where, arg)

	p, err := scanPreset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %v", shared.ErrPresetNotFound, arg)
	}
	return p, err
}

func scanPreset(row scanner) (*models.FilterPreset, error) {
	var (
		id, name, query      string
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &name, &query, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan preset: %w", err)
	}

	filters, err := models.ParseFilterState(query)
	if err != nil {
		return nil, fmt.Errorf("preset %q has an invalid query: %w", name, err)
	}

	p := models.NewFilterPreset(name, filters)
	p.SetID(id)
	p.SetCreatedAt(createdAt)
	p.SetUpdatedAt(updatedAt)
	return p, nil
}
