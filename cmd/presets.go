package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cinex/internal/models"
	"github.com/desertthunder/cinex/internal/shared"
)

func presetName(cmd *cli.Command) (string, error) {
	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return "", fmt.Errorf("%w: preset name is required", shared.ErrMissingArgument)
	}
	return name, nil
}

// PresetsSave stores the given filters under a name, replacing an existing preset with the same name.
func (r *Runner) PresetsSave(ctx context.Context, cmd *cli.Command) error {
	name, err := presetName(cmd)
	if err != nil {
		return err
	}

	filters, err := r.filtersFrom(cmd)
	if err != nil {
		return err
	}
	if err := r.storage(); err != nil {
		return err
	}

	p := models.NewFilterPreset(name, filters)
	if err := r.presets.Save(p); err != nil {
		return err
	}

	r.logger.Debug("preset saved", "id", p.ID(), "name", name)
	return r.writePlain("✓ Saved preset %s: %s\n", name, filters.Summary())
}

// PresetsList prints every preset with its encoded query.
func (r *Runner) PresetsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.storage(); err != nil {
		return err
	}

	presets, err := r.presets.List()
	if err != nil {
		return err
	}
	if len(presets) == 0 {
		return r.writePlain("No saved presets\n")
	}

	for _, p := range presets {
		r.writePlain("%-20s %s\n", p.Name(), p.Filters().Encode())
	}
	return nil
}

// PresetsDelete removes a preset by name.
func (r *Runner) PresetsDelete(ctx context.Context, cmd *cli.Command) error {
	name, err := presetName(cmd)
	if err != nil {
		return err
	}
	if err := r.storage(); err != nil {
		return err
	}

	if err := r.presets.DeleteByName(name); err != nil {
		return fmt.Errorf("preset %q: %w", name, err)
	}
	return r.writePlain("✓ Deleted preset %s\n", name)
}
