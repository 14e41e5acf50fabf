package state

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nace/luksctl/internal/volume"
)

// Record is one active encrypted-volume mount created by luksctl.
// It exists only between a successful unlock+mount and the matching
// unmount+lock.
type Record struct {
	MountPoint   string              `json:"mount_point" validate:"required,startswith=/"`
	MapperID     string              `json:"mapper_id" validate:"required,startswith=luks-,max=128"`
	SourceDevice string              `json:"source_device" validate:"required,startswith=/dev/"`
	Options      volume.MountOptions `json:"mount_options"`
	MountedAt    time.Time           `json:"mounted_at"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the record's fields.
func (r Record) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	return volume.ValidateMapperName(r.MapperID)
}
