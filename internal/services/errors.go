package services

import (
	"errors"
	"fmt"

	"backoffice/internal/common"
	"backoffice/internal/repositories"
)

// translate maps repository sentinels onto the service sentinels handlers understand.
func translate(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("%s %w", resource, common.ErrNotFound)
	case errors.Is(err, repositories.ErrUnknownReference):
		return common.Invalid("%s", err.Error())
	case errors.Is(err, repositories.ErrConflict):
		return fmt.Errorf("%s already exists: %w", resource, common.ErrConflict)
	default:
		return err
	}
}
