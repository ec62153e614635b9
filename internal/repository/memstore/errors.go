package memstore

import (
	"fmt"

	"fleet-service/internal/repository"
)

func duplicate(constraint string) error {
	return fmt.Errorf("%w: %s", repository.ErrDuplicateKey, constraint)
}

func referenced(constraint string) error {
	return fmt.Errorf("%w: %s", repository.ErrReferenced, constraint)
}
