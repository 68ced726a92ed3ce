package service

import (
	"strings"

	"merchantops/models"
)

// SortOption selects the ordering for list operations. The zero value
// falls back to the operation's documented default.
type SortOption struct {
	Field     string
	Direction string
}

// resolveSort validates a sort option against the fields an operation
// supports and returns the effective field plus a descending flag.
func resolveSort(opt SortOption, defaultField, defaultDirection string, allowed []string) (string, bool, error) {
	field := strings.TrimSpace(opt.Field)
	if field == "" {
		field = defaultField
	}

	supported := false
	for _, candidate := range allowed {
		if field == candidate {
			supported = true
			break
		}
	}
	if !supported {
		return "", false, models.NewValidationError("sortBy", "must be one of: "+strings.Join(allowed, ", "))
	}

	direction := strings.ToLower(strings.TrimSpace(opt.Direction))
	if direction == "" {
		direction = defaultDirection
	}

	switch direction {
	case "asc":
		return field, false, nil
	case "desc":
		return field, true, nil
	default:
		return "", false, models.NewValidationError("sortDir", "must be asc or desc")
	}
}
