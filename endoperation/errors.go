package endoperation

import (
	"errors"

	"github.com/akhelper/endop-service/imgops"
	"github.com/akhelper/endop-service/segment"
)

var (
	// ErrUnknownVariant is returned for a UI variant name that is not
	// supported.
	ErrUnknownVariant = errors.New("unknown results screen variant")
	// ErrDividerNotFound is returned when the divider bar under the group
	// headers cannot be located.
	ErrDividerNotFound = errors.New("divider bar not found")
	// ErrNoGroupLabel is returned when every group label has already been
	// claimed and another group is still left to name.
	ErrNoGroupLabel = errors.New("no unclaimed group label left")
	// ErrUnsupported is returned for checks a variant does not provide.
	ErrUnsupported = errors.New("not supported for this variant")

	ErrTemplateTooLarge   = imgops.ErrTemplateTooLarge
	ErrIncompleteItemList = segment.ErrIncompleteItemList
)

// IsStructural reports whether err means the screen layout could not be
// parsed, as opposed to a failure of an OCR, classifier or resource
// collaborator.
func IsStructural(err error) bool {
	return errors.Is(err, ErrDividerNotFound) ||
		errors.Is(err, ErrIncompleteItemList) ||
		errors.Is(err, ErrTemplateTooLarge) ||
		errors.Is(err, ErrNoGroupLabel)
}
