package catalog

import (
	"fmt"
	"slices"
)

// validateDirFlavor accepts the common flavor, any flavor when no dir
// vocabulary is declared, and declared flavors.
func (c *Catalog) validateDirFlavor(dirFlavor string) error {
	if dirFlavor == CommonDirFlavor || c.dirVocabulary == nil || slices.Contains(c.dirVocabulary, dirFlavor) {
		return nil
	}
	return fmt.Errorf("%w: '%s'", ErrUndefinedDirFlavor, dirFlavor)
}

// validateNameFlavor accepts the default flavor, any flavor when no name
// vocabulary is declared, and declared flavors.
func (c *Catalog) validateNameFlavor(nameFlavor string) error {
	if nameFlavor == DefaultNameFlavor || c.nameVocabulary == nil || slices.Contains(c.nameVocabulary, nameFlavor) {
		return nil
	}
	return fmt.Errorf("%w: '%s'", ErrUndefinedNameFlavor, nameFlavor)
}
