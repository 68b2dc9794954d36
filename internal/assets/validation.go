package assets

import (
	"fmt"
	"regexp"
)

// assetName matches style and template names: letters, digits, '-' and
// '_', starting with a letter or digit.
var assetName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// ValidateAssetName reports ErrInvalidAssetName for anything that is not a
// bare asset name, so a name can never select a file outside the asset
// directory or change its extension.
func ValidateAssetName(name string) error {
	if !assetName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
