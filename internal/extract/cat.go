package extract

import (
	"fmt"

	"github.com/lu4p/cat"
)

// catFromBytes sniffs the document type from its content.
var catFromBytes = cat.FromBytes

// extractWithCat handles OpenDocument text and RTF.
func extractWithCat(content []byte) (string, error) {
	text, err := catFromBytes(content)
	if err != nil {
		return "", fmt.Errorf("extract document: %w", err)
	}
	return text, nil
}
