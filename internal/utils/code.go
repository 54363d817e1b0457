package utils

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewVoucherCode returns a code like TB2024-A1B2. The suffix comes from a
// random UUID; callers retry on a unique key collision.
func NewVoucherCode(year int) string {
	id := uuid.New()
	return fmt.Sprintf("TB%d-%s", year, strings.ToUpper(hex.EncodeToString(id[:2])))
}
