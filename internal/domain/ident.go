package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateReference builds a collision-resistant payment reference:
// millisecond timestamp in base36 plus a random suffix.
func GenerateReference() string {
	return "REF-" + stamp() + "-" + randSuffix(8)
}

func GenerateTicketNumber() string {
	return "TKT-" + stamp() + "-" + randSuffix(6)
}

func stamp() string {
	return strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
}

func randSuffix(n int) string {
	s := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}
