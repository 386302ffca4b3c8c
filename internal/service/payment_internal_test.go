package service

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTransactionID(t *testing.T) {
	pattern := regexp.MustCompile(`^TXN\d+[0-9a-f]{8}$`)

	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		id, err := newTransactionID()
		require.NoError(t, err)
		require.Regexp(t, pattern, id)

		_, dup := seen[id]
		require.Falsef(t, dup, "duplicate transaction id %s", id)
		seen[id] = struct{}{}
	}
}
