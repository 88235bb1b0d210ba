package dynamo

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The upsert must re-read idempotently: federated_links and updated_at always
// reflect the identity provider, everything else is initialize-once.
func TestSyncOnReadExpr_InitializeOnceSplit(t *testing.T) {
	require.True(t, strings.HasPrefix(syncOnReadExpr, "SET "))
	// Split on ", #" rather than ", " so the comma inside each
	// if_not_exists(#x, :y) clause does not break an assignment apart.
	assignments := strings.Split(strings.TrimPrefix(syncOnReadExpr, "SET "), ", #")
	for i := 1; i < len(assignments); i++ {
		assignments[i] = "#" + assignments[i]
	}

	unconditional := map[string]bool{}
	conditional := regexp.MustCompile(`^(#\w+) = if_not_exists\((#\w+), :\w+\)$`)
	plain := regexp.MustCompile(`^(#\w+) = :\w+$`)

	for _, a := range assignments {
		if m := conditional.FindStringSubmatch(a); m != nil {
			// if_not_exists must guard the attribute it assigns.
			assert.Equal(t, m[1], m[2], "assignment %q guards a different attribute", a)
			continue
		}
		m := plain.FindStringSubmatch(a)
		require.NotNil(t, m, "assignment %q is neither plain nor if_not_exists", a)
		unconditional[syncOnReadNames()[m[1]]] = true
	}

	// Only the always-refresh fields may be written unconditionally.
	assert.Equal(t, map[string]bool{
		"federated_links": true,
		"updated_at":      true,
	}, unconditional)
}

// Every projection attribute must appear in the expression exactly once, so a
// field can be neither silently dropped nor double-assigned.
func TestSyncOnReadExpr_CoversEveryProjectionField(t *testing.T) {
	names := syncOnReadNames()
	seen := map[string]int{}
	for alias, attr := range names {
		seen[attr] = strings.Count(syncOnReadExpr, alias+" = ")
	}
	for _, attr := range []string{
		"federated_links", "updated_at", "email", "email_verified", "name",
		"phone_number", "phone_number_verified", "birthday", "consent",
		"enabled", "order_count", "created_at",
	} {
		assert.Equal(t, 1, seen[attr], "attribute %s", attr)
	}
}
