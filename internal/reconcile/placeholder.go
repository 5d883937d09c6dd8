package reconcile

import "github.com/google/uuid"

// placeholderNamespace seeds the UUIDv5 derivation of synthesized repo
// names. Fixed so placeholders are stable across runs.
var placeholderNamespace = uuid.MustParse("7c9e2f40-51b3-4b8a-9d64-0f2a6b1c8e55")

// PlaceholderRepoName derives a unique stand-in repo_full_name for a match
// row whose analysis is missing. Deterministic in (matchID, analysisID), so
// a re-run of the reconciler produces the same value. The "__missing__"
// owner segment cannot collide with a real repository: hosting platforms do
// not allow underscores in account names.
func PlaceholderRepoName(matchID, analysisID string) string {
	id := uuid.NewSHA1(placeholderNamespace, []byte(matchID+"|"+analysisID))
	return "__missing__/" + id.String()
}
