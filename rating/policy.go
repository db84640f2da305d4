package rating

// maxEdits is how many times a rating may be edited after its first
// submission.
const maxEdits = 1

// CanEdit reports whether a user may submit a rating for a place given
// their existing rating, if any. A first submission is always allowed; an
// existing rating may be edited only while its edit count is below the
// limit.
//
// This is an optimistic mirror of the store's own enforcement: the store
// still rejects over-limit updates, so a bypassed client check cannot
// corrupt data.
func CanEdit(existing *Rating) bool {
	if existing == nil {
		return true
	}
	return existing.EditCount < maxEdits
}
