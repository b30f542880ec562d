package synthesis

// Default user-context values applied when the caller supplies none.
const (
	defaultTimezone    = "America/Chicago"
	defaultCurrentDate = "today"
)

// UserContext carries per-request caller configuration. All fields are
// optional; a nil UserContext is valid everywhere.
type UserContext struct {
	// Timezone is the user's IANA timezone name, for date resolution in
	// prompts ("next Tuesday" depends on where the user is).
	Timezone string

	// CurrentDate is the user's current date as a display string.
	CurrentDate string

	// Folders is the user's ordered folder list. Folders are user-defined
	// free-text strings, not a closed enum; an empty list selects the
	// default set.
	Folders []string
}

// ResolveFolders returns the caller's folder list, or the default set when
// the caller supplied none. The returned slice is always a fresh copy; the
// caller's list is never aliased.
func ResolveFolders(uc *UserContext) []string {
	if uc != nil && len(uc.Folders) > 0 {
		out := make([]string, len(uc.Folders))
		copy(out, uc.Folders)
		return out
	}
	return []string{"Work", "Personal", "Ideas", "Meetings", "Projects"}
}
