package content

// Generated is the canonical output of one generation pass. Title is always
// non-empty after parsing; Summary may be empty. Values live only for the
// current invocation.
type Generated struct {
	Title   string
	Body    string
	Summary string
}
