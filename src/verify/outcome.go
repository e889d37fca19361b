package verify

// Kind tags the result of a verification attempt.
type Kind int

const (
	AlreadyLinkedSelf Kind = iota + 1
	AlreadyLinkedOther
	ProfileNotFound
	NotAMember
	HandleMismatch
	InvalidHandleFound
	AuthorMismatch
	NoHandleFound
	Verified

	// FetchFailed and StoreFailed are not policy decisions; they report that
	// a collaborator failed before a decision could be made or kept.
	FetchFailed
	StoreFailed
)

var kindNames = map[Kind]string{
	AlreadyLinkedSelf:  "already_linked_self",
	AlreadyLinkedOther: "already_linked_other",
	ProfileNotFound:    "profile_not_found",
	NotAMember:         "not_a_member",
	HandleMismatch:     "handle_mismatch",
	InvalidHandleFound: "invalid_handle_found",
	AuthorMismatch:     "author_mismatch",
	NoHandleFound:      "no_handle_found",
	Verified:           "verified",
	FetchFailed:        "fetch_failed",
	StoreFailed:        "store_failed",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Mutates reports whether the outcome writes a verification record.
func (k Kind) Mutates() bool { return k == Verified }

// Success reports whether the requester ends up linked.
func (k Kind) Success() bool { return k == Verified || k == AlreadyLinkedSelf }

// Outcome is a tagged verification result plus what a caller needs to render it.
type Outcome struct {
	Kind            Kind
	ForumUsername   string
	RequesterHandle string

	// FoundHandle is the valid handle posted by the forum user (HandleMismatch, Verified).
	FoundHandle string
	// InvalidText is the malformed candidate (InvalidHandleFound).
	InvalidText string
	// MismatchedAuthor is who actually posted the handle (AuthorMismatch).
	MismatchedAuthor string
	// ExistingHandle is the handle already linked (AlreadyLinkedSelf, AlreadyLinkedOther).
	ExistingHandle string
	// ExistingForum is the forum username already linked to the requester.
	ExistingForum string

	ProfileURL string
	PictureURL string
}

// ShowsPicture reports whether a fresh profile snapshot backs the outcome.
func (o Outcome) ShowsPicture() bool {
	switch o.Kind {
	case NotAMember, HandleMismatch, InvalidHandleFound, AuthorMismatch, NoHandleFound, Verified:
		return o.PictureURL != ""
	default:
		return false
	}
}
