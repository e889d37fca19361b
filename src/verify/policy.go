package verify

import (
	"github.com/startcommunity/startbot/src/data"
	"github.com/startcommunity/startbot/src/forum"
)

// Input is everything the policy looks at for one attempt.
type Input struct {
	ForumUsername   string
	RequesterHandle string
	ProfileURL      string

	Snapshot       forum.ProfileSnapshot
	Classification CommentClassification

	// ExistingForRequester is the record keyed by the requester's handle.
	ExistingForRequester *data.Member
	// ExistingForForum is the record that already claimed the forum username.
	ExistingForForum *data.Member
}

// Decide maps an attempt onto exactly one outcome. It has no side effects;
// persisting a Verified outcome is the caller's job.
func Decide(in Input) Outcome {
	out := Outcome{
		ForumUsername:   in.ForumUsername,
		RequesterHandle: in.RequesterHandle,
		ProfileURL:      in.ProfileURL,
	}

	if r := in.ExistingForRequester; r != nil && r.DiscordHandle == in.RequesterHandle {
		out.Kind = AlreadyLinkedSelf
		out.ExistingHandle = r.DiscordHandle
		out.ExistingForum = r.ForumUsername
		return out
	}
	if f := in.ExistingForForum; f != nil && f.DiscordHandle != in.RequesterHandle {
		out.Kind = AlreadyLinkedOther
		out.ExistingHandle = f.DiscordHandle
		out.ExistingForum = f.ForumUsername
		return out
	}

	snap := in.Snapshot
	if !snap.Exists {
		out.Kind = ProfileNotFound
		return out
	}
	out.PictureURL = snap.ProfilePictureURL
	if !snap.IsProgramMember {
		out.Kind = NotAMember
		return out
	}

	cls := in.Classification
	switch {
	case cls.MatchedHandle != "" && cls.MatchedHandle != in.RequesterHandle:
		out.Kind = HandleMismatch
		out.FoundHandle = cls.MatchedHandle
	case cls.MatchedHandle != "":
		out.Kind = Verified
		out.FoundHandle = cls.MatchedHandle
	case cls.InvalidHandleText != "":
		out.Kind = InvalidHandleFound
		out.InvalidText = cls.InvalidHandleText
	case cls.MismatchedAuthor != "":
		out.Kind = AuthorMismatch
		out.MismatchedAuthor = cls.MismatchedAuthor
	default:
		out.Kind = NoHandleFound
	}
	return out
}
