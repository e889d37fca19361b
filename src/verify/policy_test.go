package verify

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/startcommunity/startbot/src/data"
	"github.com/startcommunity/startbot/src/forum"
)

func memberSnapshot(comments ...forum.Comment) forum.ProfileSnapshot {
	return forum.ProfileSnapshot{
		Username:          "alice",
		Exists:            true,
		IsProgramMember:   true,
		ProfilePictureURL: "https://cdn.example/alice.png",
		Comments:          comments,
	}
}

func TestDecide(t *testing.T) {
	base := Input{ForumUsername: "alice", RequesterHandle: "Alice#1234", ProfileURL: "https://forum/start/profile/alice"}
	with := func(f func(*Input)) Input {
		in := base
		f(&in)
		return in
	}

	tests := []struct {
		name string
		in   Input
		want Outcome
	}{
		{
			name: "already linked to the requester",
			in: with(func(in *Input) {
				in.ExistingForRequester = &data.Member{DiscordHandle: "Alice#1234", ForumUsername: "alice-old"}
				in.Snapshot = memberSnapshot()
			}),
			want: Outcome{Kind: AlreadyLinkedSelf, ExistingHandle: "Alice#1234", ExistingForum: "alice-old"},
		},
		{
			name: "forum profile claimed by someone else",
			in: with(func(in *Input) {
				in.ExistingForForum = &data.Member{DiscordHandle: "Mallory#6666", ForumUsername: "alice"}
			}),
			want: Outcome{Kind: AlreadyLinkedOther, ExistingHandle: "Mallory#6666", ExistingForum: "alice"},
		},
		{
			name: "profile does not exist",
			in:   with(func(in *Input) { in.Snapshot = forum.ProfileSnapshot{} }),
			want: Outcome{Kind: ProfileNotFound},
		},
		{
			name: "profile does not exist even with stray comment data",
			in: with(func(in *Input) {
				in.Snapshot = forum.ProfileSnapshot{Comments: []forum.Comment{{Author: "alice", Text: "Alice#1234"}}}
				in.Classification = CommentClassification{MatchedHandle: "Alice#1234"}
			}),
			want: Outcome{Kind: ProfileNotFound},
		},
		{
			name: "not a program member",
			in: with(func(in *Input) {
				in.Snapshot = forum.ProfileSnapshot{Exists: true}
			}),
			want: Outcome{Kind: NotAMember},
		},
		{
			name: "valid handle for someone else",
			in: with(func(in *Input) {
				in.Snapshot = memberSnapshot()
				in.Classification = CommentClassification{MatchedHandle: "Other#0001"}
			}),
			want: Outcome{Kind: HandleMismatch, FoundHandle: "Other#0001", PictureURL: "https://cdn.example/alice.png"},
		},
		{
			name: "handle comparison is case-sensitive",
			in: with(func(in *Input) {
				in.Snapshot = memberSnapshot()
				in.Classification = CommentClassification{MatchedHandle: "alice#1234"}
			}),
			want: Outcome{Kind: HandleMismatch, FoundHandle: "alice#1234", PictureURL: "https://cdn.example/alice.png"},
		},
		{
			name: "invalid handle text",
			in: with(func(in *Input) {
				in.Snapshot = memberSnapshot()
				in.Classification = CommentClassification{InvalidHandleText: "not-a-handle"}
			}),
			want: Outcome{Kind: InvalidHandleFound, InvalidText: "not-a-handle", PictureURL: "https://cdn.example/alice.png"},
		},
		{
			name: "author mismatch",
			in: with(func(in *Input) {
				in.Snapshot = memberSnapshot()
				in.Classification = CommentClassification{MismatchedAuthor: "carl"}
			}),
			want: Outcome{Kind: AuthorMismatch, MismatchedAuthor: "carl", PictureURL: "https://cdn.example/alice.png"},
		},
		{
			name: "no handle",
			in:   with(func(in *Input) { in.Snapshot = memberSnapshot() }),
			want: Outcome{Kind: NoHandleFound, PictureURL: "https://cdn.example/alice.png"},
		},
		{
			name: "verified",
			in: with(func(in *Input) {
				in.Snapshot = memberSnapshot()
				in.Classification = CommentClassification{MatchedHandle: "Alice#1234"}
			}),
			want: Outcome{Kind: Verified, FoundHandle: "Alice#1234", PictureURL: "https://cdn.example/alice.png"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want.ForumUsername = base.ForumUsername
			tt.want.RequesterHandle = base.RequesterHandle
			tt.want.ProfileURL = base.ProfileURL

			got := Decide(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decide() mismatch (-want +got):\n%s", diff)
			}
			if again := Decide(tt.in); again != got {
				t.Errorf("Decide() is not stable: %+v then %+v", got, again)
			}
		})
	}
}

func TestKindStrings(t *testing.T) {
	seen := map[string]Kind{}
	for k := AlreadyLinkedSelf; k <= StoreFailed; k++ {
		s := k.String()
		if s == "unknown" {
			t.Errorf("Kind(%d) has no name", k)
		}
		if prev, dup := seen[s]; dup {
			t.Errorf("Kind(%d) and Kind(%d) share name %q", prev, k, s)
		}
		seen[s] = k
		if k.Mutates() != (k == Verified) {
			t.Errorf("%s.Mutates() = %v", k, k.Mutates())
		}
	}
	if Kind(0).String() != "unknown" {
		t.Errorf("zero Kind = %q", Kind(0).String())
	}
}

func TestShowsPicture(t *testing.T) {
	withPic := func(k Kind) Outcome { return Outcome{Kind: k, PictureURL: "https://x/p.png"} }

	for _, k := range []Kind{NotAMember, HandleMismatch, InvalidHandleFound, AuthorMismatch, NoHandleFound, Verified} {
		if !withPic(k).ShowsPicture() {
			t.Errorf("%s should show the picture", k)
		}
	}
	for _, k := range []Kind{ProfileNotFound, FetchFailed, StoreFailed, AlreadyLinkedSelf, AlreadyLinkedOther} {
		if withPic(k).ShowsPicture() {
			t.Errorf("%s should not show the picture", k)
		}
	}
	if (Outcome{Kind: Verified}).ShowsPicture() {
		t.Error("Verified without a picture URL should not show one")
	}
}
