package domain

// PostSummary is a post as seen by one user.
type PostSummary struct {
	Post          Post
	FlagReason    string
	Replies       int
	UnreadReplies int
	Read          bool
}

type BoardStats struct {
	Posts        int
	DeletedPosts int
	FlaggedPosts int
	HiddenPosts  int
	Replies      int
}
