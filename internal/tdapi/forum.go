package tdapi

// ForumTopicInfo describes a topic independent of its position.
type ForumTopicInfo struct {
	Name         string
	ChatID       ChatID
	ForumTopicID int64
	IsClosed     bool
	IsPinned     bool
}

// TypeName implements Object.
func (*ForumTopicInfo) TypeName() string { return "forumTopicInfo" }

// ForumTopic is one topic of a forum. Topics are shown by Order, descending.
type ForumTopic struct {
	Info  ForumTopicInfo
	Order int64
}

// TypeName implements Object.
func (*ForumTopic) TypeName() string { return "forumTopic" }

// ID returns the topic identifier.
func (t *ForumTopic) ID() int64 { return t.Info.ForumTopicID }

// ForumTopics is one page of GetForumTopics. The Next* offsets are passed back
// to request the following page.
type ForumTopics struct {
	TotalCount                int32
	Topics                    []ForumTopic
	NextOffsetDate            int32
	NextOffsetMessageID       int64
	NextOffsetMessageThreadID int64
}

// TypeName implements Object.
func (*ForumTopics) TypeName() string { return "forumTopics" }
