package tdapi

import (
	"fmt"
	"strings"
)

// parameterKeywords mark updates that only carry client appearance settings.
var parameterKeywords = []string{"color", "emoji", "theme", "background", "animation", "effects", "settings"}

// IsParametersOrOption reports whether obj is an update that only tunes engine
// options or appearance and is not worth logging.
func IsParametersOrOption(obj Object) bool {
	if _, ok := obj.(Update); !ok {
		return false
	}
	if _, ok := obj.(*UpdateOption); ok {
		return true
	}

	name := strings.ToLower(obj.TypeName())
	for _, keyword := range parameterKeywords {
		if strings.Contains(name, keyword) {
			return true
		}
	}
	return false
}

// ShortInfo renders obj for a log line. Identifiers are written as
// "entity.id = N" so all lines about an entity can be found with one search.
func ShortInfo(obj Object) string {
	if obj == nil {
		return "<nil>"
	}

	var extra string
	switch o := obj.(type) {
	case *UpdateNewChat:
		if o != nil {
			extra = ShortInfo(o.Chat)
		}
	case *UpdateChatPosition:
		if o != nil {
			extra = fmt.Sprintf("chat.id = %d", o.ChatID)
		}
	case *UpdateSupergroup:
		if o != nil {
			extra = ShortInfo(o.Supergroup)
		}
	case *UpdateSupergroupFullInfo:
		if o != nil {
			extra = fmt.Sprintf("supergroup.id = %d %s", o.SupergroupID, ShortInfo(o.FullInfo))
		}
	case *UpdateAuthorizationState:
		if o != nil {
			extra = ShortInfo(o.State)
		}
	case *Supergroup:
		if o != nil {
			extra = fmt.Sprintf("supergroup.id = %d, %s", o.ID, o.Username)
		}
	case *SupergroupFullInfo:
		if o != nil {
			extra = fmt.Sprintf("supergroup.inviteLink = %s, supergroup.linkedChatId = %d, supergroup.directMessagesChatId = %d",
				o.InviteLink, o.LinkedChatID, o.DirectMessagesChatID)
		}
	case *Chat:
		if o != nil {
			extra = fmt.Sprintf("chat.id = %d %s %s", o.ID, chatTypeInfo(o.Type), o.Title)
		}
	case *ForumTopics:
		if o != nil {
			extra = fmt.Sprintf("totalCount = %d, topics.size = %d", o.TotalCount, len(o.Topics))
		}
	case *ForumTopic:
		if o != nil {
			extra = fmt.Sprintf("%s, order = %d", ShortInfo(&o.Info), o.Order)
		}
	case *ForumTopicInfo:
		if o != nil {
			extra = fmt.Sprintf("name = %s, chat.id = %d, forumTopic.id = %d", o.Name, o.ChatID, o.ForumTopicID)
		}
	case *Messages:
		if o != nil {
			extra = fmt.Sprintf("totalCount = %d, messages.size = %d", o.TotalCount, len(o.Messages))
		}
	case *User:
		if o != nil {
			extra = fmt.Sprintf("user.id = %d %s %s", o.ID, o.FirstName, o.LastName)
		}
	case *Error:
		if o != nil {
			extra = fmt.Sprintf("code = %d, message = %s", o.Code, o.Message)
		}
	}

	if extra == "" {
		return obj.TypeName()
	}
	return obj.TypeName() + " " + strings.TrimSpace(extra)
}

func chatTypeInfo(t ChatType) string {
	switch ct := t.(type) {
	case *ChatTypeSupergroup:
		return fmt.Sprintf("supergroup.id = %d", ct.SupergroupID)
	case *ChatTypePrivate:
		return fmt.Sprintf("private user.id = %d", ct.UserID)
	case *ChatTypeSecret:
		return fmt.Sprintf("secret user.id = %d", ct.UserID)
	case *ChatTypeBasicGroup:
		return fmt.Sprintf("basic basicgroup.id = %d", ct.BasicGroupID)
	default:
		return ""
	}
}
