package calling

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// ParseJoinURL extracts call-joinable metadata from a Teams-style
// meeting join URL, e.g.
//
//	https://teams.microsoft.com/l/meetup-join/19%3ameeting_XYZ%40thread.v2/0?context=%7b%22Tid%22%3a%22<tenant>%22%2c%22Oid%22%3a%22<organizer>%22%7d
//
// The thread id is the path segment after "meetup-join"; the context
// query parameter is url-encoded JSON carrying the tenant (Tid) and
// organizer (Oid) ids.
func ParseJoinURL(joinWebURL string) (ChatInfo, MeetingInfo, error) {
	u, err := url.Parse(joinWebURL)
	if err != nil {
		return ChatInfo{}, MeetingInfo{}, fmt.Errorf("parse join url: %w", err)
	}

	segments := strings.Split(strings.Trim(u.EscapedPath(), "/"), "/")
	threadID := ""
	for i, seg := range segments {
		if seg == "meetup-join" && i+1 < len(segments) {
			threadID, err = url.PathUnescape(segments[i+1])
			if err != nil {
				return ChatInfo{}, MeetingInfo{}, fmt.Errorf("unescape thread id: %w", err)
			}
			break
		}
	}
	if threadID == "" {
		return ChatInfo{}, MeetingInfo{}, fmt.Errorf("join url has no meetup-join thread segment: %s", joinWebURL)
	}

	contextJSON := u.Query().Get("context")
	if contextJSON == "" {
		return ChatInfo{}, MeetingInfo{}, fmt.Errorf("join url has no context parameter: %s", joinWebURL)
	}
	tid := gjson.Get(contextJSON, "Tid").String()
	oid := gjson.Get(contextJSON, "Oid").String()
	if oid == "" {
		return ChatInfo{}, MeetingInfo{}, fmt.Errorf("join url context has no organizer id: %s", contextJSON)
	}

	chatInfo := ChatInfo{
		ThreadID: threadID,
		// Without a message id users cannot join the call the bot creates.
		MessageID: "0",
	}
	meetingInfo := MeetingInfo{
		Organizer: IdentitySet{User: Identity{ID: oid, TenantID: tid}},
	}
	return chatInfo, meetingInfo, nil
}
